// Package money provides arbitrary-precision atomic-unit arithmetic for the
// bridge's two currencies: the 9-decimal native coin and the 18-decimal
// wrapped token. Balances are never represented as floating point; atomic
// units are big.Int and the only string form is a base-10 decimal string.
package money

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimal places for the two currencies this bridge moves value between.
const (
	NativeDecimals  = 9
	WrappedDecimals = 18
)

// Units is an atomic-unit amount: the smallest indivisible quantity of
// either currency (10^-9 native coin, or 10^-18 wrapped token).
type Units struct {
	v *big.Int
}

// Zero returns the zero amount.
func Zero() Units {
	return Units{v: big.NewInt(0)}
}

// FromInt64 wraps a raw atomic-unit count.
func FromInt64(units int64) Units {
	return Units{v: big.NewInt(units)}
}

// FromBigInt wraps a copy of an existing big.Int.
func FromBigInt(units *big.Int) Units {
	if units == nil {
		return Zero()
	}
	return Units{v: new(big.Int).Set(units)}
}

// ParseDecimal parses a decimal string (e.g. "1.466") at the given decimal
// precision into atomic units, e.g. ParseDecimal("1.466", NativeDecimals).
func ParseDecimal(s string, decimals int32) (Units, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Units{}, fmt.Errorf("invalid decimal amount %q: %w", s, err)
	}
	scaled := d.Mul(decimal.New(1, decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return Units{}, fmt.Errorf("amount %q has sub-atomic precision at %d decimals", s, decimals)
	}
	return Units{v: scaled.BigInt()}, nil
}

// ParseUnits parses a raw atomic-unit integer string (no decimal point),
// the form the ledger store persists balances and record amounts in.
func ParseUnits(s string) (Units, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Units{}, fmt.Errorf("invalid atomic unit amount %q", s)
	}
	return Units{v: v}, nil
}

// ParseUnitsOrZero parses a raw atomic-unit integer string, returning zero
// for malformed input. Used for trusted internal reads where persistence
// already validated the value on write.
func ParseUnitsOrZero(s string) Units {
	u, err := ParseUnits(s)
	if err != nil {
		return Zero()
	}
	return u
}

// Decimal renders the amount as a decimal string at the given precision.
func (u Units) Decimal(decimals int32) string {
	return decimal.NewFromBigInt(u.BigInt(), -decimals).StringFixed(decimals)
}

// BigInt returns the underlying atomic-unit integer. The returned value must
// not be mutated by the caller.
func (u Units) BigInt() *big.Int {
	if u.v == nil {
		return big.NewInt(0)
	}
	return u.v
}

// String renders the raw atomic-unit integer (no decimal point).
func (u Units) String() string {
	return u.BigInt().String()
}

func (u Units) Add(other Units) Units {
	return Units{v: new(big.Int).Add(u.BigInt(), other.BigInt())}
}

func (u Units) Sub(other Units) Units {
	return Units{v: new(big.Int).Sub(u.BigInt(), other.BigInt())}
}

func (u Units) Cmp(other Units) int {
	return u.BigInt().Cmp(other.BigInt())
}

func (u Units) IsNegative() bool {
	return u.BigInt().Sign() < 0
}

func (u Units) IsZero() bool {
	return u.BigInt().Sign() == 0
}

// GreaterThanOrEqual reports whether u >= other.
func (u Units) GreaterThanOrEqual(other Units) bool {
	return u.Cmp(other) >= 0
}

// ScalePercent multiplies u by pct/100, flooring to whole atomic units.
// Used by the hot/cold rebalancing policy, which deals in whole-unit splits.
func (u Units) ScalePercent(pct int) Units {
	scaled := new(big.Int).Mul(u.BigInt(), big.NewInt(int64(pct)))
	scaled.Div(scaled, big.NewInt(100))
	return Units{v: scaled}
}

// FloorToWholeUnits truncates the fractional part at `decimals` precision,
// rounding down towards zero. Used by the hot/cold rebalancing policy,
// which floors the sweep amount to a whole coin before scaling.
func (u Units) FloorToWholeUnits(decimals int32) Units {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	q := new(big.Int).Div(u.BigInt(), scale)
	return Units{v: q.Mul(q, scale)}
}

// ExceedsDecimalPlaces reports whether the amount, expressed at `decimals`
// precision, carries more than `maxPlaces` significant fractional digits,
// i.e. units is not evenly divisible by 10^(decimals-maxPlaces). Deposits
// failing this test are refunded rather than credited.
func ExceedsDecimalPlaces(units Units, decimals, maxPlaces int32) bool {
	if decimals <= maxPlaces {
		return false
	}
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals-maxPlaces)), nil)
	rem := new(big.Int).Mod(units.BigInt(), divisor)
	return rem.Sign() != 0
}

// MarshalJSON renders the amount as its raw atomic-unit integer string, so
// job payloads and API responses never round-trip through a JSON number.
func (u Units) MarshalJSON() ([]byte, error) {
	return []byte(`"` + u.String() + `"`), nil
}

// UnmarshalJSON parses the atomic-unit integer string produced by MarshalJSON.
func (u *Units) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*u = Zero()
		return nil
	}
	v, err := ParseUnits(s)
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// Min returns the smaller of two amounts.
func Min(a, b Units) Units {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}
