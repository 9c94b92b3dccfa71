package ledger

import (
	"context"

	"github.com/chainsafe/wpaw-bridge/pkg/money"
)

// DepositRecord is one append-only deposit entry.
type DepositRecord struct {
	NativeAddress string
	Amount        money.Units
	TsMillis      int64
	Hash          string
}

// WithdrawalRecord is one append-only withdrawal entry.
type WithdrawalRecord struct {
	NativeAddress string
	Amount        money.Units
	TsMillis      int64
	Hash          string
}

// SwapToWrappedRecord is one append-only native->wrapped swap entry.
type SwapToWrappedRecord struct {
	NativeAddress string
	EvmAddress    string
	Amount        money.Units
	TsMillis      int64
	Receipt       string
	UUID          string
}

// SwapToNative is the input to StoreSwapToNative: a wrapped-token burn
// observed on the EVM chain, credited back to the native side.
type SwapToNative struct {
	EvmAddress    string
	NativeAddress string
	Amount        money.Units
	TsMillis      int64
	Hash          string
}

// LedgerStore is the capability interface the Bridge Service depends on.
// It owns all persisted bridge state exclusively; every mutation is
// guarded by a named lock on the touched balance key.
type LedgerStore interface {
	GetBalance(ctx context.Context, native string) (money.Units, error)

	HasPendingClaim(ctx context.Context, native string) (bool, error)
	StorePendingClaim(ctx context.Context, native, evm string) (bool, error)
	IsClaimed(ctx context.Context, native string) (bool, error)
	HasClaim(ctx context.Context, native, evm string) (bool, error)
	ConfirmClaim(ctx context.Context, native string) (bool, error)

	StoreDeposit(ctx context.Context, native string, amount money.Units, tsMillis int64, hash string) error
	HasDeposit(ctx context.Context, native, hash string) (bool, error)

	StoreWithdrawal(ctx context.Context, native string, amount money.Units, tsMillis int64, hash string) error
	HasWithdrawalAt(ctx context.Context, native string, tsMillis int64) (bool, error)

	StoreSwapToWrapped(ctx context.Context, native, evm string, amount money.Units, tsMillis int64, receipt, uuid string) error

	StoreSwapToNative(ctx context.Context, swap SwapToNative) error
	HasSwapToNative(ctx context.Context, evm, hash string) (bool, error)

	GetScanCursor(ctx context.Context) (int64, error)
	AdvanceScanCursor(ctx context.Context, block int64) error

	ListDeposits(ctx context.Context, native string) ([]DepositRecord, error)
	ListWithdrawals(ctx context.Context, native string) ([]WithdrawalRecord, error)
	ListSwapsToWrapped(ctx context.Context, native string) ([]SwapToWrappedRecord, error)
	ListSwapsToNative(ctx context.Context, evm string) ([]SwapToNativeRecord, error)
}

// SwapToNativeRecord is one append-only wrapped->native swap entry.
type SwapToNativeRecord struct {
	EvmAddress    string
	NativeAddress string
	Amount        money.Units
	TsMillis      int64
	Hash          string
}

const historyLimit = 1000
