// Package ledger implements the bridge's authoritative balance ledger: a
// Postgres-backed store for balances, claims, and the append-only
// deposit/withdrawal/swap record sets, with every mutation guarded by a
// named advisory lock and committed as one atomic transaction.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"

	"github.com/chainsafe/wpaw-bridge/pkg/apperrors"
	"github.com/chainsafe/wpaw-bridge/pkg/ledger/dao"
	"github.com/chainsafe/wpaw-bridge/pkg/money"
)

// Store is the Postgres-backed LedgerStore implementation. Writes go
// through sql.DB directly so the named-lock critical section can span the
// whole read-modify-write; bun (with the DAO struct tags in pkg/ledger/dao)
// backs the read-side history queries.
type Store struct {
	db       *sql.DB
	bun      *bun.DB
	logger   *zap.Logger
	claimTTL time.Duration
}

// NewStore opens the Postgres connection, verifies it, applies the schema,
// and wraps it with bun for read queries.
func NewStore(connString string, claimTTL time.Duration, logger *zap.Logger) (*Store, error) {
	db := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connString)))
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping ledger store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("apply ledger schema: %w", err)
	}

	bunDB := bun.NewDB(db, pgdialect.New())

	if claimTTL <= 0 {
		claimTTL = 300 * time.Second
	}

	return &Store{db: db, bun: bunDB, logger: logger, claimTTL: claimTTL}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func balanceLockKey(native string) string       { return "balance:" + native }
func swapToWrappedLockKey(native string) string { return "swap-to-wrapped:" + native }
func claimLockKey(native string) string         { return "claims:" + native }

func (s *Store) GetBalance(ctx context.Context, native string) (money.Units, error) {
	var units string
	err := s.db.QueryRowContext(ctx, "SELECT balance_units FROM balances WHERE native_address = $1", native).Scan(&units)
	if err == sql.ErrNoRows {
		return money.Zero(), nil
	}
	if err != nil {
		return money.Zero(), apperrors.ExternalFailureError(err, "get balance")
	}
	return money.ParseUnitsOrZero(units), nil
}

func (s *Store) HasPendingClaim(ctx context.Context, native string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM claims_pending WHERE native_address = $1 AND created_at > $2",
		native, time.Now().Add(-s.claimTTL)).Scan(&count)
	if err != nil {
		return false, apperrors.ExternalFailureError(err, "has pending claim")
	}
	return count > 0, nil
}

func (s *Store) StorePendingClaim(ctx context.Context, native, evm string) (bool, error) {
	var stored bool
	err := s.withNamedLock(ctx, claimLockKey(native), func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM claims_pending WHERE native_address = $1 AND created_at <= $2",
			native, time.Now().Add(-s.claimTTL)); err != nil {
			return apperrors.ExternalFailureError(err, "expire pending claims")
		}

		var existing int
		if err := tx.QueryRowContext(ctx,
			"SELECT count(*) FROM claims_pending WHERE native_address = $1", native).Scan(&existing); err != nil {
			return apperrors.ExternalFailureError(err, "check pending claim")
		}
		if existing > 0 {
			stored = false
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO claims_pending (native_address, evm_address, created_at) VALUES ($1, $2, now())",
			native, evm); err != nil {
			return apperrors.ExternalFailureError(err, "store pending claim")
		}
		stored = true
		return s.insertAudit(ctx, tx, "claims:pending:"+native+":"+evm, "pending_claim", map[string]any{
			"native": native, "evm": evm,
		})
	})
	return stored, err
}

func (s *Store) IsClaimed(ctx context.Context, native string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM claims_confirmed WHERE native_address = $1", native).Scan(&count)
	if err != nil {
		return false, apperrors.ExternalFailureError(err, "is claimed")
	}
	return count > 0, nil
}

func (s *Store) HasClaim(ctx context.Context, native, evm string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM claims_confirmed WHERE native_address = $1 AND evm_address = $2", native, evm).Scan(&count)
	if err != nil {
		return false, apperrors.ExternalFailureError(err, "has claim")
	}
	return count > 0, nil
}

func (s *Store) ConfirmClaim(ctx context.Context, native string) (bool, error) {
	var confirmed bool
	err := s.withNamedLock(ctx, claimLockKey(native), func(tx *sql.Tx) error {
		var evm string
		err := tx.QueryRowContext(ctx,
			"SELECT evm_address FROM claims_pending WHERE native_address = $1 AND created_at > $2 ORDER BY created_at LIMIT 1",
			native, time.Now().Add(-s.claimTTL)).Scan(&evm)
		if err == sql.ErrNoRows {
			confirmed = false
			return nil
		}
		if err != nil {
			return apperrors.ExternalFailureError(err, "load pending claim")
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO claims_confirmed (native_address, evm_address, confirmed_at) VALUES ($1, $2, now()) ON CONFLICT (native_address) DO NOTHING",
			native, evm); err != nil {
			return apperrors.ExternalFailureError(err, "confirm claim")
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM claims_pending WHERE native_address = $1", native); err != nil {
			return apperrors.ExternalFailureError(err, "clear pending claim")
		}
		confirmed = true
		return s.insertAudit(ctx, tx, "claims:"+native+":"+evm, "confirmed_claim", map[string]any{
			"native": native, "evm": evm,
		})
	})
	return confirmed, err
}

func (s *Store) StoreDeposit(ctx context.Context, native string, amount money.Units, tsMillis int64, hash string) error {
	return s.withNamedLock(ctx, balanceLockKey(native), func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT count(*) FROM deposits WHERE hash = $1", hash).Scan(&exists); err != nil {
			return apperrors.ExternalFailureError(err, "check deposit")
		}
		if exists > 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO deposits (native_address, amount_units, ts_millis, hash) VALUES ($1, $2, $3, $4)",
			native, amount.String(), tsMillis, hash); err != nil {
			return apperrors.ExternalFailureError(err, "store deposit")
		}
		if err := s.creditBalance(ctx, tx, native, amount); err != nil {
			return err
		}
		return s.insertAudit(ctx, tx, "deposit:"+hash, "deposit", map[string]any{
			"native": native, "amount": amount.String(), "ts": tsMillis, "hash": hash,
		})
	})
}

func (s *Store) HasDeposit(ctx context.Context, native, hash string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM deposits WHERE native_address = $1 AND hash = $2", native, hash).Scan(&count)
	if err != nil {
		return false, apperrors.ExternalFailureError(err, "has deposit")
	}
	return count > 0, nil
}

func (s *Store) StoreWithdrawal(ctx context.Context, native string, amount money.Units, tsMillis int64, hash string) error {
	return s.withNamedLock(ctx, balanceLockKey(native), func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx,
			"SELECT count(*) FROM withdrawals WHERE native_address = $1 AND ts_millis = $2", native, tsMillis).Scan(&exists); err != nil {
			return apperrors.ExternalFailureError(err, "check withdrawal")
		}
		if exists > 0 {
			return apperrors.AlreadyProcessedError("withdrawal already processed")
		}

		if err := s.debitBalance(ctx, tx, native, amount); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO withdrawals (native_address, amount_units, ts_millis, hash) VALUES ($1, $2, $3, $4)",
			native, amount.String(), tsMillis, hash); err != nil {
			return apperrors.ExternalFailureError(err, "store withdrawal")
		}
		return s.insertAudit(ctx, tx, fmt.Sprintf("withdrawal:%s:%d", native, tsMillis), "withdrawal", map[string]any{
			"native": native, "amount": amount.String(), "ts": tsMillis, "hash": hash,
		})
	})
}

func (s *Store) HasWithdrawalAt(ctx context.Context, native string, tsMillis int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM withdrawals WHERE native_address = $1 AND ts_millis = $2", native, tsMillis).Scan(&count)
	if err != nil {
		return false, apperrors.ExternalFailureError(err, "has withdrawal")
	}
	return count > 0, nil
}

func (s *Store) StoreSwapToWrapped(ctx context.Context, native, evm string, amount money.Units, tsMillis int64, receipt, uuid string) error {
	return s.withNamedLock(ctx, swapToWrappedLockKey(native), func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT count(*) FROM swaps_to_wrapped WHERE uuid = $1", uuid).Scan(&exists); err != nil {
			return apperrors.ExternalFailureError(err, "check swap-to-wrapped")
		}
		if exists > 0 {
			return apperrors.AlreadyProcessedError("swap already processed")
		}

		if err := s.debitBalance(ctx, tx, native, amount); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO swaps_to_wrapped (native_address, evm_address, amount_units, ts_millis, receipt, uuid) VALUES ($1, $2, $3, $4, $5, $6)",
			native, evm, amount.String(), tsMillis, receipt, uuid); err != nil {
			return apperrors.ExternalFailureError(err, "store swap-to-wrapped")
		}
		return s.insertAudit(ctx, tx, "swap-to-wrapped:"+uuid, "swap_to_wrapped", map[string]any{
			"native": native, "evm": evm, "amount": amount.String(), "ts": tsMillis, "uuid": uuid,
		})
	})
}

func (s *Store) StoreSwapToNative(ctx context.Context, swap SwapToNative) error {
	return s.withNamedLock(ctx, balanceLockKey(swap.NativeAddress), func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx,
			"SELECT count(*) FROM swaps_to_native WHERE evm_address = $1 AND hash = $2", swap.EvmAddress, swap.Hash).Scan(&exists); err != nil {
			return apperrors.ExternalFailureError(err, "check swap-to-native")
		}
		if exists > 0 {
			return nil
		}

		if err := s.creditBalance(ctx, tx, swap.NativeAddress, swap.Amount); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO swaps_to_native (evm_address, native_address, amount_units, ts_millis, hash) VALUES ($1, $2, $3, $4, $5)",
			swap.EvmAddress, swap.NativeAddress, swap.Amount.String(), swap.TsMillis, swap.Hash); err != nil {
			return apperrors.ExternalFailureError(err, "store swap-to-native")
		}
		return s.insertAudit(ctx, tx, "swap-to-native:"+swap.EvmAddress+":"+swap.Hash, "swap_to_native", map[string]any{
			"evm": swap.EvmAddress, "native": swap.NativeAddress, "amount": swap.Amount.String(), "ts": swap.TsMillis, "hash": swap.Hash,
		})
	})
}

func (s *Store) HasSwapToNative(ctx context.Context, evm, hash string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM swaps_to_native WHERE evm_address = $1 AND hash = $2", evm, hash).Scan(&count)
	if err != nil {
		return false, apperrors.ExternalFailureError(err, "has swap-to-native")
	}
	return count > 0, nil
}

func (s *Store) GetScanCursor(ctx context.Context) (int64, error) {
	var block int64
	err := s.db.QueryRowContext(ctx, "SELECT block FROM scan_cursor WHERE id = 1").Scan(&block)
	if err != nil {
		return 0, apperrors.ExternalFailureError(err, "get scan cursor")
	}
	return block, nil
}

// AdvanceScanCursor writes only if block is strictly greater than the
// stored cursor, so the cursor never moves backwards.
func (s *Store) AdvanceScanCursor(ctx context.Context, block int64) error {
	_, err := s.db.ExecContext(ctx, "UPDATE scan_cursor SET block = $1, updated_at = now() WHERE id = 1 AND block < $1", block)
	if err != nil {
		return apperrors.ExternalFailureError(err, "advance scan cursor")
	}
	return nil
}

// ListDeposits and the three List* methods below back the history endpoint
// (GET /history/:evm/:native) through bun's query builder over the
// pkg/ledger/dao row shapes, rather than the hand-rolled database/sql used
// by the write path: these are plain newest-first reads with no advisory
// lock to hold open, so bun's ORM mapping is the natural fit.
func (s *Store) ListDeposits(ctx context.Context, native string) ([]DepositRecord, error) {
	var rows []dao.DepositDao
	err := s.bun.NewSelect().Model(&rows).
		Where("native_address = ?", native).
		OrderExpr("ts_millis DESC").
		Limit(historyLimit).
		Scan(ctx)
	if err != nil {
		return nil, apperrors.ExternalFailureError(err, "list deposits")
	}

	out := make([]DepositRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, DepositRecord{
			NativeAddress: r.NativeAddress, Amount: money.ParseUnitsOrZero(r.AmountUnits),
			TsMillis: r.TsMillis, Hash: r.Hash,
		})
	}
	return out, nil
}

func (s *Store) ListWithdrawals(ctx context.Context, native string) ([]WithdrawalRecord, error) {
	var rows []dao.WithdrawalDao
	err := s.bun.NewSelect().Model(&rows).
		Where("native_address = ?", native).
		OrderExpr("ts_millis DESC").
		Limit(historyLimit).
		Scan(ctx)
	if err != nil {
		return nil, apperrors.ExternalFailureError(err, "list withdrawals")
	}

	out := make([]WithdrawalRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, WithdrawalRecord{
			NativeAddress: r.NativeAddress, Amount: money.ParseUnitsOrZero(r.AmountUnits),
			TsMillis: r.TsMillis, Hash: r.Hash,
		})
	}
	return out, nil
}

func (s *Store) ListSwapsToWrapped(ctx context.Context, native string) ([]SwapToWrappedRecord, error) {
	var rows []dao.SwapToWrappedDao
	err := s.bun.NewSelect().Model(&rows).
		Where("native_address = ?", native).
		OrderExpr("ts_millis DESC").
		Limit(historyLimit).
		Scan(ctx)
	if err != nil {
		return nil, apperrors.ExternalFailureError(err, "list swaps-to-wrapped")
	}

	out := make([]SwapToWrappedRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, SwapToWrappedRecord{
			NativeAddress: r.NativeAddress, EvmAddress: r.EvmAddress, Amount: money.ParseUnitsOrZero(r.AmountUnits),
			TsMillis: r.TsMillis, Receipt: r.Receipt, UUID: r.UUID,
		})
	}
	return out, nil
}

func (s *Store) ListSwapsToNative(ctx context.Context, evm string) ([]SwapToNativeRecord, error) {
	var rows []dao.SwapToNativeDao
	err := s.bun.NewSelect().Model(&rows).
		Where("evm_address = ?", evm).
		OrderExpr("ts_millis DESC").
		Limit(historyLimit).
		Scan(ctx)
	if err != nil {
		return nil, apperrors.ExternalFailureError(err, "list swaps-to-native")
	}

	out := make([]SwapToNativeRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, SwapToNativeRecord{
			EvmAddress: r.EvmAddress, NativeAddress: r.NativeAddress, Amount: money.ParseUnitsOrZero(r.AmountUnits),
			TsMillis: r.TsMillis, Hash: r.Hash,
		})
	}
	return out, nil
}

// creditBalance and debitBalance assume the caller already holds the
// relevant named lock within tx.

func (s *Store) creditBalance(ctx context.Context, tx *sql.Tx, native string, amount money.Units) error {
	current, err := s.currentBalanceForUpdate(ctx, tx, native)
	if err != nil {
		return err
	}
	next := current.Add(amount)
	return s.upsertBalance(ctx, tx, native, next)
}

func (s *Store) debitBalance(ctx context.Context, tx *sql.Tx, native string, amount money.Units) error {
	current, err := s.currentBalanceForUpdate(ctx, tx, native)
	if err != nil {
		return err
	}
	next := current.Sub(amount)
	if next.IsNegative() {
		return apperrors.InsufficientBalanceError("balance would go negative")
	}
	return s.upsertBalance(ctx, tx, native, next)
}

func (s *Store) currentBalanceForUpdate(ctx context.Context, tx *sql.Tx, native string) (money.Units, error) {
	var units string
	err := tx.QueryRowContext(ctx, "SELECT balance_units FROM balances WHERE native_address = $1 FOR UPDATE", native).Scan(&units)
	if err == sql.ErrNoRows {
		return money.Zero(), nil
	}
	if err != nil {
		return money.Zero(), apperrors.ExternalFailureError(err, "read balance for update")
	}
	return money.ParseUnitsOrZero(units), nil
}

func (s *Store) upsertBalance(ctx context.Context, tx *sql.Tx, native string, next money.Units) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO balances (native_address, balance_units, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (native_address) DO UPDATE SET balance_units = $2, updated_at = now()`,
		native, next.String())
	if err != nil {
		return apperrors.ExternalFailureError(err, "upsert balance")
	}
	return nil
}

func (s *Store) insertAudit(ctx context.Context, tx *sql.Tx, key, kind string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.ExternalFailureError(err, "marshal audit payload")
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO audit_log (key, kind, payload) VALUES ($1, $2, $3) ON CONFLICT (key) DO NOTHING",
		key, kind, string(body))
	if err != nil {
		return apperrors.ExternalFailureError(err, "insert audit")
	}
	return nil
}

var _ LedgerStore = (*Store)(nil)
