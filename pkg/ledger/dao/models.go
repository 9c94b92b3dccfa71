// Package dao holds the bun-tagged row shapes for the Ledger Store's
// Postgres tables. They back read-side history queries; the write path
// (pkg/ledger.Store) commits through raw transactions so it can hold
// per-key advisory locks across the whole read-modify-write section.
package dao

import "time"

// BalanceDao is the authoritative per-native-address balance row.
type BalanceDao struct {
	tableName struct{} `bun:"table:balances"`

	NativeAddress string    `bun:",pk,type:varchar(128)"`
	BalanceUnits  string    `bun:",notnull,type:numeric(78,0)"`
	UpdatedAt     time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// PendingClaimDao is a claim awaiting confirmation by an on-chain deposit.
// Rows older than the configured TTL are treated as expired by the store.
type PendingClaimDao struct {
	tableName struct{} `bun:"table:claims_pending"`

	NativeAddress string    `bun:",pk,type:varchar(128)"`
	EvmAddress    string    `bun:",notnull,type:varchar(42)"`
	CreatedAt     time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// ConfirmedClaimDao is a permanent native<->evm binding.
type ConfirmedClaimDao struct {
	tableName struct{} `bun:"table:claims_confirmed"`

	NativeAddress string    `bun:",pk,type:varchar(128)"`
	EvmAddress    string    `bun:",notnull,type:varchar(42)"`
	ConfirmedAt   time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// DepositDao is an append-only deposit record keyed by L1 transaction hash.
type DepositDao struct {
	tableName struct{} `bun:"table:deposits"`

	ID            int64     `bun:",pk,autoincrement"`
	NativeAddress string    `bun:",notnull,type:varchar(128)"`
	AmountUnits   string    `bun:",notnull,type:numeric(78,0)"`
	TsMillis      int64     `bun:",notnull"`
	Hash          string    `bun:",unique,notnull,type:varchar(128)"`
	CreatedAt     time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// WithdrawalDao is an append-only withdrawal record. (NativeAddress,
// TsMillis) is unique, matching the "already processed" idempotence rule.
type WithdrawalDao struct {
	tableName struct{} `bun:"table:withdrawals"`

	ID            int64     `bun:",pk,autoincrement"`
	NativeAddress string    `bun:",notnull,type:varchar(128)"`
	AmountUnits   string    `bun:",notnull,type:numeric(78,0)"`
	TsMillis      int64     `bun:",notnull"`
	Hash          string    `bun:",notnull,type:varchar(128)"`
	CreatedAt     time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// SwapToWrappedDao is an append-only native->wrapped swap (mint receipt)
// record, unique by uuid (the receipt's replay-protection nonce).
type SwapToWrappedDao struct {
	tableName struct{} `bun:"table:swaps_to_wrapped"`

	ID            int64     `bun:",pk,autoincrement"`
	NativeAddress string    `bun:",notnull,type:varchar(128)"`
	EvmAddress    string    `bun:",notnull,type:varchar(42)"`
	AmountUnits   string    `bun:",notnull,type:numeric(78,0)"`
	TsMillis      int64     `bun:",notnull"`
	Receipt       string    `bun:",notnull,type:text"`
	UUID          string    `bun:",unique,notnull,type:varchar(78)"`
	CreatedAt     time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// SwapToNativeDao is an append-only wrapped->native swap record, unique by
// (EvmAddress, Hash) -- the EVM burn transaction hash.
type SwapToNativeDao struct {
	tableName struct{} `bun:"table:swaps_to_native"`

	ID            int64     `bun:",pk,autoincrement"`
	EvmAddress    string    `bun:",notnull,type:varchar(42)"`
	NativeAddress string    `bun:",notnull,type:varchar(128)"`
	AmountUnits   string    `bun:",notnull,type:numeric(78,0)"`
	TsMillis      int64     `bun:",notnull"`
	Hash          string    `bun:",notnull,type:varchar(128)"`
	CreatedAt     time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// AuditDao is an append-only audit trail entry for every mutation the store
// commits, keyed by the natural id of the record it shadows.
type AuditDao struct {
	tableName struct{} `bun:"table:audit_log"`

	Key       string    `bun:",pk,type:varchar(160)"`
	Kind      string    `bun:",notnull,type:varchar(32)"`
	Payload   string    `bun:",notnull,type:jsonb"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// ScanCursorDao is the singleton last-scanned-EVM-block cursor.
type ScanCursorDao struct {
	tableName struct{} `bun:"table:scan_cursor"`

	ID        int32     `bun:",pk"`
	Block     int64     `bun:",notnull"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}
