package ledger

const schema = `
CREATE TABLE IF NOT EXISTS balances (
	native_address VARCHAR(128) PRIMARY KEY,
	balance_units  NUMERIC(78,0) NOT NULL DEFAULT 0,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS claims_pending (
	native_address VARCHAR(128) PRIMARY KEY,
	evm_address    VARCHAR(42) NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS claims_confirmed (
	native_address VARCHAR(128) PRIMARY KEY,
	evm_address    VARCHAR(42) NOT NULL,
	confirmed_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS deposits (
	id             BIGSERIAL PRIMARY KEY,
	native_address VARCHAR(128) NOT NULL,
	amount_units   NUMERIC(78,0) NOT NULL,
	ts_millis      BIGINT NOT NULL,
	hash           VARCHAR(128) NOT NULL UNIQUE,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_deposits_native_ts ON deposits (native_address, ts_millis DESC);

CREATE TABLE IF NOT EXISTS withdrawals (
	id             BIGSERIAL PRIMARY KEY,
	native_address VARCHAR(128) NOT NULL,
	amount_units   NUMERIC(78,0) NOT NULL,
	ts_millis      BIGINT NOT NULL,
	hash           VARCHAR(128) NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (native_address, ts_millis)
);
CREATE INDEX IF NOT EXISTS idx_withdrawals_native_ts ON withdrawals (native_address, ts_millis DESC);

CREATE TABLE IF NOT EXISTS swaps_to_wrapped (
	id             BIGSERIAL PRIMARY KEY,
	native_address VARCHAR(128) NOT NULL,
	evm_address    VARCHAR(42) NOT NULL,
	amount_units   NUMERIC(78,0) NOT NULL,
	ts_millis      BIGINT NOT NULL,
	receipt        TEXT NOT NULL,
	uuid           VARCHAR(78) NOT NULL UNIQUE,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_swaps_to_wrapped_native_ts ON swaps_to_wrapped (native_address, ts_millis DESC);

CREATE TABLE IF NOT EXISTS swaps_to_native (
	id             BIGSERIAL PRIMARY KEY,
	evm_address    VARCHAR(42) NOT NULL,
	native_address VARCHAR(128) NOT NULL,
	amount_units   NUMERIC(78,0) NOT NULL,
	ts_millis      BIGINT NOT NULL,
	hash           VARCHAR(128) NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (evm_address, hash)
);
CREATE INDEX IF NOT EXISTS idx_swaps_to_native_evm_ts ON swaps_to_native (evm_address, ts_millis DESC);

CREATE TABLE IF NOT EXISTS audit_log (
	key        VARCHAR(160) PRIMARY KEY,
	kind       VARCHAR(32) NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS scan_cursor (
	id         INT PRIMARY KEY DEFAULT 1,
	block      BIGINT NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (id = 1)
);
INSERT INTO scan_cursor (id, block) VALUES (1, 0) ON CONFLICT (id) DO NOTHING;
`
