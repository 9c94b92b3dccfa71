package queue

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id                 TEXT PRIMARY KEY,
	topic              TEXT NOT NULL,
	payload            JSONB NOT NULL,
	status             TEXT NOT NULL DEFAULT 'waiting',
	attempts           INT NOT NULL DEFAULT 0,
	max_attempts       INT NOT NULL DEFAULT 3,
	run_after          TIMESTAMPTZ NOT NULL DEFAULT now(),
	remove_on_complete BOOLEAN NOT NULL DEFAULT true,
	remove_on_fail     BOOLEAN NOT NULL DEFAULT false,
	amount_units       NUMERIC(78,0),
	last_error         TEXT,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_jobs_topic_status_run_after ON jobs (topic, status, run_after, created_at);
CREATE INDEX IF NOT EXISTS idx_jobs_pending_withdrawal ON jobs (status) WHERE id LIKE 'pending-withdrawal-%';
`
