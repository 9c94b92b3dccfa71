package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/chainsafe/wpaw-bridge/internal/metrics"
	"github.com/chainsafe/wpaw-bridge/pkg/apperrors"
	"github.com/chainsafe/wpaw-bridge/pkg/money"
)

const (
	statusWaiting   = "waiting"
	statusDelayed   = "delayed"
	statusActive    = "active"
	statusCompleted = "completed"
	statusFailed    = "failed"

	completedRetention = 100000
	pollInterval       = 500 * time.Millisecond
)

// Store is the Postgres-backed Queue implementation: one goroutine per
// registered topic polls for its next claimable job, runs it under the
// topic's timeout, and reschedules or terminates it based on the result.
type Store struct {
	db     *sql.DB
	logger *zap.Logger

	mu          sync.Mutex
	processors  map[string]ProcessorFunc
	onCompleted func(Job)
	onFailed    func(Job, error)

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewStore opens the queue's Postgres connection and applies its schema.
func NewStore(connString string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("open queue store: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping queue store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("apply queue schema: %w", err)
	}
	return &Store{
		db:         db,
		logger:     logger,
		processors: make(map[string]ProcessorFunc),
		stopCh:     make(chan struct{}),
	}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) RegisterProcessor(topic string, fn ProcessorFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processors[topic] = fn
}

func (s *Store) AddJobListener(onCompleted func(Job), onFailed func(Job, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCompleted = onCompleted
	s.onFailed = onFailed
}

// Start launches one FIFO worker goroutine per registered topic.
func (s *Store) Start(ctx context.Context) {
	s.mu.Lock()
	topics := make([]string, 0, len(s.processors))
	for topic := range s.processors {
		topics = append(topics, topic)
	}
	s.mu.Unlock()

	for _, topic := range topics {
		s.wg.Add(1)
		go s.runWorker(ctx, topic)
	}
}

// Stop signals every worker to drain and blocks until they exit. In-flight
// jobs finish or hit their timeout before the worker loop returns.
func (s *Store) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *Store) runWorker(ctx context.Context, topic string) {
	defer s.wg.Done()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			for s.processOne(ctx, topic) {
				// drain the backlog before waiting for the next tick
				select {
				case <-ctx.Done():
					return
				case <-s.stopCh:
					return
				default:
				}
			}
		}
	}
}

// processOne claims and runs at most one job for topic. It returns true if
// a job was claimed (whether or not it ran to success), so the caller can
// keep draining the backlog without waiting for the poll tick.
func (s *Store) processOne(ctx context.Context, topic string) bool {
	s.mu.Lock()
	fn := s.processors[topic]
	s.mu.Unlock()
	if fn == nil {
		return false
	}

	job, maxAttempts, removeOnComplete, removeOnFail, ok := s.claimNext(ctx, topic)
	if !ok {
		return false
	}

	jobCtx, cancel := context.WithTimeout(ctx, DefaultPolicy().Timeout)
	start := time.Now()
	err := fn(jobCtx, job)
	metrics.TransferDuration.WithLabelValues(topic).Observe(time.Since(start).Seconds())
	cancel()

	if err == nil {
		s.completeJob(ctx, job, removeOnComplete)
		s.mu.Lock()
		onCompleted := s.onCompleted
		s.mu.Unlock()
		if onCompleted != nil {
			onCompleted(job)
		}
		return true
	}

	s.failJob(ctx, job, maxAttempts, removeOnFail, err)
	s.mu.Lock()
	onFailed := s.onFailed
	s.mu.Unlock()
	if onFailed != nil {
		onFailed(job, err)
	}
	return true
}

func (s *Store) claimNext(ctx context.Context, topic string) (job Job, maxAttempts int, removeOnComplete, removeOnFail bool, ok bool) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logErr("begin claim tx", err)
		return Job{}, 0, false, false, false
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT id, payload, attempts, max_attempts, remove_on_complete, remove_on_fail
		FROM jobs
		WHERE topic = $1 AND status IN ('waiting', 'delayed') AND run_after <= now()
		ORDER BY created_at
		LIMIT 1
		FOR UPDATE SKIP LOCKED`, topic)

	var id string
	var payload []byte
	var attempts int
	if err := row.Scan(&id, &payload, &attempts, &maxAttempts, &removeOnComplete, &removeOnFail); err != nil {
		if err != sql.ErrNoRows {
			s.logErr("claim next job", err)
		}
		return Job{}, 0, false, false, false
	}

	if _, err := tx.ExecContext(ctx, "UPDATE jobs SET status = 'active', updated_at = now() WHERE id = $1", id); err != nil {
		s.logErr("mark job active", err)
		return Job{}, 0, false, false, false
	}

	if err := tx.Commit(); err != nil {
		s.logErr("commit claim", err)
		return Job{}, 0, false, false, false
	}

	return Job{ID: id, Topic: topic, Payload: payload, Attempt: attempts}, maxAttempts, removeOnComplete, removeOnFail, true
}

func (s *Store) completeJob(ctx context.Context, job Job, removeOnComplete bool) {
	if removeOnComplete {
		if _, err := s.db.ExecContext(ctx,
			"UPDATE jobs SET status = 'completed', updated_at = now() WHERE id = $1", job.ID); err != nil {
			s.logErr("mark job completed", err)
		}
		s.pruneCompleted(ctx, job.Topic)
		return
	}
	if _, err := s.db.ExecContext(ctx,
		"UPDATE jobs SET status = 'completed', updated_at = now() WHERE id = $1", job.ID); err != nil {
		s.logErr("mark job completed", err)
	}
}

// pruneCompleted deletes completed jobs beyond the retention window,
// oldest first.
func (s *Store) pruneCompleted(ctx context.Context, topic string) {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM jobs WHERE id IN (
			SELECT id FROM jobs
			WHERE topic = $1 AND status = 'completed'
			ORDER BY updated_at DESC
			OFFSET $2
		)`, topic, completedRetention)
	if err != nil {
		s.logErr("prune completed jobs", err)
	}
}

func (s *Store) failJob(ctx context.Context, job Job, maxAttempts int, removeOnFail bool, cause error) {
	attempts := job.Attempt + 1

	// Non-retryable categories (bad signatures, stale claims, pending
	// liquidity replaced by a delayed retry, ...) go straight to terminal
	// status; only contention/RPC-flake categories burn through the
	// topic's backoff schedule.
	if attempts < maxAttempts && apperrors.IsRetryable(cause) {
		backoff := DefaultPolicy().BackoffBase * time.Duration(1<<uint(attempts-1))
		_, err := s.db.ExecContext(ctx, `
			UPDATE jobs SET status = 'delayed', attempts = $1, run_after = $2, last_error = $3, updated_at = now()
			WHERE id = $4`, attempts, time.Now().Add(backoff), cause.Error(), job.ID)
		if err != nil {
			s.logErr("reschedule failed job", err)
		}
		return
	}

	if removeOnFail {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM jobs WHERE id = $1", job.ID); err != nil {
			s.logErr("remove terminally failed job", err)
		}
		return
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET status = 'failed', attempts = $1, last_error = $2, updated_at = now() WHERE id = $3`,
		attempts, cause.Error(), job.ID); err != nil {
		s.logErr("mark job failed", err)
	}
}

// Enqueue schedules topic/id with the default policy. A duplicate id is a
// silent no-op, giving natural-id dedup at the queue boundary.
func (s *Store) Enqueue(ctx context.Context, topic, id string, payload interface{}, amount money.Units) error {
	return s.enqueue(ctx, topic, id, payload, amount, 0, DefaultPolicy())
}

func (s *Store) enqueue(ctx context.Context, topic, id string, payload interface{}, amount money.Units, delay time.Duration, policy Policy) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.ExternalFailureError(err, "marshal job payload")
	}

	status := statusWaiting
	if delay > 0 {
		status = statusDelayed
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, topic, payload, status, max_attempts, run_after, remove_on_complete, remove_on_fail, amount_units)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`,
		id, topic, body, status, policy.MaxAttempts, time.Now().Add(delay), policy.RemoveOnComplete, policy.RemoveOnFail, amount.String())
	if err != nil {
		return apperrors.ExternalFailureError(err, "enqueue job")
	}
	return nil
}

// EnqueuePendingWithdrawal schedules the delayed retry for a withdrawal
// short on hot liquidity: id carries the new attempt number, delay is
// attempt*60s, and the job is removed (not left "failed") once it exhausts
// its own attempts.
func (s *Store) EnqueuePendingWithdrawal(ctx context.Context, native string, tsMillis int64, attempt int, amount money.Units, payload interface{}) error {
	n := attempt + 1
	id := fmt.Sprintf("%s%s-%d-attempt-%d", pendingWithdrawalPrefix, native, tsMillis, n)
	delay := time.Duration(n) * 60 * time.Second

	policy := DefaultPolicy()
	policy.RemoveOnFail = true

	return s.enqueue(ctx, TopicWithdrawal, id, payload, amount, delay, policy)
}

// GetPendingWithdrawalsAmount sums the amount of every waiting or delayed
// job whose id carries the pending-withdrawal prefix.
func (s *Store) GetPendingWithdrawalsAmount(ctx context.Context) (money.Units, error) {
	var total sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_units), 0) FROM jobs
		WHERE status IN ('waiting', 'delayed') AND id LIKE $1`,
		pendingWithdrawalPrefix+"%").Scan(&total)
	if err != nil {
		return money.Zero(), apperrors.ExternalFailureError(err, "sum pending withdrawals")
	}
	if !total.Valid {
		return money.Zero(), nil
	}
	return money.ParseUnitsOrZero(total.String), nil
}

func (s *Store) logErr(msg string, err error) {
	if s.logger != nil {
		s.logger.Error(msg, zap.Error(err))
	}
}

var _ Queue = (*Store)(nil)
