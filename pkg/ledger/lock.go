package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/wpaw-bridge/pkg/apperrors"
)

const (
	lockMaxAttempts = 10
	lockBaseDelay   = 200 * time.Millisecond
	lockJitter      = 200 * time.Millisecond
)

// withNamedLock runs fn inside a transaction holding the Postgres advisory
// lock for key. The lock is transaction-scoped (pg_try_advisory_xact_lock)
// so it releases automatically on commit or rollback, bounding its lifetime
// to the critical section rather than a wall-clock TTL. Acquisition is
// attempted up to lockMaxAttempts times with 200ms +/- 200ms jitter between
// tries; exhausting all attempts surfaces a retryable contention error.
func (s *Store) withNamedLock(ctx context.Context, key string, fn func(tx *sql.Tx) error) error {
	var lastErr error
	for attempt := 0; attempt < lockMaxAttempts; attempt++ {
		if attempt > 0 {
			jitter := time.Duration(rand.Int63n(int64(2 * lockJitter)))
			select {
			case <-time.After(lockBaseDelay - lockJitter + jitter):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return apperrors.ExternalFailureError(err, "begin transaction")
		}

		var acquired bool
		if err := tx.QueryRowContext(ctx, "SELECT pg_try_advisory_xact_lock(hashtextextended($1, 0))", key).Scan(&acquired); err != nil {
			_ = tx.Rollback()
			return apperrors.ExternalFailureError(err, "advisory lock query")
		}

		if !acquired {
			_ = tx.Rollback()
			lastErr = fmt.Errorf("lock %q held by another worker", key)
			continue
		}

		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}

		if err := tx.Commit(); err != nil {
			return apperrors.ExternalFailureError(err, "commit transaction")
		}
		return nil
	}

	if s.logger != nil {
		s.logger.Warn("lock contention exhausted", zap.String("key", key), zap.Error(lastErr))
	}
	return apperrors.ContentionTimeoutError(key)
}
