package shared

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// defaultIdempotencyTTL bounds how long a processed key blocks replays.
const defaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore persists processed keys. Keys are unique per module, so
// two modules can use the same reference string without colliding.
type IdempotencyStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewIdempotencyStore constructs the store. A non-positive ttl falls back
// to the default retention.
func NewIdempotencyStore(pool *pgxpool.Pool, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{pool: pool, ttl: ttl}
}

// ErrIdempotencyConflict indicates a duplicate key.
var ErrIdempotencyConflict = errors.New("idempotent request already processed")

// CheckAndInsert claims the key for the module. A unique violation on
// (module, key) means the request was already processed.
func (s *IdempotencyStore) CheckAndInsert(ctx context.Context, module, key string) error {
	if s == nil {
		return errors.New("idempotency store not initialised")
	}
	if module == "" || key == "" {
		return errors.New("idempotency module and key required")
	}
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx, `INSERT INTO idempotency_keys (module, key, created_at, expires_at) VALUES ($1, $2, $3, $4)`,
		module, key, now, now.Add(s.ttl))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrIdempotencyConflict
		}
		return err
	}
	return nil
}

// Cleanup removes expired keys.
func (s *IdempotencyStore) Cleanup(ctx context.Context) error {
	if s == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE expires_at < NOW()`)
	return err
}

// Delete releases a claimed key, typically after the guarded operation
// failed and should be retryable.
func (s *IdempotencyStore) Delete(ctx context.Context, module, key string) error {
	if s == nil {
		return nil
	}
	if module == "" || key == "" {
		return errors.New("idempotency module and key required")
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE module=$1 AND key=$2`, module, key)
	return err
}
