package db

import (
	"context"
	"errors"
	"time"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// IdempotencyStore persists claimed request keys in idempotency_keys. It backs
// the HTTP idempotency guard when redis is not available.
type IdempotencyStore struct {
	q Querier
}

// NewIdempotencyStore constructs the store.
func NewIdempotencyStore(q Querier) *IdempotencyStore {
	return &IdempotencyStore{q: q}
}

// Claim records key for scope. A key claimed before yields a DuplicateKeyError.
func (s *IdempotencyStore) Claim(ctx context.Context, scope, key string) error {
	if s == nil || s.q == nil {
		return errors.New("idempotency store not initialised")
	}
	if key == "" {
		return errors.New("idempotency key required")
	}
	_, err := s.q.Exec(ctx, `INSERT INTO idempotency_keys (scope, key) VALUES ($1, $2)`, scope, key)
	if _, dup := UniqueViolation(err); dup {
		return shared.DuplicateKey("idempotency key", key)
	}
	return err
}

// Release removes a key so a failed request can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, scope, key string) error {
	if s == nil || s.q == nil || key == "" {
		return nil
	}
	_, err := s.q.Exec(ctx, `DELETE FROM idempotency_keys WHERE scope=$1 AND key=$2`, scope, key)
	return err
}

// Cleanup removes keys claimed before now minus olderThan.
func (s *IdempotencyStore) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if s == nil || s.q == nil {
		return nil
	}
	_, err := s.q.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at < $1`, time.Now().Add(-olderThan))
	return err
}
