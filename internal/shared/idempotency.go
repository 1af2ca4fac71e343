package shared

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrIdempotencyReplay signals that a key was already used for this scope.
var ErrIdempotencyReplay = errors.New("idempotency key already used")

// IdempotencyStore guards mutating endpoints against duplicate submissions.
type IdempotencyStore struct {
	pool *pgxpool.Pool
}

// NewIdempotencyStore constructs an IdempotencyStore.
func NewIdempotencyStore(pool *pgxpool.Pool) *IdempotencyStore {
	return &IdempotencyStore{pool: pool}
}

// Claim registers the key for the given scope. Returns ErrIdempotencyReplay
// when the key was seen before, along with the entity recorded on first use.
func (s *IdempotencyStore) Claim(ctx context.Context, scope, key, entityID string) (string, error) {
	const insert = `
		INSERT INTO idempotency_keys (scope, key, entity_id)
		VALUES ($1, $2, $3)`

	if _, err := s.pool.Exec(ctx, insert, scope, key, entityID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			existing, lookupErr := s.lookup(ctx, scope, key)
			if lookupErr != nil {
				return "", fmt.Errorf("shared: lookup idempotency key: %w", lookupErr)
			}
			return existing, ErrIdempotencyReplay
		}
		return "", fmt.Errorf("shared: claim idempotency key: %w", err)
	}
	return entityID, nil
}

// Release removes a claimed key so the operation can be retried,
// typically after the guarded write failed.
func (s *IdempotencyStore) Release(ctx context.Context, scope, key string) error {
	const del = `DELETE FROM idempotency_keys WHERE scope = $1 AND key = $2`

	if _, err := s.pool.Exec(ctx, del, scope, key); err != nil {
		return fmt.Errorf("shared: release idempotency key: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) lookup(ctx context.Context, scope, key string) (string, error) {
	const query = `SELECT entity_id FROM idempotency_keys WHERE scope = $1 AND key = $2`

	var entityID string
	err := s.pool.QueryRow(ctx, query, scope, key).Scan(&entityID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return entityID, err
}
