package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"enterprise-portal/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	row := s.pool.QueryRow(ctx, `
		SELECT value
		FROM portal_kv
		WHERE key = $1
	`, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, wrapError("get", key, err)
	}
	return value, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO portal_kv (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value)
	if err != nil {
		return wrapError("put", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM portal_kv
		WHERE key = $1
	`, key)
	if err != nil {
		return wrapError("delete", key, err)
	}
	return nil
}

// Prune deletes keys starting with prefix whose last write is older than
// before.
func (s *Store) Prune(ctx context.Context, prefix string, before time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM portal_kv
		WHERE left(key, char_length($1)) = $1
		  AND updated_at < $2
	`, prefix, before)
	if err != nil {
		return 0, wrapError("prune", prefix, err)
	}
	return int(tag.RowsAffected()), nil
}

// Connection-level failures are reported as store.ErrUnavailable so callers
// can fall back instead of failing the request.
func wrapError(op, key string, err error) error {
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return fmt.Errorf("postgres %s %s: %w: %v", op, key, store.ErrUnavailable, err)
	}
	return fmt.Errorf("postgres %s %s: %w", op, key, err)
}
