package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the key-value schema in a single kv_entries table:
//
//	CREATE TABLE kv_entries (
//	    key        TEXT PRIMARY KEY,
//	    value      BYTEA NOT NULL,
//	    expires_at TIMESTAMPTZ
//	);
//
// Expiry is lazy: reads filter out expired rows, writes replace them.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_entries
	          WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())`

	var value []byte
	err := s.pool.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	query := `INSERT INTO kv_entries (key, value, expires_at)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (key) DO UPDATE SET value = $2, expires_at = $3`

	_, err := s.pool.Exec(ctx, query, key, value, expiresAt(ttl))
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) PutIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	// An expired row still occupies the key, so claim it too.
	query := `INSERT INTO kv_entries (key, value, expires_at)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (key) DO UPDATE SET value = $2, expires_at = $3
	          WHERE kv_entries.expires_at IS NOT NULL AND kv_entries.expires_at <= NOW()`

	result, err := s.pool.Exec(ctx, query, key, value, expiresAt(ttl))
	if err != nil {
		return false, fmt.Errorf("failed to conditionally put %s: %w", key, err)
	}
	return result.RowsAffected() > 0, nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func expiresAt(ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}
	t := time.Now().Add(ttl)
	return &t
}
