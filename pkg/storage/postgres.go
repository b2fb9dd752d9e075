package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS roadmap_state (
    key        TEXT PRIMARY KEY,
    data       JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// PostgresBackend stores values in the roadmap_state table.
type PostgresBackend struct {
	db *pgxpool.Pool
}

// NewPostgres connects to PostgreSQL at url and creates the schema.
func NewPostgres(ctx context.Context, url string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	b := NewPostgresFromPool(pool)
	if err := b.CreateSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return b, nil
}

// NewPostgresFromPool wraps an existing pool. The caller is responsible for
// creating the schema.
func NewPostgresFromPool(pool *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{db: pool}
}

// CreateSchema creates the roadmap_state table if it doesn't exist.
func (b *PostgresBackend) CreateSchema(ctx context.Context) error {
	_, err := b.db.Exec(ctx, schemaSQL)
	return err
}

// Get selects the row for key.
func (b *PostgresBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := b.db.QueryRow(ctx,
		`SELECT data FROM roadmap_state WHERE key = $1`, key,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("roadmap: get state: %w", err)
	}
	return data, true, nil
}

// Set upserts the row for key.
func (b *PostgresBackend) Set(ctx context.Context, key string, data []byte) error {
	return retry(ctx, func() error {
		_, err := b.db.Exec(ctx,
			`INSERT INTO roadmap_state (key, data, updated_at) VALUES ($1, $2::jsonb, NOW())
			 ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
			key, string(data),
		)
		if err != nil {
			return classify(fmt.Errorf("roadmap: set state: %w", err))
		}
		return nil
	})
}

// Delete removes the row for key.
func (b *PostgresBackend) Delete(ctx context.Context, key string) error {
	_, err := b.db.Exec(ctx, `DELETE FROM roadmap_state WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("roadmap: delete state: %w", err)
	}
	return nil
}

// Close closes the pool.
func (b *PostgresBackend) Close() error {
	b.db.Close()
	return nil
}

// Driver returns "postgres".
func (b *PostgresBackend) Driver() string { return "postgres" }

// Ensure PostgresBackend implements Backend.
var _ Backend = (*PostgresBackend)(nil)
