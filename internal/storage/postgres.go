package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/smart-assistant/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresBackend keeps values in a shared Postgres table, for gateways
// running on more than one host
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend creates the connection pool and the kv table
func NewPostgresBackend(ctx context.Context, cfg config.PostgresConfig) (*PostgresBackend, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &PostgresBackend{pool: pool}, nil
}

func (b *PostgresBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := b.pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key: %w", err)
	}
	return value, true, nil
}

func (b *PostgresBackend) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := b.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Remove(ctx context.Context, key string) error {
	if _, err := b.pool.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to remove key: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (b *PostgresBackend) Close() error {
	if b.pool != nil {
		b.pool.Close()
	}
	return nil
}
