// Package db provides PostgreSQL storage for coverage runs and their reports.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaDDL creates the tables the store needs. It is idempotent.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS coverage_runs (
	id            UUID PRIMARY KEY,
	label         TEXT NOT NULL DEFAULT '',
	source        TEXT NOT NULL DEFAULT 'cli',
	threshold     DOUBLE PRECISION NOT NULL,
	total_topics  INTEGER NOT NULL,
	total_matched INTEGER NOT NULL,
	overall_pct   DOUBLE PRECISION NOT NULL,
	report        JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS coverage_runs_created_at_idx ON coverage_runs (created_at DESC);
`

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the coverage_runs table if it does not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
