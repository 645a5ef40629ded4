// Package db persists run summaries and late submissions to PostgreSQL.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

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

	// Verify connection
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

var schema = []string{
	`CREATE TABLE IF NOT EXISTS subfix_runs (
		id          UUID PRIMARY KEY,
		platform    TEXT NOT NULL,
		bulk        TEXT NOT NULL,
		destination TEXT NOT NULL,
		due         TIMESTAMPTZ,
		entries     INTEGER NOT NULL,
		selected    INTEGER NOT NULL,
		students    INTEGER NOT NULL,
		warnings    JSONB NOT NULL DEFAULT '[]',
		started_at  TIMESTAMPTZ NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS subfix_late_submissions (
		run_id       UUID NOT NULL REFERENCES subfix_runs(id) ON DELETE CASCADE,
		position     INTEGER NOT NULL,
		student      TEXT NOT NULL,
		submitted_at TIMESTAMPTZ NOT NULL,
		local_time   TEXT NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
}

// EnsureSchema creates the tables SaveRun writes to if they are missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
