package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "users",
		sql: `CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name TEXT NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			default_response TEXT CHECK (default_response IN ('yes','no')),
			notification_preference TEXT NOT NULL DEFAULT 'none',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	},
	{
		version: 2,
		name:    "daily_lunch",
		sql: `CREATE TABLE IF NOT EXISTS daily_lunch (
			date TEXT PRIMARY KEY,
			available BOOLEAN NOT NULL DEFAULT TRUE,
			unavailable_reason TEXT,
			cutoff_time TEXT NOT NULL,
			allow_late_responses BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	},
	{
		version: 3,
		name:    "responses",
		sql: `CREATE TABLE IF NOT EXISTS responses (
			user_id UUID NOT NULL,
			date TEXT NOT NULL,
			user_name TEXT NOT NULL DEFAULT '',
			response TEXT NOT NULL CHECK (response IN ('yes','no')),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (user_id, date)
		)`,
	},
	{
		version: 4,
		name:    "responses_date_idx",
		sql:     `CREATE INDEX IF NOT EXISTS responses_date_idx ON responses (date)`,
	},
	{
		version: 5,
		name:    "refresh_tokens",
		sql: `CREATE TABLE IF NOT EXISTS refresh_tokens (
			id TEXT PRIMARY KEY,
			user_id UUID NOT NULL,
			token_hash TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			revoked_at TIMESTAMPTZ,
			replaced_by TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
	},
	{
		version: 6,
		name:    "cutoff_runs",
		sql: `CREATE TABLE IF NOT EXISTS cutoff_runs (
			id UUID PRIMARY KEY,
			date TEXT NOT NULL,
			status TEXT NOT NULL,
			processed INT NOT NULL DEFAULT 0,
			total INT NOT NULL DEFAULT 0,
			triggered_by TEXT NOT NULL DEFAULT 'http',
			last_error TEXT,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	},
	{
		version: 7,
		name:    "cutoff_runs_date_idx",
		sql:     `CREATE INDEX IF NOT EXISTS cutoff_runs_date_idx ON cutoff_runs (date, updated_at DESC)`,
	},
}

// Migrate applies pending schema migrations in order. Safe to run on every
// startup; applied versions are tracked in schema_migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)

	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var exists bool

		err = pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, m.version).Scan(&exists)

		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.version, err)
		}

		if exists {
			continue
		}

		_, err = pool.Exec(ctx, m.sql)

		if err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
		}

		_, err = pool.Exec(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.version, m.name)

		if err != nil {
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
	}

	return nil
}
