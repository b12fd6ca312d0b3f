package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// schema is applied idempotently at startup. The unique index on
// (external_id, account_id) backs the reconciliation identity, and the
// account foreign key cascades event deletion with the owning account.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		provider       TEXT NOT NULL,
		account_name   TEXT NOT NULL,
		feed_url       TEXT NOT NULL,
		last_synced_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id                   INTEGER PRIMARY KEY AUTOINCREMENT,
		external_id          TEXT NOT NULL,
		account_id           INTEGER NOT NULL,
		title                TEXT NOT NULL,
		description          TEXT,
		start_time           TIMESTAMP NOT NULL,
		end_time             TIMESTAMP NOT NULL,
		video_link           TEXT,
		video_platform       TEXT,
		snooze_count         INTEGER NOT NULL DEFAULT 0,
		has_alerted          INTEGER NOT NULL DEFAULT 0,
		last_alert_threshold INTEGER,
		is_dismissed         INTEGER NOT NULL DEFAULT 0,
		created_at           TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at           TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (account_id) REFERENCES accounts (id) ON DELETE CASCADE
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_events_external_account
		ON events (external_id, account_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_start_time ON events (start_time)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, database *sql.DB) error {
	for _, stmt := range schema {
		if _, err := database.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	slog.Info("database schema ready", slog.Int("statements", len(schema)))
	return nil
}
