// Package db manages the embedded SQLite database used for local state.
// It configures a small connection pool suitable for a single-writer
// store with concurrent readers.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	BusyTimeout     time.Duration
	ConnMaxLifetime time.Duration
}

// DefaultConnectionConfig returns the default connection pool configuration.
// The pool is intentionally small: SQLite allows one writer at a time, so
// extra connections only add lock contention.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    5,
		BusyTimeout:     5 * time.Second,
		ConnMaxLifetime: 1 * time.Hour,
	}
}

// Open opens the SQLite database at path and applies connection and
// journaling settings. WAL mode lets foreground readers and the background
// writer (scheduler, reconciler) proceed without starving each other.
func Open(path string, cfg ConnectionConfig) (*sql.DB, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	database.SetMaxOpenConns(cfg.MaxOpenConns)
	database.SetMaxIdleConns(cfg.MaxOpenConns)
	database.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()),
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := database.Exec(pragma); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.PingContext(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	slog.Info("database opened",
		slog.String("path", path),
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Duration("busy_timeout", cfg.BusyTimeout))

	return database, nil
}

// IsBusy reports whether err is a transient SQLite lock contention error
// that a caller may retry. This is the storage-layer counterpart of the
// network retry policy and is deliberately kept separate from it.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "sqlite_busy")
}

// WithBusyRetry runs fn, retrying a few times with a short fixed delay
// when SQLite reports lock contention. Non-busy errors return immediately.
func WithBusyRetry(ctx context.Context, fn func() error) error {
	const attempts = 3
	const delay = 100 * time.Millisecond

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil || !IsBusy(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}
		slog.Debug("database busy, retrying",
			slog.Int("attempt", attempt),
			slog.Any("error", lastErr))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("busy retry aborted: %w", ctx.Err())
		}
	}
	return fmt.Errorf("database still busy after %d attempts: %w", attempts, lastErr)
}
