package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"

	"openchime/internal/domain/entity"
	"openchime/internal/infra/db"
	"openchime/internal/repository"
)

// SettingsRepo implements the SettingsRepository interface using SQLite.
// Settings live in a flat key-value table; the projection applies a
// per-key default when a value is missing or unparsable.
type SettingsRepo struct{ db *sql.DB }

// NewSettingsRepo creates a new SQLite-backed settings repository.
func NewSettingsRepo(database *sql.DB) repository.SettingsRepository {
	return &SettingsRepo{db: database}
}

func (repo *SettingsRepo) Get(ctx context.Context) (entity.Settings, error) {
	settings := entity.DefaultSettings()

	rows, err := repo.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return settings, fmt.Errorf("Get: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, fmt.Errorf("Get: Scan: %w", err)
		}
		applySetting(&settings, key, value)
	}
	if err := rows.Err(); err != nil {
		return settings, fmt.Errorf("Get: rows.Err: %w", err)
	}
	return settings, nil
}

func applySetting(s *entity.Settings, key, value string) {
	defaults := entity.DefaultSettings()
	switch key {
	case "volume":
		s.Volume = parseFloat(key, value, defaults.Volume)
	case "alert_30m":
		s.Alert30m = parseBool(key, value, defaults.Alert30m)
	case "alert_10m":
		s.Alert10m = parseBool(key, value, defaults.Alert10m)
	case "alert_5m":
		s.Alert5m = parseBool(key, value, defaults.Alert5m)
	case "alert_1m":
		s.Alert1m = parseBool(key, value, defaults.Alert1m)
	case "alert_default":
		s.AlertDefault = parseBool(key, value, defaults.AlertDefault)
	default:
		// Unknown keys are preserved in the table but ignored here.
	}
}

func parseBool(key, value string, fallback bool) bool {
	v, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("unparsable setting, using default",
			slog.String("key", key), slog.String("value", value))
		return fallback
	}
	return v
}

func parseFloat(key, value string, fallback float64) float64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.Warn("unparsable setting, using default",
			slog.String("key", key), slog.String("value", value))
		return fallback
	}
	return v
}

func (repo *SettingsRepo) Update(ctx context.Context, settings entity.Settings) error {
	const query = `
INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value
`
	pairs := []struct {
		key   string
		value string
	}{
		{"volume", strconv.FormatFloat(settings.Volume, 'f', -1, 64)},
		{"alert_30m", strconv.FormatBool(settings.Alert30m)},
		{"alert_10m", strconv.FormatBool(settings.Alert10m)},
		{"alert_5m", strconv.FormatBool(settings.Alert5m)},
		{"alert_1m", strconv.FormatBool(settings.Alert1m)},
		{"alert_default", strconv.FormatBool(settings.AlertDefault)},
	}

	return db.WithBusyRetry(ctx, func() error {
		for _, p := range pairs {
			if _, err := repo.db.ExecContext(ctx, query, p.key, p.value); err != nil {
				return fmt.Errorf("Update: %s: %w", p.key, err)
			}
		}
		return nil
	})
}
