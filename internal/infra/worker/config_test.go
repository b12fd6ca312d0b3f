package worker

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 30*time.Second, cfg.TickInterval)
	assert.Equal(t, "*/5 * * * *", cfg.SyncSchedule)
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickInterval = time.Second
	cfg.SyncSchedule = "not a cron expression"
	cfg.Timezone = "Mars/Olympus_Mons"
	cfg.DBPath = ""
	cfg.HealthPort = 80

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tick interval")
	assert.Contains(t, err.Error(), "sync schedule")
	assert.Contains(t, err.Error(), "timezone")
	assert.Contains(t, err.Error(), "db path")
	assert.Contains(t, err.Error(), "health port")
}

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadConfigFromEnv(slog.Default(), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestLoadConfigFromEnv_ValidOverrides(t *testing.T) {
	t.Setenv("OPENCHIME_TICK_INTERVAL", "15s")
	t.Setenv("OPENCHIME_SYNC_SCHEDULE", "*/10 * * * *")
	t.Setenv("OPENCHIME_DB_PATH", "/var/lib/openchime/events.db")
	t.Setenv("OPENCHIME_HEALTH_PORT", "9191")

	cfg, err := LoadConfigFromEnv(slog.Default(), nil)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.TickInterval)
	assert.Equal(t, "*/10 * * * *", cfg.SyncSchedule)
	assert.Equal(t, "/var/lib/openchime/events.db", cfg.DBPath)
	assert.Equal(t, 9191, cfg.HealthPort)
}

func TestLoadConfigFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("OPENCHIME_TICK_INTERVAL", "2ms")
	t.Setenv("OPENCHIME_SYNC_SCHEDULE", "every so often")
	t.Setenv("OPENCHIME_TIMEZONE", "Mars/Olympus_Mons")
	t.Setenv("OPENCHIME_HEALTH_PORT", "80")

	cfg, err := LoadConfigFromEnv(slog.Default(), nil)
	require.NoError(t, err, "loading is fail-open and never errors")

	defaults := DefaultConfig()
	assert.Equal(t, defaults.TickInterval, cfg.TickInterval)
	assert.Equal(t, defaults.SyncSchedule, cfg.SyncSchedule)
	assert.Equal(t, defaults.Timezone, cfg.Timezone)
	assert.Equal(t, defaults.HealthPort, cfg.HealthPort)
}

func TestConfig_Location(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = "UTC"

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}
