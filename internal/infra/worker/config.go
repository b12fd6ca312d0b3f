// Package worker runs the monitor daemon: the 30-second alert
// evaluation tick, the cron-scheduled calendar resync, and the health
// and metrics endpoints around them.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"openchime/internal/pkg/config"
)

// Config controls the monitor daemon. Every field has a safe default;
// loading from the environment is fail-open, so a bad value degrades to
// the default with a warning instead of refusing to start.
type Config struct {
	// TickInterval is the alert evaluation cadence. The 5-minute grace
	// window assumes ticks run much more often than once a minute.
	TickInterval time.Duration

	// SyncSchedule is the cron expression for calendar resync.
	SyncSchedule string

	// Timezone resolves floating and all-day feed times. "Local" uses
	// the host zone.
	Timezone string

	// SyncTimeout bounds a single sync cycle across all accounts.
	SyncTimeout time.Duration

	// NotifyMaxConcurrent bounds in-flight notification deliveries.
	NotifyMaxConcurrent int

	// DBPath is the SQLite database file.
	DBPath string

	// SeedFile is an optional YAML file with accounts and alert
	// preferences applied at startup. Empty disables seeding.
	SeedFile string

	// SoundsDir holds the alert sound files.
	SoundsDir string

	// AudioPlayer overrides the player binary; empty selects the
	// platform default.
	AudioPlayer string

	// WebhookURL receives alert and sync notifications as a
	// Discord-compatible incoming webhook. Empty disables the channel.
	WebhookURL string

	// HealthPort serves the liveness and readiness probes.
	HealthPort int

	// MetricsPort serves the Prometheus scrape endpoint.
	MetricsPort int
}

// DefaultConfig returns production defaults: a 30-second tick, resync
// every 5 minutes, and host-local time for floating feed values.
func DefaultConfig() Config {
	return Config{
		TickInterval:        30 * time.Second,
		SyncSchedule:        "*/5 * * * *",
		Timezone:            "Local",
		SyncTimeout:         2 * time.Minute,
		NotifyMaxConcurrent: 4,
		DBPath:              "openchime.db",
		SoundsDir:           "sounds",
		HealthPort:          9091,
		MetricsPort:         9090,
	}
}

// Validate checks every field, collecting all failures.
func (c *Config) Validate() error {
	var errs []error

	if err := config.ValidateDuration(c.TickInterval, 5*time.Second, 5*time.Minute); err != nil {
		errs = append(errs, fmt.Errorf("tick interval: %w", err))
	}
	if err := config.ValidateCronSchedule(c.SyncSchedule); err != nil {
		errs = append(errs, fmt.Errorf("sync schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.SyncTimeout); err != nil {
		errs = append(errs, fmt.Errorf("sync timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.NotifyMaxConcurrent, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("notify max concurrent: %w", err))
	}
	if c.DBPath == "" {
		errs = append(errs, fmt.Errorf("db path: cannot be empty"))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// LoadConfigFromEnv loads the monitor configuration from environment
// variables, falling back to defaults on any invalid value. metrics may
// be nil to skip fallback accounting. The returned config is always
// valid and the error is always nil.
func LoadConfigFromEnv(logger *slog.Logger, metrics *config.ConfigMetrics) (*Config, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	apply := func(field string, result config.ConfigLoadResult) config.ConfigLoadResult {
		if result.FallbackApplied {
			fallbackApplied = true
			if metrics != nil {
				metrics.RecordValidationError(field)
				metrics.RecordFallback(field)
			}
			for _, warning := range result.Warnings {
				logger.Warn("configuration fallback applied",
					slog.String("field", field),
					slog.String("warning", warning))
			}
		}
		return result
	}

	cfg.TickInterval = apply("tick_interval",
		config.LoadEnvDuration("OPENCHIME_TICK_INTERVAL", cfg.TickInterval, func(d time.Duration) error {
			return config.ValidateDuration(d, 5*time.Second, 5*time.Minute)
		})).Value.(time.Duration)

	cfg.SyncSchedule = apply("sync_schedule",
		config.LoadEnvWithFallback("OPENCHIME_SYNC_SCHEDULE", cfg.SyncSchedule, config.ValidateCronSchedule)).Value.(string)

	cfg.Timezone = apply("timezone",
		config.LoadEnvWithFallback("OPENCHIME_TIMEZONE", cfg.Timezone, config.ValidateTimezone)).Value.(string)

	cfg.SyncTimeout = apply("sync_timeout",
		config.LoadEnvDuration("OPENCHIME_SYNC_TIMEOUT", cfg.SyncTimeout, func(d time.Duration) error {
			return config.ValidateDuration(d, 10*time.Second, 30*time.Minute)
		})).Value.(time.Duration)

	cfg.NotifyMaxConcurrent = apply("notify_max_concurrent",
		config.LoadEnvInt("OPENCHIME_NOTIFY_MAX_CONCURRENT", cfg.NotifyMaxConcurrent, func(v int) error {
			return config.ValidateIntRange(v, 1, 50)
		})).Value.(int)

	cfg.DBPath = config.LoadEnvString("OPENCHIME_DB_PATH", cfg.DBPath)
	cfg.SeedFile = config.LoadEnvString("OPENCHIME_SEED_FILE", cfg.SeedFile)
	cfg.SoundsDir = config.LoadEnvString("OPENCHIME_SOUNDS_DIR", cfg.SoundsDir)
	cfg.AudioPlayer = config.LoadEnvString("OPENCHIME_AUDIO_PLAYER", cfg.AudioPlayer)
	cfg.WebhookURL = config.LoadEnvString("OPENCHIME_WEBHOOK_URL", cfg.WebhookURL)

	cfg.HealthPort = apply("health_port",
		config.LoadEnvInt("OPENCHIME_HEALTH_PORT", cfg.HealthPort, func(v int) error {
			return config.ValidateIntRange(v, 1024, 65535)
		})).Value.(int)

	cfg.MetricsPort = apply("metrics_port",
		config.LoadEnvInt("OPENCHIME_METRICS_PORT", cfg.MetricsPort, func(v int) error {
			return config.ValidateIntRange(v, 1024, 65535)
		})).Value.(int)

	if metrics != nil {
		metrics.SetFallbackActive(fallbackApplied)
		metrics.RecordLoadTimestamp()
	}
	return &cfg, nil
}
