// Command monitor runs the calendar sync and alert daemon: it keeps the
// local event store reconciled against each account's ICS feed and fires
// alert sounds and notifications as meetings approach.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"openchime/internal/config"
	"openchime/internal/domain/entity"
	"openchime/internal/infra/adapter/persistence/sqlite"
	"openchime/internal/infra/audio"
	"openchime/internal/infra/db"
	"openchime/internal/infra/fetcher"
	"openchime/internal/infra/ics"
	"openchime/internal/infra/worker"
	pkgconfig "openchime/internal/pkg/config"
	"openchime/internal/resilience/circuitbreaker"
	alertUC "openchime/internal/usecase/alert"
	"openchime/internal/usecase/notify"
	syncUC "openchime/internal/usecase/sync"
)

func main() {
	logger := initLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configMetrics := pkgconfig.NewConfigMetrics(prometheus.DefaultRegisterer, "monitor")
	cfg, _ := worker.LoadConfigFromEnv(logger, configMetrics)
	logger.Info("configuration loaded",
		slog.Duration("tick_interval", cfg.TickInterval),
		slog.String("sync_schedule", cfg.SyncSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.String("db_path", cfg.DBPath),
		slog.Int("health_port", cfg.HealthPort),
		slog.Int("metrics_port", cfg.MetricsPort))

	database := initDatabase(ctx, logger, cfg.DBPath)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	if cfg.SeedFile != "" {
		applySeed(ctx, logger, cfg.SeedFile, database)
	}

	metrics := worker.NewMetrics(prometheus.DefaultRegisterer)
	startMetricsServer(ctx, logger, cfg.MetricsPort)

	uiChannel := notify.NewUIChannel(0)
	channels := []notify.Channel{uiChannel, notify.NewLogChannel()}
	if cfg.WebhookURL != "" {
		channels = append(channels, notify.NewWebhookChannel(notify.WebhookConfig{URL: cfg.WebhookURL}))
	}
	notifyService := notify.NewService(
		channels,
		cfg.NotifyMaxConcurrent,
		rate.NewLimiter(rate.Every(time.Second), 10),
	)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := notifyService.Shutdown(shutdownCtx); err != nil {
			logger.Warn("notification shutdown incomplete", slog.Any("error", err))
		}
	}()

	syncService := setupSyncService(logger, cfg, database, notifyService)
	alertService := setupAlertService(logger, cfg, database, notifyService)

	healthServer := worker.NewHealthServer(fmt.Sprintf(":%d", cfg.HealthPort), logger)
	monitor := worker.NewMonitor(*cfg, syncService, alertService, metrics, healthServer, logger)

	logger.Info("monitor starting")
	if err := monitor.Run(ctx); err != nil {
		logger.Error("monitor stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("monitor stopped")
}

// initLogger configures the JSON structured logger from LOG_LEVEL.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the SQLite store and applies the schema.
func initDatabase(ctx context.Context, logger *slog.Logger, path string) *sql.DB {
	database, err := db.Open(path, db.DefaultConnectionConfig())
	if err != nil {
		logger.Error("failed to open database", slog.String("path", path), slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.Migrate(ctx, database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database ready", slog.String("path", path))
	return database
}

// applySeed creates accounts and settings from the optional seed file.
// Seed failures are logged but never fatal; the daemon can still run
// against whatever is already in the database.
func applySeed(ctx context.Context, logger *slog.Logger, path string, database *sql.DB) {
	seed, err := config.LoadSeed(path)
	if err != nil {
		logger.Warn("seed file rejected", slog.String("path", path), slog.Any("error", err))
		return
	}
	if seed == nil {
		logger.Info("seed file not found, skipping", slog.String("path", path))
		return
	}
	if err := seed.Apply(ctx, sqlite.NewAccountRepo(database), sqlite.NewSettingsRepo(database), logger); err != nil {
		logger.Warn("seed apply failed", slog.String("path", path), slog.Any("error", err))
	}
}

// setupSyncService wires the fetch, parse, and reconcile pipeline.
func setupSyncService(logger *slog.Logger, cfg *worker.Config, database *sql.DB, notifyService notify.Service) *syncUC.Service {
	fetchConfig := fetcher.DefaultConfig()
	httpClient := fetcher.NewHTTPClient(fetchConfig)
	breakers := circuitbreaker.NewRegistry()
	icsFetcher := fetcher.NewICSFetcher(httpClient, breakers, fetchConfig)

	location, err := cfg.Location()
	if err != nil {
		logger.Warn("failed to load timezone for feed parsing, using local",
			slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		location = time.Local
	}

	parsers := make(map[string]syncUC.FeedParser)
	for _, provider := range []string{entity.ProviderGoogle, entity.ProviderProton} {
		parser := ics.NewParser(provider)
		parser.Location = location
		parsers[provider] = parser
	}

	return syncUC.NewService(
		sqlite.NewAccountRepo(database),
		sqlite.NewEventRepo(database),
		icsFetcher,
		parsers,
		notifyService,
	)
}

// setupAlertService wires the scheduler with its audio player.
func setupAlertService(logger *slog.Logger, cfg *worker.Config, database *sql.DB, notifyService notify.Service) *alertUC.Service {
	var player alertUC.SoundPlayer
	audioDisabled := pkgconfig.LoadEnvBool("OPENCHIME_AUDIO_DISABLED", false).Value.(bool)
	if audioDisabled {
		logger.Info("audio disabled")
		player = audio.NoopPlayer{}
	} else {
		player = audio.NewCommandPlayer(audio.DefaultSoundFiles(cfg.SoundsDir), cfg.AudioPlayer)
	}

	return alertUC.NewService(
		sqlite.NewEventRepo(database),
		sqlite.NewSettingsRepo(database),
		player,
		notifyService,
	)
}

// startMetricsServer serves the Prometheus scrape endpoint in the
// background until the context is cancelled.
func startMetricsServer(ctx context.Context, logger *slog.Logger, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown failed", slog.Any("error", err))
		}
	}()
}
