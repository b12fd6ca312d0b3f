package worker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	usesync "openchime/internal/usecase/sync"
)

// Syncer runs one full calendar sync cycle.
type Syncer interface {
	SyncAll(ctx context.Context) (*usesync.Stats, error)
}

// AlertEvaluator runs one alert evaluation tick.
type AlertEvaluator interface {
	EvaluateDue(ctx context.Context, now time.Time) (int, error)
}

// Monitor is the daemon core: it ticks the alert evaluator every
// TickInterval and resyncs calendars on the cron schedule. Sync and
// evaluation share the event store but never block each other; a failed
// cycle of either kind is logged and the loop continues.
type Monitor struct {
	cfg     Config
	syncer  Syncer
	alerts  AlertEvaluator
	metrics *Metrics
	health  *HealthServer
	logger  *slog.Logger
}

// NewMonitor wires the daemon. metrics and health may be nil (tests).
func NewMonitor(cfg Config, syncer Syncer, alerts AlertEvaluator, metrics *Metrics, health *HealthServer, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		cfg:     cfg,
		syncer:  syncer,
		alerts:  alerts,
		metrics: metrics,
		health:  health,
		logger:  logger,
	}
}

// Run blocks until the context is cancelled. It starts the health
// server, performs an immediate sync, then alternates between tick
// evaluation and scheduled resync.
func (m *Monitor) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	if m.health != nil {
		group.Go(func() error {
			if err := m.health.Start(groupCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	// First sync runs before the loop so alerts have events to evaluate
	// immediately after startup.
	m.runSync(groupCtx)
	if m.health != nil {
		m.health.SetReady(true)
	}

	location, err := m.cfg.Location()
	if err != nil {
		// Config validation catches this earlier; fall back rather
		// than refuse to start.
		m.logger.Warn("failed to load timezone, using local",
			slog.String("timezone", m.cfg.Timezone),
			slog.Any("error", err))
		location = time.Local
	}

	scheduler := cron.New(cron.WithLocation(location))
	if _, err := scheduler.AddFunc(m.cfg.SyncSchedule, func() {
		m.runSync(groupCtx)
	}); err != nil {
		return err
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	group.Go(func() error {
		return m.tickLoop(groupCtx)
	})

	err = group.Wait()
	if m.health != nil {
		m.health.SetReady(false)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// tickLoop evaluates due alerts every TickInterval until cancelled.
func (m *Monitor) tickLoop(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.TickInterval)
	defer ticker.Stop()

	m.logger.Info("monitor loop started",
		slog.Duration("tick_interval", m.cfg.TickInterval),
		slog.String("sync_schedule", m.cfg.SyncSchedule))

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor loop stopped")
			return ctx.Err()
		case <-ticker.C:
			m.runTick(ctx)
		}
	}
}

// runTick executes one alert evaluation pass.
func (m *Monitor) runTick(ctx context.Context) {
	start := time.Now()
	fired, err := m.alerts.EvaluateDue(ctx, start)
	duration := time.Since(start)

	if m.metrics != nil {
		m.metrics.RecordTick(duration)
		m.metrics.RecordAlerts(fired)
	}
	if err != nil {
		m.logger.Error("alert evaluation failed",
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return
	}
	if fired > 0 {
		m.logger.Info("alert tick fired",
			slog.Int("alerts", fired),
			slog.Duration("duration", duration))
	}
}

// runSync executes one bounded sync cycle.
func (m *Monitor) runSync(ctx context.Context) {
	syncCtx, cancel := context.WithTimeout(ctx, m.cfg.SyncTimeout)
	defer cancel()

	stats, err := m.syncer.SyncAll(syncCtx)

	status := "success"
	switch {
	case err != nil:
		status = "failure"
	case stats != nil && stats.Failed > 0:
		status = "partial"
	}

	if m.metrics != nil {
		if stats != nil {
			m.metrics.RecordSync(status, stats.Added, stats.Updated, stats.Duration)
		} else {
			m.metrics.SyncCyclesTotal.WithLabelValues(status).Inc()
		}
	}
	if err != nil {
		m.logger.Error("sync cycle failed", slog.Any("error", err))
	}
}
