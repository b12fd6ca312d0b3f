package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the monitor daemon's Prometheus instruments.
type Metrics struct {
	SyncCyclesTotal      *prometheus.CounterVec
	SyncDurationSeconds  prometheus.Histogram
	EventsAddedTotal     prometheus.Counter
	EventsUpdatedTotal   prometheus.Counter
	AlertsFiredTotal     prometheus.Counter
	TickDurationSeconds  prometheus.Histogram
	LastSyncSuccessStamp prometheus.Gauge
}

// NewMetrics registers the monitor instruments with reg. Tests pass a
// fresh registry to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SyncCyclesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "monitor_sync_cycles_total",
			Help: "Total sync cycles by outcome (success, partial, failure)",
		}, []string{"status"}),
		SyncDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "monitor_sync_duration_seconds",
			Help:    "Duration of full sync cycles",
			Buckets: prometheus.DefBuckets,
		}),
		EventsAddedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "monitor_events_added_total",
			Help: "Events inserted by the reconciler",
		}),
		EventsUpdatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "monitor_events_updated_total",
			Help: "Events whose content was updated by the reconciler",
		}),
		AlertsFiredTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "monitor_alerts_fired_total",
			Help: "Alerts fired by the scheduler",
		}),
		TickDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "monitor_tick_duration_seconds",
			Help:    "Duration of alert evaluation ticks",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}),
		LastSyncSuccessStamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "monitor_last_sync_success_timestamp",
			Help: "Unix timestamp of the last successful sync cycle",
		}),
	}
}

// RecordSync records one sync cycle's outcome and counters.
func (m *Metrics) RecordSync(status string, added, updated int, duration time.Duration) {
	m.SyncCyclesTotal.WithLabelValues(status).Inc()
	m.SyncDurationSeconds.Observe(duration.Seconds())
	m.EventsAddedTotal.Add(float64(added))
	m.EventsUpdatedTotal.Add(float64(updated))
	if status != "failure" {
		m.LastSyncSuccessStamp.SetToCurrentTime()
	}
}

// RecordAlerts counts alerts fired in one tick.
func (m *Metrics) RecordAlerts(count int) {
	m.AlertsFiredTotal.Add(float64(count))
}

// RecordTick records one evaluation tick's duration.
func (m *Metrics) RecordTick(duration time.Duration) {
	m.TickDurationSeconds.Observe(duration.Seconds())
}
