package notify

import (
	"context"
	"log/slog"
)

// LogChannel writes every event to the structured log. It is always
// enabled and never fails, which makes it a useful baseline channel when
// the UI consumer is absent (headless runs, tests).
type LogChannel struct{}

// NewLogChannel creates the log sink.
func NewLogChannel() *LogChannel { return &LogChannel{} }

func (c *LogChannel) Name() string    { return "log" }
func (c *LogChannel) IsEnabled() bool { return true }

func (c *LogChannel) Send(_ context.Context, event Event) error {
	switch event.Kind {
	case KindAlertTriggered:
		slog.Info("alert notification",
			slog.Int64("event_id", event.Alert.EventID),
			slog.String("title", event.Alert.Title),
			slog.String("alert_type", event.Alert.Type.String()),
			slog.Int("threshold", event.Alert.Threshold),
			slog.Int("minutes_until", event.Alert.MinutesUntil))
	case KindSyncCompleted:
		slog.Info("sync notification",
			slog.Int("accounts", event.Sync.Accounts),
			slog.Int("added", event.Sync.Added),
			slog.Int("updated", event.Sync.Updated),
			slog.Int("failed", event.Sync.Failed),
			slog.Duration("duration", event.Sync.Duration))
	case KindSyncFailed:
		slog.Warn("sync failure notification", slog.String("error", event.Error))
	}
	return nil
}
