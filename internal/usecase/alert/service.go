package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"openchime/internal/domain/entity"
	"openchime/internal/repository"
	"openchime/internal/usecase/notify"
)

const (
	// lookBehind is how far into the past an event start may lie and
	// still be evaluated, matching the grace window.
	lookBehind = 5 * time.Minute

	// lookAhead must cover the highest threshold plus its grace window.
	lookAhead = 60 * time.Minute
)

// SoundPlayer plays the audio cue for an alert.
type SoundPlayer interface {
	PlayAlert(alertType entity.AlertType) error
}

// Service evaluates due alerts and applies user alert actions.
type Service struct {
	EventRepo     repository.EventRepository
	SettingsRepo  repository.SettingsRepository
	Player        SoundPlayer    // optional; nil disables audio
	NotifyService notify.Service // optional; nil disables notifications
}

// NewService creates an alert Service with the provided dependencies.
func NewService(
	eventRepo repository.EventRepository,
	settingsRepo repository.SettingsRepository,
	player SoundPlayer,
	notifyService notify.Service,
) *Service {
	return &Service{
		EventRepo:     eventRepo,
		SettingsRepo:  settingsRepo,
		Player:        player,
		NotifyService: notifyService,
	}
}

// EvaluateDue runs one scheduler tick at the given instant: every
// non-dismissed event starting within [now-5m, now+60m] is checked
// against the enabled thresholds, and at most one alert fires per event.
// It returns the number of alerts fired.
func (s *Service) EvaluateDue(ctx context.Context, now time.Time) (int, error) {
	logger := slog.Default()

	settings, err := s.SettingsRepo.Get(ctx)
	if err != nil {
		// Settings fall back to defaults on read failure; the tick
		// still runs so alerts are never silently skipped.
		logger.Warn("failed to load settings, using defaults", slog.Any("error", err))
	}

	events, err := s.EventRepo.ListInWindow(ctx, now.Add(-lookBehind), now.Add(lookAhead))
	if err != nil {
		return 0, fmt.Errorf("list upcoming events: %w", err)
	}

	fired := 0
	for _, event := range events {
		threshold, alertType, ok := CheckThresholds(event, settings, now)
		if !ok {
			continue
		}

		logger.Info("triggering alert",
			slog.Int64("event_id", event.ID),
			slog.String("title", event.Title),
			slog.Int("threshold", threshold),
			slog.String("alert_type", alertType.String()))

		s.play(alertType)
		s.publish(ctx, notify.NewAlertTriggered(event, alertType, threshold, event.MinutesUntilStart(now)))

		if err := s.EventRepo.SetAlertThreshold(ctx, event.ID, threshold); err != nil {
			return fired, fmt.Errorf("record alert threshold for event %d: %w", event.ID, err)
		}
		fired++
	}
	return fired, nil
}

// TriggerManual fires the start alert for a specific event immediately,
// regardless of thresholds. The recorded alert state is untouched so the
// scheduled alerts still fire on time.
func (s *Service) TriggerManual(ctx context.Context, eventID int64) error {
	event, err := s.EventRepo.Get(ctx, eventID)
	if err != nil {
		return fmt.Errorf("load event %d: %w", eventID, err)
	}

	alertType := entity.AlertMeeting
	if event.IsVideoMeeting() {
		alertType = entity.AlertVideoMeeting
	}

	slog.Info("manually triggering alert",
		slog.Int64("event_id", event.ID),
		slog.String("title", event.Title))

	s.play(alertType)
	s.publish(ctx, notify.NewAlertTriggered(event, alertType, 0, event.MinutesUntilStart(time.Now())))
	return nil
}

// Snooze records a snooze for the event and plays the reminder cue.
// Returns entity.ErrSnoozeLimit once the cap is reached.
func (s *Service) Snooze(ctx context.Context, eventID int64) error {
	if err := s.EventRepo.Snooze(ctx, eventID); err != nil {
		return err
	}
	s.play(entity.AlertSnoozeReminder)
	return nil
}

// Dismiss latches the event out of all future evaluation.
func (s *Service) Dismiss(ctx context.Context, eventID int64) error {
	return s.EventRepo.Dismiss(ctx, eventID)
}

// TestSound plays the test cue so the user can verify audio output.
func (s *Service) TestSound() {
	s.play(entity.AlertTest)
}

// play runs the audio cue, logging failures. A broken audio stack must
// never block the notification or the threshold bookkeeping.
func (s *Service) play(alertType entity.AlertType) {
	if s.Player == nil {
		return
	}
	if err := s.Player.PlayAlert(alertType); err != nil {
		slog.Warn("failed to play alert sound",
			slog.String("alert_type", alertType.String()),
			slog.Any("error", err))
	}
}

func (s *Service) publish(ctx context.Context, event notify.Event) {
	if s.NotifyService == nil {
		return
	}
	if err := s.NotifyService.Publish(ctx, event); err != nil {
		slog.Warn("failed to publish alert notification", slog.Any("error", err))
	}
}
