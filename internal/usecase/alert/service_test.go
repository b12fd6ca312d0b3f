package alert

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openchime/internal/domain/entity"
	"openchime/internal/infra/adapter/persistence/sqlite"
	"openchime/internal/infra/db"
	"openchime/internal/usecase/notify"
)

// fakeEventRepo serves a fixed event slice and records alert bookkeeping.
type fakeEventRepo struct {
	events     []*entity.CalendarEvent
	snoozeErr  error
	thresholds map[int64]int
	snoozed    []int64
	dismissed  []int64
}

func newFakeEventRepo(events ...*entity.CalendarEvent) *fakeEventRepo {
	return &fakeEventRepo{events: events, thresholds: make(map[int64]int)}
}

func (r *fakeEventRepo) Get(_ context.Context, id int64) (*entity.CalendarEvent, error) {
	for _, e := range r.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *fakeEventRepo) GetByExternalID(_ context.Context, _ string, _ int64) (*entity.CalendarEvent, error) {
	return nil, nil
}

func (r *fakeEventRepo) ListInWindow(_ context.Context, from, to time.Time) ([]*entity.CalendarEvent, error) {
	var out []*entity.CalendarEvent
	for _, e := range r.events {
		if !e.StartTime.Before(from) && !e.StartTime.After(to) && !e.IsDismissed {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) Create(_ context.Context, _ *entity.CalendarEvent) error {
	return errors.New("not implemented")
}

func (r *fakeEventRepo) UpdateContent(_ context.Context, _ *entity.CalendarEvent) error {
	return errors.New("not implemented")
}

func (r *fakeEventRepo) SetAlertThreshold(_ context.Context, id int64, threshold int) error {
	r.thresholds[id] = threshold
	for _, e := range r.events {
		if e.ID == id {
			t := threshold
			e.LastAlertThreshold = &t
			e.HasAlerted = true
		}
	}
	return nil
}

func (r *fakeEventRepo) Snooze(_ context.Context, id int64) error {
	if r.snoozeErr != nil {
		return r.snoozeErr
	}
	r.snoozed = append(r.snoozed, id)
	return nil
}

func (r *fakeEventRepo) Dismiss(_ context.Context, id int64) error {
	r.dismissed = append(r.dismissed, id)
	return nil
}

// fakeSettingsRepo returns fixed settings and optionally an error.
type fakeSettingsRepo struct {
	settings entity.Settings
	err      error
}

func (r *fakeSettingsRepo) Get(_ context.Context) (entity.Settings, error) {
	return r.settings, r.err
}

func (r *fakeSettingsRepo) Update(_ context.Context, _ entity.Settings) error {
	return errors.New("not implemented")
}

// fakePlayer records the alert types it was asked to play.
type fakePlayer struct {
	played []entity.AlertType
	err    error
}

func (p *fakePlayer) PlayAlert(alertType entity.AlertType) error {
	p.played = append(p.played, alertType)
	return p.err
}

// fakeNotify records published events.
type fakeNotify struct {
	published []notify.Event
}

func (n *fakeNotify) Publish(_ context.Context, event notify.Event) error {
	n.published = append(n.published, event)
	return nil
}

func (n *fakeNotify) ChannelHealth() []notify.ChannelHealthStatus { return nil }
func (n *fakeNotify) Shutdown(_ context.Context) error            { return nil }

func TestEvaluateDue_FiresAndRecordsThreshold(t *testing.T) {
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	event := &entity.CalendarEvent{
		ID:        1,
		Title:     "Design Review",
		StartTime: now.Add(4 * time.Minute),
	}

	events := newFakeEventRepo(event)
	player := &fakePlayer{}
	notifier := &fakeNotify{}
	svc := NewService(events, &fakeSettingsRepo{settings: entity.DefaultSettings()}, player, notifier)

	fired, err := svc.EvaluateDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	assert.Equal(t, 5, events.thresholds[1], "5m threshold should be recorded")
	require.Len(t, player.played, 1)
	assert.Equal(t, entity.AlertWarning5m, player.played[0])

	require.Len(t, notifier.published, 1)
	published := notifier.published[0]
	assert.Equal(t, notify.KindAlertTriggered, published.Kind)
	require.NotNil(t, published.Alert)
	assert.Equal(t, int64(1), published.Alert.EventID)
	assert.Equal(t, 5, published.Alert.Threshold)
	assert.Equal(t, 4, published.Alert.MinutesUntil)
}

func TestEvaluateDue_OneAlertPerEventPerTick(t *testing.T) {
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	event := &entity.CalendarEvent{ID: 1, Title: "Standup", StartTime: now.Add(4 * time.Minute)}

	events := newFakeEventRepo(event)
	player := &fakePlayer{}
	svc := NewService(events, &fakeSettingsRepo{settings: entity.DefaultSettings()}, player, nil)

	// First tick fires the 5m warning; an immediate second tick at the
	// same instant fires nothing more.
	fired, err := svc.EvaluateDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	fired, err = svc.EvaluateDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, fired)

	// Four minutes later the event starts and the start alert follows.
	fired, err = svc.EvaluateDue(context.Background(), now.Add(4*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	assert.Equal(t, []entity.AlertType{entity.AlertWarning5m, entity.AlertWarning1m}, player.played)
}

func TestEvaluateDue_SettingsErrorFallsBackToDefaults(t *testing.T) {
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	event := &entity.CalendarEvent{ID: 1, Title: "Planning", StartTime: now.Add(28 * time.Minute)}

	events := newFakeEventRepo(event)
	settings := &fakeSettingsRepo{settings: entity.DefaultSettings(), err: errors.New("disk error")}
	svc := NewService(events, settings, &fakePlayer{}, nil)

	// Defaults leave the 30m warning off, so nothing fires even though
	// the event sits in the 30m window.
	fired, err := svc.EvaluateDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, fired)
}

func TestEvaluateDue_BrokenAudioDoesNotBlockBookkeeping(t *testing.T) {
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	event := &entity.CalendarEvent{ID: 1, Title: "Standup", StartTime: now.Add(1 * time.Minute)}

	events := newFakeEventRepo(event)
	player := &fakePlayer{err: errors.New("no output device")}
	svc := NewService(events, &fakeSettingsRepo{settings: entity.DefaultSettings()}, player, nil)

	fired, err := svc.EvaluateDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 5, events.thresholds[1], "threshold recorded despite audio failure")
}

func TestTriggerManual(t *testing.T) {
	link := "https://meet.google.com/abc-defg-hij"
	event := &entity.CalendarEvent{
		ID:        1,
		Title:     "Demo",
		StartTime: time.Now().Add(10 * time.Minute),
		VideoLink: &link,
	}

	events := newFakeEventRepo(event)
	player := &fakePlayer{}
	svc := NewService(events, &fakeSettingsRepo{settings: entity.DefaultSettings()}, player, nil)

	require.NoError(t, svc.TriggerManual(context.Background(), 1))
	require.Len(t, player.played, 1)
	assert.Equal(t, entity.AlertVideoMeeting, player.played[0])
	assert.Empty(t, events.thresholds, "manual trigger must not consume scheduled thresholds")
}

func TestTriggerManual_NotFound(t *testing.T) {
	svc := NewService(newFakeEventRepo(), &fakeSettingsRepo{settings: entity.DefaultSettings()}, &fakePlayer{}, nil)

	err := svc.TriggerManual(context.Background(), 999)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestTriggerManual_NotFoundAgainstStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.db")
	database, err := db.Open(path, db.DefaultConnectionConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.Migrate(context.Background(), database))

	svc := NewService(
		sqlite.NewEventRepo(database),
		sqlite.NewSettingsRepo(database),
		&fakePlayer{},
		nil,
	)

	err = svc.TriggerManual(context.Background(), 42)
	require.ErrorIs(t, err, entity.ErrNotFound)
}

func TestSnooze_PlaysReminderAndPropagatesLimit(t *testing.T) {
	events := newFakeEventRepo()
	player := &fakePlayer{}
	svc := NewService(events, &fakeSettingsRepo{settings: entity.DefaultSettings()}, player, nil)

	require.NoError(t, svc.Snooze(context.Background(), 1))
	assert.Equal(t, []int64{1}, events.snoozed)
	assert.Equal(t, []entity.AlertType{entity.AlertSnoozeReminder}, player.played)

	events.snoozeErr = entity.ErrSnoozeLimit
	err := svc.Snooze(context.Background(), 1)
	assert.ErrorIs(t, err, entity.ErrSnoozeLimit)
	assert.Len(t, player.played, 1, "no reminder sound once the limit is hit")
}

func TestDismiss(t *testing.T) {
	events := newFakeEventRepo()
	svc := NewService(events, &fakeSettingsRepo{settings: entity.DefaultSettings()}, nil, nil)

	require.NoError(t, svc.Dismiss(context.Background(), 4))
	assert.Equal(t, []int64{4}, events.dismissed)
}
