// Package notify dispatches engine events (alert firings, sync results)
// to delivery channels such as the UI event queue and the structured log.
// Dispatch is asynchronous with a bounded worker pool, per-channel failure
// tracking, and a global rate limit.
package notify

import (
	"time"

	"openchime/internal/domain/entity"
)

// EventKind discriminates the notification payload.
type EventKind string

const (
	KindAlertTriggered EventKind = "alert_triggered"
	KindSyncCompleted  EventKind = "sync_completed"
	KindSyncFailed     EventKind = "sync_failed"
)

// AlertPayload describes a fired alert.
type AlertPayload struct {
	EventID      int64
	Title        string
	Type         entity.AlertType
	Threshold    int
	MinutesUntil int
	VideoLink    *string
}

// SyncPayload summarizes a completed sync cycle.
type SyncPayload struct {
	Accounts int
	Added    int
	Updated  int
	Failed   int
	Duration time.Duration
}

// Event is the tagged union carried to channels. Exactly one payload
// pointer is set, selected by Kind.
type Event struct {
	Kind  EventKind
	At    time.Time
	Alert *AlertPayload
	Sync  *SyncPayload
	Error string
}

// NewAlertTriggered builds the notification for a fired alert.
func NewAlertTriggered(ev *entity.CalendarEvent, alertType entity.AlertType, threshold, minutesUntil int) Event {
	return Event{
		Kind: KindAlertTriggered,
		At:   time.Now(),
		Alert: &AlertPayload{
			EventID:      ev.ID,
			Title:        ev.Title,
			Type:         alertType,
			Threshold:    threshold,
			MinutesUntil: minutesUntil,
			VideoLink:    ev.VideoLink,
		},
	}
}

// NewSyncCompleted builds the notification for a finished sync cycle.
func NewSyncCompleted(accounts, added, updated, failed int, duration time.Duration) Event {
	return Event{
		Kind: KindSyncCompleted,
		At:   time.Now(),
		Sync: &SyncPayload{
			Accounts: accounts,
			Added:    added,
			Updated:  updated,
			Failed:   failed,
			Duration: duration,
		},
	}
}

// NewSyncFailed builds the notification for a sync cycle where every
// account failed.
func NewSyncFailed(err error) Event {
	return Event{
		Kind:  KindSyncFailed,
		At:    time.Now(),
		Error: err.Error(),
	}
}

// Valid reports whether the event carries the payload its kind requires.
func (e Event) Valid() bool {
	switch e.Kind {
	case KindAlertTriggered:
		return e.Alert != nil
	case KindSyncCompleted:
		return e.Sync != nil
	case KindSyncFailed:
		return e.Error != ""
	default:
		return false
	}
}
