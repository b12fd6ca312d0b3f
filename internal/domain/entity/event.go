package entity

import "time"

// MaxSnoozeCount is the number of times a single event may be snoozed.
const MaxSnoozeCount = 3

// CalendarEvent represents a persisted calendar event row.
// Content fields (title, description, times, video link) are owned by the
// sync reconciler; alert state fields (SnoozeCount, HasAlerted,
// LastAlertThreshold, IsDismissed) are owned by the alert scheduler and
// explicit user actions, and are never overwritten during reconciliation.
type CalendarEvent struct {
	ID                 int64
	ExternalID         string
	AccountID          int64
	Title              string
	Description        *string
	StartTime          time.Time
	EndTime            time.Time
	VideoLink          *string
	VideoPlatform      *string
	SnoozeCount        int
	HasAlerted         bool
	LastAlertThreshold *int
	IsDismissed        bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsVideoMeeting reports whether the event carries a joinable video link.
func (e *CalendarEvent) IsVideoMeeting() bool {
	return e.VideoLink != nil && *e.VideoLink != ""
}

// MinutesUntilStart returns the whole minutes between now and the event
// start, truncated toward zero. Negative once the event has started.
func (e *CalendarEvent) MinutesUntilStart(now time.Time) int {
	return int(e.StartTime.Sub(now).Minutes())
}

// ContentEquals reports whether the reconciler-owned content fields of the
// two events match. Alert state is deliberately excluded.
func (e *CalendarEvent) ContentEquals(other *CalendarEvent) bool {
	return e.Title == other.Title &&
		strPtrEqual(e.Description, other.Description) &&
		e.StartTime.Equal(other.StartTime) &&
		e.EndTime.Equal(other.EndTime) &&
		strPtrEqual(e.VideoLink, other.VideoLink) &&
		strPtrEqual(e.VideoPlatform, other.VideoPlatform)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
