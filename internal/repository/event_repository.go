package repository

import (
	"context"
	"time"

	"openchime/internal/domain/entity"
)

type EventRepository interface {
	// Get returns the event with the given id, or an error wrapping
	// entity.ErrNotFound when no such row exists.
	Get(ctx context.Context, id int64) (*entity.CalendarEvent, error)

	// GetByExternalID looks up an event by its provider-scoped identity.
	// Returns (nil, nil) when no row exists.
	GetByExternalID(ctx context.Context, externalID string, accountID int64) (*entity.CalendarEvent, error)

	// ListInWindow returns non-dismissed events with a start time in
	// [from, to], ordered by start time ascending.
	ListInWindow(ctx context.Context, from, to time.Time) ([]*entity.CalendarEvent, error)

	Create(ctx context.Context, event *entity.CalendarEvent) error

	// UpdateContent overwrites the reconciler-owned content fields and
	// updated_at, leaving alert state untouched.
	UpdateContent(ctx context.Context, event *entity.CalendarEvent) error

	// SetAlertThreshold records the fired threshold and marks the event
	// alerted.
	SetAlertThreshold(ctx context.Context, id int64, threshold int) error

	Snooze(ctx context.Context, id int64) error
	Dismiss(ctx context.Context, id int64) error
}
