package notify

import "context"

// Channel is a notification delivery target (UI queue, structured log).
//
// Implementations must be safe for concurrent use and must respect
// context cancellation in Send.
type Channel interface {
	// Name identifies the channel in logs and health output.
	Name() string

	// IsEnabled reports whether the channel should receive events.
	// Disabled channels are skipped during dispatch.
	IsEnabled() bool

	// Send delivers a single event. A non-nil error counts toward the
	// channel's consecutive-failure trip.
	Send(ctx context.Context, event Event) error
}
