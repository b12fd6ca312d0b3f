package notify

import "errors"

var (
	// ErrInvalidEvent is returned when an event's payload does not match
	// its kind.
	ErrInvalidEvent = errors.New("invalid notification event")

	// ErrRateLimited is returned when the dispatch rate limit rejects an
	// event before any channel sees it.
	ErrRateLimited = errors.New("notification rate limit exceeded")
)
