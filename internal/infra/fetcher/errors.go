// Package fetcher fetches ICS calendar feeds over HTTPS with circuit
// breaker and retry protection.
package fetcher

import "errors"

// Validation and response classification errors. Validation errors are
// user-correctable and never retried; ErrHTMLResponse usually means a
// browser URL was pasted instead of the secret iCal address, so it is
// treated as permanent rather than transient.
var (
	ErrEmptyURL     = errors.New("feed URL cannot be empty")
	ErrNotHTTPS     = errors.New("feed URL must use HTTPS")
	ErrMissingHost  = errors.New("feed URL must have a valid host")
	ErrLocalNetwork = errors.New("feed URL cannot point to localhost or local network addresses")
	ErrHTMLResponse = errors.New("server returned HTML instead of a calendar file: use the secret address in iCal format from your calendar settings, not the web browser URL")
)
