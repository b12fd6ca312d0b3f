package entity

import (
	"fmt"
	"time"
)

// Provider identifies the calendar service an account belongs to.
// It selects the circuit breaker profile and the external id prefix
// used for events parsed from that account's feed.
const (
	ProviderGoogle = "google"
	ProviderProton = "proton"
)

// Account represents a calendar subscription in the system.
// FeedURL is the ICS feed address supplied by the user; no credentials
// are stored (the OAuth flow was removed in favor of secret feed URLs).
type Account struct {
	ID           int64
	Provider     string
	Name         string
	FeedURL      string
	LastSyncedAt *time.Time
}

// Validate validates the Account entity fields.
func (a *Account) Validate() error {
	if a.Name == "" {
		return &ValidationError{Field: "name", Message: "account name is required"}
	}
	if a.FeedURL == "" {
		return &ValidationError{Field: "feed_url", Message: "feed URL is required"}
	}
	switch a.Provider {
	case ProviderGoogle, ProviderProton:
		return nil
	default:
		return fmt.Errorf("%w: unknown provider %q (must be google or proton)", ErrValidationFailed, a.Provider)
	}
}

// ServiceName returns the circuit breaker service name for this account's
// provider. Each provider gets its own breaker so one flaky upstream does
// not short-circuit the other.
func (a *Account) ServiceName() string {
	switch a.Provider {
	case ProviderGoogle:
		return "google-feed"
	case ProviderProton:
		return "proton-feed"
	default:
		return "feed"
	}
}
