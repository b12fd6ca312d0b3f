// Package circuitbreaker provides failure isolation for remote feed calls.
// It uses the github.com/sony/gobreaker library to prevent cascading
// failures when an upstream calendar service degrades.
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config holds the configuration for a circuit breaker.
type Config struct {
	// Name is the circuit breaker name for logging and metrics
	Name string

	// FailureThreshold is the number of consecutive failures that trips
	// the circuit from closed to open
	FailureThreshold uint32

	// SuccessThreshold is the number of consecutive successes in
	// half-open state required to close the circuit again
	SuccessThreshold uint32

	// Timeout is how long to wait in open state before admitting a
	// probe call (half-open)
	Timeout time.Duration
}

// DefaultConfig returns the configuration used for unnamed services.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 3,
		Timeout:          60 * time.Second,
	}
}

// GoogleFeedConfig returns configuration tuned for Google calendar feeds.
// Google endpoints recover quickly, so the breaker trips early and probes
// again after a short timeout.
func GoogleFeedConfig() Config {
	return Config{
		Name:             "google-feed",
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
	}
}

// ProtonFeedConfig returns configuration tuned for Proton calendar feeds.
func ProtonFeedConfig() Config {
	return Config{
		Name:             "proton-feed",
		FailureThreshold: 5,
		SuccessThreshold: 3,
		Timeout:          60 * time.Second,
	}
}

// CircuitBreaker wraps gobreaker.CircuitBreaker with consecutive-failure
// trip semantics: every success in the closed state resets the failure
// count, and any failure while half-open re-opens the circuit.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New creates a new circuit breaker with the given configuration.
func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.SuccessThreshold,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

// Execute runs the given function through the circuit breaker.
// If the circuit is open, it returns gobreaker.ErrOpenState immediately
// without invoking the function. Admitted operations run concurrently;
// only the state bookkeeping is serialized.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Name returns the name of the circuit breaker.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen returns true if the circuit breaker is in the open state.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
