package circuitbreaker

import "sync"

// Registry holds one circuit breaker per named service, created lazily on
// first use. It is constructed once at process start and passed by handle
// to every component that performs remote calls, so tests can swap in a
// fresh registry instead of sharing process-global state.
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{breakers: make(map[string]*CircuitBreaker)}
}

// Get returns the breaker for the given service name, creating it with
// the service's tuned configuration on first use. Breaker state is shared
// across all callers of the same service name for the process lifetime.
func (r *Registry) Get(service string) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[service]; ok {
		return cb
	}

	cb := New(configFor(service))
	r.breakers[service] = cb
	return cb
}

func configFor(service string) Config {
	switch service {
	case "google-feed":
		return GoogleFeedConfig()
	case "proton-feed":
		return ProtonFeedConfig()
	default:
		return DefaultConfig(service)
	}
}
