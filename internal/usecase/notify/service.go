package notify

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type contextKey string

const requestIDKey contextKey = "request_id"

const (
	channelTripThreshold = 5                // consecutive failures before a channel is muted
	channelTripTimeout   = 5 * time.Minute  // how long a tripped channel stays muted
	workerPoolTimeout    = 5 * time.Second  // timeout for acquiring a worker slot
	deliveryTimeout      = 10 * time.Second // timeout for a single channel Send
)

// Service dispatches events to all enabled channels without blocking the
// caller. Failures are tracked per channel and logged, never propagated
// to the alert or sync paths.
type Service interface {
	// Publish dispatches an event to every enabled channel in background
	// goroutines. It returns an error only for invalid or rate-limited
	// events; delivery failures are handled internally.
	Publish(ctx context.Context, event Event) error

	// ChannelHealth reports the failure-trip state of each channel.
	ChannelHealth() []ChannelHealthStatus

	// Shutdown waits for in-flight deliveries to finish or the context
	// to expire.
	Shutdown(ctx context.Context) error
}

// ChannelHealthStatus is the health snapshot of one channel.
type ChannelHealthStatus struct {
	Name       string
	Enabled    bool
	Tripped    bool
	MutedUntil *time.Time
}

type service struct {
	channels       []Channel
	workerPool     chan struct{}
	limiter        *rate.Limiter
	health         map[string]*channelState
	healthMu       sync.RWMutex
	wg             sync.WaitGroup
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// channelState tracks the consecutive-failure trip for one channel.
type channelState struct {
	mu                  sync.Mutex
	consecutiveFailures int
	mutedUntil          time.Time
}

// NewService creates a dispatcher over the given channels. maxConcurrent
// bounds in-flight deliveries; limiter caps the overall publish rate and
// may be nil to disable limiting.
func NewService(channels []Channel, maxConcurrent int, limiter *rate.Limiter) Service {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	svc := &service{
		channels:       channels,
		workerPool:     make(chan struct{}, maxConcurrent),
		limiter:        limiter,
		health:         make(map[string]*channelState),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}
	for _, ch := range channels {
		svc.health[ch.Name()] = &channelState{}
	}
	return svc
}

func (s *service) Publish(ctx context.Context, event Event) error {
	if !event.Valid() {
		slog.Warn("dropping invalid notification event",
			slog.String("kind", string(event.Kind)))
		return ErrInvalidEvent
	}

	if s.limiter != nil && !s.limiter.Allow() {
		slog.Warn("notification rate limit exceeded, dropping event",
			slog.String("kind", string(event.Kind)))
		return ErrRateLimited
	}

	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok || requestID == "" {
		requestID = uuid.New().String()
	}

	dispatched := 0
	for _, ch := range s.channels {
		if !ch.IsEnabled() {
			continue
		}
		dispatched++
		channel := ch
		s.wg.Add(1)
		go s.deliver(requestID, channel, event)
	}

	if dispatched == 0 {
		slog.Debug("no notification channels enabled",
			slog.String("request_id", requestID),
			slog.String("kind", string(event.Kind)))
	}
	return nil
}

// deliver sends one event to one channel in a goroutine.
func (s *service) deliver(requestID string, channel Channel, event Event) {
	defer s.wg.Done()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in notification channel",
				slog.String("request_id", requestID),
				slog.String("channel", channel.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }()
	case <-time.After(workerPoolTimeout):
		slog.Warn("notification dropped, worker pool full",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()))
		return
	case <-s.shutdownCtx.Done():
		return
	}

	state := s.channelState(channel.Name())
	state.mu.Lock()
	if time.Now().Before(state.mutedUntil) {
		state.mu.Unlock()
		slog.Warn("channel muted after repeated failures",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()))
		return
	}
	state.mu.Unlock()

	ctx, cancel := context.WithTimeout(s.shutdownCtx, deliveryTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	start := time.Now()
	err := channel.Send(ctx, event)
	duration := time.Since(start)

	state.mu.Lock()
	if err != nil {
		state.consecutiveFailures++
		if state.consecutiveFailures >= channelTripThreshold {
			state.mutedUntil = time.Now().Add(channelTripTimeout)
			slog.Error("muting notification channel",
				slog.String("request_id", requestID),
				slog.String("channel", channel.Name()),
				slog.Int("consecutive_failures", state.consecutiveFailures))
		}
	} else {
		state.consecutiveFailures = 0
	}
	state.mu.Unlock()

	if err != nil {
		slog.Warn("channel delivery failed",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.String("kind", string(event.Kind)),
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
		return
	}
	slog.Debug("channel delivery succeeded",
		slog.String("request_id", requestID),
		slog.String("channel", channel.Name()),
		slog.String("kind", string(event.Kind)),
		slog.Duration("send_duration", duration))
}

func (s *service) channelState(name string) *channelState {
	s.healthMu.RLock()
	defer s.healthMu.RUnlock()
	return s.health[name]
}

func (s *service) ChannelHealth() []ChannelHealthStatus {
	s.healthMu.RLock()
	defer s.healthMu.RUnlock()

	statuses := make([]ChannelHealthStatus, 0, len(s.channels))
	for _, ch := range s.channels {
		state := s.health[ch.Name()]

		state.mu.Lock()
		var mutedUntil *time.Time
		tripped := false
		if time.Now().Before(state.mutedUntil) {
			tripped = true
			until := state.mutedUntil
			mutedUntil = &until
		}
		state.mu.Unlock()

		statuses = append(statuses, ChannelHealthStatus{
			Name:       ch.Name(),
			Enabled:    ch.IsEnabled(),
			Tripped:    tripped,
			MutedUntil: mutedUntil,
		})
	}
	return statuses
}

func (s *service) Shutdown(ctx context.Context) error {
	s.shutdownCancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("notification service shutdown complete")
		return nil
	case <-ctx.Done():
		slog.Warn("notification service shutdown timeout")
		return ctx.Err()
	}
}
