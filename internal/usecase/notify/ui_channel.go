package notify

import (
	"context"
	"log/slog"
	"sync"
)

// defaultUIBuffer bounds the UI queue. Alerts are sparse (one per event
// per threshold) so a small buffer absorbs any realistic burst.
const defaultUIBuffer = 64

// UIChannel buffers events for a frontend consumer. When no consumer is
// draining and the buffer fills, the oldest event is dropped so the most
// recent alert is always deliverable. Send never blocks and never fails.
type UIChannel struct {
	mu      sync.Mutex
	events  chan Event
	dropped int64
}

// NewUIChannel creates a UI queue with the given buffer size; size <= 0
// uses the default.
func NewUIChannel(size int) *UIChannel {
	if size <= 0 {
		size = defaultUIBuffer
	}
	return &UIChannel{events: make(chan Event, size)}
}

func (c *UIChannel) Name() string    { return "ui" }
func (c *UIChannel) IsEnabled() bool { return true }

// Events exposes the queue for the frontend to range over.
func (c *UIChannel) Events() <-chan Event { return c.events }

// Dropped returns how many events were evicted because the queue was full.
func (c *UIChannel) Dropped() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

func (c *UIChannel) Send(_ context.Context, event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		select {
		case c.events <- event:
			return nil
		default:
		}
		// Queue full: evict the oldest entry and retry.
		select {
		case old := <-c.events:
			c.dropped++
			slog.Warn("ui queue full, dropping oldest event",
				slog.String("kind", string(old.Kind)))
		default:
		}
	}
}
