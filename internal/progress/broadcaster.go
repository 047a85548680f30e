// Package progress fans download progress out to every connected listener.
package progress

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Belphemur/MediaFetch/internal/config"
	"github.com/Belphemur/MediaFetch/internal/metrics"
	"github.com/Belphemur/MediaFetch/internal/models"
)

// DefaultBuffer is the number of events a subscriber may lag behind before events are dropped.
const DefaultBuffer = 64

// Subscription is one listener's view of the event stream.
type Subscription struct {
	ID     string
	Events <-chan models.ProgressEvent

	events chan models.ProgressEvent
}

// Broadcaster delivers every published event to every current subscriber.
// Late subscribers do not see earlier events.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	buffer int
	closed bool
	logger zerolog.Logger
}

// NewBroadcaster creates a broadcaster. buffer <= 0 uses DefaultBuffer.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	logger := config.GetLogger()
	return &Broadcaster{
		subs:   make(map[string]*Subscription),
		buffer: buffer,
		logger: logger.With().Str("component", "progress").Logger(),
	}
}

// Subscribe registers a new listener. After Close it returns a subscription whose channel is already closed.
func (b *Broadcaster) Subscribe() *Subscription {
	ch := make(chan models.ProgressEvent, b.buffer)
	sub := &Subscription{ID: uuid.NewString(), Events: ch, events: ch}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return sub
	}
	b.subs[sub.ID] = sub
	metrics.SSEClients.Inc()
	b.logger.Info().Str("subscriber", sub.ID).Int("subscribers", len(b.subs)).Msg("Progress listener connected")
	return sub
}

// Unsubscribe removes a listener and closes its channel. Unknown IDs are ignored.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(sub.events)
	metrics.SSEClients.Dec()
	b.logger.Info().Str("subscriber", id).Int("subscribers", len(b.subs)).Msg("Progress listener disconnected")
}

// Publish sends ev to every subscriber without blocking. A subscriber whose
// buffer is full misses the event.
func (b *Broadcaster) Publish(ev models.ProgressEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	metrics.ProgressEventsTotal.Inc()
	for id, sub := range b.subs {
		select {
		case sub.events <- ev:
		default:
			b.logger.Debug().Str("subscriber", id).Float64("percent", ev.Percent).Msg("Dropped progress event for slow listener")
		}
	}
}

// Len returns the number of connected subscribers.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close disconnects every subscriber. Later Publish calls are no-ops.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.events)
		delete(b.subs, id)
		metrics.SSEClients.Dec()
	}
}
