package events

import (
	"log/slog"
	"sync"

	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/application/ports"
	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/domain"
)

// DefaultEventBufferSize is the default buffer size for event channels.
const DefaultEventBufferSize = 100

// Compile-time check that Bus implements ports.EventPublisher.
var _ ports.EventPublisher = (*Bus)(nil)

// Bus is a channel-based bus carrying transport lifecycle events from the
// audio adapter to the lifecycle handler. Publishing is non-blocking: when a
// buffer is full the event is dropped with a warning rather than stalling
// the transport's callback goroutine.
type Bus struct {
	trackStarted chan domain.TrackStartedEvent
	trackEnded   chan domain.TrackEndedEvent
	trackPaused  chan domain.TrackPausedEvent

	closed bool
	mu     sync.RWMutex
}

// NewBus creates a new Bus with the given buffer size.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	return &Bus{
		trackStarted: make(chan domain.TrackStartedEvent, bufferSize),
		trackEnded:   make(chan domain.TrackEndedEvent, bufferSize),
		trackPaused:  make(chan domain.TrackPausedEvent, bufferSize),
	}
}

// PublishTrackStarted publishes a TrackStartedEvent.
func (b *Bus) PublishTrackStarted(event domain.TrackStartedEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", "TrackStarted")
		return
	}

	select {
	case b.trackStarted <- event:
		slog.Debug("published event", "type", "TrackStarted", "guild", event.GuildID)
	default:
		slog.Warn("event buffer full, dropping event", "type", "TrackStarted")
	}
}

// PublishTrackEnded publishes a TrackEndedEvent.
func (b *Bus) PublishTrackEnded(event domain.TrackEndedEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", "TrackEnded")
		return
	}

	select {
	case b.trackEnded <- event:
		slog.Debug("published event",
			"type", "TrackEnded",
			"guild", event.GuildID,
			"reason", event.Reason,
		)
	default:
		slog.Warn("event buffer full, dropping event", "type", "TrackEnded")
	}
}

// PublishTrackPaused publishes a TrackPausedEvent.
func (b *Bus) PublishTrackPaused(event domain.TrackPausedEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", "TrackPaused")
		return
	}

	select {
	case b.trackPaused <- event:
		slog.Debug("published event", "type", "TrackPaused", "guild", event.GuildID)
	default:
		slog.Warn("event buffer full, dropping event", "type", "TrackPaused")
	}
}

// TrackStarted returns the channel for TrackStartedEvent.
func (b *Bus) TrackStarted() <-chan domain.TrackStartedEvent {
	return b.trackStarted
}

// TrackEnded returns the channel for TrackEndedEvent.
func (b *Bus) TrackEnded() <-chan domain.TrackEndedEvent {
	return b.trackEnded
}

// TrackPaused returns the channel for TrackPausedEvent.
func (b *Bus) TrackPaused() <-chan domain.TrackPausedEvent {
	return b.trackPaused
}

// Close closes all event channels. After Close, publishing is a logged no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	close(b.trackStarted)
	close(b.trackEnded)
	close(b.trackPaused)

	slog.Debug("event bus closed")
}
