package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/domain"
)

func TestBus_PublishAndReceive(t *testing.T) {
	bus := NewBus(10)
	defer bus.Close()

	bus.PublishTrackEnded(domain.TrackEndedEvent{
		GuildID: snowflake.ID(1),
		Reason:  domain.TrackEndFinished,
	})

	select {
	case event := <-bus.TrackEnded():
		if event.GuildID != snowflake.ID(1) {
			t.Errorf("expected guild 1, got %d", event.GuildID)
		}
		if event.Reason != domain.TrackEndFinished {
			t.Errorf("expected finished reason, got %s", event.Reason)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_PublishAfterCloseDoesNotPanic(t *testing.T) {
	bus := NewBus(10)
	bus.Close()

	// Must be a logged no-op, not a panic on a closed channel
	bus.PublishTrackStarted(domain.TrackStartedEvent{GuildID: snowflake.ID(1)})
	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: snowflake.ID(1)})
	bus.PublishTrackPaused(domain.TrackPausedEvent{GuildID: snowflake.ID(1)})
}

func TestBus_CloseIsIdempotent(t *testing.T) {
	bus := NewBus(10)
	bus.Close()
	bus.Close()
}

func TestBus_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	bus := NewBus(1)
	defer bus.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: snowflake.ID(1)})
		bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: snowflake.ID(2)})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full buffer")
	}
}

type recordingHandler struct {
	mu      sync.Mutex
	started []domain.TrackStartedEvent
	ended   []domain.TrackEndedEvent
	paused  []domain.TrackPausedEvent
}

func (h *recordingHandler) HandleTrackStarted(_ context.Context, e domain.TrackStartedEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, e)
}

func (h *recordingHandler) HandleTrackEnded(_ context.Context, e domain.TrackEndedEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ended = append(h.ended, e)
}

func (h *recordingHandler) HandleTrackPaused(_ context.Context, e domain.TrackPausedEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = append(h.paused, e)
}

func (h *recordingHandler) endedCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.ended)
}

func TestDispatcher_DeliversEvents(t *testing.T) {
	bus := NewBus(10)
	defer bus.Close()

	handler := &recordingHandler{}
	dispatcher := NewDispatcher(bus, handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	bus.PublishTrackEnded(domain.TrackEndedEvent{
		GuildID: snowflake.ID(7),
		Reason:  domain.TrackEndFinished,
	})

	deadline := time.After(time.Second)
	for handler.endedCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for dispatch")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if handler.ended[0].GuildID != snowflake.ID(7) {
		t.Errorf("expected guild 7, got %d", handler.ended[0].GuildID)
	}
}
