package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/domain"
)

// LifecycleHandler receives transport lifecycle events pulled off the bus.
// Handler bodies run on dispatcher goroutines and take the guild lock
// themselves; they must not assume any particular ordering across guilds.
type LifecycleHandler interface {
	HandleTrackStarted(ctx context.Context, event domain.TrackStartedEvent)
	HandleTrackEnded(ctx context.Context, event domain.TrackEndedEvent)
	HandleTrackPaused(ctx context.Context, event domain.TrackPausedEvent)
}

// Dispatcher pumps events from the Bus into a LifecycleHandler.
type Dispatcher struct {
	bus     *Bus
	handler LifecycleHandler

	wg   sync.WaitGroup
	done chan struct{}
}

// NewDispatcher creates a Dispatcher for the given bus and handler.
func NewDispatcher(bus *Bus, handler LifecycleHandler) *Dispatcher {
	return &Dispatcher{
		bus:     bus,
		handler: handler,
		done:    make(chan struct{}),
	}
}

// Start begins pumping events in background goroutines.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(3)

	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-d.done:
				return
			case event, ok := <-d.bus.TrackStarted():
				if !ok {
					return
				}
				d.handler.HandleTrackStarted(ctx, event)
			}
		}
	}()

	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-d.done:
				return
			case event, ok := <-d.bus.TrackEnded():
				if !ok {
					return
				}
				d.handler.HandleTrackEnded(ctx, event)
			}
		}
	}()

	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-d.done:
				return
			case event, ok := <-d.bus.TrackPaused():
				if !ok {
					return
				}
				d.handler.HandleTrackPaused(ctx, event)
			}
		}
	}()

	slog.Debug("lifecycle event dispatcher started")
}

// Stop stops the dispatcher and waits for its goroutines to finish.
func (d *Dispatcher) Stop() {
	close(d.done)
	d.wg.Wait()
	slog.Debug("lifecycle event dispatcher stopped")
}
