package ports

import (
	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/domain"
)

// EventPublisher publishes transport lifecycle events asynchronously.
// Implemented by the event bus; called by the transport adapter.
type EventPublisher interface {
	PublishTrackStarted(event domain.TrackStartedEvent)
	PublishTrackEnded(event domain.TrackEndedEvent)
	PublishTrackPaused(event domain.TrackPausedEvent)
}
