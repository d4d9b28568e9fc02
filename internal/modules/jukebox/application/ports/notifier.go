package ports

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/domain"
)

// NotificationSender delivers playback announcements to text channels.
// Deliveries are fire-and-forget: callers log failures and never roll back
// the state transition that triggered the notice.
type NotificationSender interface {
	// SendNowPlaying posts a "now playing" embed and returns the message ID
	// so it can be deleted when the track ends.
	SendNowPlaying(channelID snowflake.ID, track *domain.Track) (snowflake.ID, error)

	// DeleteMessage deletes a previously posted message.
	DeleteMessage(channelID, messageID snowflake.ID) error

	// SendNotice posts a plain informational embed (paused/resumed,
	// "no more tracks", skip notices).
	SendNotice(channelID snowflake.ID, message string) error

	// SendError posts an error embed.
	SendError(channelID snowflake.ID, message string) error
}
