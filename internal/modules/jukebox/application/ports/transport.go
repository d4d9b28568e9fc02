package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/domain"
)

// AudioTransport is the audio-session boundary: voice channel membership and
// per-guild playback control. Lifecycle signals (start/end) flow back
// asynchronously through the event bus, not through return values here.
type AudioTransport interface {
	// JoinChannel connects the bot to the specified voice channel.
	// Joining the channel the bot is already in is idempotent.
	JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error

	// LeaveChannel disconnects the bot from voice and tears down the
	// guild's player.
	LeaveChannel(ctx context.Context, guildID snowflake.ID) error

	// Play starts playback of the given track on the guild's session.
	Play(ctx context.Context, guildID snowflake.ID, track *domain.Track) error

	// Stop stops the current playback without leaving the channel.
	Stop(ctx context.Context, guildID snowflake.ID) error

	// Pause pauses the current playback. Pausing a paused session is a no-op.
	Pause(ctx context.Context, guildID snowflake.ID) error

	// Resume resumes a paused playback. Resuming a playing session is a no-op.
	Resume(ctx context.Context, guildID snowflake.ID) error
}
