package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// VoiceStateProvider exposes Discord voice-state lookups needed by the
// orchestrator and the presence reactor.
type VoiceStateProvider interface {
	// GetUserVoiceChannel returns the voice channel the user is currently
	// in, or 0 if the user is not in a voice channel.
	GetUserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error)

	// CountChannelOccupants returns how many members are connected to the
	// given voice channel, the bot included. A count of 1 while the bot is
	// connected means the bot is alone.
	CountChannelOccupants(guildID, channelID snowflake.ID) (int, error)
}

// UserInfo contains display information for a Discord user.
type UserInfo struct {
	DisplayName string
	AvatarURL   string
}

// UserInfoProvider fetches user display information for track attribution.
type UserInfoProvider interface {
	GetUserInfo(guildID, userID snowflake.ID) (*UserInfo, error)
}
