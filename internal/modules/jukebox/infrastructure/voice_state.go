package infrastructure

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/application/ports"
)

// VoiceStateProvider answers voice-state queries from the gateway state
// cache. Requires the guild voice-state intent to be enabled.
type VoiceStateProvider struct {
	session *discordgo.Session
}

// NewVoiceStateProvider creates a VoiceStateProvider for the given session.
func NewVoiceStateProvider(session *discordgo.Session) *VoiceStateProvider {
	return &VoiceStateProvider{
		session: session,
	}
}

// GetUserVoiceChannel returns the voice channel the user is in, or 0 if the
// user is not in a voice channel.
func (v *VoiceStateProvider) GetUserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error) {
	guild, err := v.session.State.Guild(guildID.String())
	if err != nil {
		return 0, fmt.Errorf("looking up guild state: %w", err)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID.String() && vs.ChannelID != "" {
			return snowflake.Parse(vs.ChannelID)
		}
	}
	return 0, nil
}

// CountChannelOccupants returns how many members are connected to the given
// voice channel, the bot included.
func (v *VoiceStateProvider) CountChannelOccupants(guildID, channelID snowflake.ID) (int, error) {
	guild, err := v.session.State.Guild(guildID.String())
	if err != nil {
		return 0, fmt.Errorf("looking up guild state: %w", err)
	}

	count := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == channelID.String() {
			count++
		}
	}
	return count, nil
}

// Ensure VoiceStateProvider implements ports.VoiceStateProvider.
var _ ports.VoiceStateProvider = (*VoiceStateProvider)(nil)
