package infrastructure

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/application/ports"
)

// DiscordUserInfoProvider fetches member display info for track attribution.
type DiscordUserInfoProvider struct {
	session *discordgo.Session
}

// NewDiscordUserInfoProvider creates a DiscordUserInfoProvider.
func NewDiscordUserInfoProvider(session *discordgo.Session) *DiscordUserInfoProvider {
	return &DiscordUserInfoProvider{session: session}
}

// GetUserInfo fetches display info for a user in a guild.
func (p *DiscordUserInfoProvider) GetUserInfo(guildID, userID snowflake.ID) (*ports.UserInfo, error) {
	member, err := p.session.GuildMember(guildID.String(), userID.String())
	if err != nil {
		return nil, fmt.Errorf("fetching guild member: %w", err)
	}

	return &ports.UserInfo{
		DisplayName: memberDisplayName(member),
		AvatarURL:   member.User.AvatarURL(""),
	}, nil
}

// memberDisplayName picks the effective display name: guild nickname, then
// global display name, then username.
func memberDisplayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}

// Ensure DiscordUserInfoProvider implements ports.UserInfoProvider.
var _ ports.UserInfoProvider = (*DiscordUserInfoProvider)(nil)
