package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// StateRegistry stores the per-guild playback aggregates. A guild's state is
// created on the first play/join and deleted on leave or gateway disconnect;
// guilds that are only ever queried never allocate an entry.
type StateRegistry interface {
	// Get returns the GuildState for the given guild, or nil if not connected.
	Get(guildID snowflake.ID) *GuildState

	// GetOrCreate returns the existing GuildState or creates a fresh one
	// bound to the given channels.
	GetOrCreate(guildID, voiceChannelID, notificationChannelID snowflake.ID) *GuildState

	// Delete removes the GuildState for the given guild.
	Delete(guildID snowflake.ID)

	// Count returns the number of tracked guilds.
	Count() int
}
