package presentation

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/application/usecases"
	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/infrastructure"
)

// EventHandlers bridges Discord gateway events into the module: voice
// handshake events go to the Lavalink adapter, presence transitions go to
// the presence reactor.
type EventHandlers struct {
	botID    snowflake.ID
	adapter  *infrastructure.LavalinkAdapter
	presence *usecases.PresenceService
}

// NewEventHandlers creates a new EventHandlers.
func NewEventHandlers(
	botID snowflake.ID,
	adapter *infrastructure.LavalinkAdapter,
	presence *usecases.PresenceService,
) *EventHandlers {
	return &EventHandlers{
		botID:    botID,
		adapter:  adapter,
		presence: presence,
	}
}

// HandleVoiceStateUpdate handles VoiceStateUpdate events for every user.
func (h *EventHandlers) HandleVoiceStateUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	// The adapter filters for the bot's own updates internally.
	h.adapter.OnVoiceStateUpdate(event)

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}
	userID, err := snowflake.Parse(event.UserID)
	if err != nil {
		slog.Error("failed to parse user ID in voice state update", "error", err)
		return
	}

	change := usecases.VoicePresenceChange{
		GuildID: guildID,
		UserID:  userID,
		IsBot:   event.UserID == h.botID.String(),
	}
	if event.ChannelID != "" {
		if id, err := snowflake.Parse(event.ChannelID); err == nil {
			change.NewChannelID = id
		}
	}
	if event.BeforeUpdate != nil && event.BeforeUpdate.ChannelID != "" {
		if id, err := snowflake.Parse(event.BeforeUpdate.ChannelID); err == nil {
			change.OldChannelID = id
		}
	}

	h.presence.HandleVoicePresenceChange(context.Background(), change)
}

// HandleVoiceServerUpdate handles VoiceServerUpdate events.
func (h *EventHandlers) HandleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	h.adapter.OnVoiceServerUpdate(event)
}
