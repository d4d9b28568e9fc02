package usecases

import (
	"context"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"

	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/application/ports"
	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/domain"
)

// VoicePresenceChange describes one voice-state transition observed on the
// gateway. OldChannelID and NewChannelID are zero when the user was not in,
// or is leaving, voice respectively.
type VoicePresenceChange struct {
	GuildID      snowflake.ID
	UserID       snowflake.ID
	OldChannelID snowflake.ID
	NewChannelID snowflake.ID
	IsBot        bool // true when the change is about this bot itself
}

// PresenceService reacts to voice presence changes: it auto-pauses when the
// bot is left alone in its channel, auto-resumes when someone comes back,
// follows the bot across channel moves, and hard-resets the guild when the
// bot is disconnected from voice.
type PresenceService struct {
	registry   domain.StateRegistry
	transport  ports.AudioTransport
	notifier   ports.NotificationSender
	voiceState ports.VoiceStateProvider
}

// NewPresenceService creates a PresenceService wired to the given ports.
func NewPresenceService(
	registry domain.StateRegistry,
	transport ports.AudioTransport,
	notifier ports.NotificationSender,
	voiceState ports.VoiceStateProvider,
) *PresenceService {
	return &PresenceService{
		registry:   registry,
		transport:  transport,
		notifier:   notifier,
		voiceState: voiceState,
	}
}

// HandleVoicePresenceChange is the single entry point for gateway voice
// events. Changes for guilds without playback state are ignored.
func (s *PresenceService) HandleVoicePresenceChange(ctx context.Context, change VoicePresenceChange) {
	state := s.registry.Get(change.GuildID)
	if state == nil {
		return
	}

	if change.IsBot {
		s.handleBotChange(ctx, state, change)
		return
	}

	state.Lock()
	botChannel := state.VoiceChannelID()
	state.Unlock()
	if botChannel == 0 {
		return
	}
	// Only transitions touching the bot's channel matter.
	if change.OldChannelID != botChannel && change.NewChannelID != botChannel {
		return
	}

	occupants, err := s.voiceState.CountChannelOccupants(change.GuildID, botChannel)
	if err != nil {
		slog.Warn("failed to count channel occupants",
			"guild", change.GuildID, "channel", botChannel, "error", err)
		return
	}

	if occupants <= 1 {
		s.autoPause(ctx, state)
	} else {
		s.autoResume(ctx, state)
	}
}

// handleBotChange reacts to the bot's own voice state: a move re-binds the
// session to the new channel, a disconnect is a hard reset that discards all
// queued work for the guild.
func (s *PresenceService) handleBotChange(ctx context.Context, state *domain.GuildState, change VoicePresenceChange) {
	guildID := state.GuildID()

	if change.NewChannelID == 0 {
		state.Lock()
		msg := state.TakeNowPlayingMessage()
		state.Reset()
		state.Unlock()

		if msg != nil {
			if err := s.notifier.DeleteMessage(msg.ChannelID, msg.MessageID); err != nil {
				slog.Warn("failed to delete now-playing message",
					"guild", guildID, "error", err)
			}
		}
		if err := s.transport.LeaveChannel(ctx, guildID); err != nil {
			slog.Debug("transport cleanup after voice disconnect",
				"guild", guildID, "error", err)
		}
		s.registry.Delete(guildID)
		slog.Info("voice disconnect, guild state dropped", "guild", guildID)
		return
	}

	state.Lock()
	moved := state.VoiceChannelID() != change.NewChannelID
	state.SetVoiceChannelID(change.NewChannelID)
	playing := state.IsPlaybackActive() && !state.IsPaused()
	state.Unlock()

	if !moved {
		return
	}
	slog.Info("bot moved to a new voice channel",
		"guild", guildID, "channel", change.NewChannelID)
	if playing {
		if err := s.transport.Resume(ctx, guildID); err != nil {
			slog.Warn("failed to resume after channel move", "guild", guildID, "error", err)
		}
	}
}

// autoPause pauses playback because the bot is alone. The paused flag is
// committed in the same critical section as the guard, so the pause fires at
// most once even when gateway events for several departures arrive on
// concurrent goroutines.
func (s *PresenceService) autoPause(ctx context.Context, state *domain.GuildState) {
	state.Lock()
	if state.IsPaused() || !state.IsPlaybackActive() {
		state.Unlock()
		return
	}
	state.SetPaused(true, true)
	guildID := state.GuildID()
	channelID := state.NotificationChannelID()
	state.Unlock()

	if err := s.transport.Pause(ctx, guildID); err != nil {
		slog.Warn("failed to auto-pause", "guild", guildID, "error", err)
		state.Lock()
		state.SetPaused(false, false)
		state.Unlock()
		return
	}

	if err := s.notifier.SendNotice(channelID, "Paused playback because everyone left."); err != nil {
		slog.Warn("failed to send auto-pause notice", "guild", guildID, "error", err)
	}
}

// autoResume resumes playback that the reactor itself paused. Manual pauses
// are left alone. Committed under the guard's lock for the same exactly-once
// reason as autoPause.
func (s *PresenceService) autoResume(ctx context.Context, state *domain.GuildState) {
	state.Lock()
	if !state.IsPaused() || !state.IsAutoPaused() {
		state.Unlock()
		return
	}
	state.SetPaused(false, false)
	guildID := state.GuildID()
	channelID := state.NotificationChannelID()
	state.Unlock()

	if err := s.transport.Resume(ctx, guildID); err != nil {
		slog.Warn("failed to auto-resume", "guild", guildID, "error", err)
		state.Lock()
		state.SetPaused(true, true)
		state.Unlock()
		return
	}

	if err := s.notifier.SendNotice(channelID, "Resumed playback."); err != nil {
		slog.Warn("failed to send auto-resume notice", "guild", guildID, "error", err)
	}
}
