package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"

	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/application/ports"
	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/domain"
)

// VoiceService handles explicit join and leave commands, separate from the
// implicit join a play command performs.
type VoiceService struct {
	registry   domain.StateRegistry
	transport  ports.AudioTransport
	voiceState ports.VoiceStateProvider
}

// NewVoiceService creates a VoiceService wired to the given ports.
func NewVoiceService(
	registry domain.StateRegistry,
	transport ports.AudioTransport,
	voiceState ports.VoiceStateProvider,
) *VoiceService {
	return &VoiceService{
		registry:   registry,
		transport:  transport,
		voiceState: voiceState,
	}
}

// Join connects the bot to the voice channel the user is in. Joining the
// channel the bot already occupies is a no-op success.
func (s *VoiceService) Join(
	ctx context.Context,
	guildID, channelID, userID snowflake.ID,
) (snowflake.ID, error) {
	voiceChannelID, err := s.voiceState.GetUserVoiceChannel(guildID, userID)
	if err != nil {
		return 0, fmt.Errorf("looking up voice state: %w", err)
	}
	if voiceChannelID == 0 {
		return 0, ErrUserNotInVoice
	}

	created := s.registry.Get(guildID) == nil
	state := s.registry.GetOrCreate(guildID, voiceChannelID, channelID)

	if err := s.transport.JoinChannel(ctx, guildID, voiceChannelID); err != nil {
		state.Lock()
		empty := created && !state.IsPlaybackActive() &&
			state.Queue.IsEmpty() && state.Waiting.Len() == 0
		state.Unlock()
		if empty {
			s.registry.Delete(guildID)
		}
		return 0, fmt.Errorf("joining voice channel: %w", err)
	}

	state.Lock()
	state.SetVoiceChannelID(voiceChannelID)
	state.SetNotificationChannelID(channelID)
	state.Unlock()
	return voiceChannelID, nil
}

// Leave disconnects the bot and drops the guild's playback state. Leaving an
// already-disconnected guild is a no-op success.
func (s *VoiceService) Leave(ctx context.Context, guildID snowflake.ID) error {
	state := s.registry.Get(guildID)
	if state == nil {
		return nil
	}

	state.Lock()
	state.Reset()
	state.Unlock()

	if err := s.transport.LeaveChannel(ctx, guildID); err != nil {
		slog.Warn("failed to leave voice channel", "guild", guildID, "error", err)
	}
	s.registry.Delete(guildID)
	return nil
}
