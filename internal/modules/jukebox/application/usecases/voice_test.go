package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/disgoorg/snowflake/v2"
)

func TestVoiceService_Join(t *testing.T) {
	guildID := snowflake.ID(1)
	textChannelID := snowflake.ID(3)
	voiceChannelID := snowflake.ID(4)
	userID := snowflake.ID(123)

	t.Run("joins the user's channel", func(t *testing.T) {
		registry := newMockRegistry()
		transport := &mockTransport{}
		voiceState := &mockVoiceState{
			channels: map[snowflake.ID]snowflake.ID{userID: voiceChannelID},
		}

		service := NewVoiceService(registry, transport, voiceState)
		joined, err := service.Join(context.Background(), guildID, textChannelID, userID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if joined != voiceChannelID {
			t.Errorf("expected channel %d, got %d", voiceChannelID, joined)
		}
		if len(transport.joined) != 1 {
			t.Errorf("expected one join, got %d", len(transport.joined))
		}

		state := registry.Get(guildID)
		if state == nil {
			t.Fatal("expected guild state to exist")
		}
		state.Lock()
		defer state.Unlock()
		if state.VoiceChannelID() != voiceChannelID {
			t.Errorf("expected voice channel %d, got %d", voiceChannelID, state.VoiceChannelID())
		}
	})

	t.Run("user not in voice", func(t *testing.T) {
		service := NewVoiceService(newMockRegistry(), &mockTransport{}, &mockVoiceState{})
		if _, err := service.Join(context.Background(), guildID, textChannelID, userID); !errors.Is(err, ErrUserNotInVoice) {
			t.Errorf("expected ErrUserNotInVoice, got %v", err)
		}
	})

	t.Run("join failure surfaces and evicts fresh state", func(t *testing.T) {
		registry := newMockRegistry()
		transport := &mockTransport{joinErr: errors.New("no permission")}
		voiceState := &mockVoiceState{
			channels: map[snowflake.ID]snowflake.ID{userID: voiceChannelID},
		}
		service := NewVoiceService(registry, transport, voiceState)
		if _, err := service.Join(context.Background(), guildID, textChannelID, userID); err == nil {
			t.Error("expected an error")
		}
		if registry.Get(guildID) != nil {
			t.Error("expected no guild state after a failed join")
		}
	})
}

func TestVoiceService_Leave(t *testing.T) {
	guildID := snowflake.ID(1)

	t.Run("drops state and disconnects", func(t *testing.T) {
		registry := newMockRegistry()
		state := registry.createConnectedState(guildID, snowflake.ID(4), snowflake.ID(3))
		state.Queue.Append(mockTrack("A"))

		transport := &mockTransport{}
		service := NewVoiceService(registry, transport, &mockVoiceState{})

		if err := service.Leave(context.Background(), guildID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if registry.Get(guildID) != nil {
			t.Error("expected guild state to be dropped")
		}
		if len(transport.left) != 1 {
			t.Errorf("expected one leave, got %d", len(transport.left))
		}
	})

	t.Run("leave while disconnected is a no-op success", func(t *testing.T) {
		transport := &mockTransport{}
		service := NewVoiceService(newMockRegistry(), transport, &mockVoiceState{})

		if err := service.Leave(context.Background(), guildID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(transport.left) != 0 {
			t.Error("expected no transport leave")
		}
	})
}
