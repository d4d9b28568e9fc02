package jukebox

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"

	"github.com/tsubomi-dev/melobot/internal/bot"
	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/application/events"
	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/application/usecases"
	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/infrastructure"
	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/presentation"
)

func init() {
	bot.Register(&JukeboxModule{})
}

// Compile-time interface checks.
var (
	_ bot.Module             = (*JukeboxModule)(nil)
	_ bot.ConfigurableModule = (*JukeboxModule)(nil)
)

// JukeboxModule provides per-guild audio playback: queueing, skipping,
// looping and presence-driven pause/resume.
type JukeboxModule struct {
	config *Config

	adapter    *infrastructure.LavalinkAdapter
	bus        *events.Bus
	dispatcher *events.Dispatcher

	handlers      *presentation.Handlers
	eventHandlers *presentation.EventHandlers

	cancel context.CancelFunc
}

// Name returns the module name.
func (m *JukeboxModule) Name() string {
	return "jukebox"
}

// Commands returns the slash commands for this module.
func (m *JukeboxModule) Commands() []*discordgo.ApplicationCommand {
	return presentation.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *JukeboxModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"join":   m.handlers.HandleJoin,
		"leave":  m.handlers.HandleLeave,
		"play":   m.handlers.HandlePlay,
		"skip":   m.handlers.HandleSkip,
		"skipto": m.handlers.HandleSkipTo,
		"queue":  m.handlers.HandleQueue,
		"loop":   m.handlers.HandleLoop,
		"pause":  m.handlers.HandlePause,
		"resume": m.handlers.HandleResume,
		"stop":   m.handlers.HandleStop,
	}
}

// EventHandlers returns the gateway event handlers for this module.
func (m *JukeboxModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.eventHandlers.HandleVoiceStateUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.eventHandlers.HandleVoiceServerUpdate(s, event)
		},
	}
}

// LoadConfig loads module configuration from environment variables.
func (m *JukeboxModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init wires the module: Lavalink adapter, state registry, services and the
// lifecycle dispatcher. The session is already open.
func (m *JukeboxModule) Init(deps bot.ModuleDependencies) error {
	m.bus = events.NewBus(events.DefaultEventBufferSize)

	adapter, err := infrastructure.NewLavalinkAdapter(deps.Session, m.bus, infrastructure.LavalinkConfig{
		Address:  m.config.LavalinkAddress,
		Password: m.config.LavalinkPassword,
	})
	if err != nil {
		return err
	}
	m.adapter = adapter

	registry := infrastructure.NewMemoryRegistry()
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)
	userInfo := infrastructure.NewDiscordUserInfoProvider(deps.Session)
	notifier := infrastructure.NewNotifier(deps.Session)

	playback := usecases.NewPlaybackService(registry, adapter, adapter, notifier, voiceState, userInfo)
	voice := usecases.NewVoiceService(registry, adapter, voiceState)
	lifecycle := usecases.NewLifecycleService(registry, adapter, adapter, notifier)
	presence := usecases.NewPresenceService(registry, adapter, notifier, voiceState)

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.dispatcher = events.NewDispatcher(m.bus, lifecycle)
	m.dispatcher.Start(ctx)

	m.handlers = presentation.NewHandlers(playback, voice)
	m.eventHandlers = presentation.NewEventHandlers(adapter.BotID(), adapter, presence)

	slog.Info("jukebox module initialized")
	return nil
}

// Shutdown stops the dispatcher and closes the Lavalink connection.
func (m *JukeboxModule) Shutdown() error {
	if m.cancel != nil {
		m.cancel()
	}
	if m.bus != nil {
		m.bus.Close()
	}
	if m.dispatcher != nil {
		m.dispatcher.Stop()
	}
	if m.adapter != nil {
		m.adapter.Close()
	}
	return nil
}
