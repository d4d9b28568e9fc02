package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"

	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/application/ports"
	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/domain"
)

// voiceConnectTimeout bounds how long JoinChannel waits for the Discord
// voice handshake to complete.
const voiceConnectTimeout = 10 * time.Second

// voiceHandshake collects the two gateway events Lavalink needs before it can
// open a voice connection. Discord delivers VoiceStateUpdate and
// VoiceServerUpdate in no particular order; forwarding either one alone
// produces a partial voice state on the node.
type voiceHandshake struct {
	mu sync.Mutex

	haveState  bool
	channelID  *snowflake.ID
	sessionID  string
	haveServer bool
	token      string
	endpoint   string

	// ready is closed once both halves arrived. Re-armed by each join.
	ready chan struct{}
}

// arm resets the completion signal for a fresh join attempt and returns the
// channel the joiner should wait on.
func (h *voiceHandshake) arm() <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = make(chan struct{})
	return h.ready
}

// setState records the VoiceStateUpdate half. Returns the complete handshake
// data when both halves are present, or false.
func (h *voiceHandshake) setState(channelID *snowflake.ID, sessionID string) (handshakeData, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.haveState = true
	h.channelID = channelID
	h.sessionID = sessionID
	return h.takeLocked()
}

// setServer records the VoiceServerUpdate half.
func (h *voiceHandshake) setServer(token, endpoint string) (handshakeData, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.haveServer = true
	h.token = token
	h.endpoint = endpoint
	return h.takeLocked()
}

type handshakeData struct {
	channelID *snowflake.ID
	sessionID string
	token     string
	endpoint  string
}

// takeLocked returns and clears the buffered halves once both are present,
// and closes the ready signal. Caller holds h.mu.
func (h *voiceHandshake) takeLocked() (handshakeData, bool) {
	if !h.haveState || !h.haveServer {
		return handshakeData{}, false
	}
	data := handshakeData{
		channelID: h.channelID,
		sessionID: h.sessionID,
		token:     h.token,
		endpoint:  h.endpoint,
	}
	h.haveState = false
	h.haveServer = false
	h.channelID = nil
	h.sessionID = ""
	h.token = ""
	h.endpoint = ""

	if h.ready != nil {
		select {
		case <-h.ready:
		default:
			close(h.ready)
		}
	}
	return data, true
}

// LavalinkAdapter implements the audio transport and track resolver ports on
// top of a Lavalink node, bridging Discord gateway voice events into the
// node and node lifecycle events onto the application bus.
type LavalinkAdapter struct {
	link    disgolink.Client
	session *discordgo.Session
	botID   snowflake.ID
	bus     ports.EventPublisher

	handshakeMu sync.Mutex
	handshakes  map[snowflake.ID]*voiceHandshake
}

// LavalinkConfig holds the node connection settings.
type LavalinkConfig struct {
	Address  string
	Password string
}

// NewLavalinkAdapter connects to the configured Lavalink node. The session
// must already be open so the bot user is known.
func NewLavalinkAdapter(
	session *discordgo.Session,
	bus ports.EventPublisher,
	config LavalinkConfig,
) (*LavalinkAdapter, error) {
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing bot ID: %w", err)
	}

	adapter := &LavalinkAdapter{
		session:    session,
		botID:      botID,
		bus:        bus,
		handshakes: make(map[snowflake.ID]*voiceHandshake),
	}

	adapter.link = disgolink.New(botID,
		disgolink.WithListenerFunc(adapter.onTrackStart),
		disgolink.WithListenerFunc(adapter.onTrackEnd),
		disgolink.WithListenerFunc(adapter.onTrackException),
		disgolink.WithListenerFunc(adapter.onTrackStuck),
		disgolink.WithListenerFunc(adapter.onPlayerPause),
		disgolink.WithListenerFunc(adapter.onPlayerResume),
	)

	node, err := adapter.link.AddNode(context.Background(), disgolink.NodeConfig{
		Name:     "main",
		Address:  config.Address,
		Password: config.Password,
		Secure:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("adding Lavalink node: %w", err)
	}
	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", config.Address)

	return adapter, nil
}

// Close disconnects from the Lavalink node.
func (a *LavalinkAdapter) Close() {
	a.link.Close()
}

// BotID returns the bot's user ID.
func (a *LavalinkAdapter) BotID() snowflake.ID {
	return a.botID
}

// JoinChannel connects the bot to a voice channel and waits until the voice
// handshake reaches the Lavalink node.
func (a *LavalinkAdapter) JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error {
	ready := a.handshake(guildID).arm()

	if err := a.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, true); err != nil {
		return fmt.Errorf("joining voice channel: %w", err)
	}

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for voice connection: %w", ctx.Err())
	case <-time.After(voiceConnectTimeout):
		return fmt.Errorf("timed out waiting for voice connection")
	}
}

// LeaveChannel disconnects from voice and destroys the guild's player.
func (a *LavalinkAdapter) LeaveChannel(ctx context.Context, guildID snowflake.ID) error {
	if player := a.link.ExistingPlayer(guildID); player != nil {
		if err := player.Destroy(ctx); err != nil {
			slog.Warn("failed to destroy player", "guild", guildID, "error", err)
		}
	}

	if err := a.session.ChannelVoiceJoinManual(guildID.String(), "", false, false); err != nil {
		return fmt.Errorf("leaving voice channel: %w", err)
	}
	return nil
}

// Play starts playback of the given track on the guild's player.
func (a *LavalinkAdapter) Play(ctx context.Context, guildID snowflake.ID, track *domain.Track) error {
	player := a.link.Player(guildID)
	if err := player.Update(ctx, lavalink.WithEncodedTrack(track.Encoded)); err != nil {
		return fmt.Errorf("starting track: %w", err)
	}
	return nil
}

// Stop stops the current playback without leaving the channel.
func (a *LavalinkAdapter) Stop(ctx context.Context, guildID snowflake.ID) error {
	player := a.link.Player(guildID)
	if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("stopping playback: %w", err)
	}
	return nil
}

// Pause pauses the current playback.
func (a *LavalinkAdapter) Pause(ctx context.Context, guildID snowflake.ID) error {
	player := a.link.Player(guildID)
	if err := player.Update(ctx, lavalink.WithPaused(true)); err != nil {
		return fmt.Errorf("pausing playback: %w", err)
	}
	return nil
}

// Resume resumes paused playback.
func (a *LavalinkAdapter) Resume(ctx context.Context, guildID snowflake.ID) error {
	player := a.link.Player(guildID)
	if err := player.Update(ctx, lavalink.WithPaused(false)); err != nil {
		return fmt.Errorf("resuming playback: %w", err)
	}
	return nil
}

// LoadTracks resolves a URL or search query through the node.
func (a *LavalinkAdapter) LoadTracks(ctx context.Context, query string) (*ports.LoadResult, error) {
	node := a.link.BestNode()
	if node == nil {
		return nil, fmt.Errorf("no Lavalink node available")
	}

	result, err := node.LoadTracks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading tracks: %w", err)
	}
	return convertLoadResult(result), nil
}

func convertLoadResult(result *lavalink.LoadResult) *ports.LoadResult {
	switch data := result.Data.(type) {
	case lavalink.Track:
		return &ports.LoadResult{
			Type:   ports.LoadTypeTrack,
			Tracks: []*ports.TrackInfo{convertTrack(data)},
		}
	case lavalink.Playlist:
		tracks := make([]*ports.TrackInfo, len(data.Tracks))
		for i, track := range data.Tracks {
			tracks[i] = convertTrack(track)
		}
		return &ports.LoadResult{
			Type:         ports.LoadTypePlaylist,
			Tracks:       tracks,
			PlaylistName: data.Info.Name,
		}
	case lavalink.Search:
		tracks := make([]*ports.TrackInfo, len(data))
		for i, track := range data {
			tracks[i] = convertTrack(track)
		}
		return &ports.LoadResult{
			Type:   ports.LoadTypeSearch,
			Tracks: tracks,
		}
	case lavalink.Exception:
		return &ports.LoadResult{Type: ports.LoadTypeError}
	default:
		return &ports.LoadResult{Type: ports.LoadTypeEmpty}
	}
}

func convertTrack(track lavalink.Track) *ports.TrackInfo {
	info := track.Info
	return &ports.TrackInfo{
		Identifier: info.Identifier,
		Encoded:    track.Encoded,
		Title:      info.Title,
		Artist:     info.Author,
		Duration:   time.Duration(info.Length) * time.Millisecond,
		URI:        derefString(info.URI),
		ArtworkURL: derefString(info.ArtworkURL),
		SourceName: info.SourceName,
		IsStream:   info.IsStream,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// OnVoiceServerUpdate forwards the server half of the voice handshake. Must
// be wired to the gateway VoiceServerUpdate event.
func (a *LavalinkAdapter) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice server update", "error", err)
		return
	}

	if data, ok := a.handshake(guildID).setServer(event.Token, event.Endpoint); ok {
		a.forwardHandshake(guildID, data)
	}
}

// OnVoiceStateUpdate forwards the state half of the voice handshake. Updates
// about users other than the bot are ignored.
func (a *LavalinkAdapter) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	if event.UserID != a.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	if event.ChannelID == "" {
		// Disconnects need no server half.
		a.link.OnVoiceStateUpdate(context.Background(), guildID, nil, event.SessionID)
		a.dropHandshake(guildID)
		return
	}

	channelID, err := snowflake.Parse(event.ChannelID)
	if err != nil {
		slog.Error("failed to parse channel ID in voice state update", "error", err)
		return
	}

	if data, ok := a.handshake(guildID).setState(&channelID, event.SessionID); ok {
		a.forwardHandshake(guildID, data)
	}
}

func (a *LavalinkAdapter) handshake(guildID snowflake.ID) *voiceHandshake {
	a.handshakeMu.Lock()
	defer a.handshakeMu.Unlock()

	hs, ok := a.handshakes[guildID]
	if !ok {
		hs = &voiceHandshake{}
		a.handshakes[guildID] = hs
	}
	return hs
}

func (a *LavalinkAdapter) dropHandshake(guildID snowflake.ID) {
	a.handshakeMu.Lock()
	defer a.handshakeMu.Unlock()
	delete(a.handshakes, guildID)
}

// forwardHandshake delivers a complete handshake to the node, state half
// first.
func (a *LavalinkAdapter) forwardHandshake(guildID snowflake.ID, data handshakeData) {
	slog.Debug("forwarding voice handshake to Lavalink",
		"guild", guildID, "channel", data.channelID)

	a.link.OnVoiceStateUpdate(context.Background(), guildID, data.channelID, data.sessionID)
	a.link.OnVoiceServerUpdate(context.Background(), guildID, data.token, data.endpoint)
}

func (a *LavalinkAdapter) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("track started", "guild", player.GuildID(), "track", event.Track.Info.Title)
	a.bus.PublishTrackStarted(domain.TrackStartedEvent{GuildID: player.GuildID()})
}

func (a *LavalinkAdapter) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	slog.Debug("track ended", "guild", player.GuildID(), "reason", event.Reason)
	a.bus.PublishTrackEnded(domain.TrackEndedEvent{
		GuildID: player.GuildID(),
		Reason:  convertEndReason(event.Reason),
	})
}

// onPlayerPause mirrors a pause observed on the player into the bus. The
// client synthesizes this event for every paused flip, so flips already
// committed by a command arrive with matching state and are dropped by the
// lifecycle handler.
func (a *LavalinkAdapter) onPlayerPause(player disgolink.Player, event lavalink.PlayerPauseEvent) {
	slog.Debug("player paused", "guild", player.GuildID())
	a.bus.PublishTrackPaused(domain.TrackPausedEvent{
		GuildID: player.GuildID(),
		Paused:  true,
	})
}

func (a *LavalinkAdapter) onPlayerResume(player disgolink.Player, event lavalink.PlayerResumeEvent) {
	slog.Debug("player resumed", "guild", player.GuildID())
	a.bus.PublishTrackPaused(domain.TrackPausedEvent{
		GuildID: player.GuildID(),
		Paused:  false,
	})
}

// onTrackException reports a playback failure. The node follows up with a
// TrackEndEvent carrying a loadFailed reason, so nothing is published here.
func (a *LavalinkAdapter) onTrackException(player disgolink.Player, event lavalink.TrackExceptionEvent) {
	slog.Warn("track exception",
		"guild", player.GuildID(), "error", event.Exception.Message)
}

// onTrackStuck treats a stuck track as a load failure so the queue advances
// instead of hanging on dead audio.
func (a *LavalinkAdapter) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn("track stuck", "guild", player.GuildID(), "threshold", event.Threshold)
	a.bus.PublishTrackEnded(domain.TrackEndedEvent{
		GuildID: player.GuildID(),
		Reason:  domain.TrackEndLoadFailed,
	})
}

func convertEndReason(reason lavalink.TrackEndReason) domain.TrackEndReason {
	switch reason {
	case lavalink.TrackEndReasonFinished:
		return domain.TrackEndFinished
	case lavalink.TrackEndReasonLoadFailed:
		return domain.TrackEndLoadFailed
	case lavalink.TrackEndReasonStopped:
		return domain.TrackEndStopped
	case lavalink.TrackEndReasonReplaced:
		return domain.TrackEndReplaced
	case lavalink.TrackEndReasonCleanup:
		return domain.TrackEndCleanup
	default:
		return domain.TrackEndStopped
	}
}

// Ensure LavalinkAdapter implements the port interfaces.
var (
	_ ports.AudioTransport = (*LavalinkAdapter)(nil)
	_ ports.TrackResolver  = (*LavalinkAdapter)(nil)
)
