package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"

	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/application/ports"
	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/domain"
)

// PlaybackService is the orchestrator facade: the public play, skip, skip-to,
// queue, loop, pause, resume and stop operations consumed by the command
// layer. Every state mutation happens inside the owning guild's critical
// section; resolver and transport calls happen outside it.
type PlaybackService struct {
	registry   domain.StateRegistry
	resolver   ports.TrackResolver
	transport  ports.AudioTransport
	notifier   ports.NotificationSender
	voiceState ports.VoiceStateProvider
	userInfo   ports.UserInfoProvider
	driver     *driver
}

// NewPlaybackService creates a PlaybackService wired to the given ports.
func NewPlaybackService(
	registry domain.StateRegistry,
	resolver ports.TrackResolver,
	transport ports.AudioTransport,
	notifier ports.NotificationSender,
	voiceState ports.VoiceStateProvider,
	userInfo ports.UserInfoProvider,
) *PlaybackService {
	return &PlaybackService{
		registry:   registry,
		resolver:   resolver,
		transport:  transport,
		notifier:   notifier,
		voiceState: voiceState,
		userInfo:   userInfo,
		driver:     newDriver(resolver, transport, notifier),
	}
}

// PlayResult reports what a play call did: the track that started, or the
// number of entries parked on the waiting list and the position of the first.
type PlayResult struct {
	Started      *domain.Track
	QueuedCount  int
	Position     int // 1-indexed waiting-list position of the first queued entry
	PlaylistName string
}

// Play resolves the query into one or more track locators and queues them for
// the guild. If no playback is active the first locator becomes the queue
// head and starts immediately; otherwise every locator lands on the waiting
// list, which bounds the latency of a play call regardless of playlist size.
//
// The user must be in a voice channel; the bot joins it if not yet connected.
// Resolution failures surface as ErrNoResults with no state mutated.
func (s *PlaybackService) Play(
	ctx context.Context,
	guildID, channelID, userID snowflake.ID,
	query string,
) (*PlayResult, error) {
	result, err := s.resolver.LoadTracks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", query, err)
	}
	if result.Type == ports.LoadTypeEmpty || result.Type == ports.LoadTypeError ||
		len(result.Tracks) == 0 {
		return nil, ErrNoResults
	}

	infos := result.Tracks
	if result.Type == ports.LoadTypeSearch {
		// A search returns alternatives for one request, not a batch.
		infos = infos[:1]
	}

	voiceChannelID, err := s.voiceState.GetUserVoiceChannel(guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("looking up voice state: %w", err)
	}
	if voiceChannelID == 0 {
		return nil, ErrUserNotInVoice
	}

	requestedBy := s.lookupRequester(guildID, userID)

	created := s.registry.Get(guildID) == nil
	state := s.registry.GetOrCreate(guildID, voiceChannelID, channelID)

	state.Lock()
	targetChannel := state.VoiceChannelID()
	if targetChannel == 0 {
		targetChannel = voiceChannelID
	}
	state.SetNotificationChannelID(channelID)
	state.Unlock()

	if err := s.transport.JoinChannel(ctx, guildID, targetChannel); err != nil {
		// State created for this call is evicted again so a failed join
		// leaves no empty registry entry behind.
		state.Lock()
		empty := created && !state.IsPlaybackActive() &&
			state.Queue.IsEmpty() && state.Waiting.Len() == 0
		state.Unlock()
		if empty {
			s.registry.Delete(guildID)
		}
		return nil, fmt.Errorf("joining voice channel: %w", err)
	}

	state.Lock()
	state.SetVoiceChannelID(targetChannel)
	claimed := !state.IsPlaybackActive()
	position := 0
	if claimed {
		state.SetPlaybackActive(true)
		// An idle guild has no drive in flight, so the claim cannot fail.
		state.TryClaimDrive()
		// The head slot is ours: the first resolved track goes straight
		// into the queue, the rest wait.
		state.Queue.Append(trackFromInfo(infos[0], requestedBy))
		state.Waiting.Append(waitingEntries(infos[1:], requestedBy)...)
	} else {
		state.Waiting.Append(waitingEntries(infos, requestedBy)...)
		position = state.Waiting.Len() - len(infos) + 1
	}
	state.Unlock()

	res := &PlayResult{
		QueuedCount:  len(infos),
		Position:     position,
		PlaylistName: result.PlaylistName,
	}

	if !claimed {
		return res, nil
	}

	started, err := s.driver.startNext(ctx, state, false)
	if err != nil {
		return nil, err
	}
	res.Started = started
	return res, nil
}

// SkipResult reports the track that was skipped and the one that started in
// its place, if any.
type SkipResult struct {
	Skipped *domain.Track
	Next    *domain.Track
}

// Skip discards the current track and advances to the next playable one. The
// loop mode is deliberately not applied: a manual skip discards the track
// even under track looping. Returns ErrNotPlaying when nothing is playing.
func (s *PlaybackService) Skip(ctx context.Context, guildID snowflake.ID) (*SkipResult, error) {
	state := s.registry.Get(guildID)
	if state == nil {
		return nil, ErrNotConnected
	}
	return s.advance(ctx, state, 0)
}

// SkipTo discards the current track and every waiting-list entry before the
// given 1-indexed position, then starts that entry. An out-of-range position
// returns ErrInvalidPosition with nothing mutated.
func (s *PlaybackService) SkipTo(
	ctx context.Context,
	guildID snowflake.ID,
	position int,
) (*SkipResult, error) {
	state := s.registry.Get(guildID)
	if state == nil {
		return nil, ErrNotConnected
	}
	if position < 1 {
		return nil, ErrInvalidPosition
	}
	return s.advance(ctx, state, position)
}

// advance implements skip and skip-to: drop the head (and, for skip-to, the
// waiting-list prefix), then drive the queue forward. If another drive is
// already in flight for the guild, the skip is handed to it instead of
// starting a second one: at most one caller resolves and starts tracks per
// guild. If the queue drains the transport is stopped so the skipped track
// does not keep sounding.
func (s *PlaybackService) advance(
	ctx context.Context,
	state *domain.GuildState,
	position int,
) (*SkipResult, error) {
	state.Lock()
	if !state.IsPlaybackActive() && state.Queue.IsEmpty() {
		state.Unlock()
		return nil, ErrNotPlaying
	}
	if position > 0 && !state.Waiting.DropBefore(position) {
		state.Unlock()
		return nil, ErrInvalidPosition
	}
	skipped := state.Queue.PopFront()
	state.ClearCurrentSong()
	msg := state.TakeNowPlayingMessage()
	guildID := state.GuildID()
	claimed := state.TryClaimDrive()
	if !claimed && skipped == nil {
		// The in-flight drive is mid-resolve; the entry it is advancing to
		// is the one skipped, and the driver discards it on commit.
		state.RequestSkip()
	}
	state.Unlock()

	s.deleteMessage(guildID, msg)

	if !claimed {
		// The in-flight drive observes the popped head or the recorded skip
		// and starts the next track itself.
		return &SkipResult{Skipped: skipped}, nil
	}

	next, err := s.driver.startNext(ctx, state, false)
	if err != nil {
		return nil, err
	}
	if next == nil {
		if err := s.transport.Stop(ctx, guildID); err != nil {
			slog.Warn("failed to stop transport after skip", "guild", guildID, "error", err)
		}
	}
	return &SkipResult{Skipped: skipped, Next: next}, nil
}

// QueueSnapshot is a point-in-time view of a guild's playback state for the
// queue command.
type QueueSnapshot struct {
	Current  *domain.Track
	Paused   bool
	LoopMode domain.LoopMode
	Upcoming []*domain.Track
	Waiting  []domain.WaitingTrack
}

// Queue returns a consistent snapshot of the current track, the resolved
// queue and the waiting list.
func (s *PlaybackService) Queue(guildID snowflake.ID) (*QueueSnapshot, error) {
	state := s.registry.Get(guildID)
	if state == nil {
		return nil, ErrNotConnected
	}

	state.Lock()
	defer state.Unlock()
	return &QueueSnapshot{
		Current:  state.CurrentSong(),
		Paused:   state.IsPaused(),
		LoopMode: state.LoopMode(),
		Upcoming: state.Queue.Upcoming(),
		Waiting:  state.Waiting.Peek(),
	}, nil
}

// SetLoopMode sets the loop mode. Legal on an empty queue; it takes effect
// on the next track end.
func (s *PlaybackService) SetLoopMode(guildID snowflake.ID, mode domain.LoopMode) error {
	state := s.registry.Get(guildID)
	if state == nil {
		return ErrNotConnected
	}

	state.Lock()
	state.SetLoopMode(mode)
	state.Unlock()
	return nil
}

// CycleLoopMode cycles the loop mode and returns the new one.
func (s *PlaybackService) CycleLoopMode(guildID snowflake.ID) (domain.LoopMode, error) {
	state := s.registry.Get(guildID)
	if state == nil {
		return domain.LoopModeNone, ErrNotConnected
	}

	state.Lock()
	mode := state.CycleLoopMode()
	state.Unlock()
	return mode, nil
}

// Pause pauses playback. Pausing an already-paused guild is a no-op success.
// A manual pause is never undone by the presence reactor.
func (s *PlaybackService) Pause(ctx context.Context, guildID snowflake.ID) error {
	state := s.registry.Get(guildID)
	if state == nil {
		return ErrNotConnected
	}

	state.Lock()
	if state.IsPaused() {
		state.Unlock()
		return nil
	}
	// Committed with the check so a concurrent pause sees it and no-ops,
	// and the transport's own pause event finds the state already matching.
	state.SetPaused(true, false)
	state.Unlock()

	if err := s.transport.Pause(ctx, guildID); err != nil {
		state.Lock()
		state.SetPaused(false, false)
		state.Unlock()
		return fmt.Errorf("pausing playback: %w", err)
	}
	return nil
}

// Resume resumes paused playback. Resuming an already-playing guild is a
// no-op success.
func (s *PlaybackService) Resume(ctx context.Context, guildID snowflake.ID) error {
	state := s.registry.Get(guildID)
	if state == nil {
		return ErrNotConnected
	}

	state.Lock()
	if !state.IsPaused() {
		state.Unlock()
		return nil
	}
	wasAuto := state.IsAutoPaused()
	state.SetPaused(false, false)
	state.Unlock()

	if err := s.transport.Resume(ctx, guildID); err != nil {
		state.Lock()
		state.SetPaused(true, wasAuto)
		state.Unlock()
		return fmt.Errorf("resuming playback: %w", err)
	}
	return nil
}

// Stop clears both queues, disconnects from voice and drops the guild's
// state. Stopping an already-disconnected guild is a no-op success.
func (s *PlaybackService) Stop(ctx context.Context, guildID snowflake.ID) error {
	state := s.registry.Get(guildID)
	if state == nil {
		return nil
	}

	state.Lock()
	msg := state.TakeNowPlayingMessage()
	state.Reset()
	state.Unlock()

	s.deleteMessage(guildID, msg)

	if err := s.transport.LeaveChannel(ctx, guildID); err != nil {
		slog.Warn("failed to leave voice channel on stop", "guild", guildID, "error", err)
	}
	s.registry.Delete(guildID)
	return nil
}

// lookupRequester fetches display info for track attribution. Best effort:
// attribution falls back to the bare user ID when the lookup fails.
func (s *PlaybackService) lookupRequester(guildID, userID snowflake.ID) domain.RequestedBy {
	requestedBy := domain.RequestedBy{UserID: userID}
	info, err := s.userInfo.GetUserInfo(guildID, userID)
	if err != nil {
		slog.Warn("failed to fetch requester info", "guild", guildID, "user", userID, "error", err)
		return requestedBy
	}
	requestedBy.DisplayName = info.DisplayName
	requestedBy.AvatarURL = info.AvatarURL
	return requestedBy
}

func (s *PlaybackService) deleteMessage(guildID snowflake.ID, msg *domain.NowPlayingMessage) {
	if msg == nil {
		return
	}
	if err := s.notifier.DeleteMessage(msg.ChannelID, msg.MessageID); err != nil {
		slog.Warn("failed to delete now-playing message", "guild", guildID, "error", err)
	}
}

// waitingEntries wraps resolved track metadata as waiting-list entries keyed
// by each track's URI. Metadata is re-resolved when the entry reaches the
// front, so only the locator and attribution are retained.
func waitingEntries(infos []*ports.TrackInfo, requestedBy domain.RequestedBy) []domain.WaitingTrack {
	entries := make([]domain.WaitingTrack, 0, len(infos))
	for _, info := range infos {
		locator := info.URI
		if locator == "" {
			locator = info.Encoded
		}
		entries = append(entries, domain.WaitingTrack{
			Locator:     locator,
			RequestedBy: requestedBy,
		})
	}
	return entries
}
