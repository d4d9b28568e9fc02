package usecases

import (
	"context"
	"log/slog"

	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/application/ports"
	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/domain"
)

// LifecycleService reacts to track lifecycle events from the transport: it
// announces "now playing" on start, applies the loop mode and pulls the next
// waiting-list entry on end, and announces pause flips. It implements
// events.LifecycleHandler.
type LifecycleService struct {
	registry domain.StateRegistry
	notifier ports.NotificationSender
	driver   *driver
}

// NewLifecycleService creates a LifecycleService wired to the given ports.
func NewLifecycleService(
	registry domain.StateRegistry,
	resolver ports.TrackResolver,
	transport ports.AudioTransport,
	notifier ports.NotificationSender,
) *LifecycleService {
	return &LifecycleService{
		registry: registry,
		notifier: notifier,
		driver:   newDriver(resolver, transport, notifier),
	}
}

// HandleTrackStarted commits the queue head as the audible track and posts
// the "now playing" message. The state commit happens before the announce so
// a delivery failure never leaves CurrentSong unset.
func (s *LifecycleService) HandleTrackStarted(ctx context.Context, event domain.TrackStartedEvent) {
	state := s.registry.Get(event.GuildID)
	if state == nil {
		slog.Warn("track started for unknown guild", "guild", event.GuildID)
		return
	}

	state.Lock()
	track := state.Queue.Current()
	if track == nil {
		// Start raced with a stop or disconnect that already cleared the
		// queue; nothing to announce.
		state.Unlock()
		return
	}
	state.SetCurrentSong(track)
	previous := state.TakeNowPlayingMessage()
	channelID := state.NotificationChannelID()
	state.Unlock()

	if previous != nil {
		if err := s.notifier.DeleteMessage(previous.ChannelID, previous.MessageID); err != nil {
			slog.Warn("failed to delete stale now-playing message",
				"guild", event.GuildID, "error", err)
		}
	}

	messageID, err := s.notifier.SendNowPlaying(channelID, track)
	if err != nil {
		slog.Warn("failed to send now-playing message",
			"guild", event.GuildID, "track", track.Title, "error", err)
		return
	}

	state.Lock()
	if state.Queue.Current() != track {
		// A stop or skip raced the announce; storing the ref would orphan
		// the message on state that no longer plays this track.
		state.Unlock()
		if err := s.notifier.DeleteMessage(channelID, messageID); err != nil {
			slog.Warn("failed to delete orphaned now-playing message",
				"guild", event.GuildID, "error", err)
		}
		return
	}
	state.SetNowPlayingMessage(channelID, messageID)
	state.Unlock()
}

// HandleTrackEnded advances the queue when a track finishes or fails to
// load. Ends caused by an explicit stop, skip replacement or player teardown
// are ignored: the command that caused them already decided what plays next.
func (s *LifecycleService) HandleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	if !event.Reason.ShouldAdvanceQueue() {
		return
	}

	state := s.registry.Get(event.GuildID)
	if state == nil {
		return
	}

	state.Lock()
	ended := state.Queue.PopFront()
	state.ClearCurrentSong()
	msg := state.TakeNowPlayingMessage()
	if ended != nil {
		switch state.LoopMode() {
		case domain.LoopModeTrack:
			state.Queue.PushFront(ended)
		case domain.LoopModeQueue:
			state.Waiting.Append(domain.WaitingTrack{
				Locator:     loopLocator(ended),
				RequestedBy: ended.RequestedBy,
			})
		}
	}
	claimed := state.TryClaimDrive()
	state.Unlock()

	if msg != nil {
		if err := s.notifier.DeleteMessage(msg.ChannelID, msg.MessageID); err != nil {
			slog.Warn("failed to delete now-playing message",
				"guild", event.GuildID, "error", err)
		}
	}

	if !claimed {
		// A drive is already advancing this guild; it observes the popped
		// head and keeps draining.
		return
	}

	if _, err := s.driver.startNext(ctx, state, true); err != nil {
		slog.Warn("failed to advance queue", "guild", event.GuildID, "error", err)
	}
}

// HandleTrackPaused mirrors transport-side pause flips into the aggregate and
// announces them. Flips that match the already-recorded state are dropped so
// command-initiated pauses are not announced twice.
func (s *LifecycleService) HandleTrackPaused(ctx context.Context, event domain.TrackPausedEvent) {
	state := s.registry.Get(event.GuildID)
	if state == nil {
		return
	}

	state.Lock()
	if state.IsPaused() == event.Paused {
		state.Unlock()
		return
	}
	state.SetPaused(event.Paused, false)
	channelID := state.NotificationChannelID()
	state.Unlock()

	message := "Playback resumed."
	if event.Paused {
		message = "Playback paused."
	}
	if err := s.notifier.SendNotice(channelID, message); err != nil {
		slog.Warn("failed to send pause notice", "guild", event.GuildID, "error", err)
	}
}

// loopLocator picks the locator used to re-queue an ended track under queue
// looping. The URI round-trips through the resolver; the encoded handle is
// the fallback for sources without one.
func loopLocator(track *domain.Track) string {
	if track.URI != "" {
		return track.URI
	}
	return track.Encoded
}
