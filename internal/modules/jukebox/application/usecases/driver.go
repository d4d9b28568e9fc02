package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/application/ports"
	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/domain"
)

// maxResolveAttempts bounds how many consecutive broken locators are skipped
// before the whole batch is declared unplayable. Keeps a single dead link
// from stalling a playlist without looping forever over garbage input.
const maxResolveAttempts = 3

// driver owns the queue-advancing loop shared by the play facade and the
// track-end lifecycle handler: pull the next candidate, resolve it outside
// the guild lock, commit it as the queue head, and hand it to the transport.
type driver struct {
	resolver  ports.TrackResolver
	transport ports.AudioTransport
	notifier  ports.NotificationSender
}

func newDriver(
	resolver ports.TrackResolver,
	transport ports.AudioTransport,
	notifier ports.NotificationSender,
) *driver {
	return &driver{
		resolver:  resolver,
		transport: transport,
		notifier:  notifier,
	}
}

// startNext starts the next playable track for the guild: the resolved queue
// head if one exists, otherwise waiting-list entries are resolved in FIFO
// order until one starts. Returns the started track, or (nil, nil) when both
// structures are empty, or ErrNoPlayableTracks after maxResolveAttempts
// consecutive failures.
//
// The caller must have claimed the drive (GuildState.TryClaimDrive) under
// the guild lock and released the lock; startNext releases the claim before
// returning. Skips arriving while the drive is in flight are recorded on the
// state and consumed here: each one discards the candidate currently being
// advanced to.
//
// notify controls end-of-queue announcements: lifecycle callbacks have no
// caller to return to, so they announce; facade calls report synchronously
// instead.
func (d *driver) startNext(
	ctx context.Context,
	state *domain.GuildState,
	notify bool,
) (*domain.Track, error) {
	failures := 0
	interrupted := false

	for {
		state.Lock()
		head := state.Queue.Current()
		if head == nil {
			entry := state.Waiting.PopFront()
			state.Unlock()

			if entry == nil {
				d.settle(ctx, state, notify, "", interrupted)
				return nil, nil
			}

			track, err := d.resolveEntry(ctx, entry)
			if err != nil {
				slog.Warn("failed to resolve waiting track, skipping",
					"guild", state.GuildID(),
					"locator", entry.Locator,
					"error", err,
				)
				failures++
				if failures >= maxResolveAttempts {
					d.settle(ctx, state, notify, "Could not queue any tracks.", interrupted)
					return nil, ErrNoPlayableTracks
				}
				continue
			}

			state.Lock()
			if state.TakeSkipRequest() {
				// A skip landed while this entry resolved; it is the track
				// being advanced to, so it is the one skipped.
				state.Unlock()
				interrupted = true
				continue
			}
			// The queue is empty here: only the drive owner appends resolved
			// tracks, and other writers go through the waiting list.
			state.Queue.Append(track)
			head = track
		}
		guildID := state.GuildID()
		state.Unlock()

		if err := d.transport.Play(ctx, guildID, head); err != nil {
			slog.Warn("transport rejected track, skipping",
				"guild", guildID,
				"track", head.Title,
				"error", err,
			)
			state.Lock()
			state.Queue.PopFront()
			state.Unlock()

			failures++
			if failures >= maxResolveAttempts {
				d.settle(ctx, state, notify, "Could not queue any tracks.", interrupted)
				return nil, ErrNoPlayableTracks
			}
			continue
		}

		state.Lock()
		if state.Queue.Current() != head {
			// A racing skip or end handler popped the track as it started.
			// It may still be sounding, so keep draining: the next start
			// replaces it, or settle stops the transport.
			state.Unlock()
			interrupted = true
			continue
		}
		state.ReleaseDrive()
		state.Unlock()
		return head, nil
	}
}

// resolveEntry resolves a waiting-list entry into a playable track. Network
// bound; never called under the guild lock.
func (d *driver) resolveEntry(
	ctx context.Context,
	entry *domain.WaitingTrack,
) (*domain.Track, error) {
	result, err := d.resolver.LoadTracks(ctx, entry.Locator)
	if err != nil {
		return nil, err
	}
	if result.Type == ports.LoadTypeEmpty || result.Type == ports.LoadTypeError ||
		len(result.Tracks) == 0 {
		return nil, ErrNoResults
	}

	return trackFromInfo(result.Tracks[0], entry.RequestedBy), nil
}

// trackFromInfo converts resolved metadata into a queued domain track.
func trackFromInfo(info *ports.TrackInfo, requestedBy domain.RequestedBy) *domain.Track {
	return &domain.Track{
		Encoded:     info.Encoded,
		Title:       info.Title,
		Artist:      info.Artist,
		Duration:    info.Duration,
		URI:         info.URI,
		ArtworkURL:  info.ArtworkURL,
		SourceName:  info.SourceName,
		Identifier:  info.Identifier,
		IsStream:    info.IsStream,
		RequestedBy: requestedBy,
		EnqueuedAt:  time.Now().UTC(),
	}
}

// settle releases the drive and the head-slot reservation once nothing is
// left to play and optionally announces the end of the queue. interrupted
// marks that a skip was consumed mid-drain, in which case the last started
// track may still be sounding and the transport is stopped. Announcement
// failures are logged only; the state transition has already committed.
func (d *driver) settle(
	ctx context.Context,
	state *domain.GuildState,
	notify bool,
	message string,
	interrupted bool,
) {
	state.Lock()
	state.SetPlaybackActive(false)
	state.ReleaseDrive()
	channelID := state.NotificationChannelID()
	guildID := state.GuildID()
	state.Unlock()

	if interrupted {
		if err := d.transport.Stop(ctx, guildID); err != nil {
			slog.Warn("failed to stop transport after skip",
				"guild", guildID,
				"error", err,
			)
		}
	}

	if !notify {
		return
	}
	if message == "" {
		message = "No more tracks in the queue."
	}
	if err := d.notifier.SendNotice(channelID, message); err != nil {
		slog.Warn("failed to send end-of-queue notice",
			"guild", guildID,
			"error", err,
		)
	}
}
