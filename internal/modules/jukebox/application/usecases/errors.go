package usecases

import "errors"

// Errors surfaced by the jukebox use cases. Session errors are returned to
// the command layer and never retried; resolve failures are recovered
// locally up to a bounded number of consecutive skips.
var (
	// ErrNotConnected is returned when an operation requires an active
	// voice session for the guild.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrUserNotInVoice is returned when the requesting user is not in a
	// voice channel.
	ErrUserNotInVoice = errors.New("you must be in a voice channel")

	// ErrNotPlaying is returned when no track is currently playing.
	ErrNotPlaying = errors.New("nothing is currently playing")

	// ErrNoResults is returned when a query resolves to no tracks.
	ErrNoResults = errors.New("no results found")

	// ErrNoPlayableTracks is returned when every candidate track in a batch
	// failed to resolve within the retry budget.
	ErrNoPlayableTracks = errors.New("could not queue any tracks")

	// ErrInvalidPosition is returned when a skip-to position is out of
	// range. Nothing is mutated.
	ErrInvalidPosition = errors.New("invalid queue position")
)
