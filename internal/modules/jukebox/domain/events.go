package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// TrackEndReason represents why a track ended.
type TrackEndReason string

const (
	// TrackEndFinished means the track finished normally.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the track failed to load or play.
	TrackEndLoadFailed TrackEndReason = "load_failed"
	// TrackEndStopped means the track was stopped deliberately.
	TrackEndStopped TrackEndReason = "stopped"
	// TrackEndReplaced means the track was replaced by another.
	TrackEndReplaced TrackEndReason = "replaced"
	// TrackEndCleanup means the transport cleaned the track up.
	TrackEndCleanup TrackEndReason = "cleanup"
)

// ShouldAdvanceQueue returns true if this end reason should advance the
// queue. Stopped and replaced tracks were superseded by an explicit command
// that already decided what plays next.
func (r TrackEndReason) ShouldAdvanceQueue() bool {
	return r == TrackEndFinished || r == TrackEndLoadFailed
}

// TrackStartedEvent is fired by the transport when the active track begins
// to play audibly.
type TrackStartedEvent struct {
	GuildID snowflake.ID
}

// TrackEndedEvent is fired by the transport when the active track ends.
// A track can end without ever having started (load failure), so handlers
// must not assume a prior TrackStartedEvent was observed.
type TrackEndedEvent struct {
	GuildID snowflake.ID
	Reason  TrackEndReason
}

// TrackPausedEvent is fired by the transport when playback pauses or
// resumes. Informational; pause state is owned by the guild aggregate.
type TrackPausedEvent struct {
	GuildID snowflake.ID
	Paused  bool
}
