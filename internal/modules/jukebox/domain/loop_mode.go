package domain

// LoopMode is the per-guild policy applied to a track that just ended.
type LoopMode int

const (
	LoopModeNone  LoopMode = iota // Default: the ended track is discarded
	LoopModeTrack                 // Repeat the current track indefinitely
	LoopModeQueue                 // Re-queue ended tracks at the tail of the waiting list
)

// String returns a human-readable representation of the loop mode.
func (m LoopMode) String() string {
	switch m {
	case LoopModeTrack:
		return "track"
	case LoopModeQueue:
		return "queue"
	default:
		return "none"
	}
}

// ParseLoopMode converts a string to a LoopMode.
func ParseLoopMode(s string) LoopMode {
	switch s {
	case "track":
		return LoopModeTrack
	case "queue":
		return LoopModeQueue
	default:
		return LoopModeNone
	}
}
