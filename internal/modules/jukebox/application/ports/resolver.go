package ports

import (
	"context"
	"time"
)

// TrackResolver is the metadata-resolution boundary: given a URL or search
// query it loads track metadata from the audio backend. Calls are network
// bound and slow; they must never run under a guild state lock.
type TrackResolver interface {
	// LoadTracks resolves the given query into zero or more tracks.
	LoadTracks(ctx context.Context, query string) (*LoadResult, error)
}

// LoadType represents the shape of a load result.
type LoadType string

const (
	LoadTypeTrack    LoadType = "track"
	LoadTypePlaylist LoadType = "playlist"
	LoadTypeSearch   LoadType = "search"
	LoadTypeEmpty    LoadType = "empty"
	LoadTypeError    LoadType = "error"
)

// LoadResult represents the result of resolving a query.
type LoadResult struct {
	Type         LoadType
	Tracks       []*TrackInfo
	PlaylistName string
}

// TrackInfo contains resolved metadata for one track.
type TrackInfo struct {
	Identifier string // Source-specific identifier
	Encoded    string // Opaque transport handle
	Title      string
	Artist     string
	Duration   time.Duration
	URI        string
	ArtworkURL string
	SourceName string // e.g., "youtube", "soundcloud"
	IsStream   bool
}
