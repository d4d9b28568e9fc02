package domain

import (
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// RequestedBy identifies the user who queued a track, for attribution in
// "now playing" announcements and skip notices.
type RequestedBy struct {
	UserID      snowflake.ID
	DisplayName string
	AvatarURL   string
}

// Track is a fully resolved, playable audio track. Metadata is immutable
// once resolved.
type Track struct {
	Encoded     string // Opaque transport handle for the audio source
	Title       string
	Artist      string
	Duration    time.Duration
	URI         string
	ArtworkURL  string
	SourceName  string // e.g., "youtube", "soundcloud", "twitch"
	Identifier  string // Source-specific identifier (e.g., YouTube video ID)
	IsStream    bool
	RequestedBy RequestedBy
	EnqueuedAt  time.Time
}

// Source returns the parsed TrackSource for this track.
func (t *Track) Source() TrackSource {
	return ParseTrackSource(t.SourceName)
}

// IsValid returns true if the track has the minimum required fields.
func (t *Track) IsValid() bool {
	return t.Encoded != "" && t.Title != ""
}

// FormattedDuration returns the duration as mm:ss or hh:mm:ss.
func (t *Track) FormattedDuration() string {
	if t.IsStream {
		return "LIVE"
	}

	totalSeconds := int(t.Duration.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// TrackSource represents the origin platform of a track.
type TrackSource string

const (
	TrackSourceYouTube    TrackSource = "youtube"
	TrackSourceSoundCloud TrackSource = "soundcloud"
	TrackSourceTwitch     TrackSource = "twitch"
	TrackSourceOther      TrackSource = "other"
)

// Color returns the embed accent color associated with the source platform.
func (s TrackSource) Color() int {
	switch s {
	case TrackSourceYouTube:
		return 0xFF0000
	case TrackSourceSoundCloud:
		return 0xFF5500
	case TrackSourceTwitch:
		return 0x9146FF
	default:
		return 0x5865F2
	}
}

// IconURL returns the platform icon used in embed authors, or "" when the
// source has none.
func (s TrackSource) IconURL() string {
	switch s {
	case TrackSourceYouTube:
		return "https://www.youtube.com/s/desktop/28b0985e/img/favicon_144x144.png"
	case TrackSourceSoundCloud:
		return "https://a-v2.sndcdn.com/assets/images/sc-icons/ios-a62dfc8fe7.png"
	case TrackSourceTwitch:
		return "https://static.twitchcdn.net/assets/favicon-32-e29e246c157142c94346.png"
	default:
		return ""
	}
}

// ParseTrackSource converts a source name string to a TrackSource.
func ParseTrackSource(name string) TrackSource {
	switch name {
	case "youtube":
		return TrackSourceYouTube
	case "soundcloud":
		return TrackSourceSoundCloud
	case "twitch":
		return TrackSourceTwitch
	default:
		return TrackSourceOther
	}
}
