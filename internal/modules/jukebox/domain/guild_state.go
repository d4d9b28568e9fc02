package domain

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// NowPlayingMessage stores the channel and message ID for a "now playing"
// message. Both are needed for deletion since the message may live in a
// different channel than the current notification channel.
type NowPlayingMessage struct {
	ChannelID snowflake.ID
	MessageID snowflake.ID
}

// GuildState is the single per-guild playback aggregate: the track queue,
// the waiting list, the loop mode, the current song snapshot, and the
// pause flags all live behind one lock so related fields are always
// observed together.
//
// All accessors below assume the caller holds the state's mutex. The lock
// must never be held across resolver or transport network calls; callers
// extract what they need, release, perform the I/O, then re-acquire to
// commit.
type GuildState struct {
	sync.Mutex

	guildID               snowflake.ID
	voiceChannelID        snowflake.ID
	notificationChannelID snowflake.ID

	Queue   TrackQueue
	Waiting WaitingList

	loopMode LoopMode

	// current is the audible-track snapshot: set when the transport reports
	// the track started, cleared when it ends. The queue head can differ
	// from current in the window between enqueue and the start callback.
	current *Track

	paused     bool
	autoPaused bool // paused by the presence reactor, eligible for auto-resume

	// playbackActive reserves the head slot: it is set when a play call
	// claims an idle guild and cleared only when both queues drain. This is
	// what makes empty-check-then-enqueue atomic across concurrent plays.
	playbackActive bool

	// driving marks an in-flight queue drive. At most one caller at a time
	// may resolve and start tracks for the guild; skips arriving while a
	// drive is in flight are recorded as pendingSkips and applied by the
	// driver instead of starting a second drive.
	driving      bool
	pendingSkips int

	nowPlayingMessage *NowPlayingMessage
}

// NewGuildState creates playback state for a guild connected to the given
// voice channel, announcing into the given text channel.
func NewGuildState(guildID, voiceChannelID, notificationChannelID snowflake.ID) *GuildState {
	return &GuildState{
		guildID:               guildID,
		voiceChannelID:        voiceChannelID,
		notificationChannelID: notificationChannelID,
		Queue:                 NewTrackQueue(),
		Waiting:               NewWaitingList(),
		loopMode:              LoopModeNone,
	}
}

// GuildID returns the guild ID. Immutable after creation.
func (g *GuildState) GuildID() snowflake.ID {
	return g.guildID
}

// VoiceChannelID returns the voice channel the bot is connected to.
func (g *GuildState) VoiceChannelID() snowflake.ID {
	return g.voiceChannelID
}

// SetVoiceChannelID updates the voice channel ID.
func (g *GuildState) SetVoiceChannelID(channelID snowflake.ID) {
	g.voiceChannelID = channelID
}

// NotificationChannelID returns the text channel used for announcements.
func (g *GuildState) NotificationChannelID() snowflake.ID {
	return g.notificationChannelID
}

// SetNotificationChannelID updates the notification channel ID.
func (g *GuildState) SetNotificationChannelID(channelID snowflake.ID) {
	g.notificationChannelID = channelID
}

// LoopMode returns the current loop mode.
func (g *GuildState) LoopMode() LoopMode {
	return g.loopMode
}

// SetLoopMode sets the loop mode. Legal on an empty queue; it takes effect
// on the next track end.
func (g *GuildState) SetLoopMode(mode LoopMode) {
	g.loopMode = mode
}

// CycleLoopMode cycles None -> Track -> Queue -> None and returns the new mode.
func (g *GuildState) CycleLoopMode() LoopMode {
	switch g.loopMode {
	case LoopModeNone:
		g.loopMode = LoopModeTrack
	case LoopModeTrack:
		g.loopMode = LoopModeQueue
	case LoopModeQueue:
		g.loopMode = LoopModeNone
	}
	return g.loopMode
}

// CurrentSong returns the audible-track snapshot, or nil when nothing is
// confirmed playing.
func (g *GuildState) CurrentSong() *Track {
	return g.current
}

// SetCurrentSong records the track the transport reported as started.
func (g *GuildState) SetCurrentSong(track *Track) {
	g.current = track
}

// ClearCurrentSong clears the audible-track snapshot.
func (g *GuildState) ClearCurrentSong() {
	g.current = nil
}

// IsPaused returns true if playback is paused.
func (g *GuildState) IsPaused() bool {
	return g.paused
}

// SetPaused sets the paused flag. auto marks the pause as issued by the
// presence reactor, making it eligible for auto-resume.
func (g *GuildState) SetPaused(paused, auto bool) {
	g.paused = paused
	g.autoPaused = paused && auto
}

// IsAutoPaused returns true if the presence reactor paused playback.
func (g *GuildState) IsAutoPaused() bool {
	return g.autoPaused
}

// IsPlaybackActive returns true while the guild owns an active playback
// loop (a head track is claimed or being resolved).
func (g *GuildState) IsPlaybackActive() bool {
	return g.playbackActive
}

// SetPlaybackActive sets the head-slot reservation.
func (g *GuildState) SetPlaybackActive(active bool) {
	g.playbackActive = active
}

// TryClaimDrive claims the exclusive right to advance the queue. Returns
// false when a drive is already in flight for the guild.
func (g *GuildState) TryClaimDrive() bool {
	if g.driving {
		return false
	}
	g.driving = true
	return true
}

// ReleaseDrive ends the drive and discards any skip intent aimed at it.
func (g *GuildState) ReleaseDrive() {
	g.driving = false
	g.pendingSkips = 0
}

// IsDriving reports whether a queue drive is in flight.
func (g *GuildState) IsDriving() bool {
	return g.driving
}

// RequestSkip records a skip aimed at the track the in-flight drive is
// advancing to. Requests are consumed one at a time by TakeSkipRequest.
func (g *GuildState) RequestSkip() {
	g.pendingSkips++
}

// TakeSkipRequest consumes one pending skip request.
func (g *GuildState) TakeSkipRequest() bool {
	if g.pendingSkips == 0 {
		return false
	}
	g.pendingSkips--
	return true
}

// NowPlayingMessage returns a copy of the stored message ref, or nil.
func (g *GuildState) NowPlayingMessage() *NowPlayingMessage {
	if g.nowPlayingMessage == nil {
		return nil
	}
	msg := *g.nowPlayingMessage
	return &msg
}

// SetNowPlayingMessage stores the message ref for later deletion.
func (g *GuildState) SetNowPlayingMessage(channelID, messageID snowflake.ID) {
	g.nowPlayingMessage = &NowPlayingMessage{
		ChannelID: channelID,
		MessageID: messageID,
	}
}

// TakeNowPlayingMessage returns the stored message ref and clears it.
func (g *GuildState) TakeNowPlayingMessage() *NowPlayingMessage {
	msg := g.nowPlayingMessage
	g.nowPlayingMessage = nil
	return msg
}

// Reset clears everything except channel bindings: both queues, the loop
// mode, the current song, the pause flags, and the message ref. Used when
// the bot is disconnected from voice. The drive claim is left untouched; an
// in-flight driver releases it itself after observing the cleared queues.
func (g *GuildState) Reset() {
	g.Queue.Clear()
	g.Waiting.Clear()
	g.loopMode = LoopModeNone
	g.current = nil
	g.paused = false
	g.autoPaused = false
	g.playbackActive = false
	g.pendingSkips = 0
	g.nowPlayingMessage = nil
}
