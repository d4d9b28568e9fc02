package usecases

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/application/ports"
	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/domain"
)

var (
	errSendFailed    = errors.New("send failed")
	errResolveFailed = errors.New("resolve failed")
)

func mockTrack(id string) *domain.Track {
	return &domain.Track{
		Encoded:  "encoded-" + id,
		Title:    "Track " + id,
		Artist:   "Artist",
		Duration: 3 * time.Minute,
		URI:      "https://tracks.example/" + id,
		RequestedBy: domain.RequestedBy{
			UserID:      snowflake.ID(123),
			DisplayName: "tester",
		},
	}
}

func mockTrackInfo(id string) *ports.TrackInfo {
	return &ports.TrackInfo{
		Identifier: id,
		Encoded:    "encoded-" + id,
		Title:      "Track " + id,
		Artist:     "Artist",
		Duration:   3 * time.Minute,
		URI:        "https://tracks.example/" + id,
		SourceName: "youtube",
	}
}

func singleTrackResult(id string) *ports.LoadResult {
	return &ports.LoadResult{
		Type:   ports.LoadTypeTrack,
		Tracks: []*ports.TrackInfo{mockTrackInfo(id)},
	}
}

type mockRegistry struct {
	mu      sync.Mutex
	states  map[snowflake.ID]*domain.GuildState
	deleted []snowflake.ID
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{
		states: make(map[snowflake.ID]*domain.GuildState),
	}
}

func (m *mockRegistry) Get(guildID snowflake.ID) *domain.GuildState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[guildID]
}

func (m *mockRegistry) GetOrCreate(guildID, voiceChannelID, notificationChannelID snowflake.ID) *domain.GuildState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.states[guildID]; ok {
		return state
	}
	state := domain.NewGuildState(guildID, voiceChannelID, notificationChannelID)
	m.states[guildID] = state
	return state
}

func (m *mockRegistry) Delete(guildID snowflake.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, guildID)
	delete(m.states, guildID)
}

func (m *mockRegistry) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states)
}

// createConnectedState seeds a GuildState as if the bot were already
// connected, returning it for further setup.
func (m *mockRegistry) createConnectedState(
	guildID, voiceChannelID, notificationChannelID snowflake.ID,
) *domain.GuildState {
	return m.GetOrCreate(guildID, voiceChannelID, notificationChannelID)
}

type mockTransport struct {
	mu sync.Mutex

	joinErr   error
	leaveErr  error
	playErr   error
	stopErr   error
	pauseErr  error
	resumeErr error

	// playErrs overrides playErr per call when non-empty, consumed in order.
	playErrs []error

	joined  []snowflake.ID
	left    []snowflake.ID
	played  []*domain.Track
	stopped []snowflake.ID
	paused  []snowflake.ID
	resumed []snowflake.ID
}

func (m *mockTransport) JoinChannel(_ context.Context, guildID, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.joinErr != nil {
		return m.joinErr
	}
	m.joined = append(m.joined, guildID)
	return nil
}

func (m *mockTransport) LeaveChannel(_ context.Context, guildID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.leaveErr != nil {
		return m.leaveErr
	}
	m.left = append(m.left, guildID)
	return nil
}

func (m *mockTransport) Play(_ context.Context, _ snowflake.ID, track *domain.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.playErrs) > 0 {
		err := m.playErrs[0]
		m.playErrs = m.playErrs[1:]
		if err != nil {
			return err
		}
	} else if m.playErr != nil {
		return m.playErr
	}
	m.played = append(m.played, track)
	return nil
}

func (m *mockTransport) Stop(_ context.Context, guildID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopErr != nil {
		return m.stopErr
	}
	m.stopped = append(m.stopped, guildID)
	return nil
}

func (m *mockTransport) Pause(_ context.Context, guildID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pauseErr != nil {
		return m.pauseErr
	}
	m.paused = append(m.paused, guildID)
	return nil
}

func (m *mockTransport) Resume(_ context.Context, guildID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resumeErr != nil {
		return m.resumeErr
	}
	m.resumed = append(m.resumed, guildID)
	return nil
}

func (m *mockTransport) playedTitles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	titles := make([]string, 0, len(m.played))
	for _, track := range m.played {
		titles = append(titles, track.Title)
	}
	return titles
}

type mockResolver struct {
	mu sync.Mutex

	loadErr    error
	loadResult *ports.LoadResult

	// results overrides loadResult per query when set.
	results map[string]*ports.LoadResult
	// failures maps a query to an error.
	failures map[string]error

	queries []string
}

func (m *mockResolver) LoadTracks(_ context.Context, query string) (*ports.LoadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	if err, ok := m.failures[query]; ok {
		return nil, err
	}
	if result, ok := m.results[query]; ok {
		return result, nil
	}
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.loadResult, nil
}

// gateResolver blocks resolution of one locator until released, letting
// tests hold a queue drive mid-resolve.
type gateResolver struct {
	inner   *mockResolver
	blockOn string
	entered chan struct{} // closed when resolution of blockOn begins
	release chan struct{} // closed by the test to let it finish
	once    sync.Once
}

func (g *gateResolver) LoadTracks(ctx context.Context, query string) (*ports.LoadResult, error) {
	if query == g.blockOn {
		g.once.Do(func() { close(g.entered) })
		<-g.release
	}
	return g.inner.LoadTracks(ctx, query)
}

// gateTransport blocks the first Pause call until released.
type gateTransport struct {
	*mockTransport
	pauseEntered chan struct{}
	pauseRelease chan struct{}
	once         sync.Once
}

func (g *gateTransport) Pause(ctx context.Context, guildID snowflake.ID) error {
	g.once.Do(func() { close(g.pauseEntered) })
	<-g.pauseRelease
	return g.mockTransport.Pause(ctx, guildID)
}

type mockNotifier struct {
	mu sync.Mutex

	sendErr error

	// onSendNowPlaying, when set, runs before the send is recorded. Lets a
	// test interleave a state mutation with the announce.
	onSendNowPlaying func()

	nowPlaying []string // track titles
	notices    []string
	errors     []string
	deleted    []snowflake.ID // message IDs

	nextMessageID snowflake.ID
}

func (m *mockNotifier) SendNowPlaying(_ snowflake.ID, track *domain.Track) (snowflake.ID, error) {
	if m.onSendNowPlaying != nil {
		m.onSendNowPlaying()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return 0, m.sendErr
	}
	m.nowPlaying = append(m.nowPlaying, track.Title)
	m.nextMessageID++
	return m.nextMessageID, nil
}

func (m *mockNotifier) DeleteMessage(_, messageID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *mockNotifier) SendNotice(_ snowflake.ID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.notices = append(m.notices, message)
	return nil
}

func (m *mockNotifier) SendError(_ snowflake.ID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, message)
	return nil
}

type mockVoiceState struct {
	channels  map[snowflake.ID]snowflake.ID // userID -> channelID
	occupants map[snowflake.ID]int          // channelID -> member count
	err       error
}

func (m *mockVoiceState) GetUserVoiceChannel(_, userID snowflake.ID) (snowflake.ID, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.channels[userID], nil
}

func (m *mockVoiceState) CountChannelOccupants(_, channelID snowflake.ID) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.occupants[channelID], nil
}

type mockUserInfo struct {
	err error
}

func (m *mockUserInfo) GetUserInfo(_, _ snowflake.ID) (*ports.UserInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &ports.UserInfo{DisplayName: "tester"}, nil
}

// newTestPlaybackService wires a PlaybackService over fresh mocks.
func newTestPlaybackService(
	registry *mockRegistry,
	resolver *mockResolver,
	transport *mockTransport,
	notifier *mockNotifier,
	voiceState *mockVoiceState,
) *PlaybackService {
	return NewPlaybackService(registry, resolver, transport, notifier, voiceState, &mockUserInfo{})
}
