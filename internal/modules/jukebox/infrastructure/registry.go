package infrastructure

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"

	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/domain"
)

// MemoryRegistry is the in-memory implementation of domain.StateRegistry.
// Entries are created explicitly on play/join and removed on leave or
// disconnect, so the map never grows with guilds that are only queried.
type MemoryRegistry struct {
	mu     sync.RWMutex
	states map[snowflake.ID]*domain.GuildState
}

// NewMemoryRegistry creates an empty MemoryRegistry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		states: make(map[snowflake.ID]*domain.GuildState),
	}
}

// Get returns the GuildState for the given guild, or nil if not tracked.
func (r *MemoryRegistry) Get(guildID snowflake.ID) *domain.GuildState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.states[guildID]
}

// GetOrCreate returns the existing GuildState or creates a fresh one bound to
// the given channels.
func (r *MemoryRegistry) GetOrCreate(
	guildID, voiceChannelID, notificationChannelID snowflake.ID,
) *domain.GuildState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state, ok := r.states[guildID]; ok {
		return state
	}
	state := domain.NewGuildState(guildID, voiceChannelID, notificationChannelID)
	r.states[guildID] = state
	return state
}

// Delete removes the GuildState for the given guild.
func (r *MemoryRegistry) Delete(guildID snowflake.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, guildID)
}

// Count returns the number of tracked guilds.
func (r *MemoryRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.states)
}

// Ensure MemoryRegistry implements domain.StateRegistry.
var _ domain.StateRegistry = (*MemoryRegistry)(nil)
