package memory

import (
	"sync"
	"time"

	"github.com/jfernandezp/agente-ia-uni/internal/domain"
)

// Manager owns the mapping from session id to Conversation and enforces
// the global session cap with LRU eviction.
type Manager struct {
	mu sync.Mutex

	sessions    map[domain.SessionID]*Conversation
	maxSessions int
	maxTurns    int

	now func() time.Time
}

// NewManager creates a registry bounded to maxSessions entries, each
// holding up to maxTurns exchanges.
func NewManager(maxSessions, maxTurns int) *Manager {
	return newManager(maxSessions, maxTurns, time.Now)
}

func newManager(maxSessions, maxTurns int, now func() time.Time) *Manager {
	if maxSessions < 1 {
		maxSessions = 1
	}
	return &Manager{
		sessions:    make(map[domain.SessionID]*Conversation),
		maxSessions: maxSessions,
		maxTurns:    maxTurns,
		now:         now,
	}
}

// GetOrCreate returns the existing memory for the session or creates a
// new one, evicting the least-recently-accessed session first when the
// registry is full.
func (m *Manager) GetOrCreate(id domain.SessionID) *Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conv, ok := m.sessions[id]; ok {
		return conv
	}

	if len(m.sessions) >= m.maxSessions {
		m.evictOldest()
	}

	conv := newConversation(id, m.maxTurns, m.now)
	m.sessions[id] = conv
	return conv
}

// Get returns the existing memory, never auto-creating.
func (m *Manager) Get(id domain.SessionID) (*Conversation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.sessions[id]
	return conv, ok
}

// Delete removes a session. Idempotent; reports whether it existed.
func (m *Manager) Delete(id domain.SessionID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// Stats aggregates counters across all live sessions.
func (m *Manager) Stats() domain.ManagerStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, conv := range m.sessions {
		total += conv.Len()
	}
	return domain.ManagerStats{
		ActiveSessions: len(m.sessions),
		MaxSessions:    m.maxSessions,
		TotalMessages:  total,
	}
}

// evictOldest drops the entry with the smallest lastAccessed timestamp.
// Ties break on the lexicographically smallest session id so eviction
// stays deterministic. Caller holds m.mu.
func (m *Manager) evictOldest() {
	var (
		oldestID domain.SessionID
		oldestAt time.Time
		found    bool
	)
	for id, conv := range m.sessions {
		at := conv.LastAccessed()
		if !found || at.Before(oldestAt) || (at.Equal(oldestAt) && id < oldestID) {
			oldestID = id
			oldestAt = at
			found = true
		}
	}
	if found {
		delete(m.sessions, oldestID)
	}
}
