package session

import (
	"sync"
	"time"
)

// DefaultTTL is how long an idle session survives
const DefaultTTL = 24 * time.Hour

// Store keeps session contexts in memory, keyed by ID. Sessions idle for
// longer than TTL are dropped whenever a new one is created.
type Store struct {
	sessions map[string]*Context
	lastSeen map[string]time.Time
	mu       sync.RWMutex

	TTL time.Duration
	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Context),
		lastSeen: make(map[string]time.Time),
		TTL:      DefaultTTL,
		now:      time.Now,
	}
}

func (s *Store) Get(id string) (*Context, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, exists := s.sessions[id]
	return sc, exists
}

// Ensure returns the context for id, creating a new one (with a new ID) when
// id is unknown. The second return value reports whether it was created.
func (s *Store) Ensure(id string) (*Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if sc, ok := s.sessions[id]; ok {
		s.lastSeen[id] = now
		return sc, false
	}

	s.pruneLocked(now)
	sc := New()
	s.sessions[sc.ID] = sc
	s.lastSeen[sc.ID] = now
	return sc, true
}

// Prune drops every session idle for longer than TTL and returns how many
// were removed
func (s *Store) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked(s.now())
}

func (s *Store) pruneLocked(now time.Time) int {
	if s.TTL <= 0 {
		return 0
	}
	removed := 0
	for id, seen := range s.lastSeen {
		if now.Sub(seen) > s.TTL {
			delete(s.sessions, id)
			delete(s.lastSeen, id)
			removed++
		}
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
