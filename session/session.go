// Package session implements the HTTP session store from spec.md §4.8
// (sliding expiration, pluggable persistence, in-memory default) and
// the WebSocket session-actor glue from §4.12.
package session

import (
	"sync"
	"time"

	"github.com/alterationx10/spider/cookie"
)

// Session is the {id, created, lastAccess, expires, data} tuple.
type Session struct {
	mu         sync.RWMutex
	ID         string
	Created    time.Time
	LastAccess time.Time
	TTL        time.Duration
	data       map[string]any
	dirty      bool
}

// New returns a fresh session with the given id and TTL.
func New(id string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{ID: id, Created: now, LastAccess: now, TTL: ttl, data: make(map[string]any)}
}

// Get returns the value stored under key.
func (s *Session) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Set stores value under key, marking the session dirty.
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.dirty = true
}

// Dirty reports whether Set has been called on s since it was created;
// saving or loading s does not clear it. The session middleware uses this to decide whether a
// brand-new session is worth allocating (spec.md §4.8: "allocate a new
// session on first write").
func (s *Session) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Expired reports whether the session has passed its sliding deadline.
func (s *Session) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.TTL > 0 && time.Since(s.LastAccess) > s.TTL
}

func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastAccess = time.Now()
}

// Store is the pluggable session persistence contract.
type Store interface {
	Get(id string) (*Session, bool)
	Save(s *Session) error
	Delete(id string) error
	Cleanup() int
}

// MemoryStore is the in-memory default Store, guarded by a mutex.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Get looks up id, touching its sliding-expiration clock on a hit, and
// evicting it if it has already expired.
func (m *MemoryStore) Get(id string) (*Session, bool) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	if s.Expired() {
		m.Delete(id)
		return nil, false
	}
	s.touch()
	return s, true
}

// Save persists s.
func (m *MemoryStore) Save(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

// Delete removes id from the store.
func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Cleanup evicts every expired session and returns the count removed.
func (m *MemoryStore) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.Expired() {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// RegenerateID replaces s's identifier with a freshly generated one,
// re-saving it in store under the new id and deleting the old entry —
// the mitigation against session fixation spec.md §4.8 implies.
func RegenerateID(store Store, s *Session) error {
	oldID := s.ID
	newID, err := cookie.NewSessionID()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ID = newID
	s.mu.Unlock()
	if err := store.Save(s); err != nil {
		return err
	}
	return store.Delete(oldID)
}
