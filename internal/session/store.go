package session

import (
	"sync"
	"time"
)

// Store is a concurrency-safe, in-memory map of sessions keyed by chat id.
// The now function is injectable for deterministic testing and is shared
// with every session the store creates.
type Store struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	historyCap int

	// now is injectable for testing. Defaults to time.Now.
	now func() time.Time
}

// NewStore creates an empty store whose sessions hold historyCap turns.
// A non-positive cap falls back to DefaultHistoryCap.
func NewStore(historyCap int) *Store {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	return &Store{
		sessions:   make(map[string]*Session),
		historyCap: historyCap,
		now:        time.Now,
	}
}

// Get returns the session for id, or nil if none exists.
func (s *Store) Get(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// GetOrCreate returns the session for id, creating it when absent. The
// bool return is true when a new session was created.
func (s *Store) GetOrCreate(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return sess, false
	}
	sess := newSession(id, s.historyCap, s.now)
	s.sessions[id] = sess
	return sess, true
}

// EvictIdle removes sessions whose last activity is older than
// now - maxIdle and returns how many were removed.
func (s *Store) EvictIdle(maxIdle time.Duration) int {
	return s.EvictIdleExcept(maxIdle, nil)
}

// EvictIdleExcept is EvictIdle but keeps idle sessions for which busy
// reports true. busy runs under the store lock and may be nil.
func (s *Store) EvictIdleExcept(maxIdle time.Duration, busy func(id string) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	evicted := 0
	for id, sess := range s.sessions {
		if !sess.LastActivity().Before(cutoff) {
			continue
		}
		if busy != nil && busy(id) {
			continue
		}
		delete(s.sessions, id)
		evicted++
	}
	return evicted
}

// Delete removes the session for id. It is a no-op if absent.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Range calls fn for each session. If fn returns false, iteration stops.
// The read lock is held for the entire iteration; keep fn fast.
func (s *Store) Range(fn func(*Session) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sess := range s.sessions {
		if !fn(sess) {
			return
		}
	}
}
