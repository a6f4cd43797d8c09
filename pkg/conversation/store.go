// Package conversation keeps a bounded window of recent messages per
// session so classification can blend in conversational context.
package conversation

import (
	"sync"
	"time"
)

// DefaultCapacity is the number of messages kept per session.
const DefaultCapacity = 10

// Session is one conversation's message window.
type Session struct {
	mu       sync.Mutex
	messages []string
	capacity int
	lastUsed time.Time
}

func (s *Session) append(text string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, text)
	if over := len(s.messages) - s.capacity; over > 0 {
		s.messages = append(s.messages[:0], s.messages[over:]...)
	}
	s.lastUsed = now
}

func (s *Session) recent(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || len(s.messages) == 0 {
		return nil
	}
	if n > len(s.messages) {
		n = len(s.messages)
	}
	out := make([]string, n)
	copy(out, s.messages[len(s.messages)-n:])
	return out
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Store maps session IDs to message windows.
type Store struct {
	sessions map[string]*Session
	capacity int
	now      func() time.Time

	mu sync.RWMutex

	totalCreated uint64
	totalEvicted uint64
}

// NewStore creates a store keeping capacity messages per session.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		sessions: make(map[string]*Session),
		capacity: capacity,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Intended for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) getOrCreate(id string) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[id]; ok {
		return sess
	}
	sess = &Session{capacity: s.capacity, lastUsed: s.now()}
	s.sessions[id] = sess
	s.totalCreated++
	return sess
}

// Append records a message for the session, creating it on first use.
func (s *Store) Append(id, text string) {
	s.mu.RLock()
	now := s.now()
	s.mu.RUnlock()
	s.getOrCreate(id).append(text, now)
}

// Recent returns up to n of the session's latest messages, oldest first.
func (s *Store) Recent(id string, n int) []string {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	return sess.recent(n)
}

// End drops the session. It reports whether the session existed.
func (s *Store) End(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	s.totalEvicted++
	return true
}

// SweepIdle drops sessions unused for longer than maxIdle and returns how
// many were dropped.
func (s *Store) SweepIdle(maxIdle time.Duration) int {
	s.mu.RLock()
	now := s.now()
	idle := make([]string, 0)
	for id, sess := range s.sessions {
		if now.Sub(sess.idleSince()) > maxIdle {
			idle = append(idle, id)
		}
	}
	s.mu.RUnlock()

	evicted := 0
	for _, id := range idle {
		if s.End(id) {
			evicted++
		}
	}
	return evicted
}

// Reset drops every session.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalEvicted += uint64(len(s.sessions))
	s.sessions = make(map[string]*Session)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Stats returns store statistics.
func (s *Store) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"active_sessions": len(s.sessions),
		"capacity":        s.capacity,
		"total_created":   s.totalCreated,
		"total_evicted":   s.totalEvicted,
	}
}
