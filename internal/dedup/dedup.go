// Package dedup absorbs transport-level webhook retries with a short-lived
// in-memory set of event ids.
package dedup

import (
	"sync"
	"time"
)

// DefaultWindow is how long an event id counts as a duplicate.
// Platform retries arrive within seconds of the original delivery.
const DefaultWindow = 60 * time.Second

// Store tracks recently seen event ids. It is process-local and resets on
// restart, so it provides at-most-one-processing on a best-effort basis
// only. Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	window time.Duration
	seen   map[string]time.Time
	now    func() time.Time
}

// New creates a Store with the given duplicate window.
func New(window time.Duration) *Store {
	return &Store{
		window: window,
		seen:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// Seen records id and reports whether it was already present within the
// window. Expired entries are evicted lazily on every call; after eviction
// the same id is treated as new. An empty id is never a duplicate.
func (s *Store) Seen(id string) bool {
	if id == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, t := range s.seen {
		if now.Sub(t) > s.window {
			delete(s.seen, k)
		}
	}

	if _, ok := s.seen[id]; ok {
		return true
	}
	s.seen[id] = now
	return false
}
