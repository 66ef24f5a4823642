// Package docstore retains extracted document text in process memory so chat
// and quiz requests can reuse it without re-uploading.
package docstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultTTL = 2 * time.Hour

type entry struct {
	text      string
	expiresAt time.Time
}

// Store maps opaque document IDs to extracted text. Entries expire after a
// TTL and are swept lazily on access; nothing survives a restart.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// New creates a store with the given TTL (<= 0 selects the 2h default).
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stores text under a fresh document ID and returns the ID.
func (s *Store) Put(text string) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.entries[id] = entry{text: text, expiresAt: s.now().Add(s.ttl)}
	return id
}

// Get returns the stored text for id, if present and unexpired.
func (s *Store) Get(id string) (string, bool) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if s.now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return "", false
	}
	return e.text, true
}

// Len reports the number of live entries, sweeping expired ones first.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.entries)
}

func (s *Store) sweepLocked() {
	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}
