// Package pinned keeps PriorityNeverRemove entries next to an evicting
// in-process backend and serializes counter updates across both.
package pinned

import (
	"sync"
	"time"

	pr "github.com/unkn0wn-root/gencache/provider"
)

// Backend is the evicting half of an in-process provider.
type Backend interface {
	Load(key string) ([]byte, bool, error)
	Store(key string, value []byte, ttl time.Duration) (bool, error)
	Remove(key string) error
}

// Store routes reads and writes between pinned entries and a Backend.
type Store struct {
	mu      sync.RWMutex
	pinned  map[string][]byte
	backend Backend
}

func New(b Backend) *Store {
	return &Store{pinned: make(map[string][]byte), backend: b}
}

func (s *Store) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	v, ok := s.pinned[key]
	s.mu.RUnlock()
	if ok {
		return v, true, nil
	}
	return s.backend.Load(key)
}

// Set ignores ttl for PriorityNeverRemove.
func (s *Store) Set(key string, value []byte, p pr.Priority, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(key, value, p, ttl)
}

func (s *Store) setLocked(key string, value []byte, p pr.Priority, ttl time.Duration) (bool, error) {
	if p == pr.PriorityNeverRemove {
		s.pinned[key] = value
		// a stale evictable copy must not shadow the pinned one after Clear
		return true, s.backend.Remove(key)
	}
	delete(s.pinned, key)
	if ttl < 0 {
		ttl = 0
	}
	return s.backend.Store(key, value, ttl)
}

func (s *Store) Clear(key string) error {
	s.mu.Lock()
	delete(s.pinned, key)
	s.mu.Unlock()
	return s.backend.Remove(key)
}

// Increment performs the read-modify-write under the store mutex.
func (s *Store) Increment(key string, defaultValue, delta int64, p pr.Priority) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := defaultValue
	raw, ok := s.pinned[key]
	if !ok {
		var err error
		raw, ok, err = s.backend.Load(key)
		if err != nil {
			return 0, err
		}
	}
	if ok {
		n, err := pr.ParseCounter(raw)
		if err != nil {
			return 0, err
		}
		cur = n
	}
	next := cur + delta
	if _, err := s.setLocked(key, pr.FormatCounter(next), p, 0); err != nil {
		return 0, err
	}
	return next, nil
}

// Len reports the number of pinned entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pinned)
}
