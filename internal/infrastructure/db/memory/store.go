// Package memory is an in-process KeyValueStore for development and tests.
// Entries are lost on restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/formlane/console/internal/core/domain"
)

type item struct {
	value     []byte
	expiresAt time.Time
}

type Store struct {
	mu    sync.RWMutex
	items map[string]item
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{items: make(map[string]item), now: time.Now}
}

// WithClock overrides the time source.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || !s.now().Before(it.expiresAt) {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), it.value...), nil
}

func (s *Store) SetMany(_ context.Context, entries map[string][]byte, ttl time.Duration) error {
	expires := s.now().Add(ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range entries {
		s.items[k] = item{value: append([]byte(nil), v...), expiresAt: expires}
	}
	s.sweep()
	return nil
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.items, k)
	}
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

// Len reports the number of live entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	n := 0
	for _, it := range s.items {
		if now.Before(it.expiresAt) {
			n++
		}
	}
	return n
}

// sweep drops expired entries; mu must be held.
func (s *Store) sweep() {
	now := s.now()
	for k, it := range s.items {
		if !now.Before(it.expiresAt) {
			delete(s.items, k)
		}
	}
}
