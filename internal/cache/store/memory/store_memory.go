package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"equityshield/internal/cache/models"
	"equityshield/pkg/platform/sentinel"
)

type item struct {
	entry     models.Entry
	expiresAt time.Time
}

// InMemoryStore keeps cached responses in process memory. Expired entries are
// dropped on read and by Prune.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]item
	clock   func() time.Time
}

type Option func(*InMemoryStore)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(s *InMemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func New(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{entries: make(map[string]item), clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns sentinel.ErrNotFound for absent or expired keys.
func (s *InMemoryStore) Get(_ context.Context, key string) (*models.Entry, error) {
	s.mu.RLock()
	it, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !s.clock().Before(it.expiresAt) {
		s.mu.Lock()
		if cur, ok := s.entries[key]; ok && cur.expiresAt.Equal(it.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, sentinel.ErrNotFound
	}
	entry := it.entry
	return &entry, nil
}

func (s *InMemoryStore) Set(_ context.Context, key string, entry models.Entry, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = item{entry: entry, expiresAt: s.clock().Add(ttl)}
	return nil
}

// Prune removes expired entries and returns how many were dropped.
func (s *InMemoryStore) Prune() int {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, it := range s.entries {
		if !now.Before(it.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
