package memory

import (
	"context"
	"sync"

	audit "equityshield/pkg/platform/audit"
)

// DefaultCapacity bounds the events kept when no capacity is given.
const DefaultCapacity = 1024

// InMemoryStore keeps the most recent events in a ring. Once full, each
// append overwrites the oldest event.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
	next   int
	full   bool
}

type Option func(*InMemoryStore)

// WithCapacity sets how many events are retained. Non-positive values keep
// DefaultCapacity.
func WithCapacity(n int) Option {
	return func(s *InMemoryStore) {
		if n > 0 {
			s.events = make([]audit.Event, n)
		}
	}
}

func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{}
	for _, opt := range opts {
		opt(s)
	}
	if s.events == nil {
		s.events = make([]audit.Event, DefaultCapacity)
	}
	return s
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[s.next] = event
	s.next = (s.next + 1) % len(s.events)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

// ListAll returns the retained events, oldest first.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ordered(), nil
}

// ListByAction returns the retained events recorded for one action.
func (s *InMemoryStore) ListByAction(_ context.Context, action audit.AuditEvent) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.Event
	for _, e := range s.ordered() {
		if e.Action == string(action) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *InMemoryStore) ordered() []audit.Event {
	if !s.full {
		return append([]audit.Event{}, s.events[:s.next]...)
	}
	out := make([]audit.Event, 0, len(s.events))
	out = append(out, s.events[s.next:]...)
	return append(out, s.events[:s.next]...)
}
