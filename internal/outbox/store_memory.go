package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type InMemoryStore struct {
	mu     sync.Mutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) Pending(_ context.Context, limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.PublishedAt != nil {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryStore) MarkPublished(_ context.Context, ids []uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	for i := range s.events {
		if _, ok := set[s.events[i].ID]; ok {
			published := at
			s.events[i].PublishedAt = &published
		}
	}
	return nil
}

// All returns every event in append order. Intended for tests.
func (s *InMemoryStore) All() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}
