package branch

import (
	"context"
	"sync"

	"chequeprint/internal/checkbook/models"
	"chequeprint/pkg/platform/sentinel"
)

// InMemoryStore serves branch identities seeded at startup.
type InMemoryStore struct {
	mu       sync.RWMutex
	branches map[string]models.Branch
}

func NewInMemoryStore(branches ...models.Branch) *InMemoryStore {
	s := &InMemoryStore{branches: make(map[string]models.Branch, len(branches))}
	for _, b := range branches {
		s.branches[b.ID] = b
	}
	return s
}

func (s *InMemoryStore) Put(b models.Branch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.branches[b.ID] = b
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*models.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.branches[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &b, nil
}

// FindByCode resolves the branch code reported by core banking.
func (s *InMemoryStore) FindByCode(_ context.Context, code string) (*models.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.branches {
		if b.BranchCode == code {
			return &b, nil
		}
	}
	return nil, sentinel.ErrNotFound
}
