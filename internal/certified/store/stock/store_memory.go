package stock

import (
	"context"
	"sync"

	"chequeprint/pkg/platform/sentinel"
)

// InMemoryStore is the certified leaf pool shared by every branch.
type InMemoryStore struct {
	mu       sync.Mutex
	quantity int64
}

func NewInMemoryStore(initial int64) *InMemoryStore {
	return &InMemoryStore{quantity: initial}
}

func (s *InMemoryStore) Available(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quantity, nil
}

func (s *InMemoryStore) Deduct(_ context.Context, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quantity > s.quantity {
		return sentinel.ErrInsufficient
	}
	s.quantity -= quantity
	return nil
}

func (s *InMemoryStore) Add(_ context.Context, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quantity += quantity
	return nil
}
