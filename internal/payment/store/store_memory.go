package store

import (
	"context"
	"sync"

	"veripay/internal/payment"
	"veripay/pkg/domain"
	dErrors "veripay/pkg/domain-errors"
)

// InMemoryStore keeps intents in a mutex-guarded map. Intents are cloned
// on the way in and out so callers never share mutable state with the
// store.
type InMemoryStore struct {
	mu      sync.RWMutex
	intents map[domain.IntentID]*payment.Intent
}

// NewInMemoryStore creates an empty in-memory intent store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		intents: make(map[domain.IntentID]*payment.Intent),
	}
}

func (s *InMemoryStore) Create(_ context.Context, intent *payment.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.intents[intent.ID]; ok {
		return dErrors.New(dErrors.CodeConflict, "intent already exists")
	}
	s.intents[intent.ID] = intent.Clone()
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.IntentID) (*payment.Intent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	intent, ok := s.intents[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeIntentNotFound, "payment intent not found")
	}
	return intent.Clone(), nil
}

func (s *InMemoryStore) Update(_ context.Context, intent *payment.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.intents[intent.ID]; !ok {
		return dErrors.New(dErrors.CodeIntentNotFound, "payment intent not found")
	}
	s.intents[intent.ID] = intent.Clone()
	return nil
}

var _ Store = (*InMemoryStore)(nil)
