package memory

import (
	"context"
	"sync"

	"github.com/PabloGalante/fitpal-agent/internal/domain"
)

// StateStore is an in-memory implementation of domain.StateStore. It is NOT
// persistent and is only suitable for development and tests.
type StateStore struct {
	mu     sync.RWMutex
	states map[domain.SessionID]*domain.ConversationState
}

func NewStateStore() *StateStore {
	return &StateStore{
		states: make(map[domain.SessionID]*domain.ConversationState),
	}
}

// Load returns a deep copy so callers can mutate freely before saving.
func (s *StateStore) Load(_ context.Context, id domain.SessionID) (*domain.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return state.Clone(), nil
}

func (s *StateStore) Save(_ context.Context, state *domain.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state.SessionID] = state.Clone()
	return nil
}
