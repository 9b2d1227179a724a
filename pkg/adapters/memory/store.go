package memory

import (
	"context"
	"sync"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.SessionState
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.SessionState),
	}
}

// Save persists a deep copy of the state. Transient submission data is dropped,
// the same as a serializing store would.
func (s *Store) Save(ctx context.Context, key string, state *domain.SessionState) error {
	copied := persisted(state)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = copied
	return nil
}

// Load retrieves a copy of the state.
func (s *Store) Load(ctx context.Context, key string) (*domain.SessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[key]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return state.Snapshot(), nil
}

// Delete removes the state.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the stored session keys.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		keys = append(keys, key)
	}
	return keys, nil
}

func persisted(state *domain.SessionState) *domain.SessionState {
	out := state.Snapshot()
	out.Submission = domain.SubmissionState{}
	out.Recommendations = nil
	return out
}
