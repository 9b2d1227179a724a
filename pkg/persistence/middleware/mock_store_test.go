package middleware_test

import (
	"context"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data map[string]*domain.SessionState
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.SessionState),
	}
}

func (s *MockStore) Save(ctx context.Context, key string, state *domain.SessionState) error {
	s.data[key] = state
	return nil
}

func (s *MockStore) Load(ctx context.Context, key string) (*domain.SessionState, error) {
	state, ok := s.data[key]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return state, nil
}

func (s *MockStore) Delete(ctx context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

// MockSubmissions captures the payloads it receives.
type MockSubmissions struct {
	payloads []domain.Payload
}

func (s *MockSubmissions) Store(ctx context.Context, p domain.Payload) (domain.Receipt, error) {
	s.payloads = append(s.payloads, p)
	return domain.Receipt{ID: p.SubmissionID}, nil
}

var (
	_ ports.StateStore      = (*MockStore)(nil)
	_ ports.SubmissionStore = (*MockSubmissions)(nil)
)
