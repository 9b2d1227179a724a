package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]*domain.SessionState
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, key string, state *domain.SessionState) error {
	time.Sleep(10 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[string]*domain.SessionState)
	}
	s.data[key] = state.Snapshot()
	return nil
}

func (s *SlowStore) Load(ctx context.Context, key string) (*domain.SessionState, error) {
	time.Sleep(10 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.data[key]; ok {
		return state.Snapshot(), nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestManager_ReadModifyWriteIsSerialized(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()

	_, err := manager.LoadOrStart(ctx, "pt", "race")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.WithLock(ctx, domain.SessionKey("pt", "race"), func(ctx context.Context) error {
				state, err := store.Load(ctx, domain.SessionKey("pt", "race"))
				if err != nil {
					return err
				}
				state.CompletedStepIndices = append(state.CompletedStepIndices, len(state.CompletedStepIndices))
				return store.Save(ctx, domain.SessionKey("pt", "race"), state)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := manager.Load(ctx, "pt", "race")
	require.NoError(t, err)
	assert.Len(t, state.CompletedStepIndices, 10, "no lost updates")
}

func TestManager_LoadOrStart(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, err := manager.LoadOrStart(ctx, "pt", "atomic-init")
			assert.NoError(t, err)
			assert.NotNil(t, state)
		}()
	}
	wg.Wait()

	state, err := manager.Load(ctx, "pt", "atomic-init")
	require.NoError(t, err)
	assert.Equal(t, "pt", state.FlowID)
	assert.Equal(t, 0, state.CurrentStepIndex)
}

func TestManager_Namespacing(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()

	a := domain.NewSessionState("individual-path", "same", 0)
	a.Answers["goals"] = domain.MultiValue("mindset")
	require.NoError(t, manager.Save(ctx, a))
	require.NoError(t, manager.Save(ctx, domain.NewSessionState("personal-training", "same", 0)))

	loaded, err := manager.Load(ctx, "individual-path", "same")
	require.NoError(t, err)
	assert.True(t, loaded.Answers.Has("goals"))

	loaded, err = manager.Load(ctx, "personal-training", "same")
	require.NoError(t, err)
	assert.False(t, loaded.Answers.Has("goals"))

	require.NoError(t, manager.Delete(ctx, "personal-training", "same"))
	_, err = manager.Load(ctx, "personal-training", "same")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
