package session_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/adapters/memory"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	*memory.Store
	saves atomic.Int32
}

func (f *failingStore) Save(ctx context.Context, key string, state *domain.SessionState) error {
	f.saves.Add(1)
	return errors.New("disk full")
}

func TestAsyncPersister_WritesLatest(t *testing.T) {
	store := memory.NewStore()
	p := session.NewAsyncPersister(store)
	defer p.Close()

	state := domain.NewSessionState("pt", "a", 0)
	for i := range 5 {
		state.CurrentStepIndex = i
		p.Persist(state)
	}
	require.NoError(t, p.Flush(context.Background()))

	loaded, err := store.Load(context.Background(), "pt:a")
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.CurrentStepIndex)
}

func TestAsyncPersister_Clear(t *testing.T) {
	store := memory.NewStore()
	p := session.NewAsyncPersister(store)
	defer p.Close()

	p.Persist(domain.NewSessionState("pt", "a", 0))
	p.Clear("pt", "a")
	require.NoError(t, p.Flush(context.Background()))

	_, err := store.Load(context.Background(), "pt:a")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestAsyncPersister_FailuresAreSwallowed(t *testing.T) {
	store := &failingStore{Store: memory.NewStore()}
	p := session.NewAsyncPersister(store)

	p.Persist(domain.NewSessionState("pt", "a", 0))
	require.NoError(t, p.Flush(context.Background()))
	assert.EqualValues(t, 1, store.saves.Load())

	require.NoError(t, p.Close())
	p.Persist(domain.NewSessionState("pt", "b", 0))
	assert.EqualValues(t, 1, store.saves.Load(), "writes after Close are dropped")
	assert.NoError(t, p.Flush(context.Background()))
}

func TestAsyncPersister_SnapshotIsolation(t *testing.T) {
	store := memory.NewStore()
	p := session.NewAsyncPersister(store)
	defer p.Close()

	state := domain.NewSessionState("pt", "a", 0)
	state.Answers["goals"] = domain.MultiValue("x")
	p.Persist(state)
	state.Answers["goals"] = domain.MultiValue("y")
	require.NoError(t, p.Flush(context.Background()))

	loaded, err := store.Load(context.Background(), "pt:a")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, loaded.Answers.Selected("goals"))
}
