package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/internal/logging"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/ports"
)

// DefaultLockTTL is the lease of a distributed session lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes access to persisted sessions.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) ManagerOption {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock lease.
func WithLockTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithManagerLogger configures a logger for the Manager.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager backed by store.
func NewManager(store ports.StateStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu, and then call release(key) after unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// Load retrieves an existing session.
func (m *Manager) Load(ctx context.Context, flowID, sessionID string) (*domain.SessionState, error) {
	var state *domain.SessionState
	err := m.WithLock(ctx, domain.SessionKey(flowID, sessionID), func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, domain.SessionKey(flowID, sessionID))
		return err
	})
	return state, err
}

// LoadOrStart loads a session, creating and persisting an empty one if none exists.
func (m *Manager) LoadOrStart(ctx context.Context, flowID, sessionID string) (*domain.SessionState, error) {
	key := domain.SessionKey(flowID, sessionID)
	var state *domain.SessionState
	err := m.WithLock(ctx, key, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		state = domain.NewSessionState(flowID, sessionID, 0)
		state.UpdatedAt = time.Now().UTC()
		if err := m.store.Save(ctx, key, state); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	return state, err
}

// Save persists the session state under its own key.
func (m *Manager) Save(ctx context.Context, state *domain.SessionState) error {
	key := domain.SessionKey(state.FlowID, state.SessionID)
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.store.Save(ctx, key, state)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, flowID, sessionID string) error {
	key := domain.SessionKey(flowID, sessionID)
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.store.Delete(ctx, key)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// WithLock executes fn while holding the lock for key. It is not reentrant.
func (m *Manager) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
