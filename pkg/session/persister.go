package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/internal/logging"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/ports"
)

// Persister receives session snapshots after every mutation.
// Implementations must not block the caller on I/O and never report errors back.
type Persister interface {
	Persist(state *domain.SessionState)
	Clear(flowID, sessionID string)
}

type pendingWrite struct {
	state  *domain.SessionState
	delete bool
}

// AsyncPersister writes snapshots to a StateStore from a single background
// goroutine. Consecutive writes for the same session are coalesced so only the
// latest snapshot reaches the store. Failures are logged and dropped.
type AsyncPersister struct {
	store        ports.StateStore
	logger       *slog.Logger
	writeTimeout time.Duration

	mu      sync.Mutex
	pending map[string]pendingWrite
	order   []string
	closed  bool

	wake    chan struct{}
	flush   chan chan struct{}
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// PersisterOption configures the AsyncPersister.
type PersisterOption func(*AsyncPersister)

// WithPersisterLogger sets the logger used for write failures.
func WithPersisterLogger(l *slog.Logger) PersisterOption {
	return func(p *AsyncPersister) {
		p.logger = l
	}
}

// WithWriteTimeout bounds each store call.
func WithWriteTimeout(d time.Duration) PersisterOption {
	return func(p *AsyncPersister) {
		if d > 0 {
			p.writeTimeout = d
		}
	}
}

// NewAsyncPersister starts the background writer. Call Close to stop it.
func NewAsyncPersister(store ports.StateStore, opts ...PersisterOption) *AsyncPersister {
	p := &AsyncPersister{
		store:        store,
		logger:       logging.NewNop(),
		writeTimeout: 5 * time.Second,
		pending:      make(map[string]pendingWrite),
		wake:         make(chan struct{}, 1),
		flush:        make(chan chan struct{}),
		done:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.loop()
	return p
}

// Persist schedules a write of the snapshot.
func (p *AsyncPersister) Persist(state *domain.SessionState) {
	p.enqueue(domain.SessionKey(state.FlowID, state.SessionID), pendingWrite{state: state.Snapshot()})
}

// Clear schedules deletion of the persisted session.
func (p *AsyncPersister) Clear(flowID, sessionID string) {
	p.enqueue(domain.SessionKey(flowID, sessionID), pendingWrite{delete: true})
}

func (p *AsyncPersister) enqueue(key string, w pendingWrite) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Warn("persister closed, dropping write", "key", key)
		return
	}
	if _, ok := p.pending[key]; !ok {
		p.order = append(p.order, key)
	}
	p.pending[key] = w
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every write scheduled before the call has been attempted.
func (p *AsyncPersister) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case p.flush <- ack:
	case <-p.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains pending writes and stops the background goroutine.
func (p *AsyncPersister) Close() error {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.done)
	})
	<-p.stopped
	return nil
}

func (p *AsyncPersister) loop() {
	defer close(p.stopped)
	for {
		select {
		case <-p.wake:
			p.drain()
		case ack := <-p.flush:
			p.drain()
			close(ack)
		case <-p.done:
			p.drain()
			return
		}
	}
}

func (p *AsyncPersister) drain() {
	p.mu.Lock()
	pending, order := p.pending, p.order
	p.pending, p.order = make(map[string]pendingWrite), nil
	p.mu.Unlock()

	for _, key := range order {
		w := pending[key]
		ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
		var err error
		if w.delete {
			err = p.store.Delete(ctx, key)
		} else {
			err = p.store.Save(ctx, key, w.state)
		}
		cancel()
		if err != nil {
			p.logger.Error("failed to persist session", "key", key, "delete", w.delete, "error", err)
		}
	}
}
