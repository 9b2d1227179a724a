package intake

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/internal/logging"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/adapters/memory"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/flows"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/ports"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/recommend"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/session"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/steps"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/submission"
)

// DefaultOperator is the recipient reported by the default logging notifier.
const DefaultOperator = "operator@localhost"

// Engine is the high-level entry point of the library.
// It wires the step graph, the recommendation engine, the submission
// orchestrator and session persistence, and serializes access per session.
type Engine struct {
	graph         *steps.Graph
	flowsDir      string
	store         ports.StateStore
	locker        ports.DistributedLocker
	submissions   ports.SubmissionStore
	operator      ports.OperatorNotifier
	respondent    ports.RespondentNotifier
	scoring       *recommend.Config
	submitTimeout time.Duration
	hooks         domain.LifecycleHooks
	logger        *slog.Logger

	recommender  *recommend.Engine
	orchestrator *submission.Orchestrator
	manager      *session.Manager
	persister    *session.AsyncPersister

	// Sessions are reloaded from the store on every call. Only the submission
	// status, which is never persisted, is kept here between calls.
	transientCap int
	transient    *transientCache
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithGraph replaces the built-in flows with g.
func WithGraph(g *steps.Graph) Option {
	return func(e *Engine) {
		e.graph = g
	}
}

// WithFlowsDir registers every YAML flow definition found in dir.
func WithFlowsDir(dir string) Option {
	return func(e *Engine) {
		e.flowsDir = dir
	}
}

// WithStore sets the session state store (default: in memory).
func WithStore(s ports.StateStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLocker serializes session access across processes.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithSubmissionStore sets the storage collaborator.
func WithSubmissionStore(s ports.SubmissionStore) Option {
	return func(e *Engine) {
		e.submissions = s
	}
}

// WithOperatorNotifier sets the operator notification collaborator.
func WithOperatorNotifier(n ports.OperatorNotifier) Option {
	return func(e *Engine) {
		e.operator = n
	}
}

// WithRespondentNotifier sets the respondent confirmation collaborator.
func WithRespondentNotifier(n ports.RespondentNotifier) Option {
	return func(e *Engine) {
		e.respondent = n
	}
}

// WithScoringConfig replaces the default recommendation rules and thresholds.
func WithScoringConfig(cfg recommend.Config) Option {
	return func(e *Engine) {
		e.scoring = &cfg
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithTransientCapacity bounds how many sessions keep their submission status
// in memory between calls (default DefaultTransientCapacity). The least
// recently used entries are dropped first.
func WithTransientCapacity(n int) Option {
	return func(e *Engine) {
		e.transientCap = n
	}
}

// WithSubmitTimeout bounds each collaborator call made during submission.
func WithSubmitTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.submitTimeout = d
	}
}

// New initializes an Engine. Without options it serves the built-in flows,
// keeps sessions and submissions in memory and logs notifications.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	e.transient = newTransientCache(e.transientCap)

	if e.logger == nil {
		e.logger = logging.NewNop()
	}

	if e.graph == nil {
		g, err := flows.NewGraph()
		if err != nil {
			return nil, fmt.Errorf("failed to register built-in flows: %w", err)
		}
		e.graph = g
	}
	if e.flowsDir != "" {
		ids, err := steps.LoadDir(e.graph, e.flowsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load flows from %s: %w", e.flowsDir, err)
		}
		e.logger.Info("Loaded flow definitions", "dir", e.flowsDir, "flows", ids)
	}

	if e.store == nil {
		e.store = memory.NewStore()
	}
	if e.submissions == nil {
		e.submissions = memory.NewSubmissionStore()
	}
	if e.operator == nil || e.respondent == nil {
		n := memory.NewNotifier(DefaultOperator, e.logger)
		if e.operator == nil {
			e.operator = n
		}
		if e.respondent == nil {
			e.respondent = n
		}
	}

	if e.scoring != nil {
		r, err := recommend.New(*e.scoring)
		if err != nil {
			return nil, fmt.Errorf("invalid scoring config: %w", err)
		}
		e.recommender = r
	} else {
		e.recommender = recommend.Default()
	}

	subOpts := []submission.Option{
		submission.WithLogger(e.logger),
		submission.WithHooks(e.hooks),
	}
	if e.submitTimeout > 0 {
		subOpts = append(subOpts, submission.WithTimeout(e.submitTimeout))
	}
	orch, err := submission.New(e.submissions, e.operator, e.respondent, e.recommender, subOpts...)
	if err != nil {
		return nil, err
	}
	e.orchestrator = orch

	mgrOpts := []session.ManagerOption{session.WithManagerLogger(e.logger)}
	if e.locker != nil {
		mgrOpts = append(mgrOpts, session.WithLocker(e.locker))
	}
	e.manager = session.NewManager(e.store, mgrOpts...)
	e.persister = session.NewAsyncPersister(e.store, session.WithPersisterLogger(e.logger))

	return e, nil
}

// Graph returns the step graph.
func (e *Engine) Graph() *steps.Graph { return e.graph }

// Recommender returns the recommendation engine.
func (e *Engine) Recommender() *recommend.Engine { return e.recommender }

// Flows lists the registered flow identifiers.
func (e *Engine) Flows() []string { return e.graph.Flows() }

// Steps returns the declared steps of a flow.
func (e *Engine) Steps(flowID string) ([]domain.Step, error) { return e.graph.StepsFor(flowID) }

// Score ranks candidates for a set of answers without touching any session.
func (e *Engine) Score(a domain.Answers) []domain.Candidate { return e.recommender.Score(a) }

// Explain returns the per-category score breakdown for a set of answers.
func (e *Engine) Explain(a domain.Answers) []recommend.Breakdown { return e.recommender.Explain(a) }

// Start creates an empty session on the first applicable step, replacing any
// existing session with the same id. An empty sessionID is replaced by a new uuid.
func (e *Engine) Start(ctx context.Context, flowID, sessionID string) (session.View, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if _, err := e.graph.StepsFor(flowID); err != nil {
		return session.View{}, err
	}

	var view session.View
	err := e.withSession(ctx, flowID, sessionID, func(ctx context.Context) error {
		s, err := session.New(e.graph, flowID, sessionID, e.sessionOptions(flowID, sessionID)...)
		if err != nil {
			return err
		}
		e.transient.remove(domain.SessionKey(flowID, sessionID))
		e.persister.Persist(s.State())
		view = s.View()
		return e.persister.Flush(ctx)
	})
	return view, err
}

// Open returns the current view of an existing session.
// Returns domain.ErrSessionNotFound if the session was never started.
func (e *Engine) Open(ctx context.Context, flowID, sessionID string) (session.View, error) {
	return e.Update(ctx, flowID, sessionID, nil)
}

// Update runs fn on the session while holding its lock and waits for the
// resulting snapshot to be written. The session is loaded from the store each
// time, so engines sharing a store and a locker see each other's writes.
// The view is returned even when fn fails, so callers can render the
// unchanged session alongside the error.
func (e *Engine) Update(ctx context.Context, flowID, sessionID string, fn func(*session.Session) error) (session.View, error) {
	var view session.View
	err := e.withSession(ctx, flowID, sessionID, func(ctx context.Context) error {
		s, err := e.resolve(ctx, flowID, sessionID)
		if err != nil {
			return err
		}
		var fnErr error
		if fn != nil {
			fnErr = fn(s)
			// A reset clears the stored state; the emptied session stays addressable.
			e.persister.Persist(s.State())
		}
		e.keepTransient(s)
		view = s.View()
		if err := e.persister.Flush(ctx); err != nil {
			e.logger.Warn("Timed out waiting for session write", "session_id", sessionID, "err", err)
		}
		return fnErr
	})
	return view, err
}

// Discard removes a session from memory and from the store.
func (e *Engine) Discard(ctx context.Context, flowID, sessionID string) error {
	return e.withSession(ctx, flowID, sessionID, func(ctx context.Context) error {
		e.transient.remove(domain.SessionKey(flowID, sessionID))
		e.persister.Clear(flowID, sessionID)
		return e.persister.Flush(ctx)
	})
}

// Sessions lists the keys of all persisted sessions.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	return e.manager.List(ctx)
}

// Close waits for pending session writes and stops the background writer.
func (e *Engine) Close() error {
	return e.persister.Close()
}

func (e *Engine) withSession(ctx context.Context, flowID, sessionID string, fn func(context.Context) error) error {
	return e.manager.WithLock(ctx, domain.SessionKey(flowID, sessionID), fn)
}

// resolve loads the session from the store and restores its transient
// submission status. Callers must hold the session lock.
func (e *Engine) resolve(ctx context.Context, flowID, sessionID string) (*session.Session, error) {
	key := domain.SessionKey(flowID, sessionID)

	state, err := e.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if t, ok := e.transient.get(key); ok {
		state.Submission = t.submission
		state.Recommendations = t.recommendations
	}
	s, err := session.Resume(e.graph, state, e.sessionOptions(flowID, sessionID)...)
	if err != nil {
		return nil, fmt.Errorf("failed to resume session %s: %w", key, err)
	}
	return s, nil
}

func (e *Engine) keepTransient(s *session.Session) {
	state := s.State()
	e.transient.put(domain.SessionKey(s.FlowID(), s.ID()), transient{
		submission:      state.Submission,
		recommendations: state.Recommendations,
	})
}

func (e *Engine) sessionOptions(flowID, sessionID string) []session.Option {
	return []session.Option{
		session.WithPersister(e.persister),
		session.WithOrchestrator(e.orchestrator),
		session.WithHooks(e.hooks),
		session.WithLogger(e.logger.With("flow", flowID, "session_id", sessionID)),
	}
}
