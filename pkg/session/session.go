package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/internal/logging"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/answers"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/flow"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/steps"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/submission"
)

// ErrNoOrchestrator is returned by Submit when the session was built without one.
var ErrNoOrchestrator = errors.New("session has no submission orchestrator")

// View is what the UI collaborator renders.
type View struct {
	FlowID          string                 `json:"flow_id"`
	SessionID       string                 `json:"session_id"`
	Step            domain.Step            `json:"step"`
	Progress        flow.Progress          `json:"progress"`
	Done            bool                   `json:"done"`
	CanAdvance      bool                   `json:"can_advance"`
	Answers         domain.Answers         `json:"answers"`
	Submission      domain.SubmissionState `json:"submission"`
	Recommendations []domain.Candidate     `json:"recommendations,omitempty"`
}

// Session is one respondent's pass through one flow. It is not safe for
// concurrent use; callers serialize access (see Manager.WithLock).
type Session struct {
	flowID    string
	sessionID string
	graph     *steps.Graph

	answers         *answers.Store
	ctrl            *flow.Controller
	submission      domain.SubmissionState
	recommendations []domain.Candidate

	orchestrator *submission.Orchestrator
	persister    Persister
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithPersister schedules a write after every mutation.
func WithPersister(p Persister) Option {
	return func(s *Session) {
		s.persister = p
	}
}

// WithOrchestrator enables Submit.
func WithOrchestrator(o *submission.Orchestrator) Option {
	return func(s *Session) {
		s.orchestrator = o
	}
}

// WithHooks forwards step lifecycle events.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = h
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// New starts an empty session on the first applicable step.
func New(g *steps.Graph, flowID, sessionID string, opts ...Option) (*Session, error) {
	return Resume(g, domain.NewSessionState(flowID, sessionID, 0), opts...)
}

// Resume rebuilds a session from a persisted snapshot.
func Resume(g *steps.Graph, state *domain.SessionState, opts ...Option) (*Session, error) {
	s := &Session{
		flowID:          state.FlowID,
		sessionID:       state.SessionID,
		graph:           g,
		submission:      state.Submission,
		recommendations: state.Recommendations,
		logger:          logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.answers = answers.Restore(state.Answers)
	s.prune()
	ctrl, err := flow.Restore(g, state.FlowID, s.answers, state.Cursor,
		flow.WithHooks(s.hooks), flow.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	s.ctrl = ctrl
	return s, nil
}

// FlowID returns the flow identifier.
func (s *Session) FlowID() string { return s.flowID }

// ID returns the session identifier.
func (s *Session) ID() string { return s.sessionID }

// SetAnswer replaces the answer for key.
func (s *Session) SetAnswer(key string, v domain.Value) error {
	if err := s.guard(key); err != nil {
		return err
	}
	s.answers.SetAnswer(key, v)
	s.changed()
	return nil
}

// ClearAnswer removes the answer for key.
func (s *Session) ClearAnswer(key string) error {
	if err := s.guard(key); err != nil {
		return err
	}
	s.answers.Clear(key)
	s.changed()
	return nil
}

// AddToMultiSelect adds value to a multi-select answer, honoring the
// question's selection cap.
func (s *Session) AddToMultiSelect(key, value string) error {
	if err := s.guard(key); err != nil {
		return err
	}
	q, _ := s.graph.Question(s.flowID, key)
	s.answers.AddToMultiSelect(key, value, q.MaxSelect)
	s.changed()
	return nil
}

// RemoveFromMultiSelect removes value from a multi-select answer.
func (s *Session) RemoveFromMultiSelect(key, value string) error {
	if err := s.guard(key); err != nil {
		return err
	}
	s.answers.RemoveFromMultiSelect(key, value)
	s.changed()
	return nil
}

// SetContactInfo merges a partial contact update.
func (s *Session) SetContactInfo(patch domain.ContactPatch) error {
	if err := s.guard(domain.ContactKey); err != nil {
		return err
	}
	s.answers.SetContactInfo(patch)
	s.changed()
	return nil
}

// CanAdvance reports whether the current step is complete.
func (s *Session) CanAdvance() bool { return s.ctrl.CanAdvance() }

// Advance moves forward when the current step is complete.
func (s *Session) Advance() flow.Outcome {
	out := s.ctrl.Advance()
	if out != flow.Blocked {
		s.persist()
	}
	return out
}

// Retreat moves to the previous applicable step.
func (s *Session) Retreat() bool {
	moved := s.ctrl.Retreat()
	if moved {
		s.persist()
	}
	return moved
}

// JumpTo moves to stepID, bypassing completion gates.
func (s *Session) JumpTo(stepID string) error {
	if err := s.ctrl.JumpTo(stepID); err != nil {
		return err
	}
	s.persist()
	return nil
}

// Submit runs the submission orchestrator over the current answers. On success
// the submission id and recommendations are attached to the session.
// It is refused with domain.ErrFlowIncomplete until the cursor is on the last
// applicable step or the results step; JumpTo is the way to skip ahead.
func (s *Session) Submit(ctx context.Context) (submission.Result, error) {
	if s.orchestrator == nil {
		return submission.Result{}, ErrNoOrchestrator
	}
	if !s.ctrl.OnFinalStep() && s.submission.Status != domain.SubmissionSucceeded {
		return submission.Result{}, fmt.Errorf("%w: current step is %s", domain.ErrFlowIncomplete, s.ctrl.Current().ID)
	}
	res, err := s.orchestrator.Submit(ctx, s.flowID, s.answers.Snapshot(), &s.submission)
	if err != nil {
		return res, err
	}
	if res.Success {
		s.recommendations = res.Recommendations
	}
	return res, nil
}

// Reset restores the empty session and clears its persisted state.
func (s *Session) Reset() {
	s.answers.Reset()
	s.ctrl.Reset()
	s.submission = domain.SubmissionState{}
	s.recommendations = nil
	if s.persister != nil {
		s.persister.Clear(s.flowID, s.sessionID)
	}
}

// View returns the render model of the session.
func (s *Session) View() View {
	return View{
		FlowID:          s.flowID,
		SessionID:       s.sessionID,
		Step:            s.ctrl.Current(),
		Progress:        s.ctrl.Progress(),
		Done:            s.ctrl.Done(),
		CanAdvance:      s.ctrl.CanAdvance(),
		Answers:         s.answers.Snapshot(),
		Submission:      s.submission,
		Recommendations: s.recommendations,
	}
}

// State returns a snapshot including the transient submission status.
func (s *Session) State() *domain.SessionState {
	return &domain.SessionState{
		SessionID:       s.sessionID,
		FlowID:          s.flowID,
		Answers:         s.answers.Snapshot(),
		Cursor:          s.ctrl.Cursor(),
		UpdatedAt:       time.Now().UTC(),
		Submission:      s.submission,
		Recommendations: s.recommendations,
	}
}

// guard rejects mutations of fields owned by an inapplicable step.
func (s *Session) guard(key string) error {
	owner, ok := s.graph.OwnerOf(s.flowID, key)
	if !ok || owner.IsApplicable(s.answers.Snapshot()) {
		return nil
	}
	s.logger.Debug("ignored answer for inapplicable step", "flow", s.flowID, "key", key, "step", owner.ID)
	return fmt.Errorf("%w: %s", domain.ErrInapplicableField, key)
}

func (s *Session) changed() {
	s.prune()
	s.ctrl.Normalize()
	s.persist()
}

// prune drops answers owned by steps that are no longer applicable. Clearing
// one answer can hide further steps, so it repeats until nothing changes.
func (s *Session) prune() {
	for {
		snap := s.answers.Snapshot()
		cleared := false
		for key := range snap {
			owner, ok := s.graph.OwnerOf(s.flowID, key)
			if !ok || owner.IsApplicable(snap) {
				continue
			}
			s.answers.Clear(key)
			s.logger.Debug("dropped answer of inapplicable step", "flow", s.flowID, "key", key, "step", owner.ID)
			cleared = true
		}
		if !cleared {
			return
		}
	}
}

func (s *Session) persist() {
	if s.persister != nil {
		s.persister.Persist(s.State())
	}
}
