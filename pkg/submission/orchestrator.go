// Package submission drives the terminal step of a questionnaire: contact
// validation, recommendation scoring, and the concurrent dispatch of the
// storage write and the two notifications.
//
// Collaborator failures are independent. A failed storage write or email is
// logged and recorded in Result.Collaborators; the submission as a whole only
// fails when every collaborator failed or the call could not start at all.
package submission

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
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/recommend"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds each collaborator call.
const DefaultTimeout = 15 * time.Second

// Result is the user-visible outcome of Submit.
type Result struct {
	Success         bool                        `json:"success"`
	SubmissionID    string                      `json:"submission_id,omitempty"`
	Error           string                      `json:"error,omitempty"`
	FieldErrors     []domain.FieldError         `json:"field_errors,omitempty"`
	Collaborators   []domain.CollaboratorResult `json:"collaborators,omitempty"`
	Recommendations []domain.Candidate          `json:"recommendations,omitempty"`
}

// Orchestrator runs submissions. It is safe for concurrent use across sessions.
type Orchestrator struct {
	store      ports.SubmissionStore
	operator   ports.OperatorNotifier
	respondent ports.RespondentNotifier
	engine     *recommend.Engine

	timeout time.Duration
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	now     func() time.Time
	newID   func() string
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithTimeout bounds each collaborator call. A collaborator that has not
// settled in time is recorded as failed.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithHooks registers submission and collaborator callbacks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = h
	}
}

// WithClock overrides the payload timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithIDGenerator overrides the idempotency key generator.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		o.newID = fn
	}
}

// New creates an orchestrator. All collaborators are required.
func New(store ports.SubmissionStore, operator ports.OperatorNotifier, respondent ports.RespondentNotifier, engine *recommend.Engine, opts ...Option) (*Orchestrator, error) {
	switch {
	case store == nil:
		return nil, errors.New("submission store is required")
	case operator == nil:
		return nil, errors.New("operator notifier is required")
	case respondent == nil:
		return nil, errors.New("respondent notifier is required")
	case engine == nil:
		return nil, errors.New("recommendation engine is required")
	}
	o := &Orchestrator{
		store:      store,
		operator:   operator,
		respondent: respondent,
		engine:     engine,
		timeout:    DefaultTimeout,
		logger:     logging.NewNop(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Submit validates the contact record, scores the answers and dispatches the
// collaborators, updating state in place.
//
// The returned error is reserved for refused calls: a submission already in
// flight or already succeeded. Every other outcome, including validation and
// collaborator failures, is reported through Result.
func (o *Orchestrator) Submit(ctx context.Context, flowID string, answers domain.Answers, state *domain.SubmissionState) (Result, error) {
	if state == nil {
		state = &domain.SubmissionState{}
	}
	switch state.Status {
	case domain.SubmissionInFlight:
		return Result{}, domain.ErrSubmissionInFlight
	case domain.SubmissionSucceeded:
		return Result{}, domain.ErrAlreadySubmitted
	}

	contact := answers.Contact()
	if fieldErrs := ValidateContact(contact); len(fieldErrs) > 0 {
		verr := &domain.ValidationError{Fields: fieldErrs}
		o.finish(ctx, flowID, state, domain.SubmissionFailed, "", verr.Error())
		return Result{Error: verr.Error(), FieldErrors: fieldErrs}, nil
	}

	state.Status = domain.SubmissionInFlight
	state.Error = ""
	state.SubmissionID = ""
	state.Attempts++
	if state.IdempotencyKey == "" {
		state.IdempotencyKey = o.newID()
	}

	if err := ctx.Err(); err != nil {
		o.logger.Error("submission aborted before dispatch", "flow", flowID, "error", err)
		o.finish(ctx, flowID, state, domain.SubmissionFailed, "", domain.MsgRetry)
		return Result{Error: domain.MsgRetry}, nil
	}

	recs := o.engine.Score(answers)
	payload := domain.Payload{
		SubmissionID:    state.IdempotencyKey,
		Type:            flowID,
		Timestamp:       o.now().UTC(),
		Contact:         contact,
		Answers:         answers.Clone(),
		Recommendations: recs,
	}

	results, receipt := o.dispatch(ctx, payload)

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	if succeeded == 0 {
		o.logger.Error("all submission collaborators failed", "flow", flowID, "attempt", state.Attempts)
		o.finish(ctx, flowID, state, domain.SubmissionFailed, "", domain.MsgRetry)
		return Result{Error: domain.MsgRetry, Collaborators: results}, nil
	}

	id := state.IdempotencyKey
	if results[0].Success && receipt.ID != "" {
		id = receipt.ID
	}
	o.finish(ctx, flowID, state, domain.SubmissionSucceeded, id, "")
	return Result{
		Success:         true,
		SubmissionID:    id,
		Collaborators:   results,
		Recommendations: recs,
	}, nil
}

// dispatch runs the three collaborators concurrently and waits for all of them.
// Results are ordered storage, operator, respondent.
func (o *Orchestrator) dispatch(ctx context.Context, p domain.Payload) ([]domain.CollaboratorResult, domain.Receipt) {
	var (
		mu      sync.Mutex
		receipt domain.Receipt
		eg      errgroup.Group
	)
	results := make([]domain.CollaboratorResult, 3)

	eg.Go(func() error {
		results[0] = o.call(ctx, p.Type, domain.CollaboratorStorage, func(ctx context.Context) (string, error) {
			r, err := o.store.Store(ctx, p)
			if err != nil {
				return "", err
			}
			mu.Lock()
			receipt = r
			mu.Unlock()
			return r.Message, nil
		})
		return nil
	})
	eg.Go(func() error {
		results[1] = o.call(ctx, p.Type, domain.CollaboratorOperator, func(ctx context.Context) (string, error) {
			return "", o.operator.NotifyOperator(ctx, p.Contact, p.Type)
		})
		return nil
	})
	eg.Go(func() error {
		results[2] = o.call(ctx, p.Type, domain.CollaboratorRespondent, func(ctx context.Context) (string, error) {
			return "", o.respondent.NotifyRespondent(ctx, p.Contact, p.Recommendations)
		})
		return nil
	})
	_ = eg.Wait()

	mu.Lock()
	defer mu.Unlock()
	return results, receipt
}

type callOutcome struct {
	msg string
	err error
}

// call runs one collaborator with a bounded wait and panic recovery.
func (o *Orchestrator) call(ctx context.Context, flowID, name string, fn func(context.Context) (string, error)) domain.CollaboratorResult {
	start := time.Now()
	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	done := make(chan callOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callOutcome{err: fmt.Errorf("collaborator panicked: %v", r)}
			}
		}()
		msg, err := fn(cctx)
		done <- callOutcome{msg: msg, err: err}
	}()

	var out callOutcome
	select {
	case out = <-done:
	case <-cctx.Done():
		out = callOutcome{err: fmt.Errorf("collaborator did not settle: %w", cctx.Err())}
	}

	res := domain.CollaboratorResult{
		Name:     name,
		Success:  out.err == nil,
		Message:  out.msg,
		Duration: time.Since(start),
	}
	if out.err != nil {
		res.Message = out.err.Error()
		o.logger.Warn("submission collaborator failed", "flow", flowID, "collaborator", name, "error", out.err)
	}
	if o.hooks.OnCollaboratorReturn != nil {
		o.hooks.OnCollaboratorReturn(ctx, &domain.CollaboratorEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventCollaboratorReturn, FlowID: flowID},
			Result:    res,
		})
	}
	return res
}

func (o *Orchestrator) finish(ctx context.Context, flowID string, state *domain.SubmissionState, status domain.SubmissionStatus, id, msg string) {
	if !state.CanTransition(status) {
		o.logger.Error("illegal submission transition", "flow", flowID, "from", state.Status, "to", status)
		return
	}
	state.Status = status
	state.SubmissionID = id
	state.Error = msg
	o.logger.Info("submission finished", "flow", flowID, "status", status, "attempt", state.Attempts, "submission_id", id)
	if o.hooks.OnSubmission != nil {
		o.hooks.OnSubmission(ctx, &domain.SubmissionEvent{
			EventBase:    domain.EventBase{Timestamp: time.Now(), Type: domain.EventSubmission, FlowID: flowID},
			SubmissionID: id,
			Status:       status,
			Attempt:      state.Attempts,
		})
	}
}
