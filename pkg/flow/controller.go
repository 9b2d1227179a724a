// Package flow implements the navigation state machine over a flow's applicable steps.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/internal/logging"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/steps"
)

// AnswerSource provides the current answers. *answers.Store satisfies it.
type AnswerSource interface {
	Snapshot() domain.Answers
}

// Outcome is the result of Advance.
type Outcome int

const (
	// Blocked means the current step is incomplete; nothing changed.
	Blocked Outcome = iota
	// Moved means the cursor is on the next applicable step.
	Moved
	// Completed means no applicable step remains; the cursor is on the results sentinel.
	Completed
)

func (o Outcome) String() string {
	switch o {
	case Blocked:
		return "blocked"
	case Moved:
		return "moved"
	case Completed:
		return "completed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Progress describes the cursor relative to the applicable steps.
type Progress struct {
	StepID    string          `json:"step_id"`
	Position  int             `json:"position"`
	Total     int             `json:"total"`
	Completed map[string]bool `json:"completed"`
}

// Controller is the state machine for one session of one flow.
// It is not safe for concurrent use.
type Controller struct {
	flowID    string
	steps     []domain.Step
	answers   AnswerSource
	current   int
	completed map[int]bool
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
}

// Option configures the Controller.
type Option func(*Controller)

// WithHooks registers lifecycle callbacks for step enter/leave.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = h
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// New creates a controller positioned on the first applicable step.
func New(g *steps.Graph, flowID string, answers AnswerSource, opts ...Option) (*Controller, error) {
	return Restore(g, flowID, answers, domain.Cursor{}, opts...)
}

// Restore rebuilds a controller from a persisted cursor. Out-of-range indices are
// clamped and the cursor is moved onto an applicable step.
func Restore(g *steps.Graph, flowID string, answers AnswerSource, cursor domain.Cursor, opts ...Option) (*Controller, error) {
	declared, err := g.StepsFor(flowID)
	if err != nil {
		return nil, err
	}
	c := &Controller{
		flowID:    flowID,
		steps:     declared,
		answers:   answers,
		completed: make(map[int]bool),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.current = min(max(cursor.CurrentStepIndex, 0), len(declared))
	for _, idx := range cursor.CompletedStepIndices {
		if idx >= 0 && idx < len(declared) {
			c.completed[idx] = true
		}
	}
	if !c.Done() {
		c.current = c.land(c.current, c.answers.Snapshot())
	}
	return c, nil
}

// FlowID returns the flow this controller navigates.
func (c *Controller) FlowID() string { return c.flowID }

// Current returns the current step, or the results sentinel once complete.
func (c *Controller) Current() domain.Step {
	if c.Done() {
		return domain.ResultsStep(len(c.steps))
	}
	return c.steps[c.current]
}

// OnFinalStep reports whether no applicable step remains after the current one.
// It is true on the results sentinel.
func (c *Controller) OnFinalStep() bool {
	if c.Done() {
		return true
	}
	return c.nextApplicable(c.current+1, c.answers.Snapshot()) >= len(c.steps)
}

// Done reports whether the cursor is on the results sentinel.
func (c *Controller) Done() bool {
	return c.current >= len(c.steps)
}

// CanAdvance reports whether the current step's completion gate holds.
func (c *Controller) CanAdvance() bool {
	if c.Done() {
		return false
	}
	return c.steps[c.current].IsComplete(c.answers.Snapshot())
}

// Advance marks the current step complete and moves to the next applicable step.
// It is a no-op returning Blocked when CanAdvance is false.
func (c *Controller) Advance() Outcome {
	if !c.CanAdvance() {
		return Blocked
	}
	c.completed[c.current] = true
	next := c.nextApplicable(c.current+1, c.answers.Snapshot())
	c.move(next)
	if c.Done() {
		return Completed
	}
	return Moved
}

// Retreat moves to the previous applicable step. It returns false, changing
// nothing, at the first applicable step and on the results sentinel.
func (c *Controller) Retreat() bool {
	if c.Done() {
		return false
	}
	prev := c.prevApplicable(c.current-1, c.answers.Snapshot())
	if prev < 0 {
		return false
	}
	c.move(prev)
	return true
}

// JumpTo moves to stepID without checking completion gates. If the step is
// currently inapplicable, the cursor lands on the nearest applicable step after it,
// or before it when none follows.
func (c *Controller) JumpTo(stepID string) error {
	if c.Done() {
		return domain.ErrFlowComplete
	}
	idx := slices.IndexFunc(c.steps, func(s domain.Step) bool { return s.ID == stepID })
	if idx < 0 {
		return fmt.Errorf("%w: %s/%s", domain.ErrStepNotFound, c.flowID, stepID)
	}
	c.move(c.land(idx, c.answers.Snapshot()))
	return nil
}

// Normalize re-homes the cursor when the answers made the current step
// inapplicable. It reports whether the cursor moved.
func (c *Controller) Normalize() bool {
	if c.Done() {
		return false
	}
	target := c.land(c.current, c.answers.Snapshot())
	if target == c.current {
		return false
	}
	c.move(target)
	return true
}

// Reset returns to the first applicable step and forgets completed steps.
func (c *Controller) Reset() {
	clear(c.completed)
	c.move(c.land(0, c.answers.Snapshot()))
}

// Cursor returns the persisted form of the navigation state.
func (c *Controller) Cursor() domain.Cursor {
	done := make([]int, 0, len(c.completed))
	for idx := range c.completed {
		done = append(done, idx)
	}
	slices.Sort(done)
	return domain.Cursor{CurrentStepIndex: c.current, CompletedStepIndices: done}
}

// Progress numbers the cursor over the applicable steps only.
func (c *Controller) Progress() Progress {
	a := c.answers.Snapshot()
	p := Progress{StepID: c.Current().ID, Completed: make(map[string]bool)}
	for i, s := range c.steps {
		if !s.IsApplicable(a) {
			continue
		}
		if i == c.current {
			p.Position = p.Total
		}
		p.Completed[s.ID] = c.completed[i]
		p.Total++
	}
	if c.Done() {
		p.Position = p.Total
	}
	return p
}

// land resolves idx onto an applicable step: idx itself, the nearest after it,
// or the nearest before it. With no applicable step at all it is the results sentinel.
func (c *Controller) land(idx int, a domain.Answers) int {
	if next := c.nextApplicable(idx, a); next < len(c.steps) {
		return next
	}
	if prev := c.prevApplicable(idx-1, a); prev >= 0 {
		return prev
	}
	return len(c.steps)
}

func (c *Controller) nextApplicable(from int, a domain.Answers) int {
	for i := max(from, 0); i < len(c.steps); i++ {
		if c.steps[i].IsApplicable(a) {
			return i
		}
	}
	return len(c.steps)
}

func (c *Controller) prevApplicable(from int, a domain.Answers) int {
	for i := min(from, len(c.steps)-1); i >= 0; i-- {
		if c.steps[i].IsApplicable(a) {
			return i
		}
	}
	return -1
}

func (c *Controller) move(to int) {
	if to == c.current {
		return
	}
	ctx := context.Background()
	if !c.Done() && c.hooks.OnStepLeave != nil {
		c.hooks.OnStepLeave(ctx, c.event(domain.EventStepLeave))
	}
	c.logger.Debug("step transition", "flow", c.flowID, "from", c.Current().ID, "to", c.stepID(to))
	c.current = to
	if c.hooks.OnStepEnter != nil {
		c.hooks.OnStepEnter(ctx, c.event(domain.EventStepEnter))
	}
}

func (c *Controller) stepID(idx int) string {
	if idx >= len(c.steps) {
		return domain.ResultsStepID
	}
	return c.steps[idx].ID
}

func (c *Controller) event(kind domain.EventType) *domain.StepEvent {
	s := c.Current()
	return &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: kind, FlowID: c.flowID},
		StepID:    s.ID,
		Position:  s.Position,
	}
}
