package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter          EventType = "step_enter"
	EventStepLeave          EventType = "step_leave"
	EventSubmission         EventType = "submission"
	EventCollaboratorReturn EventType = "collaborator_return"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	FlowID    string    `json:"flow_id"`
}

// StepEvent represents entry or exit from a step.
type StepEvent struct {
	EventBase
	StepID   string `json:"step_id"`
	Position int    `json:"position"`
}

// SubmissionEvent reports the terminal status of a submission attempt.
type SubmissionEvent struct {
	EventBase
	SubmissionID string           `json:"submission_id,omitempty"`
	Status       SubmissionStatus `json:"status"`
	Attempt      int              `json:"attempt"`
}

// CollaboratorEvent reports the outcome of a single side effect.
type CollaboratorEvent struct {
	EventBase
	Result CollaboratorResult `json:"result"`
}

// LifecycleHooks defines callbacks for observability.
type LifecycleHooks struct {
	OnStepEnter          func(context.Context, *StepEvent)
	OnStepLeave          func(context.Context, *StepEvent)
	OnSubmission         func(context.Context, *SubmissionEvent)
	OnCollaboratorReturn func(context.Context, *CollaboratorEvent)
}

// Merge combines two hook sets; both callbacks fire when both are set.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepEnter:          chain(h.OnStepEnter, other.OnStepEnter),
		OnStepLeave:          chain(h.OnStepLeave, other.OnStepLeave),
		OnSubmission:         chain(h.OnSubmission, other.OnSubmission),
		OnCollaboratorReturn: chain(h.OnCollaboratorReturn, other.OnCollaboratorReturn),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
