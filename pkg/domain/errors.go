package domain

import (
	"errors"
	"strings"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrFlowNotFound is returned when a flow identifier is not registered in the step graph.
var ErrFlowNotFound = errors.New("flow not found")

// ErrStepNotFound is returned when a step identifier does not exist in the flow.
var ErrStepNotFound = errors.New("step not found")

// ErrFlowComplete is returned when navigating away from the terminal results step.
var ErrFlowComplete = errors.New("flow already complete")

// ErrFlowIncomplete is returned when submitting before the last applicable step is reached.
var ErrFlowIncomplete = errors.New("flow not yet complete")

// ErrInapplicableField is returned when mutating an answer owned by an inapplicable step.
var ErrInapplicableField = errors.New("field belongs to an inapplicable step")

// ErrSubmissionInFlight is returned when a submission is attempted while another is running.
var ErrSubmissionInFlight = errors.New("submission already in flight")

// ErrAlreadySubmitted is returned when a succeeded submission is submitted again.
var ErrAlreadySubmitted = errors.New("submission already succeeded")

// FieldError describes a single invalid or missing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates field-level errors. It is recovered locally and
// surfaced as inline messages, never propagated as a failure of the flow.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
