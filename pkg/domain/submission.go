package domain

import "time"

// SubmissionStatus is the lifecycle of the terminal submission.
type SubmissionStatus string

const (
	SubmissionIdle      SubmissionStatus = "idle"
	SubmissionInFlight  SubmissionStatus = "in_flight"
	SubmissionSucceeded SubmissionStatus = "succeeded"
	SubmissionFailed    SubmissionStatus = "failed"
)

// SubmissionState tracks one session's submission attempts.
type SubmissionState struct {
	Status       SubmissionStatus `json:"status"`
	SubmissionID string           `json:"submission_id,omitempty"`
	Error        string           `json:"error,omitempty"`
	Attempts     int              `json:"attempts"`

	// IdempotencyKey is generated on the first attempt and reused by retries so
	// collaborators can deduplicate.
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// CanTransition reports whether the lifecycle permits moving to the target status.
// Transitions are one-directional except Failed -> InFlight (manual retry).
func (s SubmissionState) CanTransition(to SubmissionStatus) bool {
	from := s.Status
	if from == "" {
		from = SubmissionIdle
	}
	switch from {
	case SubmissionIdle:
		return to == SubmissionInFlight || to == SubmissionFailed
	case SubmissionInFlight:
		return to == SubmissionSucceeded || to == SubmissionFailed
	case SubmissionFailed:
		return to == SubmissionInFlight || to == SubmissionFailed
	}
	return false
}

// Payload is the record written to the storage collaborator.
type Payload struct {
	SubmissionID    string      `json:"submission_id"`
	Type            string      `json:"type"`
	Timestamp       time.Time   `json:"timestamp"`
	Contact         Contact     `json:"contact"`
	Answers         Answers     `json:"answers"`
	Recommendations []Candidate `json:"recommendations,omitempty"`
}

// Receipt is the storage collaborator's acknowledgement.
type Receipt struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}

// CollaboratorResult records the outcome of one submission side effect.
type CollaboratorResult struct {
	Name     string        `json:"name"`
	Success  bool          `json:"success"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Collaborator names used in CollaboratorResult.
const (
	CollaboratorStorage    = "storage"
	CollaboratorOperator   = "operator_notification"
	CollaboratorRespondent = "respondent_notification"
)
