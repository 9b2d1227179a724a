package domain

import "time"

// Cursor is the persisted step position of a session.
// Indices refer to step declaration positions, so they stay stable when answers
// change which steps are applicable. A CurrentStepIndex equal to the number of
// declared steps denotes the results sentinel.
type Cursor struct {
	CurrentStepIndex     int   `json:"current_step_index"`
	CompletedStepIndices []int `json:"completed_step_indices"`
}

// SessionState represents the snapshot of a questionnaire session.
type SessionState struct {
	SessionID string  `json:"session_id"`
	FlowID    string  `json:"flow_id"`
	Answers   Answers `json:"answers"`
	Cursor

	UpdatedAt time.Time `json:"updated_at"`

	// Submission is transient and never persisted.
	Submission SubmissionState `json:"-"`

	// Recommendations are attached after a successful submission, for display only.
	Recommendations []Candidate `json:"-"`
}

// NewSessionState creates a clean state positioned on the given step index.
func NewSessionState(flowID, sessionID string, start int) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		FlowID:    flowID,
		Answers:   make(Answers),
		Cursor: Cursor{
			CurrentStepIndex:     start,
			CompletedStepIndices: []int{},
		},
	}
}

// Snapshot returns a deep copy of the state.
func (s *SessionState) Snapshot() *SessionState {
	if s == nil {
		return nil
	}
	out := *s
	out.Answers = s.Answers.Clone()
	out.CompletedStepIndices = append([]int{}, s.CompletedStepIndices...)
	if s.Recommendations != nil {
		out.Recommendations = append([]Candidate{}, s.Recommendations...)
	}
	return &out
}

// SessionKey namespaces a session by flow so independent questionnaires never collide.
func SessionKey(flowID, sessionID string) string {
	return flowID + ":" + sessionID
}
