package domain

import (
	"reflect"
	"slices"
)

// SessionDiff represents the changes between two session snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SessionDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	CurrentStepIndex *int `json:"current_step_index,omitempty"`

	// Answers contains only changed, added or deleted keys.
	// For deletions, the key is present with a nil value.
	Answers map[string]*Value `json:"answers,omitempty"`

	// Completed is the full completed set, sent only when it changed.
	Completed []int `json:"completed_step_indices,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState, newState *SessionState) *SessionDiff {
	if newState == nil {
		return nil
	}

	diff := &SessionDiff{SessionID: newState.SessionID}

	if oldState == nil || oldState.CurrentStepIndex != newState.CurrentStepIndex {
		idx := newState.CurrentStepIndex
		diff.CurrentStepIndex = &idx
	}

	diff.Answers = diffAnswers(oldState, newState)

	if oldState == nil || !slices.Equal(sorted(oldState.CompletedStepIndices), sorted(newState.CompletedStepIndices)) {
		if len(newState.CompletedStepIndices) > 0 || oldState != nil {
			diff.Completed = sorted(newState.CompletedStepIndices)
			if diff.Completed == nil {
				diff.Completed = []int{}
			}
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffAnswers(old, new *SessionState) map[string]*Value {
	delta := make(map[string]*Value)

	if old == nil {
		for k, v := range new.Answers {
			v := v.Clone()
			delta[k] = &v
		}
		if len(delta) == 0 {
			return nil
		}
		return delta
	}

	for k, newVal := range new.Answers {
		oldVal, exists := old.Answers[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			v := newVal.Clone()
			delta[k] = &v
		}
	}

	for k := range old.Answers {
		if _, exists := new.Answers[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

func sorted(in []int) []int {
	if in == nil {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	return out
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SessionDiff) IsEmpty() bool {
	return d.CurrentStepIndex == nil &&
		len(d.Answers) == 0 &&
		d.Completed == nil
}
