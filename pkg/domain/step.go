package domain

import "slices"

// Predicate evaluates the current answers.
// Predicates must be pure: no I/O and no mutation of the answers.
type Predicate func(Answers) bool

// Question describes one field collected by a step.
type Question struct {
	Key      string    `json:"key" yaml:"key"`
	Kind     ValueKind `json:"kind" yaml:"kind"`
	Prompt   string    `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Options  []string  `json:"options,omitempty" yaml:"options,omitempty"`
	Required bool      `json:"required,omitempty" yaml:"required,omitempty"`

	// MaxSelect caps a multi-select answer (sliding window). Zero means unbounded.
	MaxSelect int `json:"max_select,omitempty" yaml:"max_select,omitempty"`
}

// Step represents a screen of the questionnaire.
//
// Applicable must not depend on a field the step itself writes; doing so would
// make the step hide itself while being answered.
type Step struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`

	// Position is the declaration index within the flow.
	Position int `json:"position"`

	Questions []Question `json:"questions,omitempty"`

	// Applicable reports whether the step is shown. Nil means always.
	Applicable Predicate `json:"-"`

	// Complete gates Advance. Nil means the step is always complete.
	Complete Predicate `json:"-"`
}

// IsApplicable evaluates the applicability predicate.
func (s Step) IsApplicable(a Answers) bool {
	if s.Applicable == nil {
		return true
	}
	return s.Applicable(a)
}

// IsComplete evaluates the completion gate.
func (s Step) IsComplete(a Answers) bool {
	if s.Complete == nil {
		return true
	}
	return s.Complete(a)
}

// Fields lists the answer keys written by the step.
func (s Step) Fields() []string {
	keys := make([]string, len(s.Questions))
	for i, q := range s.Questions {
		keys[i] = q.Key
	}
	return keys
}

// Writes reports whether the step owns the answer key.
func (s Step) Writes(key string) bool {
	return slices.Contains(s.Fields(), key)
}

// Question returns the question definition for key.
func (s Step) Question(key string) (Question, bool) {
	for _, q := range s.Questions {
		if q.Key == key {
			return q, true
		}
	}
	return Question{}, false
}

// ResultsStep returns the terminal sentinel step positioned after the last declared step.
func ResultsStep(position int) Step {
	return Step{ID: ResultsStepID, Title: "Results", Position: position}
}
