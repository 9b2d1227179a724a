package dsl

import (
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/steps"
)

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	step         domain.Step
	explicitGate bool
}

// Title sets the display title.
func (s *StepBuilder) Title(title string) *StepBuilder {
	s.step.Title = title
	return s
}

// Choice adds a required single-choice question.
func (s *StepBuilder) Choice(key, prompt string, options ...string) *StepBuilder {
	return s.Ask(domain.Question{Key: key, Kind: domain.KindScalar, Prompt: prompt, Options: options, Required: true})
}

// MultiChoice adds a required multi-select question capped at max selections (0 = unbounded).
func (s *StepBuilder) MultiChoice(key, prompt string, max int, options ...string) *StepBuilder {
	return s.Ask(domain.Question{Key: key, Kind: domain.KindMulti, Prompt: prompt, Options: options, Required: true, MaxSelect: max})
}

// Text adds an optional free-text question.
func (s *StepBuilder) Text(key, prompt string) *StepBuilder {
	return s.Ask(domain.Question{Key: key, Kind: domain.KindText, Prompt: prompt})
}

// Contact adds the required contact record question.
func (s *StepBuilder) Contact(prompt string) *StepBuilder {
	return s.Ask(domain.Question{Key: domain.ContactKey, Kind: domain.KindContact, Prompt: prompt, Required: true})
}

// Ask adds an arbitrary question.
func (s *StepBuilder) Ask(q domain.Question) *StepBuilder {
	s.step.Questions = append(s.step.Questions, q)
	return s
}

// Optional marks the most recently added question as not required.
func (s *StepBuilder) Optional() *StepBuilder {
	if n := len(s.step.Questions); n > 0 {
		s.step.Questions[n-1].Required = false
	}
	return s
}

// When sets the applicability predicate.
func (s *StepBuilder) When(p domain.Predicate) *StepBuilder {
	s.step.Applicable = p
	return s
}

// CompleteWhen overrides the default completion gate.
func (s *StepBuilder) CompleteWhen(p domain.Predicate) *StepBuilder {
	s.step.Complete = p
	s.explicitGate = true
	return s
}

// Build returns the underlying domain.Step.
func (s *StepBuilder) Build() domain.Step {
	out := s.step
	out.Questions = append([]domain.Question(nil), s.step.Questions...)
	if !s.explicitGate {
		out.Complete = steps.RequiredAnswered(out.Questions)
	}
	return out
}
