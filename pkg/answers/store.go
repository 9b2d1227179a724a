package answers

import (
	"slices"
	"strings"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

// Store holds the answers of a single session.
// It is not safe for concurrent use; a session is driven by one caller at a time.
type Store struct {
	answers  domain.Answers
	onChange func(domain.Answers)
}

// Option configures the Store.
type Option func(*Store)

// WithOnChange registers a hook invoked with a snapshot after every mutation.
func WithOnChange(fn func(domain.Answers)) Option {
	return func(s *Store) {
		s.onChange = fn
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	return Restore(nil, opts...)
}

// Restore creates a Store seeded with previously persisted answers.
func Restore(initial domain.Answers, opts ...Option) *Store {
	s := &Store{answers: initial.Clone()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetAnswer replaces the answer for key. Multi values are deduplicated.
func (s *Store) SetAnswer(key string, value domain.Value) {
	if key == "" {
		return
	}
	if value.Kind == domain.KindMulti {
		value = domain.MultiValue(value.Multi...)
	}
	s.answers[key] = value.Clone()
	s.changed()
}

// Clear removes the answer for key.
func (s *Store) Clear(key string) {
	if _, ok := s.answers[key]; !ok {
		return
	}
	delete(s.answers, key)
	s.changed()
}

// AddToMultiSelect adds value to the selection for key.
// Adding a present value is a no-op. When maxSize > 0 and the selection is full,
// the oldest selection is evicted to make room.
func (s *Store) AddToMultiSelect(key, value string, maxSize int) {
	if key == "" || value == "" {
		return
	}
	current := s.answers.Selected(key)
	if slices.Contains(current, value) {
		return
	}

	next := append(slices.Clone(current), value)
	if maxSize > 0 && len(next) > maxSize {
		next = next[len(next)-maxSize:]
	}
	s.answers[key] = domain.Value{Kind: domain.KindMulti, Multi: next}
	s.changed()
}

// RemoveFromMultiSelect removes value from the selection for key.
func (s *Store) RemoveFromMultiSelect(key, value string) {
	current := s.answers.Selected(key)
	idx := slices.Index(current, value)
	if idx < 0 {
		return
	}
	next := slices.Delete(slices.Clone(current), idx, idx+1)
	s.answers[key] = domain.Value{Kind: domain.KindMulti, Multi: next}
	s.changed()
}

// SetContactInfo merges the non-nil fields of patch into the contact record.
func (s *Store) SetContactInfo(patch domain.ContactPatch) {
	c := s.answers.Contact()
	if patch.Name != nil {
		c.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		c.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.Phone != nil {
		c.Phone = strings.TrimSpace(*patch.Phone)
	}
	s.answers[domain.ContactKey] = domain.ContactValue(c)
	s.changed()
}

// Reset restores the initial empty answers.
func (s *Store) Reset() {
	s.answers = make(domain.Answers)
	s.changed()
}

// Snapshot returns a deep copy of the current answers.
func (s *Store) Snapshot() domain.Answers {
	return s.answers.Clone()
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange(s.answers.Clone())
	}
}
