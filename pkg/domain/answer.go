package domain

import "slices"

// ValueKind identifies the shape of an answer.
type ValueKind string

const (
	KindScalar  ValueKind = "scalar"  // Single enum value
	KindMulti   ValueKind = "multi"   // Deduplicated set of enum values, insertion ordered
	KindText    ValueKind = "text"    // Free text
	KindContact ValueKind = "contact" // Structured contact record
)

// Contact is the respondent's contact record.
type Contact struct {
	Name  string `json:"name" yaml:"name" mapstructure:"name"`
	Email string `json:"email" yaml:"email" mapstructure:"email"`
	Phone string `json:"phone" yaml:"phone" mapstructure:"phone"`
}

// ContactPatch is a partial contact update. Nil fields are left untouched.
type ContactPatch struct {
	Name  *string `json:"name,omitempty" mapstructure:"name"`
	Email *string `json:"email,omitempty" mapstructure:"email"`
	Phone *string `json:"phone,omitempty" mapstructure:"phone"`
}

// Value is a single answer.
type Value struct {
	Kind    ValueKind `json:"kind"`
	Scalar  string    `json:"scalar,omitempty"`
	Multi   []string  `json:"multi,omitempty"`
	Text    string    `json:"text,omitempty"`
	Contact *Contact  `json:"contact,omitempty"`
}

// ScalarValue creates a single-choice answer.
func ScalarValue(v string) Value { return Value{Kind: KindScalar, Scalar: v} }

// TextValue creates a free-text answer.
func TextValue(v string) Value { return Value{Kind: KindText, Text: v} }

// ContactValue creates a contact answer.
func ContactValue(c Contact) Value { return Value{Kind: KindContact, Contact: &c} }

// MultiValue creates a multi-select answer. Duplicates are dropped, first occurrence wins.
func MultiValue(vs ...string) Value {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return Value{Kind: KindMulti, Multi: out}
}

// IsZero reports whether the value carries no answer.
func (v Value) IsZero() bool {
	switch v.Kind {
	case KindScalar:
		return v.Scalar == ""
	case KindMulti:
		return len(v.Multi) == 0
	case KindText:
		return v.Text == ""
	case KindContact:
		return v.Contact == nil || *v.Contact == Contact{}
	}
	return true
}

// Clone returns a deep copy of the value.
func (v Value) Clone() Value {
	out := v
	if v.Multi != nil {
		out.Multi = slices.Clone(v.Multi)
	}
	if v.Contact != nil {
		c := *v.Contact
		out.Contact = &c
	}
	return out
}

// Answers maps question keys to answers.
type Answers map[string]Value

// Clone returns a deep copy.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v.Clone()
	}
	return out
}

// Has reports whether key holds a non-empty answer.
func (a Answers) Has(key string) bool {
	v, ok := a[key]
	return ok && !v.IsZero()
}

// Scalar returns the single-choice value for key. Text answers are returned as-is.
func (a Answers) Scalar(key string) string {
	v := a[key]
	switch v.Kind {
	case KindScalar:
		return v.Scalar
	case KindText:
		return v.Text
	}
	return ""
}

// Selected returns the values chosen for key. A scalar answer counts as one selection.
func (a Answers) Selected(key string) []string {
	v := a[key]
	switch v.Kind {
	case KindMulti:
		return v.Multi
	case KindScalar:
		if v.Scalar != "" {
			return []string{v.Scalar}
		}
	}
	return nil
}

// Contains reports whether value is the scalar answer or one of the selections for key.
func (a Answers) Contains(key, value string) bool {
	return slices.Contains(a.Selected(key), value)
}

// Contact returns the contact record, or the zero Contact when absent.
func (a Answers) Contact() Contact {
	v, ok := a[ContactKey]
	if !ok || v.Contact == nil {
		return Contact{}
	}
	return *v.Contact
}
