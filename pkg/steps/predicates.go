package steps

import (
	"slices"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

// Always is the predicate that is true for any answers.
func Always(domain.Answers) bool { return true }

// Answered is true when key holds a non-empty answer.
func Answered(key string) domain.Predicate {
	return func(a domain.Answers) bool { return a.Has(key) }
}

// Equals is true when key's scalar answer is value.
func Equals(key, value string) domain.Predicate {
	return func(a domain.Answers) bool { return a.Scalar(key) == value }
}

// NotEquals is true unless key's scalar answer is value. An unanswered key is not equal.
func NotEquals(key, value string) domain.Predicate {
	return func(a domain.Answers) bool { return a.Scalar(key) != value }
}

// In is true when any selection (or the scalar answer) of key is one of values.
func In(key string, values ...string) domain.Predicate {
	return func(a domain.Answers) bool {
		for _, v := range a.Selected(key) {
			if slices.Contains(values, v) {
				return true
			}
		}
		return false
	}
}

// MinSelected is true when key has at least n selections.
func MinSelected(key string, n int) domain.Predicate {
	return func(a domain.Answers) bool { return len(a.Selected(key)) >= n }
}

// ContactComplete is true when name, email and phone are all present.
// Format checks happen at submission time.
func ContactComplete() domain.Predicate {
	return func(a domain.Answers) bool {
		c := a.Contact()
		return c.Name != "" && c.Email != "" && c.Phone != ""
	}
}

// Not negates p.
func Not(p domain.Predicate) domain.Predicate {
	return func(a domain.Answers) bool { return !p(a) }
}

// All is true when every predicate holds. An empty list is true.
func All(ps ...domain.Predicate) domain.Predicate {
	return func(a domain.Answers) bool {
		for _, p := range ps {
			if !p(a) {
				return false
			}
		}
		return true
	}
}

// Any is true when at least one predicate holds. An empty list is false.
func Any(ps ...domain.Predicate) domain.Predicate {
	return func(a domain.Answers) bool {
		for _, p := range ps {
			if p(a) {
				return true
			}
		}
		return false
	}
}

// RequiredAnswered builds the default completion gate: every required question answered.
// Contact questions require the full record.
func RequiredAnswered(questions []domain.Question) domain.Predicate {
	var gates []domain.Predicate
	for _, q := range questions {
		if !q.Required {
			continue
		}
		if q.Kind == domain.KindContact {
			gates = append(gates, ContactComplete())
			continue
		}
		gates = append(gates, Answered(q.Key))
	}
	if len(gates) == 0 {
		return nil
	}
	return All(gates...)
}
