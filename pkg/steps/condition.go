package steps

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/internal/dto"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

// Condition operators.
const (
	OpEquals          = "eq"
	OpNotEquals       = "ne"
	OpIn              = "in"
	OpAnswered        = "answered"
	OpMinSelected     = "min_selected"
	OpContactComplete = "contact_complete"
)

// Compile turns a declarative condition into a predicate.
func Compile(c dto.ConditionDefinition) (domain.Predicate, error) {
	switch {
	case len(c.All) > 0:
		ps, err := compileAll(c.All)
		if err != nil {
			return nil, fmt.Errorf("all: %w", err)
		}
		return All(ps...), nil
	case len(c.Any) > 0:
		ps, err := compileAll(c.Any)
		if err != nil {
			return nil, fmt.Errorf("any: %w", err)
		}
		return Any(ps...), nil
	case c.Not != nil:
		p, err := Compile(*c.Not)
		if err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		return Not(p), nil
	}

	if c.Op == OpContactComplete {
		return ContactComplete(), nil
	}
	if c.Field == "" {
		return nil, fmt.Errorf("condition has no field")
	}

	switch c.Op {
	case OpEquals, "":
		v, err := asString(c.Value)
		if err != nil {
			return nil, err
		}
		return Equals(c.Field, v), nil
	case OpNotEquals:
		v, err := asString(c.Value)
		if err != nil {
			return nil, err
		}
		return NotEquals(c.Field, v), nil
	case OpIn:
		vs, err := asStrings(c.Value)
		if err != nil {
			return nil, err
		}
		return In(c.Field, vs...), nil
	case OpAnswered:
		return Answered(c.Field), nil
	case OpMinSelected:
		n, ok := asInt(c.Value)
		if !ok {
			return nil, fmt.Errorf("min_selected expects an integer, got %T", c.Value)
		}
		return MinSelected(c.Field, n), nil
	}
	return nil, fmt.Errorf("unknown operator %q", c.Op)
}

// ReferencedFields lists every answer key a condition reads.
func ReferencedFields(c dto.ConditionDefinition) []string {
	var out []string
	if c.Field != "" {
		out = append(out, c.Field)
	}
	if c.Op == OpContactComplete {
		out = append(out, domain.ContactKey)
	}
	for _, sub := range append(slices.Clone(c.All), c.Any...) {
		out = append(out, ReferencedFields(sub)...)
	}
	if c.Not != nil {
		out = append(out, ReferencedFields(*c.Not)...)
	}
	return out
}

func compileAll(cs []dto.ConditionDefinition) ([]domain.Predicate, error) {
	ps := make([]domain.Predicate, len(cs))
	for i, c := range cs {
		p, err := Compile(c)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		ps[i] = p
	}
	return ps, nil
}

func asString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case nil:
		return "", nil
	}
	return fmt.Sprint(v), nil
}

func asStrings(v any) ([]string, error) {
	switch vs := v.(type) {
	case []string:
		return vs, nil
	case []any:
		out := make([]string, len(vs))
		for i, item := range vs {
			out[i] = fmt.Sprint(item)
		}
		return out, nil
	case string:
		return []string{vs}, nil
	}
	return nil, fmt.Errorf("expected a list of values, got %T", v)
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), n == float64(int(n))
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}
