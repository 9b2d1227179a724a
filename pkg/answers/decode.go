package answers

import (
	"fmt"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// ValueFrom converts loosely-typed input (decoded JSON/YAML) into an answer.
// The kind hint selects between scalar and text for strings and may be empty.
//
//	string            -> scalar (or text when hinted)
//	[]string / []any  -> multi
//	map[string]any    -> contact
func ValueFrom(raw any, hint domain.ValueKind) (domain.Value, error) {
	switch v := raw.(type) {
	case domain.Value:
		return v, nil
	case string:
		if hint == domain.KindText {
			return domain.TextValue(v), nil
		}
		if hint == domain.KindMulti {
			return domain.MultiValue(v), nil
		}
		return domain.ScalarValue(v), nil
	case []string:
		return domain.MultiValue(v...), nil
	case []any:
		items := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return domain.Value{}, fmt.Errorf("selection %d: expected string, got %T", i, item)
			}
			items = append(items, s)
		}
		return domain.MultiValue(items...), nil
	case map[string]any:
		var c domain.Contact
		if err := decode(v, &c); err != nil {
			return domain.Value{}, fmt.Errorf("failed to decode contact: %w", err)
		}
		return domain.ContactValue(c), nil
	case nil:
		return domain.Value{}, fmt.Errorf("answer value is required")
	}
	return domain.Value{}, fmt.Errorf("unsupported answer type %T", raw)
}

// AnswersFrom converts a generic document (e.g. an answers YAML file) into Answers.
func AnswersFrom(raw map[string]any) (domain.Answers, error) {
	out := make(domain.Answers, len(raw))
	for key, v := range raw {
		hint := domain.ValueKind("")
		if key == domain.ContactKey {
			hint = domain.KindContact
		}
		val, err := ValueFrom(v, hint)
		if err != nil {
			return nil, fmt.Errorf("answer %q: %w", key, err)
		}
		out[key] = val
	}
	return out, nil
}

// PatchFrom decodes a partial contact document.
func PatchFrom(raw map[string]any) (domain.ContactPatch, error) {
	var p domain.ContactPatch
	if err := decode(raw, &p); err != nil {
		return domain.ContactPatch{}, fmt.Errorf("failed to decode contact patch: %w", err)
	}
	return p, nil
}

func decode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
