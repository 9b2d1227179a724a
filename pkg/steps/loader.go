package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/internal/dto"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

// Flow is a parsed flow definition ready to be registered.
type Flow struct {
	ID    string
	Title string
	Steps []domain.Step
}

// Parse decodes a YAML flow definition.
func Parse(data []byte) (Flow, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Flow{}, fmt.Errorf("failed to parse flow yaml: %w", err)
	}

	var def dto.FlowDefinition
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &def,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Flow{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Flow{}, fmt.Errorf("failed to decode flow definition: %w", err)
	}
	return Build(def)
}

// Build compiles a flow definition into steps and checks it with Lint.
func Build(def dto.FlowDefinition) (Flow, error) {
	if def.ID == "" {
		return Flow{}, fmt.Errorf("flow definition has no id")
	}
	if err := Lint(def); err != nil {
		return Flow{}, err
	}

	flow := Flow{ID: def.ID, Title: def.Title, Steps: make([]domain.Step, 0, len(def.Steps))}
	for i, sd := range def.Steps {
		step := domain.Step{ID: sd.ID, Title: sd.Title, Position: i}
		for _, qd := range sd.Questions {
			q, err := buildQuestion(qd)
			if err != nil {
				return Flow{}, fmt.Errorf("step %s: %w", sd.ID, err)
			}
			step.Questions = append(step.Questions, q)
		}

		if sd.Applicable != nil {
			p, err := Compile(*sd.Applicable)
			if err != nil {
				return Flow{}, fmt.Errorf("step %s applicable: %w", sd.ID, err)
			}
			step.Applicable = p
		}
		if sd.Complete != nil {
			p, err := Compile(*sd.Complete)
			if err != nil {
				return Flow{}, fmt.Errorf("step %s complete: %w", sd.ID, err)
			}
			step.Complete = p
		} else {
			step.Complete = RequiredAnswered(step.Questions)
		}
		flow.Steps = append(flow.Steps, step)
	}
	return flow, nil
}

// Lint rejects steps whose applicability reads a field the step itself writes.
func Lint(def dto.FlowDefinition) error {
	for _, sd := range def.Steps {
		if sd.Applicable == nil {
			continue
		}
		var writes []string
		for _, q := range sd.Questions {
			writes = append(writes, q.Key)
		}
		for _, field := range ReferencedFields(*sd.Applicable) {
			if slices.Contains(writes, field) {
				return fmt.Errorf("step %s: applicability depends on its own field %q", sd.ID, field)
			}
		}
	}
	return nil
}

// LoadFile reads and parses a single flow file.
func LoadFile(path string) (Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Flow{}, fmt.Errorf("failed to read flow file: %w", err)
	}
	flow, err := Parse(data)
	if err != nil {
		return Flow{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return flow, nil
}

// LoadDir registers every flow document (YAML, JSON or markdown frontmatter)
// found in dir into g. The directory is opened read-only; documents without an
// id or steps are skipped. Two documents declaring the same flow id are an error.
func LoadDir(g *Graph, dir string) ([]string, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid flow directory: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("failed to read flow directory: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open flow directory: %w", err)
	}
	docs, err := loam.NewTypedRepository[dto.FlowDefinition](repo).List(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to list flow documents: %w", err)
	}

	type entry struct {
		file string
		def  dto.FlowDefinition
	}
	var defs []entry
	for _, doc := range docs {
		if len(doc.Data.Steps) == 0 {
			continue
		}
		def := doc.Data
		if def.ID == "" {
			def.ID = trimExtension(doc.ID)
		}
		defs = append(defs, entry{file: doc.ID, def: def})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].file < defs[j].file })

	seen := make(map[string]string)
	var ids []string
	for _, e := range defs {
		if prev, ok := seen[e.def.ID]; ok {
			return ids, fmt.Errorf("collision detected: flow %q is defined in both %s and %s", e.def.ID, prev, e.file)
		}
		seen[e.def.ID] = e.file

		flow, err := Build(e.def)
		if err != nil {
			return ids, fmt.Errorf("%s: %w", e.file, err)
		}
		if err := g.Register(flow.ID, flow.Steps...); err != nil {
			return ids, err
		}
		ids = append(ids, flow.ID)
	}
	return ids, nil
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}

func buildQuestion(qd dto.QuestionDefinition) (domain.Question, error) {
	if qd.Key == "" {
		return domain.Question{}, fmt.Errorf("question has no key")
	}
	kind := domain.ValueKind(qd.Kind)
	switch kind {
	case "":
		kind = domain.KindScalar
	case domain.KindScalar, domain.KindMulti, domain.KindText, domain.KindContact:
	default:
		return domain.Question{}, fmt.Errorf("question %s: unknown kind %q", qd.Key, qd.Kind)
	}
	if qd.MaxSelect < 0 {
		return domain.Question{}, fmt.Errorf("question %s: max_select cannot be negative", qd.Key)
	}
	return domain.Question{
		Key:       qd.Key,
		Kind:      kind,
		Prompt:    qd.Prompt,
		Options:   qd.Options,
		Required:  qd.Required,
		MaxSelect: qd.MaxSelect,
	}, nil
}
