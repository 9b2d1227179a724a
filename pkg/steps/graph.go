package steps

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

// Graph is a registry of flows and their ordered steps.
// It is safe for concurrent use; flows are immutable once registered.
type Graph struct {
	mu    sync.RWMutex
	flows map[string][]domain.Step
	order []string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{flows: make(map[string][]domain.Step)}
}

// Register adds a flow. Step positions are assigned from declaration order.
// Registering an existing flow ID replaces it.
func (g *Graph) Register(flowID string, steps ...domain.Step) error {
	if flowID == "" {
		return fmt.Errorf("flow id cannot be empty")
	}
	if len(steps) == 0 {
		return fmt.Errorf("flow %s has no steps", flowID)
	}

	seen := make(map[string]bool, len(steps))
	owned := make(map[string]string)
	declared := make([]domain.Step, len(steps))
	for i, s := range steps {
		switch {
		case s.ID == "":
			return fmt.Errorf("flow %s: step %d has no id", flowID, i)
		case s.ID == domain.ResultsStepID:
			return fmt.Errorf("flow %s: step id %q is reserved", flowID, domain.ResultsStepID)
		case seen[s.ID]:
			return fmt.Errorf("flow %s: duplicate step id %q", flowID, s.ID)
		}
		seen[s.ID] = true
		for _, key := range s.Fields() {
			if other, ok := owned[key]; ok {
				return fmt.Errorf("flow %s: field %q written by both %q and %q", flowID, key, other, s.ID)
			}
			owned[key] = s.ID
		}
		s.Position = i
		declared[i] = s
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.flows[flowID]; !exists {
		g.order = append(g.order, flowID)
	}
	g.flows[flowID] = declared
	return nil
}

// Flows returns the registered flow IDs in registration order.
func (g *Graph) Flows() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.order)
}

// StepsFor returns every declared step of the flow, in order.
func (g *Graph) StepsFor(flowID string) ([]domain.Step, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	steps, ok := g.flows[flowID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrFlowNotFound, flowID)
	}
	return slices.Clone(steps), nil
}

// ApplicableSteps filters the flow's steps by their applicability predicate.
func (g *Graph) ApplicableSteps(flowID string, answers domain.Answers) ([]domain.Step, error) {
	steps, err := g.StepsFor(flowID)
	if err != nil {
		return nil, err
	}
	out := steps[:0]
	for _, s := range steps {
		if s.IsApplicable(answers) {
			out = append(out, s)
		}
	}
	return out, nil
}

// IndexOf returns the position of stepID within the applicable subsequence,
// or -1 if the step is unknown or currently inapplicable.
func (g *Graph) IndexOf(flowID, stepID string, answers domain.Answers) int {
	applicable, err := g.ApplicableSteps(flowID, answers)
	if err != nil {
		return -1
	}
	for i, s := range applicable {
		if s.ID == stepID {
			return i
		}
	}
	return -1
}

// Step returns a single step definition.
func (g *Graph) Step(flowID, stepID string) (domain.Step, error) {
	steps, err := g.StepsFor(flowID)
	if err != nil {
		return domain.Step{}, err
	}
	for _, s := range steps {
		if s.ID == stepID {
			return s, nil
		}
	}
	return domain.Step{}, fmt.Errorf("%w: %s/%s", domain.ErrStepNotFound, flowID, stepID)
}

// OwnerOf returns the step that writes the answer key.
func (g *Graph) OwnerOf(flowID, key string) (domain.Step, bool) {
	steps, err := g.StepsFor(flowID)
	if err != nil {
		return domain.Step{}, false
	}
	for _, s := range steps {
		if s.Writes(key) {
			return s, true
		}
	}
	return domain.Step{}, false
}

// Question returns the question definition for key.
func (g *Graph) Question(flowID, key string) (domain.Question, bool) {
	owner, ok := g.OwnerOf(flowID, key)
	if !ok {
		return domain.Question{}, false
	}
	return owner.Question(key)
}
