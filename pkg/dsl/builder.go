package dsl

import (
	"fmt"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/steps"
)

// Builder manages the flow construction. Steps keep the order in which they were added.
type Builder struct {
	flowID string
	steps  []*StepBuilder
	index  map[string]*StepBuilder
}

// New creates a new flow builder.
func New(flowID string) *Builder {
	return &Builder{
		flowID: flowID,
		index:  make(map[string]*StepBuilder),
	}
}

// Step appends a new step to the flow.
// If the step already exists, it returns the existing builder.
func (b *Builder) Step(id string) *StepBuilder {
	if sb, ok := b.index[id]; ok {
		return sb
	}
	sb := &StepBuilder{step: domain.Step{ID: id}}
	b.index[id] = sb
	b.steps = append(b.steps, sb)
	return sb
}

// Build compiles the declared steps. Steps without an explicit completion gate
// require every required question to be answered.
func (b *Builder) Build() ([]domain.Step, error) {
	if len(b.steps) == 0 {
		return nil, fmt.Errorf("flow %s has no steps", b.flowID)
	}
	out := make([]domain.Step, len(b.steps))
	for i, sb := range b.steps {
		out[i] = sb.Build()
		out[i].Position = i
	}
	return out, nil
}

// Register builds the flow and adds it to the graph.
func (b *Builder) Register(g *steps.Graph) error {
	built, err := b.Build()
	if err != nil {
		return err
	}
	if err := g.Register(b.flowID, built...); err != nil {
		return fmt.Errorf("failed to register flow: %w", err)
	}
	return nil
}
