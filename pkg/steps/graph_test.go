package steps

import (
	"testing"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSteps() []domain.Step {
	return []domain.Step{
		{ID: "level", Questions: []domain.Question{{Key: "level", Kind: domain.KindScalar, Required: true}}},
		{ID: "history", Applicable: NotEquals("level", "beginner"), Questions: []domain.Question{{Key: "history", Kind: domain.KindScalar}}},
		{ID: "contact", Questions: []domain.Question{{Key: domain.ContactKey, Kind: domain.KindContact, Required: true}}},
	}
}

func TestGraph_Register(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Register("pt", sampleSteps()...))

	steps, err := g.StepsFor("pt")
	require.NoError(t, err)
	require.Len(t, steps, 3)
	for i, s := range steps {
		assert.Equal(t, i, s.Position)
	}
	assert.Equal(t, []string{"pt"}, g.Flows())
}

func TestGraph_Register_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		flow  string
		steps []domain.Step
	}{
		{"empty flow id", "", sampleSteps()},
		{"no steps", "pt", nil},
		{"missing step id", "pt", []domain.Step{{}}},
		{"reserved id", "pt", []domain.Step{{ID: domain.ResultsStepID}}},
		{"duplicate id", "pt", []domain.Step{{ID: "a"}, {ID: "a"}}},
		{"shared field", "pt", []domain.Step{
			{ID: "a", Questions: []domain.Question{{Key: "x"}}},
			{ID: "b", Questions: []domain.Question{{Key: "x"}}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, NewGraph().Register(tt.flow, tt.steps...))
		})
	}
}

func TestGraph_UnknownFlow(t *testing.T) {
	g := NewGraph()
	_, err := g.StepsFor("nope")
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)

	_, err = g.Step("nope", "level")
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
}

func TestGraph_ApplicableSteps(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Register("pt", sampleSteps()...))

	beginner := domain.Answers{"level": domain.ScalarValue("beginner")}
	steps, err := g.ApplicableSteps("pt", beginner)
	require.NoError(t, err)
	assert.Equal(t, []string{"level", "contact"}, ids(steps))

	advanced := domain.Answers{"level": domain.ScalarValue("advanced")}
	steps, err = g.ApplicableSteps("pt", advanced)
	require.NoError(t, err)
	assert.Equal(t, []string{"level", "history", "contact"}, ids(steps))
}

func TestGraph_IndexOf_SkipsInapplicable(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Register("pt", sampleSteps()...))
	beginner := domain.Answers{"level": domain.ScalarValue("beginner")}

	assert.Equal(t, 0, g.IndexOf("pt", "level", beginner))
	assert.Equal(t, -1, g.IndexOf("pt", "history", beginner))
	assert.Equal(t, 1, g.IndexOf("pt", "contact", beginner))
	assert.Equal(t, -1, g.IndexOf("pt", "unknown", beginner))
	assert.Equal(t, 2, g.IndexOf("pt", "contact", domain.Answers{}))
}

func TestGraph_StepAndOwner(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Register("pt", sampleSteps()...))

	s, err := g.Step("pt", "history")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Position)

	_, err = g.Step("pt", "missing")
	assert.ErrorIs(t, err, domain.ErrStepNotFound)

	owner, ok := g.OwnerOf("pt", domain.ContactKey)
	require.True(t, ok)
	assert.Equal(t, "contact", owner.ID)

	q, ok := g.Question("pt", "level")
	require.True(t, ok)
	assert.True(t, q.Required)

	_, ok = g.OwnerOf("pt", "unknown")
	assert.False(t, ok)
}

func TestGraph_StepsForReturnsCopy(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Register("pt", sampleSteps()...))

	steps, _ := g.StepsFor("pt")
	steps[0].ID = "mutated"

	again, _ := g.StepsFor("pt")
	assert.Equal(t, "level", again[0].ID)
}

func ids(steps []domain.Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.ID
	}
	return out
}
