package flows

import (
	"testing"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	g, err := NewGraph()
	require.NoError(t, err)
	assert.Equal(t, []string{IndividualPath, PersonalTraining}, g.Flows())
}

func TestIndividualPath_LastWorkoutIsConditional(t *testing.T) {
	g, err := NewGraph()
	require.NoError(t, err)

	beginner := domain.Answers{KeyFitnessLevel: domain.ScalarValue(LevelBeginner)}
	athlete := domain.Answers{KeyFitnessLevel: domain.ScalarValue(LevelAdvancedAthlete)}

	short, err := g.ApplicableSteps(IndividualPath, beginner)
	require.NoError(t, err)
	long, err := g.ApplicableSteps(IndividualPath, athlete)
	require.NoError(t, err)

	assert.Len(t, short, 6)
	assert.Len(t, long, 7)
	assert.Equal(t, -1, g.IndexOf(IndividualPath, "last-workout", beginner))
	assert.Equal(t, 2, g.IndexOf(IndividualPath, "last-workout", athlete))
	assert.Equal(t, 2, g.IndexOf(IndividualPath, "services", beginner))
	assert.Equal(t, 3, g.IndexOf(IndividualPath, "services", athlete))
}

func TestIndividualPath_Caps(t *testing.T) {
	g, err := NewGraph()
	require.NoError(t, err)

	q, ok := g.Question(IndividualPath, KeyGoals)
	require.True(t, ok)
	assert.Equal(t, MaxGoals, q.MaxSelect)

	q, ok = g.Question(IndividualPath, KeyPreferredServices)
	require.True(t, ok)
	assert.Zero(t, q.MaxSelect)
}

func TestIndividualPath_Gates(t *testing.T) {
	g, err := NewGraph()
	require.NoError(t, err)

	investment, err := g.Step(IndividualPath, "investment")
	require.NoError(t, err)
	assert.False(t, investment.IsComplete(domain.Answers{KeyBudget: domain.ScalarValue("under-500")}))
	assert.True(t, investment.IsComplete(domain.Answers{
		KeyBudget:   domain.ScalarValue("under-500"),
		KeyTimeline: domain.ScalarValue("asap"),
	}))

	contact, err := g.Step(IndividualPath, "contact")
	require.NoError(t, err)
	assert.False(t, contact.IsComplete(domain.Answers{
		domain.ContactKey: domain.ContactValue(domain.Contact{Name: "Jo"}),
	}))
	assert.True(t, contact.IsComplete(domain.Answers{
		domain.ContactKey: domain.ContactValue(domain.Contact{Name: "Jo", Email: "jo@example.com", Phone: "5551234567"}),
	}), "notes are optional")
}

func TestPersonalTraining_Order(t *testing.T) {
	g, err := NewGraph()
	require.NoError(t, err)

	all, err := g.StepsFor(PersonalTraining)
	require.NoError(t, err)
	ids := make([]string, len(all))
	for i, s := range all {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"fitness-level", "last-workout", "goals", "schedule", "contact"}, ids)
}
