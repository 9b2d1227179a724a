// Package flows declares the built-in questionnaires.
package flows

import (
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/dsl"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/steps"
)

// Register adds every built-in flow to the graph.
func Register(g *steps.Graph) error {
	for _, b := range []*dsl.Builder{individualPath(), personalTraining()} {
		if err := b.Register(g); err != nil {
			return err
		}
	}
	return nil
}

// NewGraph returns a graph holding only the built-in flows.
func NewGraph() (*steps.Graph, error) {
	g := steps.NewGraph()
	if err := Register(g); err != nil {
		return nil, err
	}
	return g, nil
}

var trainsAlready = steps.NotEquals(KeyFitnessLevel, LevelBeginner)

func individualPath() *dsl.Builder {
	b := dsl.New(IndividualPath)

	b.Step("goals").Title("Your goals").
		MultiChoice(KeyGoals, "What would you like to achieve? Pick up to three.", MaxGoals, goalOptions...)

	b.Step("fitness-level").Title("Fitness").
		Choice(KeyFitnessLevel, "How would you describe your current fitness?", levelOptions...)

	b.Step("last-workout").Title("Training history").
		When(trainsAlready).
		Choice(KeyLastWorkout, "When did you last train consistently?", lastWorkoutOpts...)

	b.Step("services").Title("Services").
		MultiChoice(KeyPreferredServices, "Which services interest you?", 0, serviceOptions...)

	b.Step("challenges").Title("Challenges").
		MultiChoice(KeyChallenges, "What has held you back? Pick up to three.", MaxChallenges, challengeOptions...)

	b.Step("investment").Title("Investment").
		Choice(KeyBudget, "What budget do you have in mind?", budgetOptions...).
		Choice(KeyTimeline, "When would you like to start?", timelineOptions...)

	b.Step("contact").Title("Contact").
		Contact("How can we reach you?").
		Text(KeyNotes, "Anything else we should know?")

	return b
}

func personalTraining() *dsl.Builder {
	b := dsl.New(PersonalTraining)

	b.Step("fitness-level").Title("Fitness").
		Choice(KeyFitnessLevel, "How would you describe your current fitness?", levelOptions...)

	b.Step("last-workout").Title("Training history").
		When(trainsAlready).
		Choice(KeyLastWorkout, "When did you last train consistently?", lastWorkoutOpts...)

	b.Step("goals").Title("Training goals").
		MultiChoice(KeyGoals, "What are you training for? Pick up to three.", MaxGoals, trainingGoalOptions...)

	b.Step("schedule").Title("Schedule").
		Choice(KeySessionsPerWeek, "How many sessions per week?", frequencyOptions...)

	b.Step("contact").Title("Contact").
		Contact("How can we reach you?")

	return b
}
