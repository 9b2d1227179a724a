/*
Package dsl provides a fluent Go builder for declaring questionnaire flows.

It is the in-code alternative to YAML flow files (see steps.Parse) and gives
type-checked predicates instead of declarative conditions.

Example usage:

	b := dsl.New("personal-training")

	b.Step("fitness-level").
		Choice("fitnessLevel", "How would you describe your fitness?", "beginner", "intermediate", "advanced")

	b.Step("last-workout").
		When(steps.NotEquals("fitnessLevel", "beginner")).
		Choice("lastWorkout", "When did you last train?", "this-week", "this-month", "longer")

	b.Step("contact").
		Contact("How can we reach you?")

	err := b.Register(graph)
*/
package dsl
