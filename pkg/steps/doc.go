/*
Package steps implements the Step Graph: the declarative description of each
questionnaire's steps, their order, and which steps are conditionally applicable.

Positions reported by IndexOf are computed over the applicable subsequence, never over the
raw declaration list, so inapplicable steps never consume a number and progress indicators
("step 3 of 7") stay accurate.

Flows can be declared in Go (see package dsl) or in YAML files:

	id: personal-training
	steps:
	  - id: fitness-level
	    questions:
	      - {key: fitnessLevel, kind: scalar, required: true, options: [beginner, intermediate]}
	  - id: last-workout
	    applicable: {field: fitnessLevel, op: ne, value: beginner}
	    questions:
	      - {key: lastWorkout, kind: scalar, required: true}

An applicability condition must never read a field written by its own step.
*/
package steps
