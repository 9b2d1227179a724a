package intake_test

import (
	"context"
	"fmt"
	"log"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/dsl"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/session"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/steps"
)

// ExampleWithGraph demonstrates a custom flow with a conditional step.
// Answering "beginner" hides the training history step.
func ExampleWithGraph() {
	b := dsl.New("demo")
	b.Step("level").Choice("level", "How fit are you?", "beginner", "advanced")
	b.Step("history").
		When(steps.NotEquals("level", "beginner")).
		Choice("history", "When did you last train?", "recently", "long-ago")
	b.Step("wrap-up").Text("notes", "Anything else?")

	g := steps.NewGraph()
	if err := b.Register(g); err != nil {
		log.Fatal(err)
	}

	engine, err := intake.New(intake.WithGraph(g))
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close()

	ctx := context.Background()
	view, err := engine.Start(ctx, "demo", "example")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(view.Step.ID)

	view, _ = engine.Update(ctx, "demo", "example", func(s *session.Session) error {
		if err := s.SetAnswer("level", domain.ScalarValue("beginner")); err != nil {
			return err
		}
		s.Advance()
		return nil
	})
	fmt.Println(view.Step.ID)

	view, _ = engine.Update(ctx, "demo", "example", func(s *session.Session) error {
		s.Advance()
		return nil
	})
	fmt.Println(view.Step.ID, view.Done)

	// Output:
	// level
	// wrap-up
	// results true
}
