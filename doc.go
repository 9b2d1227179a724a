/*
Package intake is a questionnaire engine: it walks a respondent through a
branching sequence of steps, scores the answers into ranked program
recommendations, and fans the final submission out to storage and
notification collaborators.

# Concept

A flow is an ordered list of steps. Each step owns a few answer keys and
carries two predicates over the answers: whether it is shown at all, and
whether it is complete enough to move on. The engine keeps answers and the
step cursor together in a session, so that changing an earlier answer can hide
later steps without ever leaving the respondent on a step that no longer
applies.

The UI collaborator (the HTTP adapter, the terminal runner, or your own code)
only mutates answers and asks to move. It never decides which step comes next.

# Key Features

  - Conditional steps: applicability is re-evaluated after every answer change.
  - Resumable sessions: answers and cursor are persisted asynchronously and
    restored across restarts (memory, file or Redis stores).
  - Deterministic scoring: a table of weighted rules produces 0..100 match
    scores, a featured recommendation and a discovery fallback.
  - Partial-failure submission: storage and both notifications run
    concurrently with bounded timeouts; one success is enough.

# Usage

	eng, err := intake.New()
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	ctx := context.Background()
	view, _ := eng.Start(ctx, flows.PersonalTraining, "session-123")

	view, err = eng.Update(ctx, flows.PersonalTraining, "session-123", func(s *session.Session) error {
		if err := s.SetAnswer(flows.KeyFitnessLevel, domain.ScalarValue("beginner")); err != nil {
			return err
		}
		s.Advance()
		return nil
	})
	fmt.Println(view.Step.ID)
*/
package intake
