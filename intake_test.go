package intake_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/adapters/memory"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/flows"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/session"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, opts ...intake.Option) *intake.Engine {
	t.Helper()
	eng, err := intake.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func answer(key string, v domain.Value) func(*session.Session) error {
	return func(s *session.Session) error {
		if err := s.SetAnswer(key, v); err != nil {
			return err
		}
		s.Advance()
		return nil
	}
}

// completeTraining walks the personal-training flow to the results step.
func completeTraining(t *testing.T, eng *intake.Engine, id string) session.View {
	t.Helper()
	ctx := context.Background()
	_, err := eng.Start(ctx, flows.PersonalTraining, id)
	require.NoError(t, err)

	for _, step := range []func(*session.Session) error{
		answer(flows.KeyFitnessLevel, domain.ScalarValue(flows.LevelAdvancedAthlete)),
		answer(flows.KeyLastWorkout, domain.ScalarValue("this-week")),
		answer(flows.KeyGoals, domain.MultiValue("weight-management", "strength")),
		answer(flows.KeySessionsPerWeek, domain.ScalarValue("3")),
		answer(domain.ContactKey, domain.ContactValue(domain.Contact{Name: "Jo", Email: "jo@example.com", Phone: "555-123-4567"})),
	} {
		_, err := eng.Update(ctx, flows.PersonalTraining, id, step)
		require.NoError(t, err)
	}

	view, err := eng.Open(ctx, flows.PersonalTraining, id)
	require.NoError(t, err)
	return view
}

func TestEngine_Defaults(t *testing.T) {
	eng := newEngine(t)
	assert.ElementsMatch(t, []string{flows.IndividualPath, flows.PersonalTraining}, eng.Flows())

	stepsList, err := eng.Steps(flows.PersonalTraining)
	require.NoError(t, err)
	assert.Equal(t, "fitness-level", stepsList[0].ID)

	_, err = eng.Steps("nope")
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
}

func TestEngine_StartSkipsInapplicableSteps(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	view, err := eng.Start(ctx, flows.PersonalTraining, "s1")
	require.NoError(t, err)
	assert.Equal(t, "fitness-level", view.Step.ID)
	assert.False(t, view.CanAdvance)

	view, err = eng.Update(ctx, flows.PersonalTraining, "s1", answer(flows.KeyFitnessLevel, domain.ScalarValue(flows.LevelBeginner)))
	require.NoError(t, err)
	assert.Equal(t, "goals", view.Step.ID, "beginners skip the training history step")
	assert.Equal(t, 1, view.Progress.Position)
	assert.Equal(t, 4, view.Progress.Total)
}

func TestEngine_StartGeneratesSessionID(t *testing.T) {
	eng := newEngine(t)
	view, err := eng.Start(context.Background(), flows.IndividualPath, "")
	require.NoError(t, err)
	assert.NotEmpty(t, view.SessionID)
}

func TestEngine_UnknownFlow(t *testing.T) {
	eng := newEngine(t)
	_, err := eng.Start(context.Background(), "nope", "s1")
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
}

func TestEngine_OpenMissing(t *testing.T) {
	eng := newEngine(t)
	_, err := eng.Open(context.Background(), flows.PersonalTraining, "ghost")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEngine_UpdateReturnsViewOnError(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()
	_, err := eng.Start(ctx, flows.PersonalTraining, "s1")
	require.NoError(t, err)

	_, err = eng.Update(ctx, flows.PersonalTraining, "s1", answer(flows.KeyFitnessLevel, domain.ScalarValue(flows.LevelBeginner)))
	require.NoError(t, err)

	view, err := eng.Update(ctx, flows.PersonalTraining, "s1", func(s *session.Session) error {
		return s.SetAnswer(flows.KeyLastWorkout, domain.ScalarValue("this-week"))
	})
	assert.ErrorIs(t, err, domain.ErrInapplicableField)
	assert.Equal(t, "goals", view.Step.ID)
	assert.False(t, view.Answers.Has(flows.KeyLastWorkout))
}

func TestEngine_ResumeAcrossRestart(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	first, err := intake.New(intake.WithStore(store))
	require.NoError(t, err)
	_, err = first.Start(ctx, flows.PersonalTraining, "resume")
	require.NoError(t, err)
	_, err = first.Update(ctx, flows.PersonalTraining, "resume", answer(flows.KeyFitnessLevel, domain.ScalarValue(flows.LevelAdvanced)))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := newEngine(t, intake.WithStore(store))
	view, err := second.Open(ctx, flows.PersonalTraining, "resume")
	require.NoError(t, err)
	assert.Equal(t, "last-workout", view.Step.ID)
	assert.Equal(t, flows.LevelAdvanced, view.Answers.Scalar(flows.KeyFitnessLevel))
	assert.True(t, view.Progress.Completed["fitness-level"])

	keys, err := second.Sessions(ctx)
	require.NoError(t, err)
	assert.Contains(t, keys, domain.SessionKey(flows.PersonalTraining, "resume"))
}

func TestEngine_SubmitEndToEnd(t *testing.T) {
	subs := memory.NewSubmissionStore()
	notifier := memory.NewNotifier("ops@example.com", nil)
	eng := newEngine(t,
		intake.WithSubmissionStore(subs),
		intake.WithOperatorNotifier(notifier),
		intake.WithRespondentNotifier(notifier),
	)
	ctx := context.Background()

	view := completeTraining(t, eng, "e2e")
	require.True(t, view.Done)
	assert.Equal(t, domain.ResultsStepID, view.Step.ID)

	var res submission.Result
	view, err := eng.Update(ctx, flows.PersonalTraining, "e2e", func(s *session.Session) error {
		var err error
		res, err = s.Submit(ctx)
		return err
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.SubmissionID)
	assert.NotEmpty(t, res.Recommendations)
	assert.Equal(t, domain.SubmissionSucceeded, view.Submission.Status)
	assert.Equal(t, res.Recommendations, view.Recommendations)

	payloads := subs.Payloads()
	require.Len(t, payloads, 1)
	assert.Equal(t, flows.PersonalTraining, payloads[0].Type)
	assert.Equal(t, "jo@example.com", payloads[0].Contact.Email)
	assert.Len(t, notifier.Sent(), 2)

	// The succeeded status survives between calls.
	_, err = eng.Update(ctx, flows.PersonalTraining, "e2e", func(s *session.Session) error {
		_, err := s.Submit(ctx)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrAlreadySubmitted)
	assert.Len(t, subs.Payloads(), 1)
}

func TestEngine_SharedStoreSeesOtherWriters(t *testing.T) {
	store := memory.NewStore()
	a := newEngine(t, intake.WithStore(store))
	b := newEngine(t, intake.WithStore(store))
	ctx := context.Background()
	id := "shared"

	_, err := a.Start(ctx, flows.PersonalTraining, id)
	require.NoError(t, err)
	_, err = a.Open(ctx, flows.PersonalTraining, id)
	require.NoError(t, err)

	_, err = b.Update(ctx, flows.PersonalTraining, id, answer(flows.KeyFitnessLevel, domain.ScalarValue(flows.LevelAdvanced)))
	require.NoError(t, err)

	view, err := a.Open(ctx, flows.PersonalTraining, id)
	require.NoError(t, err)
	assert.Equal(t, flows.LevelAdvanced, view.Answers.Scalar(flows.KeyFitnessLevel))
	assert.Equal(t, "last-workout", view.Step.ID)

	_, err = a.Update(ctx, flows.PersonalTraining, id, answer(flows.KeyLastWorkout, domain.ScalarValue("this-week")))
	require.NoError(t, err)

	state, err := store.Load(ctx, domain.SessionKey(flows.PersonalTraining, id))
	require.NoError(t, err)
	assert.Equal(t, flows.LevelAdvanced, state.Answers.Scalar(flows.KeyFitnessLevel), "b's answer survives a's write")
	assert.Equal(t, "this-week", state.Answers.Scalar(flows.KeyLastWorkout))
	assert.Equal(t, []int{0, 1}, state.CompletedStepIndices)
}

func TestEngine_ResetKeepsSessionAddressable(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()
	_, err := eng.Start(ctx, flows.PersonalTraining, "again")
	require.NoError(t, err)
	_, err = eng.Update(ctx, flows.PersonalTraining, "again", answer(flows.KeyFitnessLevel, domain.ScalarValue(flows.LevelBeginner)))
	require.NoError(t, err)

	_, err = eng.Update(ctx, flows.PersonalTraining, "again", func(s *session.Session) error {
		s.Reset()
		return nil
	})
	require.NoError(t, err)

	view, err := eng.Open(ctx, flows.PersonalTraining, "again")
	require.NoError(t, err)
	assert.Empty(t, view.Answers)
	assert.Equal(t, "fitness-level", view.Step.ID)
}

func TestEngine_Discard(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()
	_, err := eng.Start(ctx, flows.IndividualPath, "gone")
	require.NoError(t, err)

	require.NoError(t, eng.Discard(ctx, flows.IndividualPath, "gone"))

	_, err = eng.Open(ctx, flows.IndividualPath, "gone")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEngine_ConcurrentUpdates(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()
	_, err := eng.Start(ctx, flows.IndividualPath, "busy")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.Update(ctx, flows.IndividualPath, "busy", func(s *session.Session) error {
				return s.SetAnswer(fmt.Sprintf("extra-%d", i), domain.TextValue("x"))
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	view, err := eng.Open(ctx, flows.IndividualPath, "busy")
	require.NoError(t, err)
	assert.Len(t, view.Answers, 20)
}

func TestEngine_LifecycleHooks(t *testing.T) {
	var mu sync.Mutex
	var entered []string
	eng := newEngine(t, intake.WithLifecycleHooks(domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			mu.Lock()
			defer mu.Unlock()
			entered = append(entered, e.StepID)
		},
	}))

	completeTraining(t, eng, "hooks")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"last-workout", "goals", "schedule", "contact", domain.ResultsStepID}, entered)
}
