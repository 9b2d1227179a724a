package ports

import (
	"context"
	"testing"
	"time"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")
	key := domain.SessionKey("contract-flow", sessionID)

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewSessionState("contract-flow", sessionID, 2)
		state.Answers["fitnessLevel"] = domain.ScalarValue("advanced-athlete")
		state.Answers["goals"] = domain.MultiValue("weight-management", "strength")
		state.Answers[domain.ContactKey] = domain.ContactValue(domain.Contact{Name: "Jo", Email: "jo@example.com"})
		state.CompletedStepIndices = []int{0, 1}
		state.Submission.Status = domain.SubmissionFailed

		err := store.Save(ctx, key, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, 2, loaded.CurrentStepIndex)
		assert.ElementsMatch(t, []int{0, 1}, loaded.CompletedStepIndices)
		assert.Equal(t, "advanced-athlete", loaded.Answers.Scalar("fitnessLevel"))
		assert.Equal(t, []string{"weight-management", "strength"}, loaded.Answers.Selected("goals"))
		assert.Equal(t, "jo@example.com", loaded.Answers.Contact().Email)
		// Submission status is transient.
		assert.Empty(t, loaded.Submission.Status)
	})

	t.Run("Load is isolated from caller mutation", func(t *testing.T) {
		state := domain.NewSessionState("contract-flow", sessionID, 0)
		state.Answers["goals"] = domain.MultiValue("a")
		require.NoError(t, store.Save(ctx, key, state))

		state.Answers["goals"] = domain.MultiValue("b")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, loaded.Answers.Selected("goals"))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, key, domain.NewSessionState("contract-flow", sessionID, 0))
		require.NoError(t, err)

		err = store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, key), "Deleting a missing key is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := domain.SessionKey("flow-a", sessionID)
		id2 := domain.SessionKey("flow-b", sessionID)
		_ = store.Save(ctx, id1, domain.NewSessionState("flow-a", sessionID, 0))
		_ = store.Save(ctx, id2, domain.NewSessionState("flow-b", sessionID, 0))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
