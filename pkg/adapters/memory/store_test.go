package memory_test

import (
	"context"
	"testing"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/adapters/memory"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunStateStoreContract(t, store)
}

func TestSubmissionStore_Dedupes(t *testing.T) {
	s := memory.NewSubmissionStore()
	ctx := context.Background()

	r1, err := s.Store(ctx, domain.Payload{SubmissionID: "a", Type: "pt"})
	require.NoError(t, err)
	r2, err := s.Store(ctx, domain.Payload{SubmissionID: "a", Type: "pt"})
	require.NoError(t, err)
	_, err = s.Store(ctx, domain.Payload{SubmissionID: "b", Type: "pt"})
	require.NoError(t, err)

	assert.Equal(t, r1.ID, r2.ID)
	assert.Equal(t, "updated", r2.Message)
	assert.Len(t, s.Payloads(), 2)
}

func TestNotifier_Records(t *testing.T) {
	n := memory.NewNotifier("ops@example.com", nil)
	ctx := context.Background()
	c := domain.Contact{Name: "Jo", Email: "jo@example.com"}

	require.NoError(t, n.NotifyOperator(ctx, c, "pt"))
	require.NoError(t, n.NotifyRespondent(ctx, c, []domain.Candidate{{ID: "fitness"}}))

	sent := n.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "ops@example.com", sent[0].Recipient)
	assert.Equal(t, "jo@example.com", sent[1].Recipient)
	assert.Len(t, sent[1].Recommendations, 1)
}
