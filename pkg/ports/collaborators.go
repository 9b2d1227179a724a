package ports

import (
	"context"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

// SubmissionStore is the storage collaborator: one durable write of the full payload.
// Implementations should treat payload.SubmissionID as an idempotency key.
type SubmissionStore interface {
	Store(ctx context.Context, payload domain.Payload) (domain.Receipt, error)
}

// OperatorNotifier notifies the fixed operator address about a new submission.
type OperatorNotifier interface {
	NotifyOperator(ctx context.Context, contact domain.Contact, flowType string) error
}

// RespondentNotifier sends the confirmation message to the respondent.
type RespondentNotifier interface {
	NotifyRespondent(ctx context.Context, contact domain.Contact, recommendations []domain.Candidate) error
}

// SubmissionStoreFunc adapts a function to SubmissionStore.
type SubmissionStoreFunc func(ctx context.Context, payload domain.Payload) (domain.Receipt, error)

func (f SubmissionStoreFunc) Store(ctx context.Context, payload domain.Payload) (domain.Receipt, error) {
	return f(ctx, payload)
}

// OperatorNotifierFunc adapts a function to OperatorNotifier.
type OperatorNotifierFunc func(ctx context.Context, contact domain.Contact, flowType string) error

func (f OperatorNotifierFunc) NotifyOperator(ctx context.Context, contact domain.Contact, flowType string) error {
	return f(ctx, contact, flowType)
}

// RespondentNotifierFunc adapts a function to RespondentNotifier.
type RespondentNotifierFunc func(ctx context.Context, contact domain.Contact, recommendations []domain.Candidate) error

func (f RespondentNotifierFunc) NotifyRespondent(ctx context.Context, contact domain.Contact, recommendations []domain.Candidate) error {
	return f(ctx, contact, recommendations)
}
