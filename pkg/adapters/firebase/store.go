// Package firebase stores submissions in the Firebase Realtime Database.
package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

// DefaultPath is the database node holding submissions.
const DefaultPath = "submissions"

// SubmissionStore implements ports.SubmissionStore on a Realtime Database node.
// Records are written under their submission id, so a retry overwrites rather than duplicates.
type SubmissionStore struct {
	client *db.Client
	path   string
}

// Option configures the SubmissionStore.
type Option func(*SubmissionStore)

// WithPath overrides the database node.
func WithPath(path string) Option {
	return func(s *SubmissionStore) {
		s.path = path
	}
}

// New initializes the Firebase app from a service account file and returns the store.
func New(ctx context.Context, credentialsFile, databaseURL string, opts ...Option) (*SubmissionStore, error) {
	config := &firebase.Config{DatabaseURL: databaseURL}

	var clientOpts []option.ClientOption
	if credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, config, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting database client: %w", err)
	}
	return NewFromClient(client, opts...), nil
}

// NewFromClient wraps an existing database client.
func NewFromClient(client *db.Client, opts ...Option) *SubmissionStore {
	s := &SubmissionStore{client: client, path: DefaultPath}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store writes the payload. Payloads without an id get a database-generated key.
func (s *SubmissionStore) Store(ctx context.Context, p domain.Payload) (domain.Receipt, error) {
	ref := s.client.NewRef(s.path)

	if p.SubmissionID == "" {
		newRef, err := ref.Push(ctx, p)
		if err != nil {
			return domain.Receipt{}, fmt.Errorf("error creating submission: %w", err)
		}
		return domain.Receipt{ID: newRef.Key, Message: "stored"}, nil
	}

	if err := ref.Child(p.SubmissionID).Set(ctx, p); err != nil {
		return domain.Receipt{}, fmt.Errorf("error writing submission %s: %w", p.SubmissionID, err)
	}
	return domain.Receipt{ID: p.SubmissionID, Message: "stored"}, nil
}
