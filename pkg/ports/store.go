package ports

import (
	"context"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

// StateStore defines the interface for persisting session snapshots.
// Keys are namespaced by flow (see domain.SessionKey) so independent
// questionnaires never collide.
type StateStore interface {
	// Save persists the state under key.
	Save(ctx context.Context, key string, state *domain.SessionState) error

	// Load retrieves the state for key.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, key string) (*domain.SessionState, error)

	// Delete removes the state for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
