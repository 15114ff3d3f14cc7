package ports

import (
	"context"

	"github.com/Tendo1904/mas-lab/pkg/domain"
)

// StateStore defines the interface for persisting state snapshots.
// The pipeline itself never persists a run in flight; hosts save finished states here.
type StateStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.State) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.State, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns all stored session IDs.
	List(ctx context.Context) ([]string, error)
}
