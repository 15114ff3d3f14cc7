package ports

import (
	"context"

	"github.com/Tendo1904/mas-lab/pkg/domain"
)

// MemoryStore is the authoritative append-only note log.
type MemoryStore interface {
	// Append stores a new note and returns it.
	Append(ctx context.Context, text string, tags []string) (domain.Note, error)

	// Search returns up to topK notes ranked by keyword overlap with query
	// (see domain.SearchNotes for the exact scoring).
	Search(ctx context.Context, query string, topK int) ([]domain.Note, error)

	// List returns every note in insertion order.
	List(ctx context.Context) ([]domain.Note, error)
}
