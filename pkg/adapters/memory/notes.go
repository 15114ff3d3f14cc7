package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/Tendo1904/mas-lab/pkg/domain"
)

// NoteStore implements ports.MemoryStore in memory.
// It is the default store for tests and the offline CLI mode.
type NoteStore struct {
	mu    sync.RWMutex
	notes []domain.Note
}

// NewNoteStore creates an empty note store, optionally seeded with notes.
func NewNoteStore(seed ...domain.Note) *NoteStore {
	return &NoteStore{notes: slices.Clone(seed)}
}

// Append records a new note.
func (s *NoteStore) Append(ctx context.Context, text string, tags []string) (domain.Note, error) {
	note := domain.NewNote(text, tags)

	s.mu.Lock()
	s.notes = append(s.notes, note)
	s.mu.Unlock()

	return note, nil
}

// Search ranks the stored notes against query.
func (s *NoteStore) Search(ctx context.Context, query string, topK int) ([]domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.SearchNotes(s.notes, query, topK), nil
}

// List returns every note in insertion order.
func (s *NoteStore) List(ctx context.Context) ([]domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notes), nil
}
