package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/Tendo1904/mas-lab/internal/logging"
	"github.com/Tendo1904/mas-lab/pkg/domain"
)

// DefaultNotesPath is the memory file used when none is configured.
const DefaultNotesPath = "memory.json"

type notesDocument struct {
	Notes []domain.Note `json:"notes"`
}

// NoteStore implements ports.MemoryStore on a single JSON document of the form
// {"notes": [...]}. Every Append is a read-modify-write under a mutex followed by an
// atomic rewrite. An unreadable or corrupt document is treated as empty.
type NoteStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NoteOption configures a NoteStore.
type NoteOption func(*NoteStore)

// WithLogger sets the logger used to report a corrupt memory file.
func WithLogger(logger *slog.Logger) NoteOption {
	return func(s *NoteStore) {
		s.logger = logger
	}
}

// NewNoteStore creates a note store backed by path (DefaultNotesPath when empty).
// The file is created on first Append.
func NewNoteStore(path string, opts ...NoteOption) *NoteStore {
	if path == "" {
		path = DefaultNotesPath
	}
	s := &NoteStore{
		path:   path,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file.
func (s *NoteStore) Path() string {
	return s.path
}

// load must be called with mu held.
func (s *NoteStore) load() []domain.Note {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("memory file unreadable, treating as empty", "path", s.path, "err", err)
		}
		return []domain.Note{}
	}

	var doc notesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("memory file corrupt, treating as empty", "path", s.path, "err", err)
		return []domain.Note{}
	}
	if doc.Notes == nil {
		return []domain.Note{}
	}
	return doc.Notes
}

// Append adds a note and rewrites the document.
func (s *NoteStore) Append(ctx context.Context, text string, tags []string) (domain.Note, error) {
	note := domain.NewNote(text, tags)

	s.mu.Lock()
	defer s.mu.Unlock()

	notes := append(s.load(), note)
	data, err := json.MarshalIndent(notesDocument{Notes: notes}, "", "  ")
	if err != nil {
		return domain.Note{}, fmt.Errorf("%w: %v", domain.ErrMemoryStoreIO, err)
	}
	if err := writeAtomic(s.path, data); err != nil {
		return domain.Note{}, fmt.Errorf("%w: %v", domain.ErrMemoryStoreIO, err)
	}
	return note, nil
}

// Search ranks the stored notes against query.
func (s *NoteStore) Search(ctx context.Context, query string, topK int) ([]domain.Note, error) {
	s.mu.Lock()
	notes := s.load()
	s.mu.Unlock()

	return domain.SearchNotes(notes, query, topK), nil
}

// List returns every note in insertion order.
func (s *NoteStore) List(ctx context.Context) ([]domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}
