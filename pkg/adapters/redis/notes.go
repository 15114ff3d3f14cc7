package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Tendo1904/mas-lab/internal/logging"
	"github.com/Tendo1904/mas-lab/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// NoteStore implements ports.MemoryStore on a Redis list.
// RPUSH makes appends atomic across processes sharing the same server.
type NoteStore struct {
	client *backend.Client
	key    string
	logger *slog.Logger
}

// NoteOption configures a NoteStore.
type NoteOption func(*NoteStore)

// WithNotesKey overrides the list key (default {DefaultPrefix}notes).
func WithNotesKey(key string) NoteOption {
	return func(s *NoteStore) {
		s.key = key
	}
}

// WithLogger sets the logger used to report undecodable entries.
func WithLogger(logger *slog.Logger) NoteOption {
	return func(s *NoteStore) {
		s.logger = logger
	}
}

// NewNoteStore creates a note store on an existing client.
func NewNoteStore(client *backend.Client, opts ...NoteOption) *NoteStore {
	s := &NoteStore{
		client: client,
		key:    DefaultPrefix + "notes",
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append pushes a note to the end of the list.
func (s *NoteStore) Append(ctx context.Context, text string, tags []string) (domain.Note, error) {
	note := domain.NewNote(text, tags)
	data, err := json.Marshal(note)
	if err != nil {
		return domain.Note{}, fmt.Errorf("%w: %v", domain.ErrMemoryStoreIO, err)
	}
	if err := s.client.RPush(ctx, s.key, data).Err(); err != nil {
		return domain.Note{}, fmt.Errorf("%w: %v", domain.ErrMemoryStoreIO, err)
	}
	return note, nil
}

// Search ranks all notes against query.
func (s *NoteStore) Search(ctx context.Context, query string, topK int) ([]domain.Note, error) {
	notes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.SearchNotes(notes, query, topK), nil
}

// List returns every note in insertion order. Undecodable entries are skipped.
func (s *NoteStore) List(ctx context.Context) ([]domain.Note, error) {
	raw, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMemoryStoreIO, err)
	}

	notes := make([]domain.Note, 0, len(raw))
	for i, item := range raw {
		var n domain.Note
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			s.logger.Warn("skipping corrupt note", "key", s.key, "index", i, "err", err)
			continue
		}
		notes = append(notes, n)
	}
	return notes, nil
}
