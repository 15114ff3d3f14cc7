// Package sqlite implements ports.MemoryStore on an embedded SQLite database
// (pure Go driver, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Tendo1904/mas-lab/pkg/domain"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

const schema = `
CREATE TABLE IF NOT EXISTS notes (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	text       TEXT NOT NULL,
	tags       TEXT NOT NULL DEFAULT '[]',
	created_at TEXT NOT NULL
);
`

// NoteStore keeps notes in a single table ordered by insertion sequence.
type NoteStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and migrates it.
func Open(path string) (*NoteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("sqlite: create data dir: %w", err)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}
	// One writer at a time; the pragmas below only apply per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migration: %w", err)
	}
	return &NoteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *NoteStore) Close() error {
	return s.db.Close()
}

// Append inserts a note.
func (s *NoteStore) Append(ctx context.Context, text string, tags []string) (domain.Note, error) {
	note := domain.NewNote(text, tags)
	encoded, err := json.Marshal(note.Tags)
	if err != nil {
		return domain.Note{}, fmt.Errorf("%w: %v", domain.ErrMemoryStoreIO, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO notes (id, text, tags, created_at) VALUES (?, ?, ?, ?)`,
		note.ID, note.Text, string(encoded), note.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return domain.Note{}, fmt.Errorf("%w: insert note: %v", domain.ErrMemoryStoreIO, err)
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

// List returns every note in insertion order.
func (s *NoteStore) List(ctx context.Context) ([]domain.Note, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, text, tags, created_at FROM notes ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: query notes: %v", domain.ErrMemoryStoreIO, err)
	}
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		var (
			n         domain.Note
			tags      string
			createdAt string
		)
		if err := rows.Scan(&n.ID, &n.Text, &tags, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan note: %v", domain.ErrMemoryStoreIO, err)
		}
		if err := json.Unmarshal([]byte(tags), &n.Tags); err != nil {
			n.Tags = []string{}
		}
		n.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate notes: %v", domain.ErrMemoryStoreIO, err)
	}
	return notes, nil
}
