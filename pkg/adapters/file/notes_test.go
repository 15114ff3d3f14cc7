package file_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/Tendo1904/mas-lab/pkg/adapters/file"
	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/Tendo1904/mas-lab/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.MemoryStore = (*file.NoteStore)(nil)

func TestNoteStore_Contract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	ports.RunMemoryStoreContract(t, file.NewNoteStore(path))
}

func TestNoteStore_DocumentFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	store := file.NewNoteStore(path)

	note, err := store.Append(context.Background(), "QA: q -> a", []string{domain.TagAuto})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Notes []map[string]any `json:"notes"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Notes, 1)
	assert.Equal(t, note.ID, doc.Notes[0]["id"])
	assert.Equal(t, "QA: q -> a", doc.Notes[0]["text"])
	assert.Equal(t, []any{"auto"}, doc.Notes[0]["tags"])
	assert.Contains(t, doc.Notes[0], "created_at")
}

func TestNoteStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	ctx := context.Background()

	_, err := file.NewNoteStore(path).Append(ctx, "goroutines are green threads", nil)
	require.NoError(t, err)

	found, err := file.NewNoteStore(path).Search(ctx, "goroutines", 3)
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestNoteStore_CorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	store := file.NewNoteStore(path)
	ctx := context.Background()

	notes, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)

	// The next append replaces the corrupt document
	_, err = store.Append(ctx, "fresh", nil)
	require.NoError(t, err)
	notes, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestNoteStore_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should be makes the rename fail
	path := filepath.Join(dir, "memory.json")
	require.NoError(t, os.MkdirAll(filepath.Join(path, "child"), 0755))

	_, err := file.NewNoteStore(path).Append(context.Background(), "x", nil)
	assert.ErrorIs(t, err, domain.ErrMemoryStoreIO)
}

func TestNoteStore_ReaderNeverSeesMissingFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("rename over an existing file is not atomic on windows")
	}
	path := filepath.Join(t.TempDir(), "memory.json")
	ctx := context.Background()

	writer := file.NewNoteStore(path)
	for i := 0; i < 5; i++ {
		_, err := writer.Append(ctx, "seed", nil)
		require.NoError(t, err)
	}

	// A second instance stands in for another process sharing the file.
	reader := file.NewNoteStore(path)
	var done atomic.Bool
	var reads, short atomic.Int64
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for !done.Load() {
			notes, err := reader.List(ctx)
			if err != nil || len(notes) < 5 {
				short.Add(1)
			}
			reads.Add(1)
		}
	}()

	for i := 0; i < 300; i++ {
		_, err := writer.Append(ctx, "more", nil)
		require.NoError(t, err)
	}
	done.Store(true)
	<-finished

	assert.Positive(t, reads.Load())
	assert.Zero(t, short.Load(), "reader saw fewer notes than were ever stored")

	notes, err := reader.List(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 305)
}
