package memory_test

import (
	"context"
	"testing"

	"github.com/Tendo1904/mas-lab/pkg/adapters/memory"
	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/Tendo1904/mas-lab/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.StateStore  = (*memory.Store)(nil)
	_ ports.MemoryStore = (*memory.NoteStore)(nil)
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunStateStoreContract(t, store)
}

func TestNoteStore_Contract(t *testing.T) {
	ports.RunMemoryStoreContract(t, memory.NewNoteStore())
}

func TestNoteStore_Seed(t *testing.T) {
	seed := domain.NewNote("MAS stands for multi-agent system", []string{"glossary"})
	store := memory.NewNoteStore(seed)

	found, err := store.Search(context.Background(), "mas", 3)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, seed.ID, found[0].ID)

	// List returns a copy
	list, _ := store.List(context.Background())
	list[0].Text = "changed"
	again, _ := store.List(context.Background())
	assert.Equal(t, "MAS stands for multi-agent system", again[0].Text)
}
