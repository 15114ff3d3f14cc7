package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	newState := func(query string) *domain.State {
		s, err := domain.NewState(query, "")
		require.NoError(t, err)
		return s
	}

	t.Run("Save and Load", func(t *testing.T) {
		state := newState("what is entropy?")
		state.RecordAgent(domain.AgentRouter)
		state.PartialAnswers.Extra.RecordStep("0:gather_context", domain.StepRecord{Status: domain.StepDone})
		state.PartialAnswers.Extra.RecordStep("1:ask_geek_agent", domain.StepRecord{Status: domain.StepDone})
		state.SetFinalAnswer("entropy measures disorder")

		require.NoError(t, store.Save(ctx, sessionID, state), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.Query, loaded.Query)
		assert.Equal(t, []string{domain.AgentRouter}, loaded.AgentsActivated)
		assert.Equal(t, "entropy measures disorder", loaded.Answer())
		assert.Equal(t, []string{"0:gather_context", "1:ask_geek_agent"}, loaded.PartialAnswers.Extra.StepKeys())
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.RecordAgent("mutated")

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.NotContains(t, again.AgentsActivated, "mutated")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, newState("q")))
		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, newState("one"))
		_ = store.Save(ctx, id2, newState("two"))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunMemoryStoreContract verifies that a MemoryStore implementation appends, lists and
// searches notes the way the pipeline expects. The store must start empty.
func RunMemoryStoreContract(t *testing.T, store MemoryStore) {
	ctx := context.Background()

	t.Run("Empty store", func(t *testing.T) {
		notes, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, notes)

		found, err := store.Search(ctx, "anything", 3)
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("Append", func(t *testing.T) {
		note, err := store.Append(ctx, "Python functions are defined with def", []string{"auto", "auto", "python"})
		require.NoError(t, err)
		assert.NotEmpty(t, note.ID)
		assert.Equal(t, []string{"auto", "python"}, note.Tags)
		assert.False(t, note.CreatedAt.IsZero())

		_, err = store.Append(ctx, "Goroutines are cheap", nil)
		require.NoError(t, err)
		_, err = store.Append(ctx, "Python lists and python dicts", []string{"python"})
		require.NoError(t, err)
	})

	t.Run("List keeps insertion order", func(t *testing.T) {
		notes, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, notes, 3)
		assert.Equal(t, "Python functions are defined with def", notes[0].Text)
		assert.Equal(t, "Goroutines are cheap", notes[1].Text)
		assert.Equal(t, []string{"python"}, notes[2].Tags)
	})

	t.Run("Search ranks by keyword overlap", func(t *testing.T) {
		found, err := store.Search(ctx, "PYTHON def", 3)
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "Python functions are defined with def", found[0].Text)

		found, err = store.Search(ctx, "python", 1)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Python functions are defined with def", found[0].Text, "ties keep insertion order")

		found, err = store.Search(ctx, "rust", 3)
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("Concurrent appends are not lost", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := store.Append(ctx, fmt.Sprintf("concurrent note %d", i), nil)
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		notes, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, notes, 13)
	})
}
