package domain_test

import (
	"testing"

	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewNote(t *testing.T) {
	n := domain.NewNote("text", []string{"b", "a", "b", " "})
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, []string{"a", "b"}, n.Tags)
	assert.False(t, n.CreatedAt.IsZero())
	assert.True(t, n.HasTag("a"))
	assert.False(t, n.HasTag("c"))

	assert.Equal(t, []string{}, domain.NewNote("x", nil).Tags)
}

func TestSearchNotes(t *testing.T) {
	notes := []domain.Note{
		{ID: "1", Text: "Python decorators wrap functions"},
		{ID: "2", Text: "Go has goroutines"},
		{ID: "3", Text: "python FUNCTION definitions"},
		{ID: "4", Text: "Functions in python are first class"},
	}

	t.Run("Scores and ties keep insertion order", func(t *testing.T) {
		got := domain.SearchNotes(notes, "Python Function", 3)
		ids := []string{}
		for _, n := range got {
			ids = append(ids, n.ID)
		}
		// All of 1, 3, 4 score 2; order is insertion order.
		assert.Equal(t, []string{"1", "3", "4"}, ids)
	})

	t.Run("Higher score first", func(t *testing.T) {
		got := domain.SearchNotes(notes, "go goroutines", 3)
		assert.Equal(t, "2", got[0].ID)
	})

	t.Run("No match", func(t *testing.T) {
		assert.Empty(t, domain.SearchNotes(notes, "haskell", 3))
	})

	t.Run("Blank query", func(t *testing.T) {
		assert.Empty(t, domain.SearchNotes(notes, "   ", 3))
	})

	t.Run("TopK bound and default", func(t *testing.T) {
		assert.Len(t, domain.SearchNotes(notes, "python", 1), 1)
		assert.Len(t, domain.SearchNotes(notes, "n", 0), domain.DefaultTopK)
	})
}

func TestParseStep(t *testing.T) {
	for _, name := range domain.KnownSteps() {
		k := domain.ParseStep(name)
		assert.NotEqual(t, domain.StepUnknown, k, name)
		assert.Equal(t, name, k.String())
	}
	assert.Equal(t, domain.StepUnknown, domain.ParseStep("frobnicate"))
	assert.Equal(t, domain.StepUnknown, domain.ParseStep("Format_Answer"))
	assert.Equal(t, "unknown", domain.StepUnknown.String())
}
