package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/Tendo1904/mas-lab"
	"github.com/Tendo1904/mas-lab/internal/testutils"
	"github.com/Tendo1904/mas-lab/pkg/adapters/memory"
	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/Tendo1904/mas-lab/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *memory.NoteStore) {
	t.Helper()
	notes := memory.NewNoteStore()
	p := maslab.New(maslab.WithMemoryStore(notes))
	mgr := session.NewManager(memory.NewStore(), session.WithRunFunc(p.RunSession))
	return NewServer(mgr, notes, nil), notes
}

func TestHandleAsk(t *testing.T) {
	s, notes := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleAsk(ctx, mcp.CallToolRequest{}, AskArgs{Query: "explain entropy", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "s1", res.SessionID)
	assert.Equal(t, domain.ClassConceptual, res.Classification)
	assert.NotEmpty(t, res.Answer)
	assert.Equal(t, domain.AgentRouter, res.AgentsActivated[0])

	all, err := notes.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, strings.HasPrefix(all[0].Text, "QA: explain entropy"))
}

func TestHandleAsk_NewSessionAndRejection(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleAsk(context.Background(), mcp.CallToolRequest{}, AskArgs{Query: "hi"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionID)

	_, err = s.handleAsk(context.Background(), mcp.CallToolRequest{}, AskArgs{Query: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHandleSearch(t *testing.T) {
	s, notes := newTestServer(t)
	ctx := context.Background()
	_, _ = notes.Append(ctx, "python def keyword", nil)
	_, _ = notes.Append(ctx, "rust ownership", nil)

	res, err := s.handleSearch(ctx, mcp.CallToolRequest{}, SearchArgs{Query: "python"})
	require.NoError(t, err)
	require.Len(t, res.Notes, 1)
	assert.Equal(t, "python def keyword", res.Notes[0].Text)

	res, err = s.handleSearch(ctx, mcp.CallToolRequest{}, SearchArgs{Query: "haskell"})
	require.NoError(t, err)
	assert.NotNil(t, res.Notes)
	assert.Empty(t, res.Notes)
}

func TestHandleSearch_BrokenStore(t *testing.T) {
	s := NewServer(nil, testutils.BrokenMemory{}, nil)
	_, err := s.handleSearch(context.Background(), mcp.CallToolRequest{}, SearchArgs{Query: "x"})
	assert.ErrorIs(t, err, domain.ErrMemoryStoreIO)
}

func TestReadNotes(t *testing.T) {
	s, notes := newTestServer(t)
	_, _ = notes.Append(context.Background(), "remember me", []string{"manual"})

	contents, err := s.readNotes(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, notesURI, text.URI)
	assert.Contains(t, text.Text, "remember me")
}
