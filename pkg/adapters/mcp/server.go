// Package mcp exposes the pipeline as Model Context Protocol tools, so agents can ask
// questions and query the long-term memory.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Tendo1904/mas-lab"
	"github.com/Tendo1904/mas-lab/internal/logging"
	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/Tendo1904/mas-lab/pkg/ports"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const notesURI = "maslab://notes"

// Asker runs one question inside a session; *session.Manager satisfies it.
type Asker interface {
	Ask(ctx context.Context, sessionID, query string) (*domain.State, error)
}

// AskArgs are the arguments of the ask tool.
type AskArgs struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// AskResult aligns with the HTTP API response.
type AskResult struct {
	SessionID       string   `json:"session_id" jsonschema_description:"Session the answer was recorded in"`
	Answer          string   `json:"answer" jsonschema_description:"The final answer"`
	Classification  string   `json:"classification" jsonschema_description:"Router verdict for the query"`
	AgentsActivated []string `json:"agents_activated" jsonschema_description:"Audit log of the run"`
}

// SearchArgs are the arguments of the search_notes tool.
type SearchArgs struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

// SearchResult lists matching notes.
type SearchResult struct {
	Notes []domain.Note `json:"notes" jsonschema_description:"Notes ranked by keyword overlap"`
}

// Server wraps the pipeline and exposes it as an MCP Server.
type Server struct {
	sessions  Asker
	memory    ports.MemoryStore
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions Asker, memory ports.MemoryStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		sessions:  sessions,
		memory:    memory,
		logger:    logger,
		mcpServer: server.NewMCPServer("maslab-mcp", maslab.Version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	askTool := mcp.NewTool("ask",
		mcp.WithDescription("Answer a question through the multi-agent pipeline."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The user question")),
		mcp.WithString("session_id", mcp.Description("Session to continue (optional, a new one is created otherwise)")),
		mcp.WithOutputSchema[AskResult](),
	)
	s.mcpServer.AddTool(askTool, mcp.NewStructuredToolHandler(s.handleAsk))

	searchTool := mcp.NewTool("search_notes",
		mcp.WithDescription("Search the long-term memory by keyword overlap."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Keywords to match")),
		mcp.WithNumber("k", mcp.Description("Maximum number of notes (default 3)")),
		mcp.WithOutputSchema[SearchResult](),
	)
	s.mcpServer.AddTool(searchTool, mcp.NewStructuredToolHandler(s.handleSearch))
}

func (s *Server) handleAsk(ctx context.Context, _ mcp.CallToolRequest, args AskArgs) (AskResult, error) {
	sessionID := args.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	state, err := s.sessions.Ask(ctx, sessionID, args.Query)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			s.logger.Warn("MCP ask: query rejected", "err", err, "size", len(args.Query))
		}
		return AskResult{}, fmt.Errorf("ask failed: %w", err)
	}

	return AskResult{
		SessionID:       sessionID,
		Answer:          state.Answer(),
		Classification:  state.ClassificationType(),
		AgentsActivated: state.AgentsActivated,
	}, nil
}

func (s *Server) handleSearch(ctx context.Context, _ mcp.CallToolRequest, args SearchArgs) (SearchResult, error) {
	notes, err := s.memory.Search(ctx, args.Query, args.K)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search failed: %w", err)
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return SearchResult{Notes: notes}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(notesURI, "Long-term memory",
		mcp.WithMIMEType("application/json"),
	), s.readNotes)
}

func (s *Server) readNotes(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	notes, err := s.memory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	data, err := json.Marshal(notes)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      notesURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
