// Package http exposes the pipeline as a JSON API. Requests under /v1 are validated
// against the embedded OpenAPI document before reaching a handler.
package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Tendo1904/mas-lab/internal/logging"
	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/Tendo1904/mas-lab/pkg/ports"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

//go:embed openapi.yaml
var rawSpec []byte

// Sessions is the session surface the API needs; *session.Manager satisfies it.
// AskDiff also reports what the run added to the stored session.
type Sessions interface {
	AskDiff(ctx context.Context, sessionID, query string) (*domain.State, *domain.StateDiff, error)
	Load(ctx context.Context, sessionID string) (*domain.State, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
}

// Server holds the collaborators behind the API.
type Server struct {
	Sessions Sessions
	Memory   ports.MemoryStore
	Streams  *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// AskRequest is the body of POST /v1/ask.
type AskRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// AskResponse is the body returned by POST /v1/ask.
type AskResponse struct {
	SessionID       string          `json:"session_id"`
	Answer          string          `json:"answer"`
	Classification  string          `json:"classification"`
	AgentsActivated []string        `json:"agents_activated"`
	State           json.RawMessage `json:"state"`
}

// NewHandler creates the HTTP handler. It fails only if the embedded OpenAPI document
// is invalid.
func NewHandler(sessions Sessions, memory ports.MemoryStore, opts ...Option) (http.Handler, error) {
	s := &Server{
		Sessions: sessions,
		Memory:   memory,
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	router, err := newSpecRouter()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.validate(router))
		r.Post("/ask", s.Ask)
		r.Get("/sessions", s.ListSessions)
		r.Get("/sessions/{id}", s.GetSession)
		r.Delete("/sessions/{id}", s.DeleteSession)
		r.Get("/notes", s.SearchNotes)
		r.Get("/events", s.SubscribeEvents)
	})
	return r, nil
}

func newSpecRouter() (routers.Router, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return legacy.NewRouter(doc)
}

// validate rejects requests that do not match the OpenAPI document.
func (s *Server) validate(router routers.Router) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				writeError(w, http.StatusNotFound, err)
				return
			}
			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				s.logger.Debug("request rejected", "path", r.URL.Path, "err", err)
				writeError(w, http.StatusBadRequest, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Ask handles POST /v1/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var body AskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if body.SessionID == "" {
		body.SessionID = uuid.NewString()
	}

	state, diff, err := s.Sessions.AskDiff(r.Context(), body.SessionID, body.Query)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s.logger.Error("ask failed", "session_id", body.SessionID, "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.broadcast(body.SessionID, diff)

	snapshot, err := state.ToSnapshot()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, AskResponse{
		SessionID:       body.SessionID,
		Answer:          state.Answer(),
		Classification:  state.ClassificationType(),
		AgentsActivated: state.AgentsActivated,
		State:           snapshot,
	})
}

// broadcast publishes what the run added to the session.
func (s *Server) broadcast(sessionID string, diff *domain.StateDiff) {
	if diff == nil {
		return
	}
	if data, err := json.Marshal(diff); err == nil {
		s.Streams.Broadcast(sessionID, string(data))
	}
}

// ListSessions handles GET /v1/sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// GetSession handles GET /v1/sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	snapshot, err := state.ToSnapshot()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(snapshot)
}

// DeleteSession handles DELETE /v1/sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchNotes handles GET /v1/notes. Without q every note is listed.
func (s *Server) SearchNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	k := domain.DefaultTopK
	if raw := r.URL.Query().Get("k"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			k = n
		}
	}

	var (
		notes []domain.Note
		err   error
	)
	if q == "" {
		notes, err = s.Memory.List(r.Context())
	} else {
		notes, err = s.Memory.Search(r.Context(), q, k)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	writeJSON(w, http.StatusOK, map[string][]domain.Note{"notes": notes})
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
