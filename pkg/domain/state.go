package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Classification is the router's verdict on a query.
type Classification struct {
	Type    string         `json:"type"`
	Details map[string]any `json:"details"`
}

// Plan describes how to answer a query. Steps are interpreted in order by the dispatcher;
// Tools are advisory.
type Plan struct {
	Steps        []string `json:"steps"`
	Tools        []string `json:"tools"`
	ContextNotes []Note   `json:"context_notes"`
}

// PartialAnswers is the scratch space shared by stages.
type PartialAnswers struct {
	RAGContext     *string `json:"rag_context"`
	ExecutorResult *string `json:"executor_result"`
	Extra          Extra   `json:"extra"`
}

// SessionEntry is one answered question. Immutable once appended.
type SessionEntry struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// State represents the mutable record of one pipeline run.
// It is owned by the driver for the duration of the run and passed by reference to
// every stage.
type State struct {
	// Query is the user question. Never blank.
	Query string `json:"query"`

	UserID *string `json:"user_id"`

	// Classification is set once by the router.
	Classification *Classification `json:"classification"`

	// Plan is set once by the planner.
	Plan *Plan `json:"plan"`

	PartialAnswers PartialAnswers `json:"partial_answers"`

	// FinalAnswer is the only externally visible result. The supervisor may overwrite it once.
	FinalAnswer *string `json:"final_answer"`

	// SessionHistory is append-only.
	SessionHistory []SessionEntry `json:"session_history"`

	// LongMemory and ShortNotes are in-state copies; the MemoryStore is authoritative.
	LongMemory []Note   `json:"long_memory"`
	ShortNotes []string `json:"short_notes"`

	// AgentsActivated is the append-only audit log of handler invocations.
	AgentsActivated []string `json:"agents_activated"`
}

// NewState validates the query and creates a clean state.
// An empty userID leaves UserID unset.
func NewState(query, userID string) (*State, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	s := &State{Query: query}
	if userID != "" {
		s.UserID = &userID
	}
	s.normalize()
	return s, nil
}

func validateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return &InvalidInputError{Field: "query", Reason: "must be a non-empty string"}
	}
	return nil
}

// normalize replaces nil collections so snapshots always carry arrays.
func (s *State) normalize() {
	if s.SessionHistory == nil {
		s.SessionHistory = []SessionEntry{}
	}
	if s.LongMemory == nil {
		s.LongMemory = []Note{}
	}
	if s.ShortNotes == nil {
		s.ShortNotes = []string{}
	}
	if s.AgentsActivated == nil {
		s.AgentsActivated = []string{}
	}
}

// RecordAgent appends name to the audit log. Repeated calls append repeatedly.
func (s *State) RecordAgent(name string) {
	s.AgentsActivated = append(s.AgentsActivated, name)
}

// AppendSessionEntry records an answered question.
func (s *State) AppendSessionEntry(question, answer string) {
	s.SessionHistory = append(s.SessionHistory, SessionEntry{
		Question:  question,
		Answer:    answer,
		Timestamp: time.Now().UTC(),
	})
}

// SetFinalAnswer replaces the final answer.
func (s *State) SetFinalAnswer(answer string) {
	s.FinalAnswer = &answer
}

// SetRAGContext replaces the retrieved context.
func (s *State) SetRAGContext(ctx string) {
	s.PartialAnswers.RAGContext = &ctx
}

// SetExecutorResult replaces the hand-off channel between steps. An empty result clears it.
func (s *State) SetExecutorResult(result string) {
	if result == "" {
		s.PartialAnswers.ExecutorResult = nil
		return
	}
	s.PartialAnswers.ExecutorResult = &result
}

// ClassificationType returns the classification type or ClassGeneral when unset.
func (s *State) ClassificationType() string {
	if s.Classification == nil || s.Classification.Type == "" {
		return ClassGeneral
	}
	return s.Classification.Type
}

// Answer returns the final answer or the empty string.
func (s *State) Answer() string {
	return deref(s.FinalAnswer)
}

// ToSnapshot returns a deep, order-preserving JSON document of the state.
func (s *State) ToSnapshot() ([]byte, error) {
	s.normalize()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return data, nil
}

// FromSnapshot rebuilds a state from ToSnapshot output, re-validating the query.
func FromSnapshot(data []byte) (*State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	if err := validateQuery(s.Query); err != nil {
		return nil, err
	}
	s.normalize()
	return &s, nil
}

// Clone returns a deep copy through the snapshot encoding.
func (s *State) Clone() (*State, error) {
	data, err := s.ToSnapshot()
	if err != nil {
		return nil, err
	}
	return FromSnapshot(data)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
