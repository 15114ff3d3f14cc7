package middleware_test

import (
	"context"
	"testing"

	"github.com/Tendo1904/mas-lab/pkg/adapters/memory"
	"github.com/Tendo1904/mas-lab/pkg/persistence/middleware"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlyingStore := memory.NewStore()
	mw, err := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)
	if err != nil {
		t.Fatal(err)
	}
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	sessionID := "pii-session"
	state := answered(t, "mail jdoe@example.com about it", "call +1 555 123 4567")
	state.ShortNotes = []string{"owner is jdoe@example.com"}

	if err := secureStore.Save(ctx, sessionID, state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The in-memory state is not modified.
	if state.Query != "mail jdoe@example.com about it" {
		t.Error("Middleware modified original state in memory!")
	}

	stored, err := underlyingStore.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if stored.Query != "mail *** about it" {
		t.Errorf("Query should be masked, got: %q", stored.Query)
	}
	if stored.Answer() != "call ***" {
		t.Errorf("Answer should be masked, got: %q", stored.Answer())
	}
	if h := stored.SessionHistory[0]; h.Question != "mail *** about it" || h.Answer != "call ***" {
		t.Errorf("History should be masked, got: %+v", h)
	}
	if stored.ShortNotes[0] != "owner is ***" {
		t.Errorf("Short notes should be masked, got: %q", stored.ShortNotes[0])
	}
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	if _, err := middleware.NewPIIMiddleware([]string{"("}); err == nil {
		t.Error("Expected invalid pattern error")
	}
}

func TestChain(t *testing.T) {
	underlyingStore := memory.NewStore()
	pii, err := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)
	if err != nil {
		t.Fatal(err)
	}
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if err != nil {
		t.Fatal(err)
	}
	store := middleware.Chain(underlyingStore, pii, enc)

	ctx := context.Background()
	if err := store.Save(ctx, "s", answered(t, "ping a@b.io", "pong")); err != nil {
		t.Fatal(err)
	}
	loaded, err := store.Load(ctx, "s")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Query != "ping ***" {
		t.Errorf("Expected redaction before encryption, got %q", loaded.Query)
	}
	ids, err := store.List(ctx)
	if err != nil || len(ids) != 1 {
		t.Errorf("List through chain failed: %v %v", ids, err)
	}
}
