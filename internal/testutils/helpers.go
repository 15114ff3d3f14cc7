// Package testutils holds fakes shared by the package tests.
package testutils

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Tendo1904/mas-lab/pkg/domain"
)

// ErrScripted is returned by ScriptedCompletion for failing instructions.
var ErrScripted = errors.New("scripted completion failure")

// ScriptedCompletion is a ports.CompletionService whose answers are chosen by matching the
// system instruction. Rules are checked in insertion order; the first rule whose key is a
// substring of the instruction wins. Unmatched requests echo the last message.
type ScriptedCompletion struct {
	mu       sync.Mutex
	rules    []rule
	requests []domain.CompletionRequest
}

type rule struct {
	key   string
	reply string
	err   error
}

// NewScriptedCompletion creates an empty script.
func NewScriptedCompletion() *ScriptedCompletion {
	return &ScriptedCompletion{}
}

// Reply answers instructions containing key with reply.
func (c *ScriptedCompletion) Reply(key, reply string) *ScriptedCompletion {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules = append(c.rules, rule{key: key, reply: reply})
	return c
}

// Fail makes instructions containing key return an error wrapping domain.ErrCompletion.
func (c *ScriptedCompletion) Fail(key string) *ScriptedCompletion {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules = append(c.rules, rule{key: key, err: ErrScripted})
	return c
}

// Complete implements ports.CompletionService.
func (c *ScriptedCompletion) Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)

	for _, r := range c.rules {
		if !strings.Contains(req.SystemInstruction, r.key) {
			continue
		}
		if r.err != nil {
			return domain.CompletionResponse{}, errors.Join(domain.ErrCompletion, r.err)
		}
		return domain.CompletionResponse{Text: r.reply}, nil
	}

	var last string
	if n := len(req.Messages); n > 0 {
		last = req.Messages[n-1].Content
	}
	return domain.CompletionResponse{Text: last}, nil
}

// Requests returns a copy of every request received so far.
func (c *ScriptedCompletion) Requests() []domain.CompletionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.CompletionRequest(nil), c.requests...)
}

// Calls returns the number of requests received so far.
func (c *ScriptedCompletion) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// BrokenMemory is a ports.MemoryStore whose every operation fails.
type BrokenMemory struct{}

func (BrokenMemory) Append(ctx context.Context, text string, tags []string) (domain.Note, error) {
	return domain.Note{}, domain.ErrMemoryStoreIO
}

func (BrokenMemory) Search(ctx context.Context, query string, topK int) ([]domain.Note, error) {
	return nil, domain.ErrMemoryStoreIO
}

func (BrokenMemory) List(ctx context.Context) ([]domain.Note, error) {
	return nil, domain.ErrMemoryStoreIO
}
