package ports

import (
	"context"

	"github.com/Tendo1904/mas-lab/pkg/domain"
)

// CompletionService is the boundary to a text inference backend.
// Implementations must wrap failures with domain.ErrCompletion. The core imposes no
// deadline of its own; timeouts belong to the implementation or the caller's context.
type CompletionService interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResponse, error)
}

// CompletionFunc adapts a function to the CompletionService interface.
type CompletionFunc func(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResponse, error)

// Complete calls f(ctx, req).
func (f CompletionFunc) Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResponse, error) {
	return f(ctx, req)
}
