// Package echo provides an offline ports.CompletionService.
//
// It answers every request by echoing the last user message, prefixed with the first
// line of the system instruction. It needs no network and is deterministic, which makes
// it the backend of the CLI --offline mode.
package echo

import (
	"context"
	"strings"

	"github.com/Tendo1904/mas-lab/pkg/domain"
)

// Service is the echo completion service.
type Service struct{}

// New returns an echo service.
func New() *Service {
	return &Service{}
}

// Complete returns "[<role line>] <last user message>".
func (s *Service) Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.CompletionResponse{}, err
	}

	var last string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == domain.RoleUser {
			last = req.Messages[i].Content
			break
		}
	}

	role, _, _ := strings.Cut(strings.TrimSpace(req.SystemInstruction), "\n")
	if role == "" {
		return domain.CompletionResponse{Text: last}, nil
	}
	return domain.CompletionResponse{Text: "[" + role + "] " + last}, nil
}
