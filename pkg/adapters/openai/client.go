// Package openai adapts any OpenAI-compatible chat completion endpoint to
// ports.CompletionService.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/Tendo1904/mas-lab/internal/logging"
	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/sashabaranov/go-openai"
)

// Defaults used when the configuration leaves a field empty.
const (
	DefaultModel       = "qwen"
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 1024
)

// Config selects the endpoint and sampling parameters.
// A nil Temperature takes DefaultTemperature; a pointer to 0 means greedy sampling.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature *float32
	MaxTokens   int
	Timeout     time.Duration
}

// Client implements ports.CompletionService.
type Client struct {
	client *openai.Client
	cfg    Config
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New builds a client. An empty Model or MaxTokens and a nil Temperature take the default.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == nil {
		t := float32(DefaultTemperature)
		cfg.Temperature = &t
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete sends one chat completion. The system instruction is sent as a system message
// ahead of the conversation turns.
func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.SystemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == domain.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	c.logger.Debug("requesting completion", "model", c.cfg.Model, "messages", len(messages))
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: wireTemperature(*c.cfg.Temperature),
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			c.logger.Warn("completion rejected", "status", apiErr.HTTPStatusCode, "err", apiErr.Message)
		}
		return domain.CompletionResponse{}, fmt.Errorf("%w: %v", domain.ErrCompletion, err)
	}
	if len(resp.Choices) == 0 {
		return domain.CompletionResponse{}, fmt.Errorf("%w: no choices returned", domain.ErrCompletion)
	}

	c.logger.Debug("completion received", "finish_reason", resp.Choices[0].FinishReason)
	return domain.CompletionResponse{Text: resp.Choices[0].Message.Content}, nil
}

// wireTemperature keeps an explicit zero on the wire. The request field is
// omitempty, so 0 would be dropped and the server default applied instead.
func wireTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}
