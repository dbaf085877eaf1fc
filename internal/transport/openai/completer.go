package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/talentmesh/profilesearch/internal/domain"
)

// Completer is a text completion provider using the OpenAI-compatible chat API.
type Completer struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// CompleterConfig holds the completion provider settings.
type CompleterConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Logger      *zap.Logger
}

// NewCompleter creates an OpenAI-compatible completion provider.
func NewCompleter(cfg *CompleterConfig) *Completer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Completer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      cfg.Logger,
	}
}

// Complete implements domain.Completer. The returned text is free-form and
// callers must parse it defensively.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if c.maxTokens > 0 {
		req.MaxTokens = c.maxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", parseCompletionError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response: %w", domain.ErrCompletionFailed)
	}

	return resp.Choices[0].Message.Content, nil
}

// parseCompletionError wraps all provider failures with domain.ErrCompletionFailed.
func parseCompletionError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, domain.ErrCompletionFailed)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("completion API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), domain.ErrCompletionFailed)
	}

	return fmt.Errorf("completion request failed: %w", domain.ErrCompletionFailed)
}
