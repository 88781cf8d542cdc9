// Package llm provides inference client implementations.
//
// A Client is scoped to one provider and one model; callers that need
// separate generation and evaluation models construct two clients via
// New with their respective configs.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrEmptyOutput reports that the model returned no usable text. This
// is fatal for the requesting turn and is never papered over with a
// placeholder reply.
var ErrEmptyOutput = errors.New("model returned empty output")

// Client is the interface all inference providers implement.
type Client interface {
	// Complete sends one instruction pair and returns n independent
	// candidate completions. Implementations return ErrEmptyOutput
	// (possibly wrapped) when any candidate comes back blank.
	Complete(ctx context.Context, system, user string, n int) ([]string, error)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}

// Config selects and parameterizes a provider.
type Config struct {
	Provider string // "ollama" (default) or "openai"
	Model    string
	BaseURL  string
	APIKey   string
}

// New builds a client for the configured provider.
func New(cfg Config, logger *slog.Logger) (Client, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaClient(cfg.BaseURL, cfg.Model, logger), nil
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model, logger)
	default:
		return nil, fmt.Errorf("unknown inference provider: %q", cfg.Provider)
	}
}
