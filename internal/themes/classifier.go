package themes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tavila/amparo-agent/internal/llm"
	"github.com/tavila/amparo-agent/internal/prompts"
)

// Classifier picks one theme ID from the allowed set for a message.
type Classifier interface {
	Classify(ctx context.Context, text string, allowed []string) (string, error)
}

// LLMClassifier asks the inference client to choose a theme. An answer
// outside the allowed set falls back to the configured default theme
// deterministically; model errors propagate.
type LLMClassifier struct {
	client   llm.Client
	fallback string
	logger   *slog.Logger
}

// NewLLMClassifier creates a classifier. fallback is returned whenever
// the model's answer is not in the allowed set.
func NewLLMClassifier(client llm.Client, fallback string, logger *slog.Logger) *LLMClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMClassifier{
		client:   client,
		fallback: fallback,
		logger:   logger.With("component", "themes"),
	}
}

// Classify returns the ID of the best-matching theme.
func (c *LLMClassifier) Classify(ctx context.Context, text string, allowed []string) (string, error) {
	if len(allowed) == 0 {
		return "", ErrNoThemes
	}

	prompt := prompts.ThemeClassificationPrompt(text, allowed)
	outputs, err := c.client.Complete(ctx, "", prompt, 1)
	if err != nil {
		return "", fmt.Errorf("theme classification: %w", err)
	}

	answer := normalizeAnswer(outputs[0])
	for _, id := range allowed {
		if answer == id {
			return id, nil
		}
	}

	// Chatty models wrap the ID in a sentence; accept the first
	// allowed ID that appears in the answer.
	for _, id := range allowed {
		if strings.Contains(answer, id) {
			return id, nil
		}
	}

	c.logger.Warn("classifier answered out of set, using default",
		"answer", answer,
		"default", c.fallback,
	)
	return c.fallback, nil
}

func normalizeAnswer(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Trim(s, "\"'`.:! \n")
}
