package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tavila/amparo-agent/internal/llm"
	"github.com/tavila/amparo-agent/internal/prompts"
)

// LLMEvaluator scores candidates through a plain inference client,
// asking for the verdict as a JSON object. It works against any
// provider llm.New supports, including a local Ollama.
type LLMEvaluator struct {
	client llm.Client
	logger *slog.Logger
}

// NewLLMEvaluator wraps an inference client as an evaluator.
func NewLLMEvaluator(client llm.Client, logger *slog.Logger) *LLMEvaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMEvaluator{
		client: client,
		logger: logger.With("component", "evaluator"),
	}
}

// Evaluate requests one verdict and validates it.
func (e *LLMEvaluator) Evaluate(ctx context.Context, userMsg, candidate string) (Result, error) {
	started := time.Now()

	outputs, err := e.client.Complete(ctx, "", prompts.EvaluationPrompt(userMsg, candidate), 1)
	if err != nil {
		return Result{}, fmt.Errorf("evaluation request: %w", err)
	}
	if len(outputs) == 0 {
		return Result{}, fmt.Errorf("evaluation: %w", llm.ErrEmptyOutput)
	}

	r, err := parseResult(outputs[0])
	if err != nil {
		return Result{}, err
	}

	e.logger.Debug("candidate evaluated",
		"score", r.Score,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	return r, nil
}
