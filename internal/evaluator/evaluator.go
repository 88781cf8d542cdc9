// Package evaluator scores candidate replies and produces the
// refinement feedback the generation pipeline feeds back into the next
// round.
//
// The verdict contract is strict: a score inside [0,10], a non-empty
// analysis and an improvement instruction of at most six lines. Output
// violating the contract aborts the requesting turn with
// ErrMalformedEvaluation; nothing is coerced to a default score.
package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/tavila/amparo-agent/internal/llm"
)

const maxImprovementLines = 6

// ErrMalformedEvaluation reports verdict output that fails schema or
// range validation. Always fatal for the turn.
var ErrMalformedEvaluation = errors.New("malformed evaluation output")

// Result is one candidate's evaluation verdict.
type Result struct {
	Score       float64 `json:"score" jsonschema:"required"`
	Analysis    string  `json:"analysis" jsonschema:"required"`
	Improvement string  `json:"improvement" jsonschema:"required"`
}

// Evaluator scores a candidate reply against the user message that
// prompted it.
type Evaluator interface {
	Evaluate(ctx context.Context, userMsg, candidate string) (Result, error)
}

// New builds an evaluator for the configured provider. "openai" gets
// the structured-output implementation; anything else evaluates through
// a plain inference client with a JSON-only prompt.
func New(cfg llm.Config, logger *slog.Logger) (Evaluator, error) {
	if cfg.Provider == "openai" {
		return NewOpenAIEvaluator(cfg, logger)
	}
	client, err := llm.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewLLMEvaluator(client, logger), nil
}

// ValidateResult enforces the verdict contract.
func ValidateResult(r Result) error {
	if math.IsNaN(r.Score) || math.IsInf(r.Score, 0) || r.Score < 0 || r.Score > 10 {
		return fmt.Errorf("%w: score %v outside [0,10]", ErrMalformedEvaluation, r.Score)
	}
	if strings.TrimSpace(r.Analysis) == "" {
		return fmt.Errorf("%w: empty analysis", ErrMalformedEvaluation)
	}
	if n := countLines(r.Improvement); n > maxImprovementLines {
		return fmt.Errorf("%w: improvement has %d lines, limit is %d", ErrMalformedEvaluation, n, maxImprovementLines)
	}
	return nil
}

func countLines(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// parseResult decodes one verdict from raw model output and validates
// it. Code fences and chatty framing around the JSON object are
// tolerated; a missing or undecodable object is not.
func parseResult(raw string) (Result, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Result{}, llm.ErrEmptyOutput
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end <= start {
		return Result{}, fmt.Errorf("%w: no JSON object in output", ErrMalformedEvaluation)
	}

	var r Result
	if err := json.Unmarshal([]byte(text[start:end+1]), &r); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedEvaluation, err)
	}
	if err := ValidateResult(r); err != nil {
		return Result{}, err
	}
	return r, nil
}
