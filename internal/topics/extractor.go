package topics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/tavila/amparo-agent/internal/llm"
	"github.com/tavila/amparo-agent/internal/memory"
	"github.com/tavila/amparo-agent/internal/prompts"
)

// Extractor produces a topic signal for the exchange being processed.
type Extractor interface {
	Extract(ctx context.Context, userMsg, currentTopic string, history []memory.Message) (*Extraction, error)
}

// maxTranscriptBytes caps the context sent to the model.
const maxTranscriptBytes = 4000

// LLMExtractor classifies the conversation topic with the inference
// client. Extraction is advisory: a malformed or empty answer degrades
// to a nil extraction (logged) instead of failing the turn. Transport
// errors still propagate, like any collaborator failure.
type LLMExtractor struct {
	client llm.Client
	logger *slog.Logger
}

// NewLLMExtractor creates an extractor over an inference client.
func NewLLMExtractor(client llm.Client, logger *slog.Logger) *LLMExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMExtractor{
		client: client,
		logger: logger.With("component", "topics"),
	}
}

// Extract asks the model for a topic signal.
func (e *LLMExtractor) Extract(ctx context.Context, userMsg, currentTopic string, history []memory.Message) (*Extraction, error) {
	prompt := prompts.TopicExtractionPrompt(userMsg, currentTopic,
		prompts.Transcript(history, maxTranscriptBytes))

	outputs, err := e.client.Complete(ctx, "", prompt, 1)
	if err != nil {
		if errors.Is(err, llm.ErrEmptyOutput) {
			e.logger.Warn("topic extraction returned nothing, skipping")
			return nil, nil
		}
		return nil, fmt.Errorf("topic extraction: %w", err)
	}

	ext := parseExtraction(outputs[0], e.logger)
	if ext != nil {
		e.logger.Debug("topic extracted",
			"topic", ext.Topic,
			"confidence", ext.Confidence,
			"keep_current", ext.KeepCurrent,
		)
	}
	return ext, nil
}

// parseExtraction parses the model's JSON answer. Anything unusable
// degrades to nil.
func parseExtraction(content string, logger *slog.Logger) *Extraction {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var ext Extraction
	if err := json.Unmarshal([]byte(content), &ext); err != nil {
		logger.Warn("topic extraction JSON parse failed, skipping", "error", err)
		return nil
	}

	if ext.Topic == "" {
		return nil
	}
	if math.IsNaN(ext.Confidence) || ext.Confidence < 0 || ext.Confidence > 1 {
		logger.Warn("topic extraction confidence out of range, skipping",
			"confidence", ext.Confidence)
		return nil
	}
	return &ext
}
