// Package embeddings provides vector embedding generation behind a
// common Engine interface, with Ollama, OpenAI, and Gemini backends.
package embeddings

import (
	"context"
	"fmt"
	"math"
)

// Engine generates embedding vectors for text. Implementations must be
// safe for concurrent use.
type Engine interface {
	// Embed returns the embedding vector for text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// Name identifies the backend and model for logs.
	Name() string
}

// Config selects and configures an embedding backend.
type Config struct {
	Provider string // "ollama", "openai", or "gemini"
	Model    string
	BaseURL  string // Ollama only
	APIKey   string // OpenAI and Gemini
}

// NewEngine builds the Engine selected by cfg.Provider.
func NewEngine(cfg Config) (Engine, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaEngine(cfg), nil
	case "openai":
		return NewOpenAIEngine(cfg)
	case "gemini":
		return NewGeminiEngine(cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (valid: ollama, openai, gemini)", cfg.Provider)
	}
}

// EmbedBatch embeds multiple texts sequentially with a single engine.
func EmbedBatch(ctx context.Context, e Engine, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		results[i] = emb
	}
	return results, nil
}

// CosineSimilarity computes the cosine similarity of two vectors.
// Mismatched lengths and zero vectors yield 0. Accumulation happens in
// float64 so long vectors do not lose precision.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
