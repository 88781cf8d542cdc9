// Package retrieval loads theme documents into an embedded passage
// store and finds the passages most relevant to a user message.
//
// Documents are markdown files split at headings; each section is
// embedded once at ingest time and ranked by cosine similarity at
// retrieval time. Retrieval can be disabled entirely by configuration,
// which yields zero passages without error; when enabled, every
// failure propagates to the caller.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tavila/amparo-agent/internal/embeddings"
)

// minScore filters passages with no meaningful similarity to the query.
const minScore = 0.3

// Retriever finds supporting passages for the prompt composer.
type Retriever struct {
	store   *Store
	engine  embeddings.Engine
	enabled bool
	logger  *slog.Logger
}

// NewRetriever creates a retriever. enabled=false turns retrieval into
// a no-op.
func NewRetriever(store *Store, engine embeddings.Engine, enabled bool, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		store:   store,
		engine:  engine,
		enabled: enabled,
		logger:  logger.With("component", "retrieval"),
	}
}

// Enabled reports whether retrieval participates in turns.
func (r *Retriever) Enabled() bool { return r.enabled }

// Retrieve returns up to limit passages relevant to query, restricted
// to themeID when non-empty.
func (r *Retriever) Retrieve(ctx context.Context, query, themeID string, limit int) ([]Passage, error) {
	if !r.enabled || limit <= 0 {
		return nil, nil
	}

	embedding, err := r.engine.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	passages, scores, err := r.store.SemanticSearch(ctx, embedding, themeID, limit)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}

	var kept []Passage
	for i, p := range passages {
		if scores[i] < minScore {
			continue
		}
		kept = append(kept, p)
	}

	r.logger.Debug("passages retrieved",
		"theme", themeID,
		"candidates", len(passages),
		"kept", len(kept),
	)
	return kept, nil
}
