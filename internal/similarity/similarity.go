// Package similarity scores how close two utterances are and derives
// the loop signals the state machine consumes: repeated user patterns,
// assistant self-similarity, and new-information detection.
package similarity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/tavila/amparo-agent/internal/embeddings"
)

// Loop thresholds. The repeat and new-information thresholds are
// deliberately distinct: the band between 0.80 and 0.85 counts as
// neither a repetition nor new information.
const (
	repeatThreshold    = 0.85
	assistantThreshold = 0.85
	newInfoThreshold   = 0.80

	// CooldownTurns is the practical cooldown set when an assistant
	// self-similarity loop is detected.
	CooldownTurns = 3

	// cacheCap bounds the embedding cache per engine.
	cacheCap = 256
)

// Engine computes semantic similarity over an embedding backend with a
// small in-memory cache keyed by normalized text.
type Engine struct {
	embedder embeddings.Engine
	logger   *slog.Logger

	mu    sync.Mutex
	cache map[string][]float32
	order []string
}

// NewEngine creates a similarity engine on top of an embedding backend.
func NewEngine(embedder embeddings.Engine, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		embedder: embedder,
		logger:   logger,
		cache:    make(map[string][]float32),
	}
}

// Similarity returns the semantic similarity of a and b in [-1, 1].
// Texts that are identical after normalization score 1.0 without any
// backend call; everything else is embedded and compared by cosine.
func (e *Engine) Similarity(ctx context.Context, a, b string) (float64, error) {
	na, nb := normalize(a), normalize(b)
	if na == nb {
		return 1.0, nil
	}

	va, err := e.vector(ctx, na)
	if err != nil {
		return 0, fmt.Errorf("embed first text: %w", err)
	}
	vb, err := e.vector(ctx, nb)
	if err != nil {
		return 0, fmt.Errorf("embed second text: %w", err)
	}

	return float64(embeddings.CosineSimilarity(va, vb)), nil
}

// vector returns the cached embedding for normalized text, embedding on
// miss. Oldest entries are evicted past cacheCap.
func (e *Engine) vector(ctx context.Context, normalized string) ([]float32, error) {
	e.mu.Lock()
	if v, ok := e.cache[normalized]; ok {
		e.mu.Unlock()
		return v, nil
	}
	e.mu.Unlock()

	v, err := e.embedder.Embed(ctx, normalized)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.cache[normalized]; !ok {
		e.cache[normalized] = v
		e.order = append(e.order, normalized)
		if len(e.order) > cacheCap {
			delete(e.cache, e.order[0])
			e.order = e.order[1:]
		}
	}
	return v, nil
}

// LoopReport is the loop analysis for one inbound turn.
type LoopReport struct {
	// RepeatedUserPattern: the inbound message repeats the previous
	// user turn (similarity above 0.85).
	RepeatedUserPattern bool
	// AssistantLoop: the last two assistant replies repeat each other
	// (similarity above 0.85). Detecting this sets the practical
	// cooldown to CooldownTurns.
	AssistantLoop bool
	// NewInformation: the inbound message is not a near-repeat of the
	// previous user turn (similarity not above 0.80). Vacuously true
	// when there is no previous user turn to compare.
	NewInformation bool

	UserSimilarity      float64
	AssistantSimilarity float64
}

// AnalyzeLoops compares the inbound message against the most recent
// prior user turn, and the last two assistant replies against each
// other. priorUsers and priorAssistants are ordered oldest first.
// Embedding failures abort the turn; they are never masked.
func (e *Engine) AnalyzeLoops(ctx context.Context, currentUser string, priorUsers, priorAssistants []string) (LoopReport, error) {
	rep := LoopReport{NewInformation: true}

	if len(priorUsers) >= 1 {
		prev := priorUsers[len(priorUsers)-1]
		sim, err := e.Similarity(ctx, currentUser, prev)
		if err != nil {
			return LoopReport{}, fmt.Errorf("user turn similarity: %w", err)
		}
		rep.UserSimilarity = sim
		rep.RepeatedUserPattern = sim > repeatThreshold
		rep.NewInformation = !(sim > newInfoThreshold)
	}

	if len(priorAssistants) >= 2 {
		last := priorAssistants[len(priorAssistants)-1]
		beforeLast := priorAssistants[len(priorAssistants)-2]
		sim, err := e.Similarity(ctx, last, beforeLast)
		if err != nil {
			return LoopReport{}, fmt.Errorf("assistant turn similarity: %w", err)
		}
		rep.AssistantSimilarity = sim
		rep.AssistantLoop = sim > assistantThreshold
	}

	if rep.RepeatedUserPattern || rep.AssistantLoop {
		e.logger.Debug("loop detected",
			"user_similarity", rep.UserSimilarity,
			"assistant_similarity", rep.AssistantSimilarity,
		)
	}

	return rep, nil
}

// Any reports whether either loop signal fired.
func (r LoopReport) Any() bool {
	return r.RepeatedUserPattern || r.AssistantLoop
}

// normalize lowercases, trims, and collapses internal whitespace so
// trivially reworded repeats compare equal.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
