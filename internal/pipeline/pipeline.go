// Package pipeline runs the generate, evaluate, refine, select loop
// that turns one composed instruction into the best reply the
// inference model produces within a bounded number of rounds.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tavila/amparo-agent/internal/evaluator"
	"github.com/tavila/amparo-agent/internal/events"
	"github.com/tavila/amparo-agent/internal/llm"
	"github.com/tavila/amparo-agent/internal/prompts"
)

const (
	candidatesPerRound = 2
	maxRounds          = 4
	// stopScore ends the run on the spot; no refinement can be worth
	// the extra latency.
	stopScore = 8.0
	// settleScore ends the run once at least one refinement round has
	// had its chance to beat it.
	settleScore = 5.0
)

// Request carries everything one pipeline run needs.
type Request struct {
	ActorID string
	// System is the composed behavioral instruction.
	System string
	// User is the conversation instruction the model completes.
	User string
	// UserMessage is the raw inbound text the evaluator judges
	// candidates against.
	UserMessage string
}

// CandidateTrace records one candidate's verdict within a round.
type CandidateTrace struct {
	Score       float64 `json:"score"`
	Analysis    string  `json:"analysis"`
	Improvement string  `json:"improvement"`
	TextLen     int     `json:"text_len"`
}

// RoundTrace records one generation round. BestScore is the best score
// seen so far across all rounds, the value the stop rules read after
// this round.
type RoundTrace struct {
	Round      int              `json:"round"`
	Candidates []CandidateTrace `json:"candidates"`
	BestScore  float64          `json:"best_score"`
}

// Trace is the full observability record of one run, stored on the
// assistant block root.
type Trace struct {
	Rounds      []RoundTrace `json:"rounds"`
	ChosenRound int          `json:"chosen_round"`
	ChosenIndex int          `json:"chosen_candidate"`
	StopReason  string       `json:"stop_reason"`
	Model       string       `json:"model"`
	ElapsedMS   int64        `json:"elapsed_ms"`
}

// JSON renders the trace for storage.
func (t Trace) JSON() json.RawMessage {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil
	}
	return raw
}

// Outcome is the selected reply plus its provenance.
type Outcome struct {
	Text   string
	Score  float64
	Rounds int // rounds executed, 1..4
	Trace  Trace
}

// Pipeline owns the generation loop's collaborators.
type Pipeline struct {
	inference llm.Client
	eval      evaluator.Evaluator
	model     string
	bus       *events.Bus
	logger    *slog.Logger
}

// New creates a pipeline. model labels traces; bus may be nil.
func New(inference llm.Client, eval evaluator.Evaluator, model string, bus *events.Bus, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		inference: inference,
		eval:      eval,
		model:     model,
		bus:       bus,
		logger:    logger.With("component", "pipeline"),
	}
}

type best struct {
	text   string
	round  int
	index  int
	result evaluator.Result
	set    bool
}

// Run executes up to maxRounds generation rounds and returns the
// best-scored candidate. Any empty candidate or malformed verdict
// aborts the whole run; nothing is persisted here.
func (p *Pipeline) Run(ctx context.Context, req Request) (Outcome, error) {
	started := time.Now()

	instruction := req.User
	var trace Trace
	var top best

	for round := 0; ; round++ {
		candidates, err := p.inference.Complete(ctx, req.System, instruction, candidatesPerRound)
		if err != nil {
			return Outcome{}, fmt.Errorf("round %d: generate candidates: %w", round, err)
		}
		if len(candidates) == 0 {
			return Outcome{}, fmt.Errorf("round %d: %w", round, llm.ErrEmptyOutput)
		}

		rt := RoundTrace{Round: round}
		for i, candidate := range candidates {
			text := strings.TrimSpace(candidate)
			if text == "" {
				return Outcome{}, fmt.Errorf("round %d candidate %d: %w", round, i, llm.ErrEmptyOutput)
			}

			result, err := p.eval.Evaluate(ctx, req.UserMessage, text)
			if err != nil {
				return Outcome{}, fmt.Errorf("round %d candidate %d: %w", round, i, err)
			}

			rt.Candidates = append(rt.Candidates, CandidateTrace{
				Score:       result.Score,
				Analysis:    result.Analysis,
				Improvement: result.Improvement,
				TextLen:     len(text),
			})

			// Strict comparison keeps the first-seen candidate on ties.
			if !top.set || result.Score > top.result.Score {
				top = best{text: text, round: round, index: i, result: result, set: true}
			}
		}
		rt.BestScore = top.result.Score
		trace.Rounds = append(trace.Rounds, rt)

		p.bus.Publish(events.Event{
			Timestamp: time.Now(),
			Source:    events.SourcePipeline,
			Kind:      events.KindRoundComplete,
			Data: map[string]any{
				"actor_id":   req.ActorID,
				"round":      round,
				"best_score": top.result.Score,
				"candidates": len(candidates),
			},
		})
		p.logger.Debug("round complete",
			"actor", req.ActorID,
			"round", round,
			"best_score", top.result.Score,
		)

		stopReason := ""
		switch {
		case top.result.Score >= stopScore:
			stopReason = "high_score"
		case round >= 1 && top.result.Score > settleScore:
			stopReason = "settled"
		case round == maxRounds-1:
			stopReason = "round_limit"
		}
		if stopReason != "" {
			trace.StopReason = stopReason
			break
		}

		instruction = prompts.RefinementInstruction(req.User, round+1,
			top.result.Score, top.result.Analysis, top.result.Improvement)
	}

	trace.ChosenRound = top.round
	trace.ChosenIndex = top.index
	trace.Model = p.model
	trace.ElapsedMS = time.Since(started).Milliseconds()

	p.logger.Info("reply selected",
		"actor", req.ActorID,
		"score", top.result.Score,
		"rounds", len(trace.Rounds),
		"stop", trace.StopReason,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)

	return Outcome{
		Text:   top.text,
		Score:  top.result.Score,
		Rounds: len(trace.Rounds),
		Trace:  trace,
	}, nil
}
