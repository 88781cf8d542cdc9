// Package agent orchestrates one conversational turn end to end.
//
// The runtime owns the decision core (signals, loop analysis, topic
// memory, mode machine) and the generation pipeline, and it enforces
// the two durability rules everything else relies on: turns for the
// same actor are serialized, and neither the actor nor the message
// store is touched until the whole turn has succeeded.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tavila/amparo-agent/internal/chunk"
	"github.com/tavila/amparo-agent/internal/events"
	"github.com/tavila/amparo-agent/internal/memory"
	"github.com/tavila/amparo-agent/internal/mode"
	"github.com/tavila/amparo-agent/internal/pipeline"
	"github.com/tavila/amparo-agent/internal/profile"
	"github.com/tavila/amparo-agent/internal/prompts"
	"github.com/tavila/amparo-agent/internal/retrieval"
	"github.com/tavila/amparo-agent/internal/signals"
	"github.com/tavila/amparo-agent/internal/similarity"
	"github.com/tavila/amparo-agent/internal/themes"
	"github.com/tavila/amparo-agent/internal/topics"
)

// Config carries the runtime's behavioral settings.
type Config struct {
	// AgentName is the persona name used in prompts.
	AgentName string
	// HistoryLimit is how many recent root messages feed each turn.
	HistoryLimit int
	// RetrievalLimit is the maximum supporting passages per turn.
	RetrievalLimit int
}

// Deps bundles the collaborators and stores the runtime orchestrates.
// Retriever may be nil when retrieval is disabled; Bus may be nil;
// everything else is required.
type Deps struct {
	Detector   signals.Detector
	Loops      *similarity.Engine
	Extractor  topics.Extractor
	Registry   *themes.Registry
	Classifier themes.Classifier
	Retriever  *retrieval.Retriever
	Pipeline   *pipeline.Pipeline
	Actors     *profile.Store
	Messages   *memory.Store
	Bus        *events.Bus
	Logger     *slog.Logger
}

// Runtime processes inbound messages for all actors.
type Runtime struct {
	cfg    Config
	deps   Deps
	logger *slog.Logger

	// locks serializes turns per actor. Turns for distinct actors run
	// in parallel; two turns for the same actor never overlap.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New validates the dependency set and creates a runtime. A missing
// required dependency is a configuration error surfaced here, at
// startup, never mid-turn.
func New(cfg Config, deps Deps) (*Runtime, error) {
	switch {
	case deps.Detector == nil:
		return nil, fmt.Errorf("agent: nil signal detector")
	case deps.Loops == nil:
		return nil, fmt.Errorf("agent: nil similarity engine")
	case deps.Extractor == nil:
		return nil, fmt.Errorf("agent: nil topic extractor")
	case deps.Registry == nil:
		return nil, fmt.Errorf("agent: nil theme registry")
	case deps.Classifier == nil:
		return nil, fmt.Errorf("agent: nil theme classifier")
	case deps.Pipeline == nil:
		return nil, fmt.Errorf("agent: nil pipeline")
	case deps.Actors == nil:
		return nil, fmt.Errorf("agent: nil actor store")
	case deps.Messages == nil:
		return nil, fmt.Errorf("agent: nil message store")
	}

	if cfg.AgentName == "" {
		cfg.AgentName = "Amparo"
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 12
	}
	if cfg.RetrievalLimit <= 0 {
		cfg.RetrievalLimit = 3
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Runtime{
		cfg:    cfg,
		deps:   deps,
		logger: logger.With("component", "agent"),
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// TurnRequest is one inbound user message.
type TurnRequest struct {
	ActorID string
	Channel string
	Text    string
}

// TurnResult is the completed turn: the ordered delivery chunks plus
// the state the decision core settled on.
type TurnResult struct {
	Chunks    []string
	Text      string
	Mode      mode.Mode
	Progress  mode.Progress
	Intensity mode.Intensity
	Theme     string
	Score     float64
	Rounds    int
	// TraceID is the assistant block root carrying the pipeline trace.
	TraceID string
}

// GenerateResponseForTurn runs one full turn for an actor, holding that
// actor's lock for the duration. On any failure the turn aborts with no
// actor or message mutation; the caller decides whether to retry.
func (r *Runtime) GenerateResponseForTurn(ctx context.Context, req TurnRequest) (TurnResult, error) {
	if req.ActorID == "" {
		return TurnResult{}, fmt.Errorf("agent: empty actor id")
	}
	if strings.TrimSpace(req.Text) == "" {
		return TurnResult{}, fmt.Errorf("agent: empty inbound text")
	}
	if req.Channel == "" {
		req.Channel = "chat"
	}

	unlock := r.lockActor(req.ActorID)
	defer unlock()

	started := time.Now()
	r.deps.Bus.Publish(events.Event{
		Timestamp: started,
		Source:    events.SourceRuntime,
		Kind:      events.KindTurnStart,
		Data: map[string]any{
			"actor_id":    req.ActorID,
			"channel":     req.Channel,
			"message_len": len(req.Text),
		},
	})

	res, err := r.turn(ctx, req)
	if err != nil {
		r.deps.Bus.Publish(events.Event{
			Timestamp: time.Now(),
			Source:    events.SourceRuntime,
			Kind:      events.KindTurnFailed,
			Data:      map[string]any{"actor_id": req.ActorID, "error": err.Error()},
		})
		r.logger.Error("turn failed", "actor", req.ActorID, "error", err)
		return TurnResult{}, err
	}

	r.deps.Bus.Publish(events.Event{
		Timestamp: time.Now(),
		Source:    events.SourceRuntime,
		Kind:      events.KindTurnComplete,
		Data: map[string]any{
			"actor_id":   req.ActorID,
			"mode":       res.Mode.String(),
			"score":      res.Score,
			"rounds":     res.Rounds,
			"chunks":     len(res.Chunks),
			"elapsed_ms": time.Since(started).Milliseconds(),
		},
	})
	r.logger.Info("turn complete",
		"actor", req.ActorID,
		"mode", res.Mode.String(),
		"progress", res.Progress.String(),
		"score", res.Score,
		"rounds", res.Rounds,
		"chunks", len(res.Chunks),
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	return res, nil
}

// turn is the pipeline body. Everything up to the final persistence
// step is read-only with respect to durable state.
func (r *Runtime) turn(ctx context.Context, req TurnRequest) (TurnResult, error) {
	actor, err := r.deps.Actors.Get(ctx, req.ActorID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("load actor: %w", err)
	}

	msgCount, err := r.deps.Messages.MessageCount(ctx, req.ActorID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("count history: %w", err)
	}
	firstTurn := msgCount == 0

	history, err := r.deps.Messages.RecentHistory(ctx, req.ActorID, r.cfg.HistoryLimit)
	if err != nil {
		return TurnResult{}, fmt.Errorf("load history: %w", err)
	}

	sig := r.deps.Detector.Detect(req.Text)
	r.deps.Bus.Publish(events.Event{
		Timestamp: time.Now(),
		Source:    events.SourceRuntime,
		Kind:      events.KindSignalsDetected,
		Data:      map[string]any{"actor_id": req.ActorID, "signals": sig.Active()},
	})
	r.logger.Debug("signals detected", "actor", req.ActorID, "signals", sig.Active())

	loops, err := r.analyzeLoops(ctx, req)
	if err != nil {
		return TurnResult{}, err
	}
	if loops.Any() {
		r.deps.Bus.Publish(events.Event{
			Timestamp: time.Now(),
			Source:    events.SourceRuntime,
			Kind:      events.KindLoopDetected,
			Data: map[string]any{
				"actor_id":             req.ActorID,
				"repeated_user":        loops.RepeatedUserPattern,
				"assistant_loop":       loops.AssistantLoop,
				"user_similarity":      loops.UserSimilarity,
				"assistant_similarity": loops.AssistantSimilarity,
			},
		})
	}

	newTopics, err := r.consolidateTopics(ctx, req, actor, history)
	if err != nil {
		return TurnResult{}, err
	}

	decision := r.decide(actor, sig, loops, firstTurn)

	// A fresh assistant loop re-arms the cooldown; otherwise the
	// machine's decremented value carries forward.
	cooldownNext := decision.CooldownAfter
	if loops.AssistantLoop {
		cooldownNext = similarity.CooldownTurns
	}

	theme, err := r.classifyTheme(ctx, req.Text)
	if err != nil {
		return TurnResult{}, err
	}

	passages, err := r.retrievePassages(ctx, req.Text, theme.ID)
	if err != nil {
		return TurnResult{}, err
	}

	system := prompts.SystemPrompt(r.cfg.AgentName, decision, newTopics.Active, theme.Guidance, passages)
	user := prompts.ConversationPrompt(history, req.Text)

	outcome, err := r.deps.Pipeline.Run(ctx, pipeline.Request{
		ActorID:     req.ActorID,
		System:      system,
		User:        user,
		UserMessage: req.Text,
	})
	if err != nil {
		return TurnResult{}, fmt.Errorf("generation pipeline: %w", err)
	}

	chunks := chunk.ForMode(decision.Mode, outcome.Text)

	rootID, err := r.deps.Messages.SaveTurn(ctx,
		memory.Message{
			ActorID: req.ActorID,
			Role:    memory.RoleUser,
			Content: req.Text,
			Channel: req.Channel,
		},
		memory.Reply{
			Text:     outcome.Text,
			Chunks:   chunks,
			Trace:    outcome.Trace.JSON(),
			Analysis: decisionSummary(decision, sig, loops, theme.ID, newTopics.Active, outcome, cooldownNext),
		})
	if err != nil {
		return TurnResult{}, fmt.Errorf("persist turn: %w", err)
	}

	// Post-success step: the only place actor state mutates.
	actor.Mode = decision.Mode.String()
	actor.Progress = decision.Progress.String()
	actor.PracticalCooldown = cooldownNext
	actor.Topics = newTopics
	actor.RegenCount += outcome.Rounds - 1
	if loops.Any() {
		actor.LoopCount++
	}
	if err := r.deps.Actors.Save(ctx, actor); err != nil {
		return TurnResult{}, fmt.Errorf("save actor: %w", err)
	}

	return TurnResult{
		Chunks:    chunks,
		Text:      outcome.Text,
		Mode:      decision.Mode,
		Progress:  decision.Progress,
		Intensity: decision.Intensity,
		Theme:     theme.ID,
		Score:     outcome.Score,
		Rounds:    outcome.Rounds,
		TraceID:   rootID,
	}, nil
}

// analyzeLoops compares the inbound message with the previous user turn
// and the last two assistant replies with each other.
func (r *Runtime) analyzeLoops(ctx context.Context, req TurnRequest) (similarity.LoopReport, error) {
	priorUsers, err := r.deps.Messages.LastUserMessages(ctx, req.ActorID, 2)
	if err != nil {
		return similarity.LoopReport{}, fmt.Errorf("load user turns: %w", err)
	}
	priorAssistants, err := r.deps.Messages.LastAssistantReplies(ctx, req.ActorID, 2)
	if err != nil {
		return similarity.LoopReport{}, fmt.Errorf("load assistant replies: %w", err)
	}

	loops, err := r.deps.Loops.AnalyzeLoops(ctx, req.Text, priorUsers, priorAssistants)
	if err != nil {
		return similarity.LoopReport{}, fmt.Errorf("loop analysis: %w", err)
	}
	return loops, nil
}

// consolidateTopics folds the extractor's advisory signal into the
// actor's topic memory and reports promotions and expiries on the bus.
func (r *Runtime) consolidateTopics(ctx context.Context, req TurnRequest, actor *profile.Actor, history []memory.Message) (topics.Memory, error) {
	ext, err := r.deps.Extractor.Extract(ctx, req.Text, actor.Topics.Active, history)
	if err != nil {
		return topics.Memory{}, fmt.Errorf("topic extraction: %w", err)
	}

	newTopics := topics.Merge(actor.Topics, ext, time.Now().UTC())

	switch {
	case newTopics.Active != "" && newTopics.Active != actor.Topics.Active:
		data := map[string]any{"actor_id": req.ActorID, "topic": newTopics.Active}
		if ext != nil {
			data["confidence"] = ext.Confidence
		}
		r.deps.Bus.Publish(events.Event{
			Timestamp: time.Now(),
			Source:    events.SourceTopics,
			Kind:      events.KindTopicPromoted,
			Data:      data,
		})
		r.logger.Debug("topic promoted", "actor", req.ActorID, "topic", newTopics.Active)
	case newTopics.Active == "" && actor.Topics.Active != "":
		r.deps.Bus.Publish(events.Event{
			Timestamp: time.Now(),
			Source:    events.SourceTopics,
			Kind:      events.KindTopicExpired,
			Data:      map[string]any{"actor_id": req.ActorID, "topic": actor.Topics.Active},
		})
		r.logger.Debug("topic expired", "actor", req.ActorID, "topic", actor.Topics.Active)
	}

	return newTopics, nil
}

// decide parses the persisted mode and progress and runs the state
// machine. Unknown persisted values fall back to the defaults so old
// profiles survive renames.
func (r *Runtime) decide(actor *profile.Actor, sig signals.Set, loops similarity.LoopReport, firstTurn bool) mode.Decision {
	prevMode, err := mode.ParseMode(actor.Mode)
	if err != nil {
		r.logger.Warn("unknown persisted mode, using default",
			"actor", actor.ID, "mode", actor.Mode)
	}
	prevProgress, err := mode.ParseProgress(actor.Progress)
	if err != nil {
		r.logger.Warn("unknown persisted progress, using default",
			"actor", actor.ID, "progress", actor.Progress)
	}

	decision := mode.Decide(mode.Input{
		PrevMode:          prevMode,
		PrevProgress:      prevProgress,
		Signals:           sig,
		Loops:             loops,
		FirstTurn:         firstTurn,
		PracticalCooldown: actor.PracticalCooldown,
	})

	r.deps.Bus.Publish(events.Event{
		Timestamp: time.Now(),
		Source:    events.SourceRuntime,
		Kind:      events.KindModeDecided,
		Data: map[string]any{
			"actor_id":  actor.ID,
			"mode":      decision.Mode.String(),
			"progress":  decision.Progress.String(),
			"intensity": decision.Intensity.String(),
			"rule":      decision.Rule,
			"overrides": decision.Overrides,
		},
	})
	r.logger.Debug("mode decided",
		"actor", actor.ID,
		"mode", decision.Mode.String(),
		"progress", decision.Progress.String(),
		"intensity", decision.Intensity.String(),
		"rule", decision.Rule,
		"overrides", decision.Overrides,
	)
	return decision
}

// classifyTheme picks the support theme for this turn. The classifier
// already falls back to the default for out-of-set answers; an ID it
// returns that the registry cannot resolve means the registry and
// classifier disagree about the allowed set, which is a bug worth
// failing loudly on.
func (r *Runtime) classifyTheme(ctx context.Context, text string) (themes.Theme, error) {
	id, err := r.deps.Classifier.Classify(ctx, text, r.deps.Registry.IDs())
	if err != nil {
		return themes.Theme{}, fmt.Errorf("theme classification: %w", err)
	}
	theme, ok := r.deps.Registry.Get(id)
	if !ok {
		return themes.Theme{}, fmt.Errorf("theme classification: classifier returned unknown theme %q", id)
	}
	return theme, nil
}

// retrievePassages returns the supporting passage texts for the prompt.
// A nil retriever means retrieval is disabled.
func (r *Runtime) retrievePassages(ctx context.Context, query, themeID string) ([]string, error) {
	if r.deps.Retriever == nil {
		return nil, nil
	}
	found, err := r.deps.Retriever.Retrieve(ctx, query, themeID, r.cfg.RetrievalLimit)
	if err != nil {
		return nil, fmt.Errorf("passage retrieval: %w", err)
	}
	texts := make([]string, 0, len(found))
	for _, p := range found {
		texts = append(texts, p.Content)
	}
	return texts, nil
}

// ActorState returns the persisted state of one actor for inspection.
// Unknown actors yield profile.ErrUnknownActor.
func (r *Runtime) ActorState(ctx context.Context, actorID string) (*profile.Actor, error) {
	return r.deps.Actors.Lookup(ctx, actorID)
}

// lockActor acquires the per-actor mutex, creating it on first use, and
// returns the unlock func.
func (r *Runtime) lockActor(id string) func() {
	r.mu.Lock()
	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// decisionSummary renders the analysis row persisted alongside each
// turn: what the decision core saw and chose, in one greppable line.
func decisionSummary(d mode.Decision, sig signals.Set, loops similarity.LoopReport, themeID, activeTopic string, out pipeline.Outcome, cooldownNext int) string {
	sigNames := "none"
	if names := sig.Active(); len(names) > 0 {
		sigNames = strings.Join(names, ",")
	}
	loopNames := "none"
	switch {
	case loops.RepeatedUserPattern && loops.AssistantLoop:
		loopNames = "user,assistant"
	case loops.RepeatedUserPattern:
		loopNames = "user"
	case loops.AssistantLoop:
		loopNames = "assistant"
	}
	overrides := "none"
	if len(d.Overrides) > 0 {
		overrides = strings.Join(d.Overrides, ",")
	}
	topic := activeTopic
	if topic == "" {
		topic = "none"
	}

	return fmt.Sprintf(
		"mode=%s rule=%s overrides=%s progress=%s intensity=%s signals=%s loops=%s new_information=%t cooldown_next=%d theme=%s topic=%s score=%.1f rounds=%d stop=%s",
		d.Mode, d.Rule, overrides, d.Progress, d.Intensity,
		sigNames, loopNames, loops.NewInformation, cooldownNext,
		themeID, topic, out.Score, out.Rounds, out.Trace.StopReason,
	)
}
