// Package events provides a publish/subscribe event bus for operational
// observability. Events flow from components (runtime, generation
// pipeline, topic manager) to subscribers (trace logger, future metrics
// collector). The bus is nil-safe: calling Publish on a nil *Bus is a
// no-op, so components do not need guard checks.
package events

import (
	"sync"
	"time"
)

// Source constants identify which component published an event.
const (
	// SourceRuntime identifies events from the turn runtime.
	SourceRuntime = "runtime"
	// SourcePipeline identifies events from the generation pipeline.
	SourcePipeline = "pipeline"
	// SourceTopics identifies events from the topic memory manager.
	SourceTopics = "topics"
)

// Kind constants describe the type of event within a source.
const (
	// KindTurnStart signals the beginning of a conversational turn.
	// Data: actor_id, channel, message_len.
	KindTurnStart = "turn_start"
	// KindSignalsDetected signals completion of lexical signal detection.
	// Data: actor_id, signals.
	KindSignalsDetected = "signals_detected"
	// KindModeDecided signals the state machine has chosen a mode.
	// Data: actor_id, mode, progress, intensity, rule, overrides.
	KindModeDecided = "mode_decided"
	// KindLoopDetected signals a repetition loop fired this turn.
	// Data: actor_id, user_similarity, assistant_similarity, cooldown.
	KindLoopDetected = "loop_detected"
	// KindRoundComplete signals one generation/evaluation round finished.
	// Data: actor_id, round, best_score, candidates.
	KindRoundComplete = "round_complete"
	// KindTurnComplete signals the end of a successful turn.
	// Data: actor_id, mode, score, rounds, chunks, elapsed_ms.
	KindTurnComplete = "turn_complete"
	// KindTurnFailed signals a turn aborted with an error.
	// Data: actor_id, error.
	KindTurnFailed = "turn_failed"

	// KindTopicPromoted signals a topic became the active topic.
	// Data: actor_id, topic, score, confidence.
	KindTopicPromoted = "topic_promoted"
	// KindTopicExpired signals the active topic lapsed after inactivity.
	// Data: actor_id, topic.
	KindTopicExpired = "topic_expired"
)

// Event is one operational occurrence reported by a component.
type Event struct {
	// Timestamp records when the event was published.
	Timestamp time.Time `json:"ts"`
	// Source names the publishing component.
	Source string `json:"source"`
	// Kind is the event type, scoped to the source.
	Kind string `json:"kind"`
	// Data carries event-specific key/value pairs.
	Data map[string]any `json:"data,omitempty"`
}

// Bus is a non-blocking broadcast event bus. Subscribers receive events
// on buffered channels; slow subscribers miss events rather than
// blocking publishers.
type Bus struct {
	mu sync.RWMutex
	// subs is keyed by the receive-only view handed to the subscriber,
	// so Unsubscribe can accept the caller's channel directly. The value
	// is the same channel with its send side intact.
	subs map[<-chan Event]chan Event
}

// New creates a new event bus ready for use.
func New() *Bus {
	return &Bus{subs: make(map[<-chan Event]chan Event)}
}

// Publish sends an event to all subscribers. Non-blocking: if a
// subscriber's channel is full, the event is dropped for that
// subscriber. Safe to call on a nil receiver (no-op).
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			// Subscriber is full; drop the event rather than block.
		}
	}
}

// Subscribe returns a channel that receives published events. The
// caller must eventually call Unsubscribe to avoid resource leaks.
// bufSize controls the channel buffer; 64 is a reasonable default for
// log-forwarding consumers.
func (b *Bus) Subscribe(bufSize int) <-chan Event {
	ch := make(chan Event, bufSize)
	b.mu.Lock()
	b.subs[ch] = ch
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscription and closes the channel. Safe to
// call with a channel that is already unsubscribed (no-op).
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	send, ok := b.subs[ch]
	if !ok {
		return
	}
	delete(b.subs, ch)
	close(send)
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
