// Package memory provides conversation history storage.
//
// Every inbound and outbound message is a row. Assistant replies are
// stored twice over: one block root carrying the full reply text and
// the pipeline trace, plus one row per delivered chunk pointing back at
// the root. History reads return roots only, so the model never sees
// its own replies fragmented.
package memory

import (
	"encoding/json"
	"time"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"

	// RoleAnalysis marks the per-turn decision summary. Analysis rows
	// are kept for inspection and never enter prompt history.
	RoleAnalysis Role = "analysis"
)

// Message is one stored conversation row.
type Message struct {
	ID      string `json:"id"`
	ActorID string `json:"actor_id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Channel string `json:"channel,omitempty"`

	// BlockRoot is empty on root messages. Chunk rows carry the ID of
	// the assistant root they were split from.
	BlockRoot  string `json:"block_root,omitempty"`
	ChunkIndex int    `json:"chunk_index,omitempty"`
	ChunkCount int    `json:"chunk_count,omitempty"`

	// Trace holds the pipeline trace JSON. Set only on assistant block
	// roots; exactly one row per logical reply carries it.
	Trace json.RawMessage `json:"trace,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Reply is a completed assistant turn ready to persist.
type Reply struct {
	Text     string          // full reply before chunking
	Chunks   []string        // delivery chunks, in order
	Trace    json.RawMessage // pipeline trace for the block root
	Analysis string          // decision summary stored as an analysis row
}
