// Package topics tracks what an actor has been talking about.
//
// Each actor carries a small ranked list of topic entries whose scores
// decay a little every turn, plus one "active" topic that steers the
// prompt composer. Merge folds a per-turn extraction signal into that
// memory; the extraction itself comes from an Extractor collaborator.
package topics

import (
	"sort"
	"strings"
	"time"
)

const (
	// decayFactor shrinks every entry score once per merge, so topics
	// that stop coming up fade out instead of lingering forever.
	decayFactor = 0.97

	// minConfidence gates whether an extraction mutates the list at all.
	minConfidence = 0.45

	// promoteConfidence is the bar for displacing the active topic.
	promoteConfidence = 0.6

	// activeTTL expires an active topic that has not been reaffirmed.
	activeTTL = 7 * 24 * time.Hour
)

// MaxEntries bounds the ranked topic list.
const MaxEntries = 6

// Entry is one remembered topic.
type Entry struct {
	Label    string    `json:"label"`
	Score    float64   `json:"score"`
	LastSeen time.Time `json:"last_seen"`
}

// Memory is an actor's topic state: the ranked list plus the active
// topic and when it was last affirmed.
type Memory struct {
	Entries     []Entry   `json:"entries,omitempty"`
	Active      string    `json:"active,omitempty"`
	ActiveSince time.Time `json:"active_since,omitempty"`
}

// Extraction is the classification signal produced by an Extractor.
type Extraction struct {
	Topic       string  `json:"topic"`
	Confidence  float64 `json:"confidence"`
	KeepCurrent bool    `json:"keep_current"`
}

// NormalizeLabel lowercases a topic label and collapses whitespace so
// "Ansiedade " and "ansiedade" merge into one entry.
func NormalizeLabel(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Merge folds one extraction into the memory and returns the result.
// The input memory is never mutated.
//
// Scores decay first, unconditionally. A nil or low-confidence
// extraction changes nothing else, except that an active topic not
// reaffirmed within seven days expires. Otherwise the extracted label
// is scored, the list is re-ranked and truncated, and the label is
// promoted to active when its confidence clears the bar, when nothing
// is active, or when the extractor said not to keep the current topic.
func Merge(mem Memory, ext *Extraction, now time.Time) Memory {
	out := Memory{
		Entries:     make([]Entry, len(mem.Entries)),
		Active:      mem.Active,
		ActiveSince: mem.ActiveSince,
	}
	copy(out.Entries, mem.Entries)

	for i := range out.Entries {
		out.Entries[i].Score *= decayFactor
	}

	var label string
	if ext != nil {
		label = NormalizeLabel(ext.Topic)
	}
	if ext == nil || label == "" || ext.Confidence < minConfidence {
		if out.Active != "" && now.Sub(out.ActiveSince) > activeTTL {
			out.Active = ""
			out.ActiveSince = time.Time{}
		}
		return out
	}

	updated := false
	for i := range out.Entries {
		if out.Entries[i].Label == label {
			out.Entries[i].Score = clampScore(out.Entries[i].Score + 0.25 + 0.35*ext.Confidence)
			out.Entries[i].LastSeen = now
			updated = true
			break
		}
	}
	if !updated {
		out.Entries = append(out.Entries, Entry{
			Label:    label,
			Score:    clampScore(0.3 + 0.5*ext.Confidence),
			LastSeen: now,
		})
	}

	sort.SliceStable(out.Entries, func(i, j int) bool {
		if out.Entries[i].Score != out.Entries[j].Score {
			return out.Entries[i].Score > out.Entries[j].Score
		}
		return out.Entries[i].LastSeen.After(out.Entries[j].LastSeen)
	})
	if len(out.Entries) > MaxEntries {
		out.Entries = out.Entries[:MaxEntries]
	}

	switch {
	case ext.Confidence >= promoteConfidence, out.Active == "", !ext.KeepCurrent:
		out.Active = label
		out.ActiveSince = now
	case label == out.Active:
		// Reaffirmed without promotion: reset the expiry clock.
		out.ActiveSince = now
	}

	return out
}

func clampScore(s float64) float64 {
	if s > 1 {
		return 1
	}
	return s
}
