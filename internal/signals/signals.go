// Package signals detects conversational cues in inbound messages using
// lexicon and pattern rules. Detection is deterministic and makes no
// network or model calls: the same text always yields the same SignalSet.
package signals

import (
	"fmt"
	"regexp"
	"strings"
)

// Signal name constants. These are the rule-table keys and the names
// reported by Set.Active for logs and traces.
const (
	SignalGuidanceRequest     = "guidance_request"
	SignalRepetitionComplaint = "repetition_complaint"
	SignalAmbivalence         = "ambivalence"
	SignalDefensive           = "defensiveness"
	SignalGuilt               = "guilt"
	SignalDeepSuffering       = "deep_suffering"
	SignalRepetitiveGuilt     = "repetitive_guilt"
	SignalFamilyImpotence     = "family_conflict_impotence"
	SignalExplicitDespair     = "explicit_despair"
	SignalSpiritualContext    = "spiritual_context"
	SignalHighSpiritualNeed   = "high_spiritual_need"
	SignalInstitutional       = "institutional_request"
	SignalPrayerRequest       = "prayer_request"
	SignalClosing             = "closing_language"
	SignalAgreement           = "agreement"

	// markerRepetition and markerFamily are internal helper markers used
	// as prerequisites by compound rules. They never appear in a Set.
	markerRepetition = "_repetition_marker"
	markerFamily     = "_family_context"
)

// Set holds the outcome of signal detection for one message. Multiple
// signals may be raised by the same message.
type Set struct {
	GuidanceRequest     bool
	RepetitionComplaint bool
	Ambivalence         bool
	Defensive           bool
	Guilt               bool
	DeepSuffering       bool
	RepetitiveGuilt     bool
	FamilyImpotence     bool
	ExplicitDespair     bool
	SpiritualContext    bool
	HighSpiritualNeed   bool
	Institutional       bool
	PrayerRequest       bool
	Closing             bool
	Agreement           bool
}

// Any reports whether at least one signal is raised.
func (s Set) Any() bool {
	return len(s.Active()) > 0
}

// Active returns the names of raised signals in canonical order.
func (s Set) Active() []string {
	var names []string
	for _, f := range []struct {
		name string
		on   bool
	}{
		{SignalGuidanceRequest, s.GuidanceRequest},
		{SignalRepetitionComplaint, s.RepetitionComplaint},
		{SignalAmbivalence, s.Ambivalence},
		{SignalDefensive, s.Defensive},
		{SignalGuilt, s.Guilt},
		{SignalDeepSuffering, s.DeepSuffering},
		{SignalRepetitiveGuilt, s.RepetitiveGuilt},
		{SignalFamilyImpotence, s.FamilyImpotence},
		{SignalExplicitDespair, s.ExplicitDespair},
		{SignalSpiritualContext, s.SpiritualContext},
		{SignalHighSpiritualNeed, s.HighSpiritualNeed},
		{SignalInstitutional, s.Institutional},
		{SignalPrayerRequest, s.PrayerRequest},
		{SignalClosing, s.Closing},
		{SignalAgreement, s.Agreement},
	} {
		if f.on {
			names = append(names, f.name)
		}
	}
	return names
}

// Vulnerability reports whether any of the vulnerability-class signals
// fired (deep suffering, repetitive guilt, family-conflict impotence,
// explicit despair).
func (s Set) Vulnerability() bool {
	return s.DeepSuffering || s.RepetitiveGuilt || s.FamilyImpotence || s.ExplicitDespair
}

func (s *Set) raise(name string) {
	switch name {
	case SignalGuidanceRequest:
		s.GuidanceRequest = true
	case SignalRepetitionComplaint:
		s.RepetitionComplaint = true
	case SignalAmbivalence:
		s.Ambivalence = true
	case SignalDefensive:
		s.Defensive = true
	case SignalGuilt:
		s.Guilt = true
	case SignalDeepSuffering:
		s.DeepSuffering = true
	case SignalRepetitiveGuilt:
		s.RepetitiveGuilt = true
	case SignalFamilyImpotence:
		s.FamilyImpotence = true
	case SignalExplicitDespair:
		s.ExplicitDespair = true
	case SignalSpiritualContext:
		s.SpiritualContext = true
	case SignalHighSpiritualNeed:
		s.HighSpiritualNeed = true
	case SignalInstitutional:
		s.Institutional = true
	case SignalPrayerRequest:
		s.PrayerRequest = true
	case SignalClosing:
		s.Closing = true
	case SignalAgreement:
		s.Agreement = true
	}
}

// Detector is the pluggable detection strategy. The lexicon detector is
// the default; alternatives (a classifier-backed detector, a test stub)
// satisfy the same interface.
type Detector interface {
	Detect(text string) Set
}

// Rule is one row of the detection table. A rule raises Signal when any
// of its Terms or Patterns match. Single-word terms match on word
// boundaries; terms containing a space match as substrings. When
// Requires is set, the rule only fires if the named rule also fired.
type Rule struct {
	Signal   string
	Terms    []string
	Patterns []string
	Requires string
}

// LexiconDetector implements Detector with an ordered rule table over
// folded (lowercased, deaccented) text.
type LexiconDetector struct {
	rules    []Rule
	compiled map[string][]*regexp.Regexp
}

// NewLexiconDetector builds the default rule table, merging any extra
// terms from configuration. Extra terms keyed by an unknown signal name
// are a configuration error.
func NewLexiconDetector(extra map[string][]string) (*LexiconDetector, error) {
	rules := defaultRules()

	known := make(map[string]int, len(rules))
	for i, r := range rules {
		known[r.Signal] = i
	}
	for name, terms := range extra {
		i, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("detector: unknown signal %q in extra_terms", name)
		}
		for _, t := range terms {
			rules[i].Terms = append(rules[i].Terms, fold(t))
		}
	}

	compiled := make(map[string][]*regexp.Regexp)
	for _, r := range rules {
		for _, p := range r.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("detector: compile pattern for %s: %w", r.Signal, err)
			}
			compiled[r.Signal] = append(compiled[r.Signal], re)
		}
	}

	return &LexiconDetector{rules: rules, compiled: compiled}, nil
}

// Detect runs the rule table against text and returns the raised set.
// Empty or whitespace-only input yields an empty Set.
func (d *LexiconDetector) Detect(text string) Set {
	var s Set
	folded := fold(text)
	if folded == "" {
		return s
	}

	fired := make(map[string]bool, len(d.rules))

	// First pass: independent rules. Second pass: rules that require
	// another rule's outcome.
	for pass := 0; pass < 2; pass++ {
		for _, r := range d.rules {
			dependent := r.Requires != ""
			if (pass == 0) == dependent {
				continue
			}
			if dependent && !fired[r.Requires] {
				continue
			}
			if d.ruleMatches(r, folded) {
				fired[r.Signal] = true
			}
		}
	}

	for name := range fired {
		s.raise(name)
	}
	return s
}

func (d *LexiconDetector) ruleMatches(r Rule, folded string) bool {
	for _, t := range r.Terms {
		if matchTerm(folded, t) {
			return true
		}
	}
	for _, re := range d.compiled[r.Signal] {
		if re.MatchString(folded) {
			return true
		}
	}
	return false
}

// matchTerm matches phrases as substrings and single words on word
// boundaries, so "fe" does not fire inside "feliz".
func matchTerm(folded, term string) bool {
	if strings.ContainsRune(term, ' ') {
		return strings.Contains(folded, term)
	}
	idx := 0
	for {
		i := strings.Index(folded[idx:], term)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(term)
		beforeOK := start == 0 || !isWordByte(folded[start-1])
		afterOK := end == len(folded) || !isWordByte(folded[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// foldReplacer maps Portuguese diacritics to their base letters so the
// lexicon matches accented and unaccented spellings alike.
var foldReplacer = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "ô", "o", "õ", "o", "ö", "o",
	"ú", "u", "ù", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n",
)

func fold(s string) string {
	return strings.TrimSpace(foldReplacer.Replace(strings.ToLower(s)))
}
