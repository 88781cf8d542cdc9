package mode

import (
	"github.com/tavila/amparo-agent/internal/signals"
	"github.com/tavila/amparo-agent/internal/similarity"
)

// Input carries everything the state machine needs for one turn.
type Input struct {
	PrevMode     Mode
	PrevProgress Progress
	Signals      signals.Set
	Loops        similarity.LoopReport
	// FirstTurn is true when the actor has no prior user messages.
	FirstTurn bool
	// PracticalCooldown is the cooldown counter persisted by the
	// previous turn; a value >= 1 forces guidance this turn.
	PracticalCooldown int
}

// Decision is the state machine's full output for one turn.
type Decision struct {
	Mode      Mode
	Progress  Progress
	Intensity Intensity
	// ForcedGuidance is set when the cooldown override redirected the
	// turn into Orientacao regardless of signals.
	ForcedGuidance bool
	// CooldownAfter is the cooldown value to persist for the next turn
	// (before any reset triggered by a fresh assistant loop).
	CooldownAfter int
	// Rule names the transition rule that selected the mode.
	Rule string
	// Overrides lists the overrides applied after the table, in order.
	Overrides []string
}

// transitionRule is one row of the ordered transition table. The first
// rule whose condition holds selects the mode.
type transitionRule struct {
	name string
	when func(Input) bool
	to   func(Input) Mode
}

// transitionTable is evaluated top to bottom; order is behavior.
var transitionTable = []transitionRule{
	{
		name: "first-turn-vulnerability",
		when: func(in Input) bool { return in.FirstTurn && in.Signals.Vulnerability() },
		to:   func(Input) Mode { return VulnerabilidadeInicial },
	},
	{
		name: "deep-presence",
		when: func(in Input) bool { return in.Signals.Vulnerability() },
		to:   func(Input) Mode { return PresencaProfunda },
	},
	{
		name: "guidance",
		when: func(in Input) bool { return in.Signals.GuidanceRequest || in.Signals.RepetitionComplaint },
		to:   func(Input) Mode { return Orientacao },
	},
	{
		name: "welcome",
		when: func(in Input) bool { return in.FirstTurn || in.PrevMode == Welcome },
		to:   func(Input) Mode { return Acolhimento },
	},
	{
		name: "ambivalence",
		when: func(in Input) bool { return in.Signals.Ambivalence },
		to:   func(Input) Mode { return Ambivalencia },
	},
	{
		name: "defensive",
		when: func(in Input) bool { return in.Signals.Defensive },
		to:   func(Input) Mode { return Defensivo },
	},
	{
		name: "guilt",
		when: func(in Input) bool { return in.Signals.Guilt },
		to:   func(Input) Mode { return Culpa },
	},
	{
		name: "loop-to-guidance",
		when: func(in Input) bool { return in.Loops.RepeatedUserPattern || in.Loops.AssistantLoop },
		to:   func(Input) Mode { return Orientacao },
	},
	{
		name: "new-information",
		when: func(in Input) bool { return in.Loops.NewInformation },
		to:   func(Input) Mode { return Exploracao },
	},
	{
		name: "stuck-ambivalence",
		when: func(in Input) bool { return in.Loops.RepeatedUserPattern && in.PrevMode == Ambivalencia },
		to:   func(Input) Mode { return Orientacao },
	},
	{
		name: "stay",
		when: func(Input) bool { return true },
		to:   func(in Input) Mode { return in.PrevMode },
	},
}

// Decide runs the transition table, progress transitions, overrides,
// and intensity grading for one turn.
func Decide(in Input) Decision {
	d := Decision{}

	for _, rule := range transitionTable {
		if rule.when(in) {
			d.Mode = rule.to(in)
			d.Rule = rule.name
			break
		}
	}

	d.Progress = nextProgress(in)

	// Overrides apply after the table, in listed order; a later
	// override wins when more than one fires.
	if in.Signals.Institutional {
		d.Mode = PastorInstitucional
		d.Overrides = append(d.Overrides, "institutional-request")
	}
	if in.Signals.PrayerRequest {
		d.Mode = Orientacao
		d.Overrides = append(d.Overrides, "prayer-request")
	}
	if in.PracticalCooldown >= 1 {
		d.Mode = Orientacao
		d.ForcedGuidance = true
		d.Progress = PracticalAction
		d.CooldownAfter = in.PracticalCooldown - 1
		d.Overrides = append(d.Overrides, "practical-cooldown")
	}

	d.Intensity = grade(in, d)

	return d
}

// nextProgress advances the practical axis from signals. The previous
// value carries forward when nothing moves it.
func nextProgress(in Input) Progress {
	switch {
	case in.Signals.GuidanceRequest:
		return PracticalAction
	case in.Signals.Closing:
		return Closing
	case in.Signals.Agreement &&
		(in.PrevProgress == PracticalAction || in.PrevProgress == Confirmation):
		return Confirmation
	default:
		return in.PrevProgress
	}
}

// grade assigns spiritual intensity from the final mode and signals.
func grade(in Input, d Decision) Intensity {
	var i Intensity
	switch {
	case in.Signals.SpiritualContext || d.Mode == PresencaProfunda:
		i = Alta
	case in.Signals.HighSpiritualNeed || d.Mode == Culpa || d.Mode == Ambivalencia:
		i = Media
	default:
		i = Leve
	}

	// Practical stretches stay grounded: an active cooldown, or
	// practical action without an explicit prayer request, caps
	// intensity at leve.
	if d.ForcedGuidance {
		return Leve
	}
	if d.Progress == PracticalAction && !in.Signals.PrayerRequest {
		return Leve
	}
	return i
}
