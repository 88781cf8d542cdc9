// Package mode implements the conversational state machine: which
// posture the agent takes this turn (mode), where the conversation
// stands on its practical axis (progress), and how spiritually intense
// the reply should be (intensity).
package mode

import (
	"fmt"
	"strings"
)

// Mode is the agent's conversational posture for one turn.
type Mode int

const (
	// Welcome is the pre-conversation state; no turn has happened yet.
	Welcome Mode = iota
	// Acolhimento receives the person warmly at the start of contact.
	Acolhimento
	// Exploracao investigates new information the person brought.
	Exploracao
	// Ambivalencia works through contradictory feelings.
	Ambivalencia
	// Defensivo de-escalates when the person pushes back.
	Defensivo
	// Culpa addresses guilt without reinforcing it.
	Culpa
	// Orientacao gives concrete practical direction.
	Orientacao
	// PresencaProfunda holds space for deep suffering.
	PresencaProfunda
	// PastorInstitucional handles church-process requests.
	PastorInstitucional
	// VulnerabilidadeInicial meets a first contact that opens in crisis.
	VulnerabilidadeInicial
)

var modeNames = map[Mode]string{
	Welcome:                "WELCOME",
	Acolhimento:            "ACOLHIMENTO",
	Exploracao:             "EXPLORACAO",
	Ambivalencia:           "AMBIVALENCIA",
	Defensivo:              "DEFENSIVO",
	Culpa:                  "CULPA",
	Orientacao:             "ORIENTACAO",
	PresencaProfunda:       "PRESENCA_PROFUNDA",
	PastorInstitucional:    "PASTOR_INSTITUCIONAL",
	VulnerabilidadeInicial: "VULNERABILIDADE_INICIAL",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseMode converts a persisted mode name back to a Mode.
func ParseMode(s string) (Mode, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return Welcome, fmt.Errorf("unknown mode %q", s)
}

// Progress is the practical axis of the conversation, persisted as a
// first-class actor field and never inferred from message text.
type Progress int

const (
	// Identification: still understanding the situation.
	Identification Progress = iota
	// PracticalAction: concrete steps are on the table.
	PracticalAction
	// Confirmation: the person agreed to a step.
	Confirmation
	// Closing: the conversation is wrapping up.
	Closing
)

var progressNames = map[Progress]string{
	Identification:  "IDENTIFICATION",
	PracticalAction: "PRACTICAL_ACTION",
	Confirmation:    "CONFIRMATION",
	Closing:         "CLOSING",
}

func (p Progress) String() string {
	if s, ok := progressNames[p]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseProgress converts a persisted progress name back to a Progress.
func ParseProgress(s string) (Progress, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for p, n := range progressNames {
		if n == name {
			return p, nil
		}
	}
	return Identification, fmt.Errorf("unknown progress %q", s)
}

// Intensity grades how overtly spiritual the reply should be.
type Intensity int

const (
	// Leve keeps spiritual language minimal.
	Leve Intensity = iota
	// Media allows moderate spiritual framing.
	Media
	// Alta responds with full spiritual presence.
	Alta
)

var intensityNames = map[Intensity]string{
	Leve:  "leve",
	Media: "media",
	Alta:  "alta",
}

func (i Intensity) String() string {
	if s, ok := intensityNames[i]; ok {
		return s
	}
	return "unknown"
}

// ParseIntensity converts an intensity name back to an Intensity.
func ParseIntensity(s string) (Intensity, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range intensityNames {
		if n == name {
			return i, nil
		}
	}
	return Leve, fmt.Errorf("unknown intensity %q", s)
}
