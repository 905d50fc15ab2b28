// internal/simulation/phase.go
package simulation

// Phase is the top-level state of a session
type Phase string

const (
	PhaseIntro    Phase = "intro"
	PhasePlaying  Phase = "playing"
	PhaseDecision Phase = "decision"
	PhaseResults  Phase = "results"
)

// Phases lists every phase in the order a session visits them
var Phases = []Phase{PhaseIntro, PhasePlaying, PhaseDecision, PhaseResults}

// CanTransitionTo reports whether next directly follows p. The cycle is
// intro, playing, decision, results and back to intro on restart.
func (p Phase) CanTransitionTo(next Phase) bool {
	switch p {
	case PhaseIntro:
		return next == PhasePlaying
	case PhasePlaying:
		return next == PhaseDecision
	case PhaseDecision:
		return next == PhaseResults
	case PhaseResults:
		return next == PhaseIntro
	}
	return false
}

// Valid reports whether p is one of the four phases
func (p Phase) Valid() bool {
	switch p {
	case PhaseIntro, PhasePlaying, PhaseDecision, PhaseResults:
		return true
	}
	return false
}
