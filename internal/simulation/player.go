// internal/simulation/player.go
package simulation

import "github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/models"

// AdvanceResult is the outcome of Player.Advance
type AdvanceResult int

const (
	// AdvanceBlocked means nothing moved: the current step is a transition
	AdvanceBlocked AdvanceResult = iota
	// AdvanceMoved means the cursor moved to the next step
	AdvanceMoved
	// AdvanceFinished means the final step was consumed
	AdvanceFinished
)

// Player is the step cursor over one route
type Player struct {
	route *models.Route
	index int
}

// NewPlayer positions a cursor at step 0 of route. route must be non-empty.
func NewPlayer(route *models.Route) *Player {
	return &Player{route: route}
}

// Load switches to another route at step 0
func (p *Player) Load(route *models.Route) {
	p.route = route
	p.index = 0
}

func (p *Player) Route() *models.Route { return p.route }
func (p *Player) Index() int           { return p.index }
func (p *Player) Total() int           { return len(p.route.Steps) }
func (p *Player) IsLast() bool         { return p.index == p.route.Last() }

// Step returns the current step
func (p *Player) Step() models.Step {
	return p.route.Steps[p.index]
}

// CanAdvance is false on transition steps
func (p *Player) CanAdvance() bool {
	return !p.Step().IsTransition()
}

// CanRetreat is false on the first step
func (p *Player) CanRetreat() bool {
	return p.index > 0
}

// Advance moves forward one step. On the last step the index is kept
// and AdvanceFinished is returned so the caller can change phase.
func (p *Player) Advance() AdvanceResult {
	if !p.CanAdvance() {
		return AdvanceBlocked
	}
	if p.IsLast() {
		return AdvanceFinished
	}
	p.index++
	return AdvanceMoved
}

// Retreat moves back one step within the route
func (p *Player) Retreat() bool {
	if !p.CanRetreat() {
		return false
	}
	p.index--
	return true
}
