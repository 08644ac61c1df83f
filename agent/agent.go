// Package agent implements the banded agent: an entity whose per-tick
// action is decided by pooling every band's proposals through an
// arbiter, then applying the chosen action's movement and energy
// consequences. Grounded on original_source's `banded_agent.py`
// BandedAgent.
package agent

import (
	"github.com/myopic/ecosim/arbiter"
	"github.com/myopic/ecosim/band"
	"github.com/myopic/ecosim/grid"
)

const (
	MaxEnergy = 150.0

	baseEnergyCost           = -1.0
	movementEnergyMultiplier = 2.0
	forageEnergyGain         = 10.0
	drinkEnergyGain          = 5.0
	restEnergyGain           = 2.0
	stayEnergyCost           = -0.5

	PredationEnergyLoss = 50.0

	// MaxDecisionHistory bounds the per-agent decision trace kept for an
	// optional --trace-agent inspection flag.
	MaxDecisionHistory = 2000
)

// State is an agent's externally visible state.
type State struct {
	AgentID     int
	X, Y        int
	Energy      float64
	Tick        int
	Alive       bool
	TimesCaught int

	// CauseOfDeath is "depletion" or "predation", set once when Alive
	// flips false, empty while alive.
	CauseOfDeath string
}

// DecisionEntry records one tick's selected action for trajectory/trace
// inspection.
type DecisionEntry struct {
	Tick    int
	Action  band.Action
	BandID  int
	Energy  float64
	X, Y    int
}

// BandedAgent owns a state, a set of bands, and the arbiter that
// arbitrates between their proposals each tick.
type BandedAgent struct {
	State   State
	Bands   []band.Band
	Arbiter *arbiter.Arbiter

	history []DecisionEntry
}

// New builds a banded agent at (x, y) with full energy, driven by the
// given bands.
func New(id, x, y int, bands []band.Band, a *arbiter.Arbiter) *BandedAgent {
	return &BandedAgent{
		State:   State{AgentID: id, X: x, Y: y, Energy: MaxEnergy, Alive: true},
		Bands:   bands,
		Arbiter: a,
	}
}

// Step runs one tick: perceive through every band, pool their proposals,
// arbitrate a single action, execute it against the toroidal world,
// apply its energy outcome, and let every band learn from what happened.
// No-op on a dead agent.
func (a *BandedAgent) Step(env band.EnvState, width, height int) {
	if !a.State.Alive {
		return
	}

	agentView := band.AgentStateView{Energy: a.State.Energy, X: a.State.X, Y: a.State.Y, Tick: a.State.Tick}
	perceptions := make([]band.Perception, len(a.Bands))
	var pooled []band.ActionProposal
	for i, b := range a.Bands {
		p := b.Perceive(env, agentView)
		perceptions[i] = p
		b.ComputeUrgency(p)
		pooled = append(pooled, b.ProposeActions(p)...)
	}

	sel := a.Arbiter.SelectAction(pooled, a.State.Energy)

	oldX, oldY := a.State.X, a.State.Y
	newX, newY := a.executeAction(sel.Action, width, height)
	delta := a.computeOutcome(sel.Action, env)
	newEnergy := clampEnergy(a.State.Energy + delta)

	outcome := band.Outcome{
		Tick:         a.State.Tick,
		EnergyDelta:  delta,
		NewEnergy:    newEnergy,
		OldX:         oldX,
		OldY:         oldY,
		NewX:         newX,
		NewY:         newY,
		DominantBand: sel.BandID,
	}
	for i, b := range a.Bands {
		b.UpdateState(perceptions[i], sel.Action, outcome)
		affect := b.ComputeLearningSignal(perceptions[i], sel.Action, outcome)
		b.WriteMemory(perceptions[i], sel.Action, outcome, affect)
		b.UpdateGain()
	}

	a.State.X, a.State.Y = newX, newY
	a.State.Energy = newEnergy
	if a.State.Energy <= 0 {
		a.State.Alive = false
		a.State.CauseOfDeath = "depletion"
	}

	a.recordDecision(sel)
	a.State.Tick++
}

func (a *BandedAgent) executeAction(act band.Action, width, height int) (int, int) {
	x, y := a.State.X, a.State.Y
	switch act {
	case band.MoveNorth:
		y = grid.WrapY(y-1, height)
	case band.MoveSouth:
		y = grid.WrapY(y+1, height)
	case band.MoveEast:
		x = grid.WrapX(x+1, width)
	case band.MoveWest:
		x = grid.WrapX(x-1, width)
	}
	return x, y
}

// computeOutcome applies the per-action energy formula: a flat base cost
// for every action except STAY (which is cheaper on its own), extra cost
// proportional to the local movement_cost field for a move, and gains
// proportional to local vegetation/hydration for FORAGE/DRINK.
func (a *BandedAgent) computeOutcome(act band.Action, env band.EnvState) float64 {
	switch act {
	case band.MoveNorth, band.MoveSouth, band.MoveEast, band.MoveWest:
		return baseEnergyCost - movementEnergyMultiplier*env.MovementCost
	case band.Forage:
		return baseEnergyCost + forageEnergyGain*env.Vegetation
	case band.Drink:
		return baseEnergyCost + drinkEnergyGain*env.Hydration
	case band.Rest:
		return baseEnergyCost + restEnergyGain
	case band.Stay:
		return stayEnergyCost
	default:
		return baseEnergyCost
	}
}

func clampEnergy(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > MaxEnergy {
		return MaxEnergy
	}
	return v
}

// HandlePredation applies a predator catch: a flat energy loss and an
// incremented catch counter, with death if energy reaches zero.
func (a *BandedAgent) HandlePredation() {
	if !a.State.Alive {
		return
	}
	a.State.TimesCaught++
	a.State.Energy = clampEnergy(a.State.Energy - PredationEnergyLoss)
	if a.State.Energy <= 0 {
		a.State.Alive = false
		a.State.CauseOfDeath = "predation"
	}
}

func (a *BandedAgent) recordDecision(sel arbiter.Selection) {
	a.history = append(a.history, DecisionEntry{
		Tick:   a.State.Tick,
		Action: sel.Action,
		BandID: sel.BandID,
		Energy: a.State.Energy,
		X:      a.State.X,
		Y:      a.State.Y,
	})
	if len(a.history) > MaxDecisionHistory {
		a.history = a.history[len(a.history)-MaxDecisionHistory:]
	}
}

// GetTrajectory returns the agent's bounded decision history, oldest
// first.
func (a *BandedAgent) GetTrajectory() []DecisionEntry { return a.history }

// GetBandDominance reports the fraction of ticks each band's proposal
// won arbitration.
func (a *BandedAgent) GetBandDominance() map[int]float64 {
	return a.Arbiter.GetDominantBandDistribution()
}

// GetStateSummary returns the agent's current externally visible state.
func (a *BandedAgent) GetStateSummary() State { return a.State }
