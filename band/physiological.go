package band

import (
	"math/rand"

	"github.com/myopic/ecosim/grid"
)

// Physiological drive/metabolism constants, matching
// original_source's band_physiological.py exactly.
const (
	PassiveHungerRate  = 0.008
	PassiveThirstRate  = 0.012
	PassiveFatigueRate = 0.004

	MoveEnergyCost  = 1.0
	MoveHungerCost  = 0.01
	MoveThirstCost  = 0.005
	MoveFatigueCost = 0.005

	ForageEnergyCost  = 1.0
	ForageFatigueCost = 0.015

	RestFatigueRecovery = 0.1

	FocusSwitchThreshold  = 0.2
	FocusBuildupRate      = 0.1
	FocusHysteresisBonus  = 0.3

	hungerWeight  = 2.0
	thirstWeight  = 1.3
	fatigueWeight = 0.8
	threatWeight  = 10.0

	criticalDriveOverride = 0.9
	forageBaseThreshold   = 0.3
	drinkThreshold        = 0.7
	vegetationGradientMin = 0.03
	hydrationGradientMin  = 0.05
)

// Focus names the drive a physiological band is currently attending to.
// "" (FocusNone) means no drive is pressing enough to dominate.
type Focus string

const (
	FocusNone    Focus = ""
	FocusHunger  Focus = "hunger"
	FocusThirst  Focus = "thirst"
	FocusFatigue Focus = "fatigue"
	FocusThreat  Focus = "threat"
)

// PhysiologicalState is Band 1's internal state: depletable drives, the
// adaptive-hysteresis focus state machine, and desperation-derived
// search parameters recomputed each tick from the dominant drive.
type PhysiologicalState struct {
	Hunger  float64
	Thirst  float64
	Fatigue float64

	CurrentFocus  Focus
	FocusStrength float64

	TicksSinceSatisfaction int
	DesperationLevel       float64
	SearchRadius           int
	RiskTolerance          float64
}

// PhysiologicalBand is Band 1: continuous metabolic depletion, a single
// dominant focus at a time, and focus-specific action proposals. Grounded
// on original_source's band_physiological.py PhysiologicalBand.
type PhysiologicalBand struct {
	state  PhysiologicalState
	bState BandState
	memory *Memory
	rng    *rand.Rand
}

// NewPhysiologicalBand builds Band 1 with zeroed drives and unit gain.
func NewPhysiologicalBand(r *rand.Rand) *PhysiologicalBand {
	return &PhysiologicalBand{
		bState: BandState{Gain: 1.0},
		memory: NewMemory(r),
		rng:    r,
	}
}

// ID is the band identifier used by the arbiter's per-band rules.
func (b *PhysiologicalBand) ID() int { return 1 }

// State returns the band-generic portion of this band's state.
func (b *PhysiologicalBand) State() BandState { return b.bState }

// Physiological exposes the drive state for telemetry and memory
// summaries.
func (b *PhysiologicalBand) Physiological() PhysiologicalState { return b.state }

// Perceive deposits passive drive depletion for the tick and recomputes
// focus and desperation before any proposal is made; the EnvState and
// AgentStateView returned are otherwise passed straight through for the
// proposal step to read local/neighborhood values from.
func (b *PhysiologicalBand) Perceive(env EnvState, agent AgentStateView) Perception {
	b.state.Hunger = clamp01(b.state.Hunger + PassiveHungerRate)
	b.state.Thirst = clamp01(b.state.Thirst + PassiveThirstRate)
	b.state.Fatigue = clamp01(b.state.Fatigue + PassiveFatigueRate)
	b.state.TicksSinceSatisfaction++

	b.computeFocus(env.Threat)
	b.computeDesperation()

	return Perception{Env: env, Agent: agent}
}

// Perception bundles the environment and agent-state slices a band reads
// from when proposing actions.
type Perception struct {
	Env   EnvState
	Agent AgentStateView
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// focusOrder fixes the iteration order used to pick an arg-max among
// drives, matching the insertion order of original_source's `drives`
// dict (hunger, thirst, fatigue, threat) so ties resolve identically
// and deterministically across runs with the same seed.
var focusOrder = []Focus{FocusHunger, FocusThirst, FocusFatigue, FocusThreat}

// rawDriveValue returns the unweighted [0,1] drive value backing focus,
// or 0 for threat (threat never participates in the critical override).
func rawDriveValue(focus Focus, hunger, thirst, fatigue float64) float64 {
	switch focus {
	case FocusHunger:
		return hunger
	case FocusThirst:
		return thirst
	case FocusFatigue:
		return fatigue
	default:
		return 0
	}
}

// computeFocus runs the adaptive-hysteresis focus switch: build the
// weighted drive map, bias the currently-focused drive by a hysteresis
// bonus that grows with how long it has held focus (scaled down when
// any drive is already extreme), take the arg-max over the biased map,
// and either strengthen the current focus, force-switch to a critical
// (raw > 0.9) drive among hunger/thirst/fatigue, or switch only if the
// arg-max clears the current focus's (likewise scaled) switch
// threshold. Grounded on original_source's band_physiological.py
// `_compute_focus`.
func (b *PhysiologicalBand) computeFocus(threat float64) {
	hunger, thirst, fatigue := b.state.Hunger, b.state.Thirst, b.state.Fatigue

	weighted := map[Focus]float64{
		FocusHunger:  hunger * hungerWeight,
		FocusThirst:  thirst * thirstWeight,
		FocusFatigue: fatigue * fatigueWeight,
		FocusThreat:  threat * threatWeight,
	}

	maxDrive := weighted[FocusHunger]
	for _, f := range focusOrder[1:] {
		if weighted[f] > maxDrive {
			maxDrive = weighted[f]
		}
	}

	hysteresisMultiplier := 1.0
	switch {
	case maxDrive > 2.0:
		hysteresisMultiplier = 0.3
	case maxDrive > 1.5:
		hysteresisMultiplier = 0.6
	}

	current := b.state.CurrentFocus
	if current != FocusNone {
		weighted[current] += b.state.FocusStrength * FocusHysteresisBonus * hysteresisMultiplier
	}

	var dominant Focus
	var dominantUrgency float64 = -1
	for _, f := range focusOrder {
		if v := weighted[f]; v > dominantUrgency {
			dominantUrgency = v
			dominant = f
		}
	}

	if dominant == current {
		buildup := FocusBuildupRate
		if maxDrive >= 1.5 {
			buildup *= 0.5
		}
		b.state.FocusStrength = minF(1.0, b.state.FocusStrength+buildup)
		return
	}

	switchThreshold := FocusSwitchThreshold * hysteresisMultiplier
	var currentUrgency float64
	if current != FocusNone {
		currentUrgency = weighted[current]
	}

	critical := dominant != FocusThreat && rawDriveValue(dominant, hunger, thirst, fatigue) > criticalDriveOverride

	switch {
	case critical:
		b.state.CurrentFocus = dominant
		b.state.FocusStrength = 0.2
	case dominantUrgency > currentUrgency+switchThreshold:
		b.state.CurrentFocus = dominant
		b.state.FocusStrength = 0.3
	}
}

// computeDesperation derives search radius and risk tolerance from the
// focused drive's deficit and how long it has gone unsatisfied: a
// quadratic deficit term (so near-starvation dominates moderate hunger)
// plus a linear time-pressure term.
func (b *PhysiologicalBand) computeDesperation() {
	var deficit float64
	switch b.state.CurrentFocus {
	case FocusHunger:
		deficit = b.state.Hunger
	case FocusThirst:
		deficit = b.state.Thirst
	case FocusFatigue:
		deficit = b.state.Fatigue
	default:
		deficit = 0
	}
	timePressure := minF(1.0, float64(b.state.TicksSinceSatisfaction)/200.0)
	b.state.DesperationLevel = clamp01(deficit*deficit + 0.3*timePressure)
	b.state.SearchRadius = 2 + int(8*b.state.DesperationLevel)
	b.state.RiskTolerance = 0.1 + 0.5*b.state.DesperationLevel
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// ComputeUrgency reports the weighted value of whatever drive currently
// holds focus; FocusNone carries zero urgency.
func (b *PhysiologicalBand) ComputeUrgency(p Perception) float64 {
	switch b.state.CurrentFocus {
	case FocusHunger:
		b.bState.Urgency = b.state.Hunger * hungerWeight * b.bState.Gain
	case FocusThirst:
		b.bState.Urgency = b.state.Thirst * thirstWeight * b.bState.Gain
	case FocusFatigue:
		b.bState.Urgency = b.state.Fatigue * fatigueWeight * b.bState.Gain
	case FocusThreat:
		b.bState.Urgency = p.Env.Threat * threatWeight * b.bState.Gain
	default:
		b.bState.Urgency = 0
	}
	return b.bState.Urgency
}

// ProposeActions returns this band's candidate actions for the current
// focus. Only one focus is active at a time, so exactly one proposal
// family fires per tick (plus an implicit STAY considered by the
// arbiter when nothing here wins).
func (b *PhysiologicalBand) ProposeActions(p Perception) []ActionProposal {
	switch b.state.CurrentFocus {
	case FocusThreat:
		return []ActionProposal{b.proposeFlee(p)}
	case FocusHunger:
		return []ActionProposal{b.proposeHunger(p)}
	case FocusThirst:
		return []ActionProposal{b.proposeThirst(p)}
	case FocusFatigue:
		return []ActionProposal{b.proposeRest(p)}
	default:
		return nil
	}
}

func (b *PhysiologicalBand) proposeFlee(p Perception) ActionProposal {
	dir := b.findSafestDirection(p.Env.NeighborhoodThreat)
	return ActionProposal{
		Action:        dir,
		Urgency:       p.Env.Threat * threatWeight,
		ExpectedValue: -p.Env.Threat,
		BandID:        b.ID(),
		Params:        map[string]interface{}{"reason": "flee_threat"},
	}
}

func (b *PhysiologicalBand) proposeHunger(p Perception) ActionProposal {
	forageThreshold := forageBaseThreshold - 0.2*b.state.DesperationLevel
	if p.Env.Vegetation > forageThreshold {
		return ActionProposal{
			Action:        Forage,
			Urgency:       b.state.Hunger * hungerWeight,
			ExpectedValue: p.Env.Vegetation,
			BandID:        b.ID(),
			Params: map[string]interface{}{
				"food_quality": p.Env.Vegetation,
				"desperate":    b.state.DesperationLevel > 0.5,
			},
		}
	}
	gradMin := vegetationGradientMin * (1.0 - 0.7*b.state.DesperationLevel)
	dir := b.followGradient(p.Env.NeighborhoodVegetation, gradMin)
	params := map[string]interface{}{
		"searching_food": true,
		"desperation":     b.state.DesperationLevel,
		"search_radius":   b.state.SearchRadius,
	}
	if b.state.Hunger > 0.9 {
		params["reason"] = "critical_hunger"
	}
	return ActionProposal{
		Action:        dir,
		Urgency:       b.state.Hunger * hungerWeight,
		ExpectedValue: 0,
		BandID:        b.ID(),
		Params:        params,
	}
}

func (b *PhysiologicalBand) proposeThirst(p Perception) ActionProposal {
	if p.Env.Hydration > drinkThreshold {
		return ActionProposal{
			Action:        Drink,
			Urgency:       b.state.Thirst * thirstWeight,
			ExpectedValue: p.Env.Hydration,
			BandID:        b.ID(),
			Params:        map[string]interface{}{"hydration_quality": p.Env.Hydration},
		}
	}
	dir := b.followGradient(p.Env.NeighborhoodHydration, hydrationGradientMin)
	return ActionProposal{
		Action:        dir,
		Urgency:       b.state.Thirst * thirstWeight,
		ExpectedValue: 0,
		BandID:        b.ID(),
		Params: map[string]interface{}{
			"searching_water": true,
			"desperation":     b.state.DesperationLevel,
			"search_radius":   b.state.SearchRadius,
		},
	}
}

func (b *PhysiologicalBand) proposeRest(p Perception) ActionProposal {
	return ActionProposal{
		Action:        Rest,
		Urgency:       b.state.Fatigue * fatigueWeight,
		ExpectedValue: RestFatigueRecovery,
		BandID:        b.ID(),
		Params:        map[string]interface{}{"fatigue": b.state.Fatigue},
	}
}

// findSafestDirection moves toward the neighbor cell with the lowest
// threat value, i.e. away from the predator. Falls back to a random
// cardinal direction if the patch carries no usable threat gradient.
func (b *PhysiologicalBand) findSafestDirection(threat *grid.Raster) Action {
	return b.bestDirection(threat, false, 1e-9)
}

// followGradient moves toward the neighbor cell carrying the most of r
// (vegetation or hydration); below minSignal the patch is considered
// flat and a random cardinal direction is chosen instead (exploration).
func (b *PhysiologicalBand) followGradient(r *grid.Raster, minSignal float64) Action {
	return b.bestDirection(r, true, minSignal)
}

// bestDirection scans a square, odd-sized, agent-centered neighborhood
// raster and returns the cardinal step toward (maximize) or away from
// (minimize) its extreme cell. r is expected to be built with
// toroidal wraparound, not edge clamping, so every direction is always
// a meaningful choice.
func (b *PhysiologicalBand) bestDirection(r *grid.Raster, maximize bool, minSignal float64) Action {
	if r == nil || r.W == 0 || r.H == 0 {
		return b.randomCardinal()
	}
	cx, cy := r.W/2, r.H/2
	minV, maxV := float64(r.At(0, 0)), float64(r.At(0, 0))
	bestX, bestY := cx, cy
	bestVal := float64(r.At(cx, cy))
	first := true
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			v := float64(r.At(x, y))
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
			if first || (maximize && v > bestVal) || (!maximize && v < bestVal) {
				bestVal = v
				bestX, bestY = x, y
				first = false
			}
		}
	}
	if maxV-minV < minSignal {
		return b.randomCardinal()
	}
	return b.cardinalFromDelta(bestX-cx, bestY-cy)
}

func (b *PhysiologicalBand) cardinalFromDelta(dx, dy int) Action {
	if dx == 0 && dy == 0 {
		return Stay
	}
	ax, ay := absInt(dx), absInt(dy)
	if ax == ay {
		if b.rng.Intn(2) == 0 {
			ay = 0
		} else {
			ax = 0
		}
	}
	if ax > ay {
		if dx > 0 {
			return MoveEast
		}
		return MoveWest
	}
	if dy > 0 {
		return MoveSouth
	}
	return MoveNorth
}

func (b *PhysiologicalBand) randomCardinal() Action {
	choices := [...]Action{MoveNorth, MoveSouth, MoveEast, MoveWest}
	return choices[b.rng.Intn(len(choices))]
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// UpdateState applies the metabolic cost or recovery of the action that
// was actually executed (which may differ from any one band's own
// proposal, since the arbiter chooses among all bands), and tracks
// whether the focused drive was satisfied, resetting the frustration
// accumulator on success and building it up on repeated failure.
func (b *PhysiologicalBand) UpdateState(p Perception, action Action, outcome Outcome) {
	satisfied := false
	switch action {
	case MoveNorth, MoveSouth, MoveEast, MoveWest:
		b.state.Hunger = clamp01(b.state.Hunger + MoveHungerCost)
		b.state.Thirst = clamp01(b.state.Thirst + MoveThirstCost)
		b.state.Fatigue = clamp01(b.state.Fatigue + MoveFatigueCost)
	case Forage:
		b.state.Fatigue = clamp01(b.state.Fatigue + ForageFatigueCost)
		if outcome.EnergyDelta > 0 {
			b.state.Hunger = 0
			b.state.TicksSinceSatisfaction = 0
			satisfied = true
		}
	case Drink:
		if outcome.EnergyDelta > 0 {
			b.state.Thirst = 0
			b.state.TicksSinceSatisfaction = 0
			satisfied = true
		}
	case Rest:
		b.state.Fatigue = clamp01(b.state.Fatigue - RestFatigueRecovery)
		satisfied = true
	}

	if satisfied {
		b.bState.FrustrationAccumulator = 0
	} else if b.bState.Urgency > 0 {
		b.bState.FrustrationAccumulator++
	}
}

// ComputeLearningSignal reports the energy outcome of the executed
// action as this band's reward signal.
func (b *PhysiologicalBand) ComputeLearningSignal(p Perception, action Action, outcome Outcome) float64 {
	return outcome.EnergyDelta
}

// WriteMemory compresses the tick's perception and outcome into an
// episodic memory entry.
func (b *PhysiologicalBand) WriteMemory(p Perception, action Action, outcome Outcome, affect float64) {
	b.memory.Write(MemoryEntry{
		BandID: b.ID(),
		Tick:   outcome.Tick,
		PerceptionSummary: map[string]float64{
			"hunger":     b.state.Hunger,
			"thirst":     b.state.Thirst,
			"fatigue":    b.state.Fatigue,
			"threat":     p.Env.Threat,
			"vegetation": p.Env.Vegetation,
			"hydration":  p.Env.Hydration,
		},
		Action: action.String(),
		OutcomeSummary: map[string]float64{
			"energy_delta": outcome.EnergyDelta,
			"new_energy":   outcome.NewEnergy,
		},
		Affect:       affect,
		DominantBand: outcome.DominantBand,
	})
}

// QueryMemory returns the k memories most relevant to a hunger context,
// scored by closeness of remembered hunger to ctxHunger with a 1.2x
// bonus for memories carrying positive affect.
func (b *PhysiologicalBand) QueryMemory(ctxHunger float64, k int) []MemoryEntry {
	return b.memory.Query(k, func(e MemoryEntry) float64 {
		score := 1.0 - absF(e.PerceptionSummary["hunger"]-ctxHunger)
		if e.Affect > 0 {
			score *= 1.2
		}
		return score
	})
}

// Memory exposes the band's episodic memory buffer.
func (b *PhysiologicalBand) Memory() *Memory { return b.memory }

// UpdateGain adapts this band's gain from its frustration accumulator:
// persistent failure to satisfy the focused drive raises gain (the band
// shouts louder), while sustained low urgency relaxes it back down.
func (b *PhysiologicalBand) UpdateGain() {
	if b.bState.FrustrationAccumulator > 10.0 {
		b.bState.Gain = minF(5.0, b.bState.Gain+0.1)
		b.bState.FrustrationAccumulator = 0
		return
	}
	if b.bState.Urgency < 0.1 {
		b.bState.Gain = maxF(0.1, b.bState.Gain-0.05)
	}
}
