// Package arbiter selects one action per tick from the proposals
// offered by every band, by a three-rule cascade: a hard safety veto, an
// energy-emergency override, and a softmax-with-inertia blend of
// whatever remains. Grounded on original_source's `arbiter.py` Arbiter.
package arbiter

import (
	"math"
	"math/rand"

	"github.com/myopic/ecosim/band"
)

const (
	// SafetyVetoBandID is the (not-yet-implemented) threat/safety band
	// whose high-urgency proposals always win outright.
	SafetyVetoBandID       = 2
	SafetyVetoUrgencyFloor = 8.0

	EnergyEmergencyFloor   = 10.0
	EnergyEmergencyBandID  = 1
	EnergyEmergencyReason  = "critical_hunger"

	DefaultTemperature = 2.0
	DefaultInertia      = 0.3
)

// Arbiter blends every band's proposals into a single selected action
// per tick, tracking which band most recently "won" so the softmax
// stage can apply inertia toward it.
type Arbiter struct {
	Temperature float64
	Inertia     float64

	rng *rand.Rand

	previousBand  int
	hasPrevious   bool
	dominantCount map[int]int
	totalSelections int
}

// New builds an Arbiter with the reference temperature and inertia.
func New(r *rand.Rand) *Arbiter {
	return &Arbiter{
		Temperature:   DefaultTemperature,
		Inertia:       DefaultInertia,
		rng:           r,
		dominantCount: make(map[int]int),
	}
}

// Selection is the arbiter's verdict: the chosen action, which band
// proposed it, and the full proposal record for downstream learning/
// memory updates.
type Selection struct {
	Action   band.Action
	BandID   int
	Proposal band.ActionProposal
}

// SelectAction runs the three-rule cascade over every band's proposals
// for the tick: a safety veto for any band-2 proposal carrying urgency
// above SafetyVetoUrgencyFloor, an energy-emergency override for a
// band-1 proposal tagged critical_hunger while energy is below
// EnergyEmergencyFloor, and otherwise a softmax-with-inertia blend of
// every candidate weighted by urgency.
func (a *Arbiter) SelectAction(proposals []band.ActionProposal, energy float64) Selection {
	if len(proposals) == 0 {
		return a.finish(Selection{Action: band.Stay, BandID: 0})
	}

	if v, ok := a.checkSafetyVeto(proposals); ok {
		return a.finish(v)
	}
	if v, ok := a.checkEnergyBudget(proposals, energy); ok {
		return a.finish(v)
	}
	return a.finish(a.softmaxSelect(proposals))
}

func (a *Arbiter) checkSafetyVeto(proposals []band.ActionProposal) (Selection, bool) {
	for _, p := range proposals {
		if p.BandID == SafetyVetoBandID && p.Urgency > SafetyVetoUrgencyFloor {
			return Selection{Action: p.Action, BandID: p.BandID, Proposal: p}, true
		}
	}
	return Selection{}, false
}

func (a *Arbiter) checkEnergyBudget(proposals []band.ActionProposal, energy float64) (Selection, bool) {
	if energy >= EnergyEmergencyFloor {
		return Selection{}, false
	}
	for _, p := range proposals {
		if p.BandID != EnergyEmergencyBandID {
			continue
		}
		if reason, ok := p.Params["reason"]; ok && reason == EnergyEmergencyReason {
			return Selection{Action: p.Action, BandID: p.BandID, Proposal: p}, true
		}
	}
	return Selection{}, false
}

// softmaxSelect weighs every proposal by urgency, applies an inertia
// bonus to whichever band won last tick (so the agent doesn't thrash
// between near-equally-urgent drives), converts to a softmax
// distribution at a.Temperature, and samples from it.
func (a *Arbiter) softmaxSelect(proposals []band.ActionProposal) Selection {
	weights := make([]float64, len(proposals))
	for i, p := range proposals {
		w := p.Urgency
		if a.hasPrevious && p.BandID == a.previousBand {
			w *= 1.0 + a.Inertia
		}
		weights[i] = w
	}
	probs := softmax(weights, a.Temperature)

	r := a.rng.Float64()
	var cumulative float64
	chosen := len(probs) - 1
	for i, pr := range probs {
		cumulative += pr
		if r <= cumulative {
			chosen = i
			break
		}
	}
	p := proposals[chosen]
	return Selection{Action: p.Action, BandID: p.BandID, Proposal: p}
}

// softmax converts a weight vector into a probability distribution at
// the given temperature, numerically stabilized against the max weight.
func softmax(weights []float64, temperature float64) []float64 {
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	maxW := weights[0]
	for _, w := range weights[1:] {
		if w > maxW {
			maxW = w
		}
	}
	exp := make([]float64, len(weights))
	var sum float64
	for i, w := range weights {
		exp[i] = math.Exp((w - maxW) / temperature)
		sum += exp[i]
	}
	if sum == 0 {
		uniform := 1.0 / float64(len(weights))
		for i := range exp {
			exp[i] = uniform
		}
		return exp
	}
	for i := range exp {
		exp[i] /= sum
	}
	return exp
}

func (a *Arbiter) finish(s Selection) Selection {
	a.previousBand = s.BandID
	a.hasPrevious = true
	a.dominantCount[s.BandID]++
	a.totalSelections++
	return s
}

// GetDominantBandDistribution reports, over every selection made since
// construction or the last ResetHistory, the fraction of ticks each
// band's proposal was the one selected.
func (a *Arbiter) GetDominantBandDistribution() map[int]float64 {
	out := make(map[int]float64, len(a.dominantCount))
	if a.totalSelections == 0 {
		return out
	}
	for band, n := range a.dominantCount {
		out[band] = float64(n) / float64(a.totalSelections)
	}
	return out
}

// ResetHistory clears the dominant-band tally and inertia state.
func (a *Arbiter) ResetHistory() {
	a.dominantCount = make(map[int]int)
	a.totalSelections = 0
	a.hasPrevious = false
}
