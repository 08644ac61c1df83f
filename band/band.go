// Package band implements the homeostatic band contract: a band perceives
// the environment and agent state, computes an urgency, proposes actions,
// and updates its own internal state and episodic memory from the
// outcome of whichever action the arbiter selected. Grounded on
// original_source's `band.py` `Band` abstract base class.
package band

import (
	"math/rand"
	"sort"

	"github.com/myopic/ecosim/grid"
)

// Action is one of the 17 verbs a band may propose. Only MOVE_*, STAY,
// FORAGE, DRINK, and REST are ever proposed by the physiological band in
// this repo; the rest are declared for forward compatibility with the
// higher bands (safety, social, cultural) the source material names but
// does not implement.
type Action int

const (
	MoveNorth Action = iota
	MoveSouth
	MoveEast
	MoveWest
	Stay
	Forage
	Drink
	Rest
	SeekShelter
	Flee
	GroupUp
	ShareResource
	Signal
	DemonstrateSkill
	Explore
	PracticeCraft
	PerformRitual
)

var actionNames = [...]string{
	"MOVE_NORTH", "MOVE_SOUTH", "MOVE_EAST", "MOVE_WEST", "STAY",
	"FORAGE", "DRINK", "REST", "SEEK_SHELTER", "FLEE", "GROUP_UP",
	"SHARE_RESOURCE", "SIGNAL", "DEMONSTRATE_SKILL", "EXPLORE",
	"PRACTICE_CRAFT", "PERFORM_RITUAL",
}

// String returns the verb's canonical name, matching the reference enum.
func (a Action) String() string {
	if int(a) < 0 || int(a) >= len(actionNames) {
		return "UNKNOWN"
	}
	return actionNames[a]
}

// EnvState is the slice of per-cell and neighborhood environment data a
// band needs to perceive, gathered by the caller from envview and the
// predator system's threat field.
type EnvState struct {
	Temperature float64
	Hydration   float64
	Vegetation  float64
	Threat      float64
	MovementCost float64

	NeighborhoodThreat      *grid.Raster
	NeighborhoodVegetation  *grid.Raster
	NeighborhoodHydration   *grid.Raster
}

// AgentStateView is the subset of agent state a band perceives.
type AgentStateView struct {
	Energy float64
	X, Y   int
	Tick   int
}

// Outcome is what update_state/compute_learning_signal/write_memory are
// given after an action has been executed against the world.
type Outcome struct {
	Tick         int
	EnergyDelta  float64
	NewEnergy    float64
	OldX, OldY   int
	NewX, NewY   int
	DominantBand int
}

// ActionProposal is one candidate action a band offers to the arbiter.
type ActionProposal struct {
	Action        Action
	Urgency       float64
	ExpectedValue float64
	BandID        int
	Params        map[string]interface{}
}

// BandState is the band-generic portion of a band's internal state:
// current urgency, gain (the per-band amplification factor adapted by
// UpdateGain), and the frustration accumulator that drives it.
type BandState struct {
	Urgency                 float64
	Gain                    float64
	FrustrationAccumulator  float64
}

// MemoryEntry is one episodic memory record, compressed to scalar fields
// only (matching the reference's "keep only int/float/str/bool" filter).
type MemoryEntry struct {
	BandID            int
	Tick              int
	PerceptionSummary map[string]float64
	Action            string
	OutcomeSummary    map[string]float64
	Affect            float64
	DominantBand      int
}

// Band is the contract every drive/need band implements: perceive the
// world, compute how urgently it wants to act, propose candidate
// actions, then (after the arbiter picks one and it executes) update
// internal state, compute a learning signal, write episodic memory, and
// adapt gain. Grounded on original_source's `band.py` abstract base.
type Band interface {
	ID() int
	Perceive(env EnvState, agent AgentStateView) Perception
	ComputeUrgency(p Perception) float64
	ProposeActions(p Perception) []ActionProposal
	UpdateState(p Perception, action Action, outcome Outcome)
	ComputeLearningSignal(p Perception, action Action, outcome Outcome) float64
	WriteMemory(p Perception, action Action, outcome Outcome, affect float64)
	UpdateGain()
	State() BandState
}

// MaxMemoryEntries bounds episodic memory; beyond this, a uniform random
// subset is kept, oldest-preserving order.
const MaxMemoryEntries = 1000

// Memory is the bounded episodic memory shared by every band
// implementation, mirroring Band._decay_memory/query_memory.
type Memory struct {
	entries []MemoryEntry
	rng     *rand.Rand
}

// NewMemory builds an empty memory buffer seeded from r.
func NewMemory(r *rand.Rand) *Memory {
	return &Memory{rng: r}
}

// Write appends an entry and thins the buffer back to MaxMemoryEntries if
// it overflowed, keeping a uniform-random (not most-recent) subset.
func (m *Memory) Write(e MemoryEntry) {
	m.entries = append(m.entries, e)
	if len(m.entries) <= MaxMemoryEntries {
		return
	}
	idx := m.rng.Perm(len(m.entries))[:MaxMemoryEntries]
	sort.Ints(idx)
	kept := make([]MemoryEntry, len(idx))
	for i, j := range idx {
		kept[i] = m.entries[j]
	}
	m.entries = kept
}

// Entries returns the current memory buffer.
func (m *Memory) Entries() []MemoryEntry { return m.entries }

// Len returns the number of stored entries.
func (m *Memory) Len() int { return len(m.entries) }

// Query returns up to k entries ranked by relevanceFn, matching
// Band.query_memory: a uniform random sample when every memory scores
// zero relevance, otherwise the k highest-scoring entries (ties broken by
// original order).
func (m *Memory) Query(k int, relevanceFn func(MemoryEntry) float64) []MemoryEntry {
	if len(m.entries) == 0 {
		return nil
	}
	if k > len(m.entries) {
		k = len(m.entries)
	}
	scores := make([]float64, len(m.entries))
	var total float64
	for i, e := range m.entries {
		scores[i] = relevanceFn(e)
		total += scores[i]
	}
	if total == 0 {
		idx := m.rng.Perm(len(m.entries))[:k]
		out := make([]MemoryEntry, k)
		for i, j := range idx {
			out[i] = m.entries[j]
		}
		return out
	}
	order := make([]int, len(m.entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return scores[order[i]] < scores[order[j]] })
	top := order[len(order)-k:]
	out := make([]MemoryEntry, k)
	for i, j := range top {
		out[i] = m.entries[j]
	}
	return out
}
