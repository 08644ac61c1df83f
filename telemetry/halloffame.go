package telemetry

import (
	"encoding/json"
	"sort"

	"github.com/myopic/ecosim/ecoerr"
)

// HallEntry ranks one agent's end-of-run record. The teacher's
// HallEntry carries neural.BrainWeights and reproduction-fitness
// weighting for tournament-sampled reseeding of a crashed population;
// this module's agents are homeostatic and never reproduce or carry
// brain weights, so those fields and the Sample()/tournament-selection
// machinery built on them are dropped (see DESIGN.md).
type HallEntry struct {
	AgentID      int     `json:"agent_id"`
	TicksAlive   int     `json:"ticks_alive"`
	PeakEnergy   float64 `json:"peak_energy"`
	ForageCount  int     `json:"forage_count"`
	TimesCaught  int     `json:"times_caught"`
	CauseOfDeath string  `json:"cause_of_death"`
}

// HallOfFame keeps the top-N longest-surviving agents of a run, sorted
// descending by ticks survived, mirroring the teacher's sorted-insert
// HallOfFame without its per-archetype halls or tournament sampling.
type HallOfFame struct {
	entries []HallEntry
	maxSize int
}

// NewHallOfFame creates a hall of fame with the given capacity.
func NewHallOfFame(maxSize int) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	return &HallOfFame{maxSize: maxSize}
}

// Consider evaluates a dead or surviving agent's lifetime stats for
// entry, ranked by ticks survived with peak energy as a tiebreaker.
func (hof *HallOfFame) Consider(s LifetimeStats) {
	entry := HallEntry{
		AgentID:      s.AgentID,
		TicksAlive:   s.TicksAlive,
		PeakEnergy:   s.PeakEnergy,
		ForageCount:  s.ForageCount,
		TimesCaught:  s.TimesCaught,
		CauseOfDeath: s.CauseOfDeath,
	}

	idx := sort.Search(len(hof.entries), func(i int) bool {
		if hof.entries[i].TicksAlive != entry.TicksAlive {
			return hof.entries[i].TicksAlive < entry.TicksAlive
		}
		return hof.entries[i].PeakEnergy < entry.PeakEnergy
	})

	if len(hof.entries) >= hof.maxSize && idx >= hof.maxSize {
		return
	}

	hof.entries = append(hof.entries, HallEntry{})
	copy(hof.entries[idx+1:], hof.entries[idx:])
	hof.entries[idx] = entry

	if len(hof.entries) > hof.maxSize {
		hof.entries = hof.entries[:hof.maxSize]
	}
}

// Entries returns the ranked entries, highest ticks-alive first.
func (hof *HallOfFame) Entries() []HallEntry {
	return hof.entries
}

// MarshalJSON serializes the hall of fame's ranked entries.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	const op = "telemetry.HallOfFame.MarshalJSON"
	data, err := json.MarshalIndent(hof.entries, "", "  ")
	if err != nil {
		return nil, ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	return data, nil
}
