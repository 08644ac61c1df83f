package telemetry

import (
	"github.com/myopic/ecosim/band"
	"github.com/myopic/ecosim/metrics"
)

// Collector accumulates per-tick events within a reporting window and
// produces a WindowStats on Flush, mirroring the teacher's
// event-accumulate-then-flush collector shape.
type Collector struct {
	windowStartTick int32

	starvedDeaths  int
	predatedDeaths int
	actionCounts   map[band.Action]int
}

// NewCollector creates an empty collector starting at window tick 0.
func NewCollector() *Collector {
	return &Collector{actionCounts: make(map[band.Action]int)}
}

// RecordAction tallies one agent's chosen action for the current window.
func (c *Collector) RecordAction(a band.Action) {
	c.actionCounts[a]++
}

// RecordStarvation records a death by energy depletion.
func (c *Collector) RecordStarvation() {
	c.starvedDeaths++
}

// RecordPredation records a death by predator catch.
func (c *Collector) RecordPredation() {
	c.predatedDeaths++
}

// Flush produces a WindowStats from the accumulated counters plus the
// caller-supplied population snapshot and living-agent energy sample,
// then resets the counters for the next window.
func (c *Collector) Flush(currentTick int32, snap metrics.PopulationSnapshot, energies []float64) WindowStats {
	mean, p10, p50, p90 := ComputeEnergyStats(energies)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		AliveCount:     snap.AliveCount,
		StarvedDeaths:  c.starvedDeaths,
		PredatedDeaths: c.predatedDeaths,

		EnergyMean: mean,
		EnergyP10:  p10,
		EnergyP50:  p50,
		EnergyP90:  p90,

		Band1Fraction: snap.DominantBandFraction[1],

		ForageCount: c.actionCounts[band.Forage],
		DrinkCount:  c.actionCounts[band.Drink],
		RestCount:   c.actionCounts[band.Rest],
		MoveCount:   c.moveCount(),
		StayCount:   c.actionCounts[band.Stay],
		FleeCount:   c.actionCounts[band.Flee],
	}

	c.windowStartTick = currentTick
	c.starvedDeaths = 0
	c.predatedDeaths = 0
	c.actionCounts = make(map[band.Action]int)

	return stats
}

func (c *Collector) moveCount() int {
	return c.actionCounts[band.MoveNorth] + c.actionCounts[band.MoveSouth] +
		c.actionCounts[band.MoveEast] + c.actionCounts[band.MoveWest]
}
