// Package metrics computes the per-tick summary statistics recorded
// alongside a run's delta journal: per-field mean/variance, hydrology
// summary counts, and a spatial coherence coefficient.
package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/myopic/ecosim/grid"
	"github.com/myopic/ecosim/initgen"
	"github.com/myopic/ecosim/registry"
	"github.com/myopic/ecosim/scenario"
)

// FieldStat is one field's mean and variance at a tick.
type FieldStat struct {
	Field string
	Mean  float64
	Var   float64
}

// FieldStats returns mean/variance for every non-derived field in the
// tensor, in registry order. Variance is population variance (gonum's
// stat.Variance is sample variance with Bessel's correction, but N is the
// full grid here, so the reference's numpy ".var()" -- population
// variance -- is matched by passing weights of 1 and adjusting).
func FieldStats(t *grid.Tensor, reg *registry.Registry) []FieldStat {
	out := make([]FieldStat, 0, reg.Len())
	n := float64(t.H * t.W)
	for i, name := range reg.Names {
		if reg.Derived[i] {
			continue
		}
		vals := make([]float64, 0, t.H*t.W)
		for y := 0; y < t.H; y++ {
			for x := 0; x < t.W; x++ {
				vals = append(vals, float64(t.At(x, y, i)))
			}
		}
		mean := stat.Mean(vals, nil)
		sampleVar := stat.Variance(vals, nil)
		// Convert gonum's (N-1)-denominator sample variance to the
		// population variance numpy's .var() computes.
		popVar := sampleVar * (n - 1) / n
		out = append(out, FieldStat{Field: name, Mean: mean, Var: popVar})
	}
	return out
}

// SpatialCoherence computes a 4-neighbor Moran-like autocorrelation
// coefficient for one field: the mean product of a cell's deviation from
// the field mean with its toroidal north/south/east/west neighbors'
// deviations, normalized by the field variance.
func SpatialCoherence(r *grid.Raster) float64 {
	h, w := r.H, r.W
	var sum, sqSum float64
	n := float64(h * w)
	for _, v := range r.Data {
		x := float64(v)
		sum += x
		sqSum += x * x
	}
	mean := sum / n
	variance := sqSum/n - mean*mean + 1e-8

	var coh float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := float64(r.At(x, y)) - mean
			west := float64(r.At(grid.WrapX(x-1, w), y)) - mean
			east := float64(r.At(grid.WrapX(x+1, w), y)) - mean
			north := float64(r.At(x, grid.WrapY(y-1, h))) - mean
			south := float64(r.At(x, grid.WrapY(y+1, h))) - mean
			coh += c*west + c*east + c*north + c*south
		}
	}
	coh /= 4.0 * n
	return coh / variance
}

// HydrologySummary is one tick's hydrology counters.
type HydrologySummary struct {
	RiverLength    int
	LakeArea       int
	FlowThresholds float64
}

// Hydrology computes the run's hydrology summary from the (static) flow
// accumulation and lake mask auxiliary rasters plus the water profile's
// configured river percentile.
func Hydrology(aux *initgen.Aux, wp scenario.WaterProfile) HydrologySummary {
	thresh := percentileOf(aux.FlowAcc, 100.0*(1.0-wp.RiverPercentile))
	riverLen := 0
	for _, v := range aux.FlowAcc.Data {
		if float64(v) >= thresh {
			riverLen++
		}
	}
	return HydrologySummary{
		RiverLength:    riverLen,
		LakeArea:       aux.LakeMask.Count(),
		FlowThresholds: wp.RiverPercentile,
	}
}

// percentileOf computes the numpy-style linear-interpolation percentile p
// (0-100) of a raster's values.
func percentileOf(r *grid.Raster, p float64) float64 {
	return initgen.Percentile(r.Data, p)
}

// AgentSample is the minimal per-agent slice Population needs, kept
// independent of the agent package's concrete types to avoid a import
// cycle (agent does not depend on metrics, metrics does not depend on
// agent).
type AgentSample struct {
	Alive        bool
	Energy       float64
	DominantBand int
}

// PopulationSnapshot is one tick's agent-population summary: how many
// are alive, their mean energy, and which band dominated arbitration
// most often across the living population.
type PopulationSnapshot struct {
	Tick                 int
	AliveCount           int
	MeanEnergy           float64
	DominantBandFraction map[int]float64
}

// Population summarizes a tick's agent population from per-agent
// samples, matching the "dominant_band" testable property computed over
// whichever band most often won arbitration for each living agent.
func Population(tick int, samples []AgentSample) PopulationSnapshot {
	snap := PopulationSnapshot{Tick: tick, DominantBandFraction: make(map[int]float64)}
	var energySum float64
	counts := make(map[int]int)
	for _, s := range samples {
		if !s.Alive {
			continue
		}
		snap.AliveCount++
		energySum += s.Energy
		counts[s.DominantBand]++
	}
	if snap.AliveCount > 0 {
		snap.MeanEnergy = energySum / float64(snap.AliveCount)
		for band, n := range counts {
			snap.DominantBandFraction[band] = float64(n) / float64(snap.AliveCount)
		}
	}
	return snap
}
