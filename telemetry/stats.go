package telemetry

import (
	"log/slog"
	"sort"
)

// WindowStats holds aggregated agent-population statistics for one
// reporting window (a fixed span of ticks).
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`

	AliveCount     int `csv:"alive"`
	StarvedDeaths  int `csv:"starved_deaths"`
	PredatedDeaths int `csv:"predated_deaths"`

	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	Band1Fraction float64 `csv:"band1_fraction"`

	ForageCount int `csv:"forage_count"`
	DrinkCount  int `csv:"drink_count"`
	RestCount   int `csv:"rest_count"`
	MoveCount   int `csv:"move_count"`
	StayCount   int `csv:"stay_count"`
	FleeCount   int `csv:"flee_count"`
}

// Percentile calculates the p-th percentile (p in [0,1]) of a sorted
// slice via linear interpolation. Returns 0 for an empty slice.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeEnergyStats calculates mean and the 10th/50th/90th percentiles
// of a set of agent energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("alive", s.AliveCount),
		slog.Int("starved_deaths", s.StarvedDeaths),
		slog.Int("predated_deaths", s.PredatedDeaths),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
		slog.Float64("band1_fraction", s.Band1Fraction),
		slog.Int("forage_count", s.ForageCount),
		slog.Int("drink_count", s.DrinkCount),
		slog.Int("rest_count", s.RestCount),
		slog.Int("move_count", s.MoveCount),
		slog.Int("stay_count", s.StayCount),
		slog.Int("flee_count", s.FleeCount),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("window_stats", "stats", s)
}
