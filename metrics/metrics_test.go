package metrics

import (
	"math"
	"testing"

	"github.com/myopic/ecosim/grid"
	"github.com/myopic/ecosim/initgen"
	"github.com/myopic/ecosim/registry"
	"github.com/myopic/ecosim/rng"
	"github.com/myopic/ecosim/scenario"
)

func loadDefault(t *testing.T) *scenario.Scenario {
	t.Helper()
	s, err := scenario.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestFieldStatsUniformFieldHasZeroVariance(t *testing.T) {
	s := loadDefault(t)
	reg := registry.Build(s)
	tIdx := reg.Index["temperature"]

	tensor := grid.NewTensor(s.World.Height, s.World.Width, reg.Len())
	for y := 0; y < tensor.H; y++ {
		for x := 0; x < tensor.W; x++ {
			tensor.Set(x, y, tIdx, 0.42)
		}
	}

	stats := FieldStats(tensor, reg)
	for _, fs := range stats {
		if fs.Field != "temperature" {
			continue
		}
		if math.Abs(fs.Mean-0.42) > 1e-6 {
			t.Fatalf("mean = %v, want 0.42", fs.Mean)
		}
		if fs.Var > 1e-9 {
			t.Fatalf("var = %v, want ~0 for a uniform field", fs.Var)
		}
	}
}

func TestSpatialCoherenceUniformFieldIsDegenerate(t *testing.T) {
	r := grid.NewRaster(8, 8)
	for i := range r.Data {
		r.Data[i] = 0.5
	}
	// A perfectly uniform field has zero variance; the +1e-8 floor in the
	// denominator keeps this finite rather than NaN.
	got := SpatialCoherence(r)
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("SpatialCoherence on a uniform field produced %v", got)
	}
}

func TestSpatialCoherenceChessboardIsNegative(t *testing.T) {
	r := grid.NewRaster(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if (x+y)%2 == 0 {
				r.Set(x, y, 1.0)
			} else {
				r.Set(x, y, 0.0)
			}
		}
	}
	got := SpatialCoherence(r)
	if got >= 0 {
		t.Fatalf("SpatialCoherence on a checkerboard = %v, want negative (every neighbor is anti-correlated)", got)
	}
}

func TestHydrologyReflectsConfiguredPercentile(t *testing.T) {
	s := loadDefault(t)
	s.World.Height, s.World.Width = 32, 32
	reg := registry.Build(s)
	part := rng.New(s.Randomness.Seed, s.Randomness.Partitions)

	_, aux := initgen.Assemble(s, reg, part)
	summary := Hydrology(aux, s.WaterProfile)

	if summary.FlowThresholds != s.WaterProfile.RiverPercentile {
		t.Fatalf("FlowThresholds = %v, want %v", summary.FlowThresholds, s.WaterProfile.RiverPercentile)
	}
	if summary.LakeArea < 0 || summary.RiverLength < 0 {
		t.Fatalf("expected non-negative counts, got %+v", summary)
	}
}
