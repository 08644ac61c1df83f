package hydrator

import (
	"testing"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/myopic/ecosim/engine"
	"github.com/myopic/ecosim/grid"
	"github.com/myopic/ecosim/initgen"
	"github.com/myopic/ecosim/kernels"
	"github.com/myopic/ecosim/registry"
	"github.com/myopic/ecosim/rng"
	"github.com/myopic/ecosim/runstore"
	"github.com/myopic/ecosim/scenario"
)

// reconstructViaKernels independently replays the tick loop straight
// through kernels.Step, as a ground truth to compare the delta-journal
// based Hydrate reconstruction against.
func reconstructViaKernels(s *scenario.Scenario, reg *registry.Registry, part *rng.Partitioner, ticks int) (*grid.Tensor, *initgen.Aux, error) {
	tensor, aux := initgen.Assemble(s, reg, part)
	noise := opensimplex.New(part.Seed(rng.KernelNoise))
	for t := 0; t < ticks; t++ {
		tensor = kernels.Step(tensor, s, reg, noise, t)
	}
	return tensor, aux, nil
}

func loadSmallScenario(t *testing.T) *scenario.Scenario {
	t.Helper()
	s, err := scenario.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s.World.Width, s.World.Height = 16, 16
	return s
}

func fixedClock() engine.Clock {
	fixed := time.Unix(1700000000, 0)
	return func() time.Time { return fixed }
}

func TestHydrateMatchesEngineTensorAtTick(t *testing.T) {
	s := loadSmallScenario(t)
	dir := t.TempDir()

	runDir, err := engine.Run(s, engine.Config{Ticks: 6, OutDir: dir, Label: "hyd", Clock: fixedClock()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	l := runstore.NewLayout(runDir)

	reg := registry.Build(s)
	part := rng.New(s.Randomness.Seed, s.Randomness.Partitions)
	tensor, _, err := reconstructViaKernels(s, reg, part, 6)
	if err != nil {
		t.Fatalf("reconstructViaKernels: %v", err)
	}

	hydrated, _, err := Hydrate(l, 5)
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}

	for i := range tensor.Data {
		if tensor.Data[i] != hydrated.Data[i] {
			t.Fatalf("hydrated tensor diverges from live tensor at flat index %d: %v != %v", i, hydrated.Data[i], tensor.Data[i])
		}
	}
}

func TestHydrateDetectsTamperedScenario(t *testing.T) {
	s := loadSmallScenario(t)
	dir := t.TempDir()

	runDir, err := engine.Run(s, engine.Config{Ticks: 2, OutDir: dir, Label: "tamper", Clock: fixedClock()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	l := runstore.NewLayout(runDir)

	tampered, err := scenario.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tampered.World.Width, tampered.World.Height = 16, 16
	tampered.Randomness.Seed = s.Randomness.Seed + 999
	if err := runstore.WriteScenario(l, tampered, "not-the-real-hash"); err != nil {
		t.Fatalf("WriteScenario: %v", err)
	}

	if _, _, err := Hydrate(l, 1); err == nil {
		t.Fatalf("expected Hydrate to reject a tampered scenario snapshot")
	}
}
