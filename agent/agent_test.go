package agent

import (
	"math/rand"
	"testing"

	"github.com/myopic/ecosim/arbiter"
	"github.com/myopic/ecosim/band"
	"github.com/myopic/ecosim/grid"
)

func newTestAgent() *BandedAgent {
	r := rand.New(rand.NewSource(1))
	bands := []band.Band{band.NewPhysiologicalBand(r)}
	return New(1, 5, 5, bands, arbiter.New(r))
}

func TestStepIsNoOpOnceDead(t *testing.T) {
	a := newTestAgent()
	a.State.Alive = false
	a.State.Energy = 0
	env := band.EnvState{
		NeighborhoodVegetation: grid.NewRaster(3, 3),
		NeighborhoodHydration:  grid.NewRaster(3, 3),
		NeighborhoodThreat:     grid.NewRaster(3, 3),
	}
	a.Step(env, 16, 16)
	if a.State.Tick != 0 {
		t.Fatalf("expected tick not to advance for a dead agent, got %d", a.State.Tick)
	}
}

func TestStepWrapsMovementToroidally(t *testing.T) {
	a := newTestAgent()
	a.State.X, a.State.Y = 0, 0
	env := band.EnvState{
		Vegetation:             0,
		Hydration:               0,
		Threat:                  0,
		NeighborhoodVegetation: grid.NewRaster(3, 3),
		NeighborhoodHydration:  grid.NewRaster(3, 3),
		NeighborhoodThreat:     grid.NewRaster(3, 3),
	}
	for i := 0; i < 60; i++ {
		a.Step(env, 16, 16)
		if !a.State.Alive {
			break
		}
	}
	if a.State.X < 0 || a.State.X >= 16 || a.State.Y < 0 || a.State.Y >= 16 {
		t.Fatalf("agent position (%d,%d) escaped the toroidal bounds", a.State.X, a.State.Y)
	}
}

func TestAgentForagesWithAbundantVegetation(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	bands := []band.Band{band.NewPhysiologicalBand(r)}
	a := New(1, 5, 5, bands, arbiter.New(r))
	a.State.Energy = 50

	env := band.EnvState{
		Vegetation:             0.9,
		NeighborhoodVegetation: grid.NewRaster(3, 3),
		NeighborhoodHydration:  grid.NewRaster(3, 3),
		NeighborhoodThreat:     grid.NewRaster(3, 3),
	}
	for i := 0; i < 80; i++ {
		a.Step(env, 16, 16)
	}
	trajectory := a.GetTrajectory()
	foraged := false
	for _, d := range trajectory {
		if d.Action == band.Forage {
			foraged = true
			break
		}
	}
	if !foraged {
		t.Fatalf("expected the agent to forage with abundant local vegetation and depleting hunger")
	}
}

func TestHandlePredationReducesEnergyAndCanKill(t *testing.T) {
	a := newTestAgent()
	a.State.Energy = 30
	a.HandlePredation()
	if a.State.TimesCaught != 1 {
		t.Fatalf("TimesCaught = %d, want 1", a.State.TimesCaught)
	}
	if a.State.Energy != 0 {
		t.Fatalf("Energy = %v, want 0 (clamped)", a.State.Energy)
	}
	if a.State.Alive {
		t.Fatalf("expected agent to die once energy reaches zero from predation")
	}
}

func TestDecisionHistoryIsBounded(t *testing.T) {
	a := newTestAgent()
	env := band.EnvState{
		NeighborhoodVegetation: grid.NewRaster(3, 3),
		NeighborhoodHydration:  grid.NewRaster(3, 3),
		NeighborhoodThreat:     grid.NewRaster(3, 3),
	}
	for i := 0; i < MaxDecisionHistory+100; i++ {
		a.Step(env, 32, 32)
		if !a.State.Alive {
			a.State.Alive = true
			a.State.Energy = MaxEnergy
		}
	}
	if len(a.GetTrajectory()) != MaxDecisionHistory {
		t.Fatalf("trajectory length = %d, want %d", len(a.GetTrajectory()), MaxDecisionHistory)
	}
}
