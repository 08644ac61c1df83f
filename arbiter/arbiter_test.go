package arbiter

import (
	"math/rand"
	"testing"

	"github.com/myopic/ecosim/band"
)

func TestSafetyVetoOverridesEverything(t *testing.T) {
	a := New(rand.New(rand.NewSource(1)))
	proposals := []band.ActionProposal{
		{Action: band.Forage, Urgency: 100, BandID: 1},
		{Action: band.Flee, Urgency: 9.0, BandID: SafetyVetoBandID},
	}
	sel := a.SelectAction(proposals, 80)
	if sel.Action != band.Flee || sel.BandID != SafetyVetoBandID {
		t.Fatalf("expected the safety veto to win, got %+v", sel)
	}
}

func TestEnergyEmergencyOverridesSoftmax(t *testing.T) {
	a := New(rand.New(rand.NewSource(1)))
	proposals := []band.ActionProposal{
		{Action: band.Rest, Urgency: 1.0, BandID: 1},
		{
			Action:  band.MoveEast,
			Urgency: 0.5,
			BandID:  EnergyEmergencyBandID,
			Params:  map[string]interface{}{"reason": "critical_hunger"},
		},
	}
	sel := a.SelectAction(proposals, 5.0)
	if sel.Action != band.MoveEast {
		t.Fatalf("expected the critical_hunger proposal to win under low energy, got %+v", sel)
	}
}

func TestEnergyEmergencyDoesNotFireAboveFloor(t *testing.T) {
	a := New(rand.New(rand.NewSource(1)))
	proposals := []band.ActionProposal{
		{
			Action:  band.MoveEast,
			Urgency: 0.5,
			BandID:  EnergyEmergencyBandID,
			Params:  map[string]interface{}{"reason": "critical_hunger"},
		},
	}
	_, fired := a.checkEnergyBudget(proposals, 50.0)
	if fired {
		t.Fatalf("expected the energy-emergency rule not to fire above the energy floor")
	}
}

func TestSoftmaxPrefersHigherUrgency(t *testing.T) {
	a := New(rand.New(rand.NewSource(7)))
	proposals := []band.ActionProposal{
		{Action: band.Rest, Urgency: 0.01, BandID: 3},
		{Action: band.Forage, Urgency: 50.0, BandID: 1},
	}
	counts := map[band.Action]int{}
	for i := 0; i < 200; i++ {
		sel := a.softmaxSelect(proposals)
		counts[sel.Action]++
	}
	if counts[band.Forage] <= counts[band.Rest] {
		t.Fatalf("expected the far more urgent proposal to dominate, got %v", counts)
	}
}

func TestDominantBandDistributionSumsToOne(t *testing.T) {
	a := New(rand.New(rand.NewSource(1)))
	proposals := []band.ActionProposal{
		{Action: band.Forage, Urgency: 5, BandID: 1},
	}
	for i := 0; i < 10; i++ {
		a.SelectAction(proposals, 80)
	}
	dist := a.GetDominantBandDistribution()
	if dist[1] != 1.0 {
		t.Fatalf("expected band 1 to dominate 100%% of selections, got %v", dist)
	}
}

func TestResetHistoryClearsDistribution(t *testing.T) {
	a := New(rand.New(rand.NewSource(1)))
	proposals := []band.ActionProposal{{Action: band.Forage, Urgency: 5, BandID: 1}}
	a.SelectAction(proposals, 80)
	a.ResetHistory()
	dist := a.GetDominantBandDistribution()
	if len(dist) != 0 {
		t.Fatalf("expected empty distribution after ResetHistory, got %v", dist)
	}
}

func TestNoProposalsDefaultsToStay(t *testing.T) {
	a := New(rand.New(rand.NewSource(1)))
	sel := a.SelectAction(nil, 80)
	if sel.Action != band.Stay {
		t.Fatalf("expected STAY with no proposals, got %v", sel.Action)
	}
}
