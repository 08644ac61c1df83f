package telemetry

import "testing"

func TestHallOfFameRanksByTicksAlive(t *testing.T) {
	hof := NewHallOfFame(2)
	hof.Consider(LifetimeStats{AgentID: 1, TicksAlive: 50})
	hof.Consider(LifetimeStats{AgentID: 2, TicksAlive: 200})
	hof.Consider(LifetimeStats{AgentID: 3, TicksAlive: 100})

	entries := hof.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2 (capacity-bounded)", len(entries))
	}
	if entries[0].AgentID != 2 {
		t.Errorf("top entry AgentID = %d, want 2 (longest survivor)", entries[0].AgentID)
	}
	if entries[1].AgentID != 3 {
		t.Errorf("second entry AgentID = %d, want 3", entries[1].AgentID)
	}
}

func TestHallOfFameMarshalJSON(t *testing.T) {
	hof := NewHallOfFame(5)
	hof.Consider(LifetimeStats{AgentID: 1, TicksAlive: 10, CauseOfDeath: "depletion"})

	data, err := hof.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty JSON output")
	}
}
