package envview

import (
	"testing"
	"time"

	"github.com/myopic/ecosim/engine"
	"github.com/myopic/ecosim/scenario"
)

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

func runFixture(t *testing.T) string {
	t.Helper()
	s := loadSmallScenario(t)
	dir := t.TempDir()
	runDir, err := engine.Run(s, engine.Config{Ticks: 4, OutDir: dir, Label: "view", Clock: fixedClock()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return runDir
}

func TestGetCellBeforeLoadTickFails(t *testing.T) {
	runDir := runFixture(t)
	g, err := New(runDir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := g.GetCell(0, 0, "temperature"); err == nil {
		t.Fatalf("expected GetCell to fail before LoadTick")
	}
}

func TestGetCellUnknownFieldFails(t *testing.T) {
	runDir := runFixture(t)
	g, err := New(runDir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.LoadTick(2); err != nil {
		t.Fatalf("LoadTick: %v", err)
	}
	if _, err := g.GetCell(0, 0, "not_a_field"); err == nil {
		t.Fatalf("expected GetCell to fail for an unknown field name")
	}
}

func TestGetAllFieldsAtMatchesGetCell(t *testing.T) {
	runDir := runFixture(t)
	g, err := New(runDir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.LoadTick(3); err != nil {
		t.Fatalf("LoadTick: %v", err)
	}
	all, err := g.GetAllFieldsAt(5, 5)
	if err != nil {
		t.Fatalf("GetAllFieldsAt: %v", err)
	}
	for name, v := range all {
		cell, err := g.GetCell(5, 5, name)
		if err != nil {
			t.Fatalf("GetCell(%s): %v", name, err)
		}
		if cell != v {
			t.Fatalf("field %s mismatch: GetAllFieldsAt=%v GetCell=%v", name, v, cell)
		}
	}
}

func TestGetNeighborhoodClampsAtEdge(t *testing.T) {
	runDir := runFixture(t)
	g, err := New(runDir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.LoadTick(1); err != nil {
		t.Fatalf("LoadTick: %v", err)
	}
	nbh, err := g.GetNeighborhood(0, 0, 2)
	if err != nil {
		t.Fatalf("GetNeighborhood: %v", err)
	}
	for name, r := range nbh {
		if r.H > 3 || r.W > 3 {
			t.Fatalf("field %s neighborhood %dx%d exceeds expected clamp at the corner", name, r.H, r.W)
		}
	}
}
