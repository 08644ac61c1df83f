package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/myopic/ecosim/runstore"
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

func fixedClock() Clock {
	fixed := time.Unix(1700000000, 0)
	return func() time.Time { return fixed }
}

func TestRunProducesCompleteArtifactSet(t *testing.T) {
	s := loadSmallScenario(t)
	dir := t.TempDir()

	runDir, err := Run(s, Config{Ticks: 3, OutDir: dir, Label: "test", Clock: fixedClock()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	l := runstore.NewLayout(runDir)
	for _, p := range []string{l.Manifest(), l.Scenario(), l.FieldStats(), l.Events()} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected artifact %s to exist: %v", p, err)
		}
	}

	m, err := runstore.ReadManifest(l)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if m.Ticks != 3 {
		t.Fatalf("manifest ticks = %d, want 3", m.Ticks)
	}
	if m.RuntimeS < 0 {
		t.Fatalf("manifest runtime_s = %v, want >= 0", m.RuntimeS)
	}

	events, err := runstore.ReadEvents(l)
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3 (one per tick)", len(events))
	}
}

func TestRunIsDeterministicForTheSameScenario(t *testing.T) {
	s1 := loadSmallScenario(t)
	s2 := loadSmallScenario(t)
	dir := t.TempDir()

	run1, err := Run(s1, Config{Ticks: 5, OutDir: dir, Label: "a", Clock: fixedClock()})
	if err != nil {
		t.Fatalf("Run 1: %v", err)
	}
	run2, err := Run(s2, Config{Ticks: 5, OutDir: dir, Label: "b", Clock: fixedClock()})
	if err != nil {
		t.Fatalf("Run 2: %v", err)
	}

	l1 := runstore.NewLayout(run1)
	l2 := runstore.NewLayout(run2)
	m1, err := runstore.ReadManifest(l1)
	if err != nil {
		t.Fatalf("ReadManifest 1: %v", err)
	}
	m2, err := runstore.ReadManifest(l2)
	if err != nil {
		t.Fatalf("ReadManifest 2: %v", err)
	}
	if m1.ScenarioHash != m2.ScenarioHash {
		t.Fatalf("scenario hashes differ for identical scenarios: %s vs %s", m1.ScenarioHash, m2.ScenarioHash)
	}

	d1, err := runstore.ReadDeltas(l1.Deltas())
	if err != nil {
		t.Fatalf("ReadDeltas 1: %v", err)
	}
	d2, err := runstore.ReadDeltas(l2.Deltas())
	if err != nil {
		t.Fatalf("ReadDeltas 2: %v", err)
	}
	if len(d1) != len(d2) {
		t.Fatalf("delta row counts differ: %d vs %d", len(d1), len(d2))
	}
	for i := range d1 {
		if d1[i] != d2[i] {
			t.Fatalf("delta row %d differs: %+v vs %+v", i, d1[i], d2[i])
		}
	}
}

func TestRunWritesChecksumsForEveryArtifact(t *testing.T) {
	s := loadSmallScenario(t)
	dir := t.TempDir()

	runDir, err := Run(s, Config{Ticks: 2, OutDir: dir, Label: "chk", Clock: fixedClock()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	l := runstore.NewLayout(runDir)

	for _, p := range []string{l.Manifest(), l.Scenario(), l.FieldStats(), l.Hydrology(), l.Structure(), l.Events()} {
		sum := filepath.Join(l.ChecksumsDir(), filepath.Base(p)+".blake3")
		if _, err := os.Stat(sum); err != nil {
			t.Fatalf("expected checksum file %s to exist: %v", sum, err)
		}
		if err := runstore.VerifyChecksum(l, p); err != nil {
			t.Fatalf("VerifyChecksum(%s): %v", p, err)
		}
	}
}
