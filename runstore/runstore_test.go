package runstore

import (
	"path/filepath"
	"testing"

	"github.com/myopic/ecosim/scenario"
)

func TestLayoutMakeDirsAndManifestRoundTrip(t *testing.T) {
	root := t.TempDir()
	l := NewLayout(root)
	if err := l.MakeDirs(); err != nil {
		t.Fatalf("MakeDirs: %v", err)
	}

	m := &Manifest{
		SchemaVersion:  "1",
		ScenarioHash:   "deadbeef",
		SeedPartitions: map[string]int64{"terrain_elevation": 1},
		Created:        1234,
		Ticks:          10,
		World:          scenario.World{Width: 8, Height: 8},
		Label:          "test-run",
	}
	if err := WriteManifest(l, m); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	got, err := ReadManifest(l)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if got.ScenarioHash != m.ScenarioHash || got.Ticks != m.Ticks || got.Label != m.Label {
		t.Fatalf("manifest round trip mismatch: got %+v, want %+v", got, m)
	}
}

func TestScenarioSnapshotRoundTrip(t *testing.T) {
	root := t.TempDir()
	l := NewLayout(root)
	if err := l.MakeDirs(); err != nil {
		t.Fatalf("MakeDirs: %v", err)
	}

	s, err := scenario.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	const hash = "abc123"
	if err := WriteScenario(l, s, hash); err != nil {
		t.Fatalf("WriteScenario: %v", err)
	}
	got, gotHash, err := ReadScenario(l)
	if err != nil {
		t.Fatalf("ReadScenario: %v", err)
	}
	if gotHash != hash {
		t.Fatalf("scenario hash = %q, want %q", gotHash, hash)
	}
	if got.World.Width != s.World.Width || got.World.Height != s.World.Height {
		t.Fatalf("scenario world mismatch after round trip: %+v vs %+v", got.World, s.World)
	}
}

func TestDeltasParquetRoundTrip(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "deltas.parquet")

	rows := []DeltaRow{
		{Tick: 0, X: 1, Y: 2, FieldID: 0, Delta: 0.125},
		{Tick: 1, X: 3, Y: 4, FieldID: 1, Delta: -0.5},
	}
	if err := WriteDeltas(path, rows); err != nil {
		t.Fatalf("WriteDeltas: %v", err)
	}
	got, err := ReadDeltas(path)
	if err != nil {
		t.Fatalf("ReadDeltas: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("got %d rows, want %d", len(got), len(rows))
	}
	for i := range rows {
		if got[i] != rows[i] {
			t.Fatalf("row %d = %+v, want %+v", i, got[i], rows[i])
		}
	}
}

func TestFieldStatsParquetRoundTrip(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "field_stats.parquet")

	rows := []FieldStatsRow{
		{Tick: 0, Field: "temperature", Mean: 0.5, Var: 0.01},
		{Tick: 1, Field: "hydration", Mean: 0.6, Var: 0.02},
	}
	if err := WriteFieldStats(path, rows); err != nil {
		t.Fatalf("WriteFieldStats: %v", err)
	}
	got, err := ReadFieldStats(path)
	if err != nil {
		t.Fatalf("ReadFieldStats: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("got %d rows, want %d", len(got), len(rows))
	}
}

func TestEventWriterReaderRoundTrip(t *testing.T) {
	root := t.TempDir()
	l := NewLayout(root)
	if err := l.MakeDirs(); err != nil {
		t.Fatalf("MakeDirs: %v", err)
	}

	ew, err := OpenEventWriter(l)
	if err != nil {
		t.Fatalf("OpenEventWriter: %v", err)
	}
	events := []Event{
		{Tick: 0, Kind: "tick_complete", Payload: map[string]interface{}{"n_deltas": 3}},
		{Tick: 1, Kind: "lake_formed"},
	}
	for _, e := range events {
		if err := ew.Write(e); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := ew.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := ReadEvents(l)
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(got) != len(events) {
		t.Fatalf("got %d events, want %d", len(got), len(events))
	}
	if got[0].Kind != "tick_complete" || got[1].Kind != "lake_formed" {
		t.Fatalf("events mismatch: %+v", got)
	}
}

func TestChecksumWriteAndVerify(t *testing.T) {
	root := t.TempDir()
	l := NewLayout(root)
	if err := l.MakeDirs(); err != nil {
		t.Fatalf("MakeDirs: %v", err)
	}

	m := &Manifest{SchemaVersion: "1", ScenarioHash: "x", Ticks: 1}
	if err := WriteManifest(l, m); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	if err := WriteChecksum(l, l.Manifest()); err != nil {
		t.Fatalf("WriteChecksum: %v", err)
	}
	if err := VerifyChecksum(l, l.Manifest()); err != nil {
		t.Fatalf("VerifyChecksum: %v", err)
	}

	// Tampering with the manifest after checksumming must be detected.
	m.Ticks = 999
	if err := WriteManifest(l, m); err != nil {
		t.Fatalf("WriteManifest (tamper): %v", err)
	}
	if err := VerifyChecksum(l, l.Manifest()); err == nil {
		t.Fatalf("expected VerifyChecksum to fail after manifest was rewritten")
	}
}
