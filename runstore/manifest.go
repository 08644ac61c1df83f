// Package runstore reads and writes the run directory artifact set:
// manifest, frozen scenario snapshot, delta journal, metrics tables, event
// log, and per-file checksums.
package runstore

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/myopic/ecosim/ecoerr"
	"github.com/myopic/ecosim/scenario"
)

// Manifest is the run-scoped metadata document written at manifest.json.
type Manifest struct {
	SchemaVersion string           `json:"schema_version"`
	ScenarioHash  string           `json:"scenario_hash"`
	SeedPartitions map[string]int64 `json:"seed_partitions"`
	Created       int64            `json:"created"`
	Ticks         int              `json:"ticks"`
	World         scenario.World   `json:"world"`
	Label         string           `json:"label"`
	RuntimeS      float64          `json:"runtime_s,omitempty"`
}

// Layout names every path under a run directory.
type Layout struct {
	Root string
}

func NewLayout(root string) Layout { return Layout{Root: root} }

func (l Layout) Manifest() string      { return filepath.Join(l.Root, "manifest.json") }
func (l Layout) Scenario() string      { return filepath.Join(l.Root, "scenario.json") }
func (l Layout) Deltas() string        { return filepath.Join(l.Root, "grid", "deltas.parquet") }
func (l Layout) FieldStats() string    { return filepath.Join(l.Root, "metrics", "field_stats.parquet") }
func (l Layout) Hydrology() string     { return filepath.Join(l.Root, "metrics", "hydrology.parquet") }
func (l Layout) Structure() string     { return filepath.Join(l.Root, "metrics", "structure.parquet") }
func (l Layout) Events() string        { return filepath.Join(l.Root, "streams", "events.ndjson") }
func (l Layout) ChecksumsDir() string  { return filepath.Join(l.Root, "checksums") }

// MakeDirs creates every subdirectory a run needs.
func (l Layout) MakeDirs() error {
	const op = "runstore.MakeDirs"
	for _, dir := range []string{
		l.Root,
		filepath.Join(l.Root, "grid"),
		filepath.Join(l.Root, "metrics"),
		filepath.Join(l.Root, "streams"),
		l.ChecksumsDir(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ecoerr.Wrap(ecoerr.IOFailure, op, err)
		}
	}
	return nil
}

// WriteManifest serializes m to the run's manifest.json.
func WriteManifest(l Layout, m *Manifest) error {
	const op = "runstore.WriteManifest"
	data, err := json.Marshal(m)
	if err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	if err := os.WriteFile(l.Manifest(), data, 0o644); err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	return nil
}

// ReadManifest deserializes the run's manifest.json.
func ReadManifest(l Layout) (*Manifest, error) {
	const op = "runstore.ReadManifest"
	data, err := os.ReadFile(l.Manifest())
	if err != nil {
		return nil, ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	return &m, nil
}

// scenarioSnapshot is the frozen config document, scenario.json, carrying
// the scenario hash inline per spec.md §6.
type scenarioSnapshot struct {
	scenario.Scenario
	ScenarioHash string `json:"_scenario_hash"`
}

// WriteScenario writes the frozen scenario snapshot, including its hash.
func WriteScenario(l Layout, s *scenario.Scenario, hash string) error {
	const op = "runstore.WriteScenario"
	snap := scenarioSnapshot{Scenario: *s, ScenarioHash: hash}
	data, err := json.Marshal(snap)
	if err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	if err := os.WriteFile(l.Scenario(), data, 0o644); err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	return nil
}

// ReadScenario reloads the frozen scenario snapshot and its recorded hash.
func ReadScenario(l Layout) (*scenario.Scenario, string, error) {
	const op = "runstore.ReadScenario"
	data, err := os.ReadFile(l.Scenario())
	if err != nil {
		return nil, "", ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	var snap scenarioSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, "", ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	s := snap.Scenario
	return &s, snap.ScenarioHash, nil
}
