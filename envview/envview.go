// Package envview gives agents a read-only view onto a run's tensor at a
// loaded tick: per-field, per-cell, and neighborhood accessors. Grounded
// on original_source's `agent_api.py` `EnvironmentGrid`.
package envview

import (
	"github.com/myopic/ecosim/ecoerr"
	"github.com/myopic/ecosim/grid"
	"github.com/myopic/ecosim/hydrator"
	"github.com/myopic/ecosim/initgen"
	"github.com/myopic/ecosim/registry"
	"github.com/myopic/ecosim/runstore"
	"github.com/myopic/ecosim/scenario"
)

// Grid is a read-only accessor over a run directory's tensor, rehydrated
// on demand at a chosen tick via the hydrator.
type Grid struct {
	layout   runstore.Layout
	scenario *scenario.Scenario
	reg      *registry.Registry

	tick    int
	loaded  bool
	tensor  *grid.Tensor
	aux     *initgen.Aux
}

// New opens the run directory at root, loading its frozen scenario and
// building the field registry, but does not load any tick's tensor yet.
func New(root string) (*Grid, error) {
	l := runstore.NewLayout(root)
	s, hash, err := runstore.ReadScenario(l)
	if err != nil {
		return nil, err
	}
	manifest, err := runstore.ReadManifest(l)
	if err != nil {
		return nil, err
	}
	if manifest.ScenarioHash != hash {
		const op = "envview.New"
		return nil, ecoerr.New(ecoerr.DeterminismViolation, op, "scenario snapshot hash does not match manifest")
	}
	return &Grid{layout: l, scenario: s, reg: registry.Build(s)}, nil
}

// LoadTick hydrates the tensor for the given tick and makes it the
// current view.
func (g *Grid) LoadTick(tick int) error {
	tensor, aux, err := hydrator.Hydrate(g.layout, tick)
	if err != nil {
		return err
	}
	g.tick = tick
	g.tensor = tensor
	g.aux = aux
	g.loaded = true
	return nil
}

func (g *Grid) requireLoaded(op string) error {
	if !g.loaded {
		return ecoerr.New(ecoerr.DomainPrecondition, op, "LoadTick must be called before reading the environment view")
	}
	return nil
}

func (g *Grid) fieldIndex(op, name string) (int, error) {
	idx, ok := g.reg.Index[name]
	if !ok {
		return 0, ecoerr.New(ecoerr.DomainPrecondition, op, "unknown field: "+name)
	}
	return idx, nil
}

// GetField returns a full-grid Raster view of one named field.
func (g *Grid) GetField(name string) (*grid.Raster, error) {
	const op = "envview.GetField"
	if err := g.requireLoaded(op); err != nil {
		return nil, err
	}
	idx, err := g.fieldIndex(op, name)
	if err != nil {
		return nil, err
	}
	return g.tensor.Channel(idx), nil
}

// GetCell returns one field's value at (x,y).
func (g *Grid) GetCell(x, y int, name string) (float32, error) {
	const op = "envview.GetCell"
	if err := g.requireLoaded(op); err != nil {
		return 0, err
	}
	idx, err := g.fieldIndex(op, name)
	if err != nil {
		return 0, err
	}
	return g.tensor.At(x, y, idx), nil
}

// GetAllFieldsAt returns every field's value at (x,y), keyed by name.
func (g *Grid) GetAllFieldsAt(x, y int) (map[string]float32, error) {
	const op = "envview.GetAllFieldsAt"
	if err := g.requireLoaded(op); err != nil {
		return nil, err
	}
	out := make(map[string]float32, g.reg.Len())
	for name, idx := range g.reg.Index {
		out[name] = g.tensor.At(x, y, idx)
	}
	return out, nil
}

// GetNeighborhood returns every field's values in the square neighborhood
// of the given radius around (x,y), clamped (not wrapped) at the world
// edges, keyed by field name.
func (g *Grid) GetNeighborhood(x, y, radius int) (map[string]*grid.Raster, error) {
	const op = "envview.GetNeighborhood"
	if err := g.requireLoaded(op); err != nil {
		return nil, err
	}
	yMin, yMax := clampRange(y-radius, y+radius+1, g.tensor.H)
	xMin, xMax := clampRange(x-radius, x+radius+1, g.tensor.W)

	out := make(map[string]*grid.Raster, g.reg.Len())
	for name, idx := range g.reg.Index {
		r := grid.NewRaster(yMax-yMin, xMax-xMin)
		for yy := yMin; yy < yMax; yy++ {
			for xx := xMin; xx < xMax; xx++ {
				r.Set(xx-xMin, yy-yMin, g.tensor.At(xx, yy, idx))
			}
		}
		out[name] = r
	}
	return out, nil
}

func clampRange(lo, hi, bound int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > bound {
		hi = bound
	}
	return lo, hi
}

// Shape returns (height, width, field_count).
func (g *Grid) Shape() (int, int, int) {
	return g.tensor.H, g.tensor.W, g.tensor.F
}

// FieldNames returns the registry's field names in index order.
func (g *Grid) FieldNames() []string { return g.reg.Names }

// CurrentTick reports the last tick passed to LoadTick.
func (g *Grid) CurrentTick() int { return g.tick }

// Aux exposes the regenerated auxiliary rasters (elevation, precipitation,
// flow accumulation, lake mask) for the loaded tick's scenario.
func (g *Grid) Aux() *initgen.Aux { return g.aux }
