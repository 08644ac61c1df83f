// Package initgen generates the deterministic initial world state: terrain
// elevation, precipitation, river/lake hydrology, temperature, and the
// vegetation seed, each drawing from its own RNG partition.
package initgen

import (
	"github.com/myopic/ecosim/grid"
	"github.com/myopic/ecosim/registry"
	"github.com/myopic/ecosim/rng"
	"github.com/myopic/ecosim/scenario"
)

// Aux holds the regenerable auxiliary rasters produced alongside the
// initial tensor: filled elevation, precipitation, flow accumulation, and
// the lake mask. None of these are journaled; they are recomputed from the
// scenario on every hydration.
type Aux struct {
	Elevation     *grid.Raster
	Precipitation *grid.Raster
	FlowAcc       *grid.Raster
	LakeMask      *grid.BoolRaster
}

// Assemble runs all six InitGen stages and populates a fresh tensor per the
// registry: temperature, hydration, and vegetation land in their named
// fields; every other field starts at zero. Every field is clamped to its
// registered bounds before return.
func Assemble(s *scenario.Scenario, reg *registry.Registry, part *rng.Partitioner) (*grid.Tensor, *Aux) {
	h, w := s.World.Height, s.World.Width

	elev := Elevation(h, w, s.WaterProfile, part.Stream(rng.TerrainElevation))
	precip := Precipitation(h, w, s.WaterProfile, part.Stream(rng.Precipitation), elev)
	acc, _ := FlowAccumulation(elev)
	lakeMask, filled := Lakes(elev, acc, s.WaterProfile.LakeFillThreshold)
	h2o := Hydration(filled, acc, lakeMask, s.WaterProfile)
	temp := Temperature(h, w, s.HeatProfile, part.Stream(rng.KernelNoise))
	veg := VegetationInit(h2o, temp, s.VegetationProfile, part.Stream(rng.VegetationSeed))

	tensor := grid.NewTensor(h, w, reg.Len())
	if idx, ok := reg.Index["temperature"]; ok {
		tensor.SetChannel(idx, temp)
	}
	if idx, ok := reg.Index["hydration"]; ok {
		tensor.SetChannel(idx, h2o)
	}
	if idx, ok := reg.Index["vegetation"]; ok {
		tensor.SetChannel(idx, veg)
	}
	tensor.ClampAll(reg)

	aux := &Aux{Elevation: filled, Precipitation: precip, FlowAcc: acc, LakeMask: lakeMask}
	return tensor, aux
}
