package initgen

import (
	"math"
	"math/rand"

	"github.com/myopic/ecosim/grid"
	"github.com/myopic/ecosim/scenario"
)

// Elevation sums octaves bands of Gaussian-filtered white noise with
// geometric amplitude decay and halving scale, applies a ridge transform,
// smooths once more at a sixth of the base scale (at least 1), and
// rescales to [0,1].
func Elevation(h, w int, wp scenario.WaterProfile, r *rand.Rand) *grid.Raster {
	octaves := wp.Octaves
	if octaves < 1 {
		octaves = 1
	}
	baseScale := wp.ElevationScale

	e := grid.NewRaster(h, w)
	amp := 1.0
	for i := 0; i < octaves; i++ {
		scale := baseScale / math.Pow(2, float64(i))
		band := fgauss(r, h, w, scale)
		for idx := range e.Data {
			e.Data[idx] += float32(amp) * band.Data[idx]
		}
		amp *= 0.5
	}

	e = normalize(e)

	ridge := grid.NewRaster(h, w)
	for i, v := range e.Data {
		ridge.Data[i] = 1.0 - float32(math.Abs(2.0*float64(v)-1.0))
	}
	blended := grid.NewRaster(h, w)
	rs := wp.RidgeStrength
	for i := range blended.Data {
		blended.Data[i] = float32(1.0-rs)*e.Data[i] + float32(rs)*ridge.Data[i]
	}

	smoothScale := baseScale / 6.0
	if smoothScale < 1.0 {
		smoothScale = 1.0
	}
	smoothed := gaussianBlurWrap(blended, smoothScale, smoothScale)
	return normalize(smoothed)
}
