package initgen

import (
	"math/rand"

	"github.com/myopic/ecosim/grid"
	"github.com/myopic/ecosim/scenario"
)

// Precipitation blends smoothed noise with an orographic term: lowlands and
// the windward (right) side of the map receive more rain.
func Precipitation(h, w int, wp scenario.WaterProfile, r *rand.Rand, elevation *grid.Raster) *grid.Raster {
	p := fgauss(r, h, w, wp.PrecipitationScale)
	p = normalize(p)

	elevNorm := normalize(elevation)

	orog := grid.NewRaster(h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			wind := 0.2 + 0.8*float64(x)/float64(w-1)
			if w == 1 {
				wind = 0.2
			}
			v := (1.0-float64(elevNorm.At(x, y)))*0.4 + wind*0.6
			orog.Set(x, y, float32(v))
		}
	}

	blended := grid.NewRaster(h, w)
	for i := range blended.Data {
		blended.Data[i] = 0.6*p.Data[i] + 0.4*orog.Data[i]
	}
	return normalize(blended)
}
