package initgen

import (
	"math"
	"math/rand"

	"github.com/myopic/ecosim/grid"
	"github.com/myopic/ecosim/scenario"
)

// Temperature builds a meridional (y-axis) gradient peaking at the
// equatorial midline, plus smoothed noise.
func Temperature(h, w int, hp scenario.HeatProfile, r *rand.Rand) *grid.Raster {
	amp := hp.Amplitude
	noiseAmp := hp.NoiseAmp

	baseTemp := make([]float64, h)
	for y := 0; y < h; y++ {
		yCoord := float64(y) / float64(h-1)
		if h == 1 {
			yCoord = 0
		}
		distFromEquator := math.Abs(yCoord-0.5) * 2.0
		bt := 1.0 - distFromEquator
		baseTemp[y] = 0.5 + amp*(bt-0.5)
	}

	noiseSrc := standardNormalRaster(r, h, w)
	noise := gaussianBlurWrap(noiseSrc, 4.0, 4.0)

	out := grid.NewRaster(h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := baseTemp[y] + float64(noise.At(x, y))*noiseAmp
			out.Set(x, y, float32(v))
		}
	}
	return clampRaster(out, 0.0, 1.0)
}
