package initgen

import (
	"math"
	"math/rand"

	"github.com/myopic/ecosim/grid"
	"github.com/myopic/ecosim/scenario"
)

// VegetationInit seeds vegetation density from a Monod response to water
// availability and a Gaussian response to temperature around an optimum,
// plus a small amount of noise.
func VegetationInit(h2o, temp *grid.Raster, vp scenario.VegetationProfile, r *rand.Rand) *grid.Raster {
	h, w := h2o.H, h2o.W
	waterHalf := vp.WaterHalf
	opt := vp.HeatOptimum
	sigma := vp.HeatSigma
	if sigma < 1e-8 {
		sigma = 1e-8
	}
	capacity := vp.CarryingCapacity

	noiseSrc := standardNormalRaster(r, h, w)
	noise := gaussianBlurWrap(noiseSrc, 2.0, 2.0)

	out := grid.NewRaster(h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hVal := float64(h2o.At(x, y))
			tVal := float64(temp.At(x, y))
			sw := hVal / (hVal + waterHalf + 1e-8)
			diff := (tVal - opt) / sigma
			st := math.Exp(-0.5 * diff * diff)
			// vp.K is the per-tick growth rate; the seed uses carrying
			// capacity only, growth is applied later by the coupling pass.
			v0 := capacity * sw * st
			v0 += float64(noise.At(x, y)) * 0.01
			out.Set(x, y, float32(v0))
		}
	}
	return clampRaster(out, 0.0, 1.0)
}
