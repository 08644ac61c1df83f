package kernels

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/myopic/ecosim/grid"
)

// applyNoise adds amplitude * opensimplex3D(0.05x, 0.05y, 0.1tick) to
// every cell. A
// no-op when amplitude is 0, which keeps the zero-coefficient idempotence
// invariant intact at the default amplitude.
func applyNoise(ch *grid.Raster, amplitude float64, tick int, noise opensimplex.Noise) *grid.Raster {
	if amplitude == 0 {
		return ch
	}
	out := grid.NewRaster(ch.H, ch.W)
	z := float64(tick) * 0.1
	for y := 0; y < ch.H; y++ {
		for x := 0; x < ch.W; x++ {
			n := noise.Eval3(float64(x)*0.05, float64(y)*0.05, z)
			out.Set(x, y, ch.At(x, y)+float32(amplitude*n))
		}
	}
	return out
}
