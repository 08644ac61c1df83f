package kernels

import (
	"math"

	"github.com/myopic/ecosim/grid"
)

// advect performs bilinear backward semi-Lagrangian advection: each output
// cell samples the source field at (x-vx, y-vy). Skipped entirely by the
// caller when (vx,vy) == (0,0).
func advect(ch *grid.Raster, vx, vy float64, wrapX, wrapY bool) *grid.Raster {
	h, w := ch.H, ch.W
	out := grid.NewRaster(h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fx := float64(x) - vx
			fy := float64(y) - vy
			if wrapX {
				fx = wrapFloat(fx, float64(w))
			} else {
				fx = clampFloat(fx, 0.0, float64(w)-1.001)
			}
			if wrapY {
				fy = wrapFloat(fy, float64(h))
			} else {
				fy = clampFloat(fy, 0.0, float64(h)-1.001)
			}

			x0 := int(fx)
			y0 := int(fy)
			var x1, y1 int
			if wrapX {
				x1 = (x0 + 1) % w
			} else {
				x1 = minInt(x0+1, w-1)
			}
			if wrapY {
				y1 = (y0 + 1) % h
			} else {
				y1 = minInt(y0+1, h-1)
			}

			sx := fx - float64(x0)
			sy := fy - float64(y0)

			v00 := float64(ch.At(x0, y0))
			v10 := float64(ch.At(x1, y0))
			v01 := float64(ch.At(x0, y1))
			v11 := float64(ch.At(x1, y1))

			v := (1-sx)*(1-sy)*v00 + sx*(1-sy)*v10 + (1-sx)*sy*v01 + sx*sy*v11
			out.Set(x, y, float32(v))
		}
	}
	return out
}

// wrapFloat returns v mod bound with a result always in [0, bound), matching
// Python's modulo semantics (sign follows the divisor, not the dividend).
func wrapFloat(v, bound float64) float64 {
	r := math.Mod(v, bound)
	if r < 0 {
		r += bound
	}
	return r
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
