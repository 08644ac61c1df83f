// Package kernels implements the fixed per-tick field update passes:
// diffusion, advection, kernel noise, domain coupling, decay/replenish,
// clamp, and derived-field computation, in that order.
package kernels

import "github.com/myopic/ecosim/grid"

// laplacian5 applies the 5-point stencil to a single channel, honoring
// per-axis wrap (toroidal) or edge-replicate boundary behavior.
func laplacian5(ch *grid.Raster, wrapX, wrapY bool) *grid.Raster {
	h, w := ch.H, ch.W
	out := grid.NewRaster(h, w)
	for y := 0; y < h; y++ {
		ym1 := edgeOrWrap(y-1, h, wrapY)
		yp1 := edgeOrWrap(y+1, h, wrapY)
		for x := 0; x < w; x++ {
			xm1 := edgeOrWrap(x-1, w, wrapX)
			xp1 := edgeOrWrap(x+1, w, wrapX)
			c := ch.At(x, y)
			v := ch.At(x, ym1) + ch.At(x, yp1) + ch.At(xm1, y) + ch.At(xp1, y) - 4.0*c
			out.Set(x, y, v)
		}
	}
	return out
}

// edgeOrWrap maps an out-of-range coordinate to a wrapped or clamped
// in-range coordinate.
func edgeOrWrap(v, bound int, wrap bool) int {
	if wrap {
		v %= bound
		if v < 0 {
			v += bound
		}
		return v
	}
	if v < 0 {
		return 0
	}
	if v >= bound {
		return bound - 1
	}
	return v
}

// diffuse replaces ch by ch + d * laplacian5(ch). Skipped entirely by the
// caller when d == 0.
func diffuse(ch *grid.Raster, d float64, wrapX, wrapY bool) *grid.Raster {
	lap := laplacian5(ch, wrapX, wrapY)
	out := grid.NewRaster(ch.H, ch.W)
	for i := range out.Data {
		out.Data[i] = ch.Data[i] + float32(d)*lap.Data[i]
	}
	return out
}
