package kernels

import (
	"math"

	"github.com/myopic/ecosim/grid"
	"github.com/myopic/ecosim/scenario"
)

const evaporationRate = 0.005

// applyCoupling runs the domain-specific coupling terms: evaporation drains
// hydration in proportion to temperature, and vegetation growth consumes
// half its own worth of water. Operates in place on the post-advection
// tensor, over the named fields when present.
func applyCoupling(t *grid.Tensor, vp scenario.VegetationProfile, tIdx, hIdx, vIdx int, haveT, haveH, haveV bool) {
	if haveT && haveH {
		for y := 0; y < t.H; y++ {
			for x := 0; x < t.W; x++ {
				temp := clampF(t.At(x, y, tIdx), 0, 1)
				h := t.At(x, y, hIdx) - float32(evaporationRate)*temp
				t.Set(x, y, hIdx, clampF(h, 0, 1))
			}
		}
	}

	if haveV && haveH && haveT {
		waterHalf := vp.WaterHalf
		opt := vp.HeatOptimum
		sigma := vp.HeatSigma
		if sigma < 1e-8 {
			sigma = 1e-8
		}
		k := vp.K
		capacity := vp.CarryingCapacity

		for y := 0; y < t.H; y++ {
			for x := 0; x < t.W; x++ {
				h := float64(t.At(x, y, hIdx))
				temp := float64(t.At(x, y, tIdx))
				v := float64(t.At(x, y, vIdx))

				sw := h / (h + waterHalf + 1e-8)
				diff := (temp - opt) / sigma
				st := math.Exp(-0.5 * diff * diff)
				growth := k * v * (1.0 - v/(capacity+1e-8)) * sw * st
				consume := 0.5 * growth

				t.Set(x, y, vIdx, clampF(float32(v+growth), 0, 1))
				t.Set(x, y, hIdx, clampF(float32(h-consume), 0, 1))
			}
		}
	}
}

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
