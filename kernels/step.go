package kernels

import (
	opensimplex "github.com/ojrac/opensimplex-go"
	"golang.org/x/sync/errgroup"

	"github.com/myopic/ecosim/grid"
	"github.com/myopic/ecosim/registry"
	"github.com/myopic/ecosim/scenario"
)

// Step runs one tick's fixed pass order over tensor, returning a fresh
// tensor: diffusion -> advection -> kernel noise -> coupling ->
// decay/replenish -> clamp -> derived. Each disabled-by-scenario pass is
// skipped outright, and a pass with a zero coefficient for a given field
// leaves that field's values bit-identical.
func Step(tensor *grid.Tensor, s *scenario.Scenario, reg *registry.Registry, noise opensimplex.Noise, tick int) *grid.Tensor {
	passes := s.Dynamics.Passes
	wrapX, wrapY := s.World.Wrap.X, s.World.Wrap.Y

	out := tensor.Clone()

	// Diffusion/advection/noise touch one field at a time and never read
	// another field's values, so every field's pass runs in its own
	// goroutine; each writes only its own channel's disjoint slice
	// positions, and no field's result depends on another's, so fan-out
	// order has no effect on the tensor this produces.
	var g errgroup.Group
	for i := 0; i < reg.Len(); i++ {
		if reg.Derived[i] {
			continue
		}
		i := i
		g.Go(func() error {
			ch := out.Channel(i)
			coeffs := reg.Coeffs[i]

			if passes.Diffusion && coeffs.Diffusion != 0 {
				ch = diffuse(ch, coeffs.Diffusion, wrapX, wrapY)
			}
			if passes.Advection && (coeffs.Advection.VX != 0 || coeffs.Advection.VY != 0) {
				ch = advect(ch, coeffs.Advection.VX, coeffs.Advection.VY, wrapX, wrapY)
			}
			if coeffs.NoiseAmplitude != 0 {
				ch = applyNoise(ch, coeffs.NoiseAmplitude, tick, noise)
			}
			out.SetChannel(i, ch)
			return nil
		})
	}
	g.Wait()

	tIdx, haveT := reg.Index["temperature"]
	hIdx, haveH := reg.Index["hydration"]
	vIdx, haveV := reg.Index["vegetation"]
	if passes.Coupling {
		applyCoupling(out, s.VegetationProfile, tIdx, hIdx, vIdx, haveT, haveH, haveV)
	}

	if passes.Decay || passes.Replenishment {
		for i := 0; i < reg.Len(); i++ {
			if reg.Derived[i] {
				continue
			}
			coeffs := reg.Coeffs[i]
			if passes.Decay && coeffs.Decay != 0 {
				for cell := 0; cell < out.H*out.W; cell++ {
					y, x := cell/out.W, cell%out.W
					v := out.At(x, y, i) * float32(1.0-coeffs.Decay)
					out.Set(x, y, i, v)
				}
			}
			if passes.Replenishment && coeffs.Replenish != 0 {
				for cell := 0; cell < out.H*out.W; cell++ {
					y, x := cell/out.W, cell%out.W
					v := reg.Clamp(i, out.At(x, y, i)+float32(coeffs.Replenish))
					out.Set(x, y, i, v)
				}
			}
		}
	}

	for i := 0; i < reg.Len(); i++ {
		if reg.Derived[i] {
			continue
		}
		for cell := 0; cell < out.H*out.W; cell++ {
			y, x := cell/out.W, cell%out.W
			out.Set(x, y, i, reg.Clamp(i, out.At(x, y, i)))
		}
	}

	if passes.Derived {
		computeDerived(out, reg, hIdx, vIdx, haveH, haveV)
	}

	return out
}

// computeDerived recomputes movement_cost from the final post-clamp
// hydration and vegetation values, when both the derived field and its
// inputs exist in the registry.
func computeDerived(t *grid.Tensor, reg *registry.Registry, hIdx, vIdx int, haveH, haveV bool) {
	mcIdx, haveMC := reg.Index["movement_cost"]
	if !haveMC {
		return
	}
	for y := 0; y < t.H; y++ {
		for x := 0; x < t.W; x++ {
			var h, v float32
			if haveH {
				h = t.At(x, y, hIdx)
			}
			if haveV {
				v = t.At(x, y, vIdx)
			}
			mc := clampF(0.3+0.5*v+0.2*(1.0-h), 0, 1)
			t.Set(x, y, mcIdx, mc)
		}
	}
}
