package initgen

import (
	"math"
	"math/rand"

	"github.com/myopic/ecosim/grid"
)

// standardNormalRaster fills an H x W raster with independent draws from a
// standard normal distribution using r.
func standardNormalRaster(r *rand.Rand, h, w int) *grid.Raster {
	out := grid.NewRaster(h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(x, y, float32(r.NormFloat64()))
		}
	}
	return out
}

// gaussianKernel1D builds a normalized 1D Gaussian kernel truncated at 4
// standard deviations, matching scipy's default truncate.
func gaussianKernel1D(sigma float64) []float64 {
	if sigma < 1e-8 {
		sigma = 1e-8
	}
	radius := int(4.0*sigma + 0.5)
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-0.5 * float64(i*i) / (sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// gaussianBlurWrap separably blurs a raster with independent sigma per axis,
// wrapping at the borders (toroidal), matching gaussian_filter(..., mode="wrap").
func gaussianBlurWrap(src *grid.Raster, sigmaY, sigmaX float64) *grid.Raster {
	kx := gaussianKernel1D(sigmaX)
	ky := gaussianKernel1D(sigmaY)
	rx := len(kx) / 2
	ry := len(ky) / 2

	horiz := grid.NewRaster(src.H, src.W)
	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			var acc float64
			for k := -rx; k <= rx; k++ {
				sx := grid.WrapX(x+k, src.W)
				acc += kx[k+rx] * float64(src.At(sx, y))
			}
			horiz.Set(x, y, float32(acc))
		}
	}

	out := grid.NewRaster(src.H, src.W)
	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			var acc float64
			for k := -ry; k <= ry; k++ {
				sy := grid.WrapY(y+k, src.H)
				acc += ky[k+ry] * float64(horiz.At(x, sy))
			}
			out.Set(x, y, float32(acc))
		}
	}
	return out
}

// fgauss draws standard normal noise and smooths it with sigma = max(1,
// scale/8) on both axes, the smoothed-white-noise building block used by
// every octave of elevation and precipitation.
func fgauss(r *rand.Rand, h, w int, scale float64) *grid.Raster {
	s := scale / 8.0
	if s < 1.0 {
		s = 1.0
	}
	noise := standardNormalRaster(r, h, w)
	return gaussianBlurWrap(noise, s, s)
}

// normalize rescales a raster to [0,1] using its own min/max.
func normalize(r *grid.Raster) *grid.Raster {
	lo, hi := r.Data[0], r.Data[0]
	for _, v := range r.Data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	out := grid.NewRaster(r.H, r.W)
	denom := float64(hi-lo) + 1e-8
	for i, v := range r.Data {
		out.Data[i] = float32((float64(v) - float64(lo)) / denom)
	}
	return out
}

func clampRaster(r *grid.Raster, lo, hi float32) *grid.Raster {
	out := grid.NewRaster(r.H, r.W)
	for i, v := range r.Data {
		if v < lo {
			v = lo
		}
		if v > hi {
			v = hi
		}
		out.Data[i] = v
	}
	return out
}
