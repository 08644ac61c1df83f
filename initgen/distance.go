package initgen

import (
	"math"

	"github.com/myopic/ecosim/grid"
)

const infDist = 1e20

// distanceTransform returns, for each cell, the Euclidean distance to the
// nearest true cell in mask. Cells with no true cell in the raster get
// infDist. Non-toroidal (matches scipy's distance_transform_edt, which has
// no wrap mode), using the standard two-pass squared-distance transform of
// Felzenszwalt & Huttenlocher.
func distanceTransform(mask *grid.BoolRaster) *grid.Raster {
	h, w := mask.H, mask.W
	sq := make([]float64, h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask.At(x, y) {
				sq[y*w+x] = 0
			} else {
				sq[y*w+x] = infDist
			}
		}
	}

	// Column pass: 1D transform along y for each column.
	col := make([]float64, h*w)
	buf := make([]float64, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			buf[y] = sq[y*w+x]
		}
		res := dt1D(buf)
		for y := 0; y < h; y++ {
			col[y*w+x] = res[y]
		}
	}

	// Row pass: 1D transform along x for each row, over the column results.
	out := grid.NewRaster(h, w)
	rowBuf := make([]float64, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			rowBuf[x] = col[y*w+x]
		}
		res := dt1D(rowBuf)
		for x := 0; x < w; x++ {
			out.Set(x, y, float32(math.Sqrt(res[x])))
		}
	}
	return out
}

// dt1D computes the 1D squared distance transform of f via the lower
// envelope of parabolas algorithm.
func dt1D(f []float64) []float64 {
	n := len(f)
	d := make([]float64, n)
	v := make([]int, n)
	z := make([]float64, n+1)
	k := 0
	v[0] = 0
	z[0] = -math.MaxFloat64
	z[1] = math.MaxFloat64

	for q := 1; q < n; q++ {
		var s float64
		for {
			s = ((f[q] + float64(q*q)) - (f[v[k]] + float64(v[k]*v[k]))) / float64(2*q-2*v[k])
			if s <= z[k] {
				k--
				if k < 0 {
					break
				}
				continue
			}
			break
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.MaxFloat64
	}

	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - v[k])
		d[q] = dq*dq + f[v[k]]
	}
	return d
}
