// Package grid implements the field tensor: a flat H*W*F float32 array
// representing every registered field over the world grid, plus the
// single-channel Raster type used for auxiliary rasters (elevation,
// precipitation, flow accumulation, lake mask).
package grid

import (
	"math"

	"github.com/myopic/ecosim/ecoerr"
	"github.com/myopic/ecosim/registry"
)

// Tensor is an H x W x F array of float32, stored row-major with field as
// the fastest-varying axis so that all fields of one cell are adjacent.
type Tensor struct {
	H, W, F int
	Data    []float32
}

// NewTensor allocates a zeroed tensor of the given shape.
func NewTensor(h, w, f int) *Tensor {
	return &Tensor{H: h, W: w, F: f, Data: make([]float32, h*w*f)}
}

// idx returns the flat offset of field i at cell (x,y).
func (t *Tensor) idx(x, y, i int) int {
	return (y*t.W+x)*t.F + i
}

// At returns the value of field i at cell (x,y).
func (t *Tensor) At(x, y, i int) float32 {
	return t.Data[t.idx(x, y, i)]
}

// Set writes the value of field i at cell (x,y).
func (t *Tensor) Set(x, y, i int, v float32) {
	t.Data[t.idx(x, y, i)] = v
}

// Channel returns a Raster view of field i copied out of the tensor. The
// returned Raster is independent of the tensor; mutating it does not
// mutate t.
func (t *Tensor) Channel(i int) *Raster {
	r := NewRaster(t.H, t.W)
	for y := 0; y < t.H; y++ {
		for x := 0; x < t.W; x++ {
			r.Set(x, y, t.At(x, y, i))
		}
	}
	return r
}

// SetChannel writes a Raster's values into field i of the tensor.
func (t *Tensor) SetChannel(i int, r *Raster) {
	for y := 0; y < t.H; y++ {
		for x := 0; x < t.W; x++ {
			t.Set(x, y, i, r.At(x, y))
		}
	}
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	out := &Tensor{H: t.H, W: t.W, F: t.F, Data: make([]float32, len(t.Data))}
	copy(out.Data, t.Data)
	return out
}

// ClampAll restricts every field to its registered bounds, per the field
// tensor invariant: lo_i <= tensor[y,x,i] <= hi_i after every pass.
func (t *Tensor) ClampAll(reg *registry.Registry) {
	for y := 0; y < t.H; y++ {
		for x := 0; x < t.W; x++ {
			for i := 0; i < t.F; i++ {
				t.Set(x, y, i, reg.Clamp(i, t.At(x, y, i)))
			}
		}
	}
}

// CheckFinite returns a SimulationInvariant error naming the first NaN or
// Inf cell found, or nil if the tensor is entirely finite.
func (t *Tensor) CheckFinite(op string) error {
	for y := 0; y < t.H; y++ {
		for x := 0; x < t.W; x++ {
			for i := 0; i < t.F; i++ {
				v := t.At(x, y, i)
				if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
					return ecoerr.New(ecoerr.SimulationInvariant, op, "non-finite value in tensor")
				}
			}
		}
	}
	return nil
}

// Diff returns a new tensor equal to b - a, field by field.
func Diff(a, b *Tensor) *Tensor {
	out := &Tensor{H: a.H, W: a.W, F: a.F, Data: make([]float32, len(a.Data))}
	for i := range out.Data {
		out.Data[i] = b.Data[i] - a.Data[i]
	}
	return out
}

// Raster is a single H x W float32 channel, used for auxiliary rasters
// that are regenerated from the scenario rather than journaled.
type Raster struct {
	H, W int
	Data []float32
}

// NewRaster allocates a zeroed raster.
func NewRaster(h, w int) *Raster {
	return &Raster{H: h, W: w, Data: make([]float32, h*w)}
}

// At returns the value at (x,y).
func (r *Raster) At(x, y int) float32 {
	return r.Data[y*r.W+x]
}

// Set writes the value at (x,y).
func (r *Raster) Set(x, y int, v float32) {
	r.Data[y*r.W+x] = v
}

// Mean returns the arithmetic mean of all cells.
func (r *Raster) Mean() float64 {
	var sum float64
	for _, v := range r.Data {
		sum += float64(v)
	}
	return sum / float64(len(r.Data))
}

// BoolRaster is a single H x W boolean channel, used for masks such as the
// lake mask that are derived from rasters but aren't clamped floats.
type BoolRaster struct {
	H, W int
	Data []bool
}

// NewBoolRaster allocates a all-false boolean raster.
func NewBoolRaster(h, w int) *BoolRaster {
	return &BoolRaster{H: h, W: w, Data: make([]bool, h*w)}
}

// At returns the value at (x,y).
func (r *BoolRaster) At(x, y int) bool {
	return r.Data[y*r.W+x]
}

// Set writes the value at (x,y).
func (r *BoolRaster) Set(x, y int, v bool) {
	r.Data[y*r.W+x] = v
}

// Count returns the number of true cells.
func (r *BoolRaster) Count() int {
	n := 0
	for _, v := range r.Data {
		if v {
			n++
		}
	}
	return n
}

// WrapX returns x modulo width, always non-negative.
func WrapX(x, w int) int {
	x %= w
	if x < 0 {
		x += w
	}
	return x
}

// WrapY returns y modulo height, always non-negative.
func WrapY(y, h int) int {
	y %= h
	if y < 0 {
		y += h
	}
	return y
}
