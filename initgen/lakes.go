package initgen

import (
	"container/heap"
	"math"

	"github.com/myopic/ecosim/grid"
)

type floodItem struct {
	e    float32
	y, x int
}

type floodHeap []floodItem

func (h floodHeap) Len() int { return len(h) }
func (h floodHeap) Less(i, j int) bool {
	if h[i].e != h[j].e {
		return h[i].e < h[j].e
	}
	if h[i].y != h[j].y {
		return h[i].y < h[j].y
	}
	return h[i].x < h[j].x
}
func (h floodHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *floodHeap) Push(x any)        { *h = append(*h, x.(floodItem)) }
func (h *floodHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

var lakeNeighborOffsets = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// Lakes runs a priority-flood from the grid borders, keyed on ascending
// water-surface elevation, to find depressions. The lake mask is the union
// of flooded-above-terrain cells and the top flow_threshold accumulation
// cells (major rivers wide enough to count as lake-like).
func Lakes(e *grid.Raster, acc *grid.Raster, fillThreshold float64) (lakeMask *grid.BoolRaster, filled *grid.Raster) {
	h, w := e.H, e.W

	water := make([]float32, h*w)
	for i := range water {
		water[i] = float32(math.Inf(1))
	}

	fh := &floodHeap{}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if y == 0 || y == h-1 || x == 0 || x == w-1 {
				heap.Push(fh, floodItem{e: e.At(x, y), y: y, x: x})
			}
		}
	}

	for fh.Len() > 0 {
		item := heap.Pop(fh).(floodItem)
		idx := item.y*w + item.x
		if water[idx] <= item.e {
			continue
		}
		water[idx] = item.e
		for _, off := range lakeNeighborOffsets {
			ny := grid.WrapY(item.y+off[0], h)
			nx := grid.WrapX(item.x+off[1], w)
			we := item.e
			if nv := e.At(nx, ny); nv > we {
				we = nv
			}
			if we < water[ny*w+nx] {
				heap.Push(fh, floodItem{e: we, y: ny, x: nx})
			}
		}
	}

	lakeMask = grid.NewBoolRaster(h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if water[y*w+x] > e.At(x, y) {
				lakeMask.Set(x, y, true)
			}
		}
	}

	inc := percentile(acc.Data, 100.0*(1.0-fillThreshold))
	for i, v := range acc.Data {
		if float64(v) >= inc {
			lakeMask.Data[i] = true
		}
	}

	filled = grid.NewRaster(h, w)
	for i := range filled.Data {
		if lakeMask.Data[i] {
			filled.Data[i] = water[i]
		} else {
			filled.Data[i] = e.Data[i]
		}
	}
	return lakeMask, filled
}
