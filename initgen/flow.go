package initgen

import "github.com/myopic/ecosim/grid"

// steepestOffsets is the fixed scan order used to break steepest-descent
// ties: the lowest neighbor wins, and among equally low neighbors the
// first encountered in this order wins.
var steepestOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// FlowAccumulation computes, for each cell, the steepest-descent target
// among its 8 wrap-around neighbors, then propagates unit upstream mass via
// Kahn-style topological order. Cells never reached by the propagation
// (closed) are local minima chains or cycle remnants.
func FlowAccumulation(e *grid.Raster) (acc *grid.Raster, closed *grid.BoolRaster) {
	h, w := e.H, e.W

	flowToY := make([]int, h*w)
	flowToX := make([]int, h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			minE := e.At(x, y)
			ty, tx := y, x
			for _, off := range steepestOffsets {
				ny := grid.WrapY(y+off[0], h)
				nx := grid.WrapX(x+off[1], w)
				if v := e.At(nx, ny); v < minE {
					minE = v
					ty, tx = ny, nx
				}
			}
			flowToY[y*w+x] = ty
			flowToX[y*w+x] = tx
		}
	}

	indeg := make([]int, h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ty, tx := flowToY[y*w+x], flowToX[y*w+x]
			if ty != y || tx != x {
				indeg[ty*w+tx]++
			}
		}
	}

	queue := make([]int, 0, h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if indeg[y*w+x] == 0 {
				queue = append(queue, y*w+x)
			}
		}
	}

	accFlat := make([]float64, h*w)
	for i := range accFlat {
		accFlat[i] = 1.0
	}
	visited := make([]bool, h*w)

	for head := 0; head < len(queue); head++ {
		cell := queue[head]
		y, x := cell/w, cell%w
		visited[cell] = true
		ty, tx := flowToY[cell], flowToX[cell]
		if ty == y && tx == x {
			continue
		}
		target := ty*w + tx
		accFlat[target] += accFlat[cell]
		indeg[target]--
		if indeg[target] == 0 {
			queue = append(queue, target)
		}
	}

	acc = grid.NewRaster(h, w)
	closed = grid.NewBoolRaster(h, w)
	for i, v := range accFlat {
		acc.Data[i] = float32(v)
		closed.Data[i] = !visited[i]
	}
	return acc, closed
}
