package initgen

import (
	"math"

	"github.com/myopic/ecosim/grid"
	"github.com/myopic/ecosim/scenario"
)

// Hydration derives water availability from distance to rivers and lakes
// plus a lowland bonus, then smooths and clamps to [0,1].
func Hydration(filled *grid.Raster, acc *grid.Raster, lakeMask *grid.BoolRaster, wp scenario.WaterProfile) *grid.Raster {
	h, w := filled.H, filled.W

	riverThr := percentile(acc.Data, 100.0*(1.0-wp.RiverPercentile))
	rivers := grid.NewBoolRaster(h, w)
	for i, v := range acc.Data {
		rivers.Data[i] = float64(v) >= riverThr
	}

	lakeThr := percentile(acc.Data, 100.0*(1.0-wp.LakeFillThreshold))
	lakesMajor := grid.NewBoolRaster(h, w)
	for i, v := range acc.Data {
		lakesMajor.Data[i] = float64(v) >= lakeThr
	}

	h2o := grid.NewRaster(h, w)
	for i := range h2o.Data {
		h2o.Data[i] = float32(wp.BaseMoisture)
	}

	riverDist := distanceTransform(rivers)
	for i, d := range riverDist.Data {
		influence := math.Exp(-float64(d) / 12.0)
		h2o.Data[i] += float32(influence * (wp.RiverDepth - wp.BaseMoisture))
	}

	lakeDist := distanceTransform(lakesMajor)
	for i, d := range lakeDist.Data {
		influence := math.Exp(-float64(d) / 20.0)
		h2o.Data[i] += float32(influence * (wp.LakeDepth - wp.BaseMoisture))
	}

	elevNorm := normalize(filled)
	for i, v := range elevNorm.Data {
		h2o.Data[i] += (1.0 - v) * 0.15
	}

	h2o = gaussianBlurWrap(h2o, 3.0, 3.0)
	return clampRaster(h2o, 0.0, 1.0)
}
