package initgen

import "sort"

// Percentile returns the p-th percentile (0..100) of values using linear
// interpolation between closest ranks, matching numpy's default method.
// Exported for use by the metrics package, which computes the same
// river-length threshold from the flow accumulation raster at query time.
func Percentile(values []float32, p float64) float64 {
	return percentile(values, p)
}

// percentile returns the p-th percentile (0..100) of values using linear
// interpolation between closest ranks, matching numpy's default method.
func percentile(values []float32, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	for i, v := range values {
		sorted[i] = float64(v)
	}
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}

	rank := (p / 100.0) * float64(n-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= n {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
