package envelope

import (
	"math"
	"sort"
)

// zeroFloor replaces a zero reference so division stays finite
const zeroFloor = 1e-6

// Percentile returns the p-th percentile of the finite values using the
// nearest-rank index round(p/100*(count-1)). An empty input yields 1.
func Percentile(values []float64, p float64) float64 {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 1
	}
	sort.Float64s(finite)

	idx := int(math.Round(p / 100 * float64(len(finite)-1)))
	idx = min(len(finite)-1, max(0, idx))
	return finite[idx]
}

// Normalize scales values in place by their p-th percentile and clamps the
// result to 1. Non-finite inputs become 0.
func Normalize(values []float64, p float64) {
	ref := Percentile(values, p)
	if ref <= 0 {
		ref = zeroFloor
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			values[i] = 0
			continue
		}
		values[i] = math.Min(1, v/ref)
	}
}
