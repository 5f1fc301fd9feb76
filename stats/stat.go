// Package stats provides robust statistics used while fitting forecasts.
package stats

import (
	"math"
	"slices"
)

// Fences returns Tukey style outlier bounds: the lower and upper percentiles of y widened by
// factor times their spread. NaN values are ignored. ok is false when y has no spread.
func Fences(y []float64, lowerPerc, upperPerc, factor float64) (lower, upper float64, ok bool) {
	sorted := make([]float64, 0, len(y))
	for _, v := range y {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return 0, 0, false
	}
	slices.Sort(sorted)

	last := len(sorted) - 1
	lo := min(max(int(math.Floor(float64(len(sorted))*math.Max(lowerPerc, 0))), 0), last)
	hi := min(max(int(math.Ceil(float64(len(sorted))*math.Min(upperPerc, 1))), 0), last)

	spread := sorted[hi] - sorted[lo]
	if spread == 0 {
		return 0, 0, false
	}
	factor = math.Max(factor, 0)
	return sorted[lo] - spread*factor, sorted[hi] + spread*factor, true
}

// DetectOutliers returns the indexes of values on or beyond the Fences of y.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	lower, upper, ok := Fences(y, lowerPerc, upperPerc, tukeyFactor)
	if !ok {
		return nil
	}

	var idx []int
	for i, v := range y {
		if v >= upper || v <= lower {
			idx = append(idx, i)
		}
	}
	return idx
}
