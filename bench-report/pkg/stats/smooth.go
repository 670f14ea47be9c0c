package stats

import "math"

// MovingAverage returns a centered rolling mean of values.
//
// The window for index i spans [i-window/2, i+(window-1)/2], clipped to the
// slice bounds; partial windows at the edges average whatever is available.
// NaN entries are missing values: they are skipped, and a window holding
// nothing else yields NaN. A window of 1 or less returns an unmodified copy.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}

	before := window / 2
	after := (window - 1) / 2
	for i := range values {
		lo := i - before
		if lo < 0 {
			lo = 0
		}
		hi := i + after
		if hi > len(values)-1 {
			hi = len(values) - 1
		}
		out[i] = presentMean(values[lo : hi+1])
	}
	return out
}

// presentMean averages the non-NaN values, or returns NaN if there are none.
func presentMean(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
