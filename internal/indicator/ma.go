package indicator

// SimpleMovingAverage returns the trailing simple moving average of series.
//
// Index i averages the last period points ending at i. While fewer than period
// points have been seen the window is whatever is available, so the output has
// no warm-up gap and is the same length as the input. A non-positive period or
// an empty series yields an empty slice.
func SimpleMovingAverage(series []float64, period int) []float64 {
	if period <= 0 || len(series) == 0 {
		return []float64{}
	}

	result := make([]float64, len(series))

	for i := range series {
		start := i - period + 1
		if start < 0 {
			start = 0
		}

		result[i] = calculateSimpleMovingAverage(series[start : i+1])
	}

	return result
}

// calculateSimpleMovingAverage calculates the mean of window.
// The window is summed fresh each time so every output is independent of
// the values that preceded its window.
func calculateSimpleMovingAverage(window []float64) float64 {
	sum := 0.0
	for _, v := range window {
		sum += v
	}

	return sum / float64(len(window))
}
