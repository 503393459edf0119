package indicator

// ExponentialMovingAverage returns the EMA of series.
//
// The first output equals the first input and every later output is
// (value - previous) * multiplier + previous, where Multiplier = 2 / (Period + 1).
// There is no warm-up truncation. A non-positive period or an empty series
// yields an empty slice.
func ExponentialMovingAverage(series []float64, period int) []float64 {
	if period <= 0 || len(series) == 0 {
		return []float64{}
	}

	multiplier := 2.0 / float64(period+1)
	result := make([]float64, len(series))
	result[0] = series[0]

	for i := 1; i < len(series); i++ {
		result[i] = (series[i]-result[i-1])*multiplier + result[i-1]
	}

	return result
}
