package types

import "time"

// Bar is one OHLCV price sample. Bars are supplied in ascending timestamp
// order by the caller; nothing in the engine re-sorts them.
type Bar struct {
	// Timestamp is caller-consistent: unix seconds or unix milliseconds.
	Timestamp int64   `yaml:"timestamp" json:"timestamp" csv:"timestamp"`
	Open      float64 `yaml:"open" json:"open" csv:"open"`
	High      float64 `yaml:"high" json:"high" csv:"high"`
	Low       float64 `yaml:"low" json:"low" csv:"low"`
	Close     float64 `yaml:"close" json:"close" csv:"close"`
	Volume    float64 `yaml:"volume" json:"volume" csv:"volume"`
}

// Time interprets the timestamp as unix milliseconds.
func (b Bar) Time() time.Time {
	return time.UnixMilli(b.Timestamp).UTC()
}

// Closes extracts the close prices of bars in order.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}

	return closes
}
