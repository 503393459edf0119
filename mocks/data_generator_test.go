package mocks

import (
	"testing"
	"time"
)

func TestDataGenerator_Generate(t *testing.T) {
	gen := NewDataGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()
	config.Count = 100

	data := gen.Generate(config)

	if len(data) != 100 {
		t.Errorf("expected 100 data points, got %d", len(data))
	}

	// Verify data is in chronological order
	for i := 1; i < len(data); i++ {
		if data[i].Timestamp <= data[i-1].Timestamp {
			t.Errorf("data not in chronological order at index %d", i)
		}
	}

	// Verify OHLC values are positive
	for i, d := range data {
		if d.Open <= 0 || d.High <= 0 || d.Low <= 0 || d.Close <= 0 {
			t.Errorf("invalid OHLC values at index %d: O=%f H=%f L=%f C=%f",
				i, d.Open, d.High, d.Low, d.Close)
		}
	}

	// Verify High >= Low
	for i, d := range data {
		if d.High < d.Low {
			t.Errorf("High < Low at index %d: H=%f L=%f", i, d.High, d.Low)
		}
	}

	// Verify time intervals
	expectedInterval := config.Interval.Milliseconds()
	for i := 1; i < len(data); i++ {
		actualInterval := data[i].Timestamp - data[i-1].Timestamp
		if actualInterval != expectedInterval {
			t.Errorf("unexpected interval at index %d: expected %v, got %v",
				i, expectedInterval, actualInterval)
		}
	}
}

func TestDataGenerator_Reproducibility(t *testing.T) {
	// Same seed should produce same results
	gen1 := NewDataGenerator(42)
	gen2 := NewDataGenerator(42)

	config := DefaultConfig()
	config.Count = 10

	data1 := gen1.Generate(config)
	data2 := gen2.Generate(config)

	for i := range data1 {
		if data1[i].Close != data2[i].Close {
			t.Errorf("data not reproducible at index %d: got %f and %f",
				i, data1[i].Close, data2[i].Close)
		}
	}
}

func TestDataGenerator_Different_Seeds(t *testing.T) {
	gen1 := NewDataGenerator(42)
	gen2 := NewDataGenerator(123)

	config := DefaultConfig()
	config.Count = 10

	data1 := gen1.Generate(config)
	data2 := gen2.Generate(config)

	// Different seeds should produce different results
	sameCount := 0
	for i := range data1 {
		if data1[i].Close == data2[i].Close {
			sameCount++
		}
	}

	if sameCount == len(data1) {
		t.Error("different seeds produced identical data")
	}
}

func TestGenerate10K(t *testing.T) {
	data := Generate10K("TEST")

	if len(data) != 10000 {
		t.Errorf("expected 10000 data points, got %d", len(data))
	}

	start := DefaultConfig().StartTime.UnixMilli()
	if data[0].Timestamp != start {
		t.Errorf("expected first timestamp %d, got %d", start, data[0].Timestamp)
	}

	again := Generate10K("TEST")
	if again[9999].Close != data[9999].Close {
		t.Error("Generate10K is not reproducible for the same name")
	}
}

func TestBarsFromCloses(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	bars := BarsFromCloses(start, 60_000, 10, 11, 12)

	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}

	for i, bar := range bars {
		if bar.Timestamp != start+int64(i)*60_000 {
			t.Errorf("unexpected timestamp at index %d: %d", i, bar.Timestamp)
		}

		if bar.Open != bar.Close || bar.High != bar.Close || bar.Low != bar.Close {
			t.Errorf("bar %d is not flat: %+v", i, bar)
		}
	}
}
