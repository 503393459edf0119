package datasource

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// SQLResult represents a row of data from a SQL query
type SQLResult struct {
	Values map[string]any
}

// DataSource provides the price bars of a run in timestamp order.
// start and end are inclusive bar timestamps; None leaves that side open.
type DataSource interface {
	// Initialize points the data source at a parquet or CSV file with the
	// columns timestamp, open, high, low, close, volume.
	Initialize(path string) error
	// ReadAll yields every bar in the window to the caller in order.
	ReadAll(start optional.Option[int64], end optional.Option[int64]) func(yield func(types.Bar, error) bool)
	// Count returns the number of bars in the window.
	Count(start optional.Option[int64], end optional.Option[int64]) (int, error)
	// Close releases any resources
	Close() error
}

// inWindow reports whether timestamp lies within the optional bounds.
func inWindow(timestamp int64, start optional.Option[int64], end optional.Option[int64]) bool {
	if start.IsSome() && timestamp < start.Unwrap() {
		return false
	}

	if end.IsSome() && timestamp > end.Unwrap() {
		return false
	}

	return true
}

// Collect drains ReadAll into a slice.
func Collect(ds DataSource, start optional.Option[int64], end optional.Option[int64]) ([]types.Bar, error) {
	var bars []types.Bar

	for bar, err := range ds.ReadAll(start, end) {
		if err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	return bars, nil
}
