package datasource

import (
	"slices"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// InMemoryDataSource serves a fixed slice of bars. The caller is responsible
// for ordering them; the slice is copied on construction.
type InMemoryDataSource struct {
	bars []types.Bar
}

func NewInMemoryDataSource(bars []types.Bar) *InMemoryDataSource {
	return &InMemoryDataSource{
		bars: slices.Clone(bars),
	}
}

// Initialize implements DataSource. The path is ignored.
func (m *InMemoryDataSource) Initialize(path string) error {
	return nil
}

// ReadAll implements DataSource.
func (m *InMemoryDataSource) ReadAll(start optional.Option[int64], end optional.Option[int64]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		for _, bar := range m.bars {
			if !inWindow(bar.Timestamp, start, end) {
				continue
			}

			if !yield(bar, nil) {
				return
			}
		}
	}
}

// Count implements DataSource.
func (m *InMemoryDataSource) Count(start optional.Option[int64], end optional.Option[int64]) (int, error) {
	count := 0

	for _, bar := range m.bars {
		if inWindow(bar.Timestamp, start, end) {
			count++
		}
	}

	return count, nil
}

// Close implements DataSource.
func (m *InMemoryDataSource) Close() error {
	return nil
}
