package datasource

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryDataSource(t *testing.T) {
	bars := mocks.BarsFromCloses(1000, 1000, 1, 2, 3, 4, 5)
	ds := NewInMemoryDataSource(bars)
	require.NoError(t, ds.Initialize("ignored"))

	t.Run("reads everything in order", func(t *testing.T) {
		got, err := Collect(ds, optional.None[int64](), optional.None[int64]())
		require.NoError(t, err)
		assert.Equal(t, bars, got)
	})

	t.Run("window is inclusive", func(t *testing.T) {
		got, err := Collect(ds, optional.Some[int64](2000), optional.Some[int64](4000))
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, 2.0, got[0].Close)
		assert.Equal(t, 4.0, got[2].Close)

		count, err := ds.Count(optional.Some[int64](2000), optional.Some[int64](4000))
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("copy is independent of the caller slice", func(t *testing.T) {
		bars[0].Close = 100

		got, err := Collect(ds, optional.None[int64](), optional.Some[int64](1000))
		require.NoError(t, err)
		assert.Equal(t, 1.0, got[0].Close)
	})

	require.NoError(t, ds.Close())
}
