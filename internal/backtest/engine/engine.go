package engine

import (
	"context"

	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Lifecycle callback types for backtest phases
// All callbacks with error return can abort execution if they return an error

// OnRunStartCallback is called once the bars are loaded and before the first one is processed.
// runID is a unique identifier for this run, generated before processing starts.
type OnRunStartCallback func(runID string, symbol string, strategyName string, totalBars int) error

// OnProcessDataCallback is called after each bar is processed.
type OnProcessDataCallback func(current int, total int) error

// OnRunEndCallback is called after results are computed and written.
// resultFolderPath is empty when no results folder is set.
type OnRunEndCallback func(runID string, result types.BacktestResult, resultFolderPath string)

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnRunStart    *OnRunStartCallback
	OnProcessData *OnProcessDataCallback
	OnRunEnd      *OnRunEndCallback
}

type Engine interface {
	// Initialize the engine with the given YAML configuration.
	Initialize(config string) error
	// SetDataPath sets the path to the bar file handed to the data source.
	// Accepts parquet or CSV files and glob patterns DuckDB understands.
	SetDataPath(path string) error
	// SetResultsFolder sets the output directory for saving backtest results.
	// Each run is written to <folder>/<symbol>_<strategy>_<runID>.
	// Without a results folder nothing is written.
	SetResultsFolder(folder string) error
	// SetDataSource sets the data source for the engine.
	SetDataSource(dataSource datasource.DataSource) error
	// Run simulates the configured strategy over the bars and returns its result.
	// The context can be used to cancel the backtest between bars.
	Run(ctx context.Context, callbacks LifecycleCallbacks) (types.BacktestResult, error)
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
