// Package sweep runs one backtest per point of a strategy parameter grid.
//
// Every run gets its own engine, ledger and in-memory copy of the bars, so
// runs share nothing but the read-only bar slice. Results are returned in
// grid order whatever order the runs finish in.
package sweep

import (
	"context"
	"maps"
	"runtime"
	"slices"
	"sync/atomic"

	engine_types "github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	engine "github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// OnRunCompleteCallback is called after each run finishes. Calls may come
// from several goroutines at once.
type OnRunCompleteCallback func(done int, total int)

type Options struct {
	// Workers bounds the number of concurrent runs. Zero means GOMAXPROCS.
	Workers int
	// Logger receives one line per finished sweep. Nil disables logging.
	Logger *logger.Logger
	// OnRunComplete is optional.
	OnRunComplete OnRunCompleteCallback
}

// Result is the outcome of one grid point.
type Result struct {
	Params strategy.Params      `yaml:"params" json:"params"`
	Result types.BacktestResult `yaml:"result" json:"result"`
}

// Grid expands axes into the cartesian product of their values on top of
// base. Keys are iterated in sorted order and the last key varies fastest.
// An axis without values is ignored.
func Grid(base strategy.Params, axes map[string][]float64) []strategy.Params {
	grid := []strategy.Params{maps.Clone(base)}
	if grid[0] == nil {
		grid[0] = strategy.Params{}
	}

	for _, key := range slices.Sorted(maps.Keys(axes)) {
		values := axes[key]
		if len(values) == 0 {
			continue
		}

		next := make([]strategy.Params, 0, len(grid)*len(values))
		for _, params := range grid {
			for _, value := range values {
				next = append(next, params.With(key, value))
			}
		}

		grid = next
	}

	return grid
}

// Run backtests config once per entry of grid, replacing the config's
// strategy params with the entry. The first failing run cancels the rest.
func Run(
	ctx context.Context,
	config engine.BacktestEngineV1Config,
	bars []types.Bar,
	grid []strategy.Params,
	opts Options,
) ([]Result, error) {
	if len(grid) == 0 {
		return []Result{}, nil
	}

	if _, err := strategy.New(config.Strategy.Name, strategy.Params{}); err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	results := make([]Result, len(grid))

	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, params := range grid {
		g.Go(func() error {
			result, err := runOne(gctx, config, bars, params)
			if err != nil {
				return errors.Wrapf(errors.GetCode(err), err, "sweep run %d failed", i)
			}

			results[i] = Result{Params: params, Result: result}

			if opts.OnRunComplete != nil {
				opts.OnRunComplete(int(done.Add(1)), len(grid))
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("Sweep failed", zap.Error(err))

		return nil, err
	}

	log.Info("Sweep finished",
		zap.String("strategy", string(config.Strategy.Name)),
		zap.Int("runs", len(grid)),
		zap.Int("workers", workers),
	)

	return results, nil
}

// Best returns the result with the highest total return. Ties keep the
// earliest grid point.
func Best(results []Result) (Result, bool) {
	if len(results) == 0 {
		return Result{}, false
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.Result.TotalReturnPct > best.Result.TotalReturnPct {
			best = r
		}
	}

	return best, true
}

func runOne(ctx context.Context, config engine.BacktestEngineV1Config, bars []types.Bar, params strategy.Params) (types.BacktestResult, error) {
	config.Strategy.Params = params.Map()

	e := engine.NewBacktestEngineV1WithLogger(logger.NewNopLogger())
	if err := e.InitializeWithConfig(config); err != nil {
		return types.BacktestResult{}, err
	}

	if err := e.SetDataSource(datasource.NewInMemoryDataSource(bars)); err != nil {
		return types.BacktestResult{}, err
	}

	return e.Run(ctx, engine_types.LifecycleCallbacks{})
}
