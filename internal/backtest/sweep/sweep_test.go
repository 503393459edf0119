package sweep

import (
	"context"
	"sync"
	"testing"

	engine "github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/mocks"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SweepTestSuite struct {
	suite.Suite
	config engine.BacktestEngineV1Config
	bars   []types.Bar
}

func TestSweepSuite(t *testing.T) {
	suite.Run(t, new(SweepTestSuite))
}

func (suite *SweepTestSuite) SetupTest() {
	suite.bars = mocks.Generate10K("sweep")

	suite.config = engine.EmptyConfig()
	suite.config.Symbol = "TEST"
	suite.config.InitialCapital = 10000
	suite.config.CommissionRate = 0.001
	suite.config.Broker = commission_fee.BrokerFixedRate
	suite.config.Strategy = engine.StrategyConfig{Name: strategy.StrategyNameSMACross, Params: nil}
}

func (suite *SweepTestSuite) TestGrid() {
	grid := Grid(strategy.Params{strategy.ParamThreshold: 0.5}, map[string][]float64{
		strategy.ParamShortPeriod: {3, 5},
		strategy.ParamLongPeriod:  {10, 20, 30},
		"unused":                  {},
	})

	suite.Require().Len(grid, 6)
	// long_period sorts before short_period so short varies fastest
	suite.Equal(strategy.Params{"threshold": 0.5, "long_period": 10, "short_period": 3}, grid[0])
	suite.Equal(strategy.Params{"threshold": 0.5, "long_period": 10, "short_period": 5}, grid[1])
	suite.Equal(strategy.Params{"threshold": 0.5, "long_period": 30, "short_period": 5}, grid[5])
}

func (suite *SweepTestSuite) TestGridWithoutAxes() {
	grid := Grid(nil, nil)

	suite.Require().Len(grid, 1)
	suite.Empty(grid[0])
}

func (suite *SweepTestSuite) TestRunMatchesSequentialRuns() {
	grid := Grid(nil, map[string][]float64{
		strategy.ParamShortPeriod: {3, 5, 8},
		strategy.ParamLongPeriod:  {20, 50},
	})

	results, err := Run(context.Background(), suite.config, suite.bars, grid, Options{Workers: 4})
	suite.Require().NoError(err)
	suite.Require().Len(results, len(grid))

	for i, params := range grid {
		expected, err := runOne(context.Background(), suite.config, suite.bars, params)
		suite.Require().NoError(err)

		suite.Equal(params, results[i].Params)
		suite.Equal(expected, results[i].Result)
	}
}

func (suite *SweepTestSuite) TestRunIsDeterministic() {
	grid := Grid(nil, map[string][]float64{strategy.ParamShortPeriod: {2, 4, 6, 8}})

	first, err := Run(context.Background(), suite.config, suite.bars, grid, Options{Workers: 1})
	suite.Require().NoError(err)

	second, err := Run(context.Background(), suite.config, suite.bars, grid, Options{Workers: 8})
	suite.Require().NoError(err)

	suite.Equal(first, second)
}

func (suite *SweepTestSuite) TestRunReportsProgress() {
	grid := Grid(nil, map[string][]float64{strategy.ParamLongPeriod: {10, 20, 30, 40}})

	var mu sync.Mutex
	seen := []int{}

	_, err := Run(context.Background(), suite.config, suite.bars, grid, Options{
		Workers: 2,
		Logger:  logger.NewNopLogger(),
		OnRunComplete: func(done int, total int) {
			mu.Lock()
			defer mu.Unlock()

			suite.Equal(4, total)
			seen = append(seen, done)
		},
	})
	suite.Require().NoError(err)
	suite.ElementsMatch([]int{1, 2, 3, 4}, seen)
}

func (suite *SweepTestSuite) TestRunEmptyGrid() {
	results, err := Run(context.Background(), suite.config, suite.bars, nil, Options{})
	suite.NoError(err)
	suite.Empty(results)
}

func (suite *SweepTestSuite) TestRunUnknownStrategy() {
	suite.config.Strategy.Name = "unknown"

	_, err := Run(context.Background(), suite.config, suite.bars, Grid(nil, nil), Options{})
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeInvalidStrategy, errors.GetCode(err))
}

func (suite *SweepTestSuite) TestRunCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, suite.config, suite.bars, Grid(nil, nil), Options{})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestCancelled))
}

func (suite *SweepTestSuite) TestRunKeepsRunErrorCode() {
	suite.config.InitialCapital = 0

	_, err := Run(context.Background(), suite.config, suite.bars, Grid(nil, nil), Options{})
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeInvalidConfiguration, errors.GetCode(err))
	suite.Contains(err.Error(), "sweep run 0 failed")
}

func (suite *SweepTestSuite) TestBest() {
	_, ok := Best(nil)
	suite.False(ok)

	results := []Result{
		{Params: strategy.Params{"period": 1}, Result: types.BacktestResult{TotalReturnPct: 1}},
		{Params: strategy.Params{"period": 2}, Result: types.BacktestResult{TotalReturnPct: 5}},
		{Params: strategy.Params{"period": 3}, Result: types.BacktestResult{TotalReturnPct: 5}},
	}

	best, ok := Best(results)
	suite.True(ok)
	suite.Equal(strategy.Params{"period": 2}, best.Params)
}
