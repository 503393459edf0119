package engine

import (
	"errors"
	"testing"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

type EngineTestSuite struct {
	suite.Suite
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (suite *EngineTestSuite) TestOnProcessDataCallbackWithProgress() {
	var progress []int
	callback := OnProcessDataCallback(func(current int, total int) error {
		progress = append(progress, current)
		return nil
	})

	for i := 1; i <= 5; i++ {
		err := callback(i, 5)
		suite.NoError(err)
	}

	suite.Equal([]int{1, 2, 3, 4, 5}, progress)
}

func (suite *EngineTestSuite) TestOnRunStartCallbackCanAbort() {
	callback := OnRunStartCallback(func(runID string, symbol string, strategyName string, totalBars int) error {
		if totalBars == 0 {
			return errors.New("no bars")
		}

		return nil
	})

	suite.Error(callback("run", "TEST", "sma_cross", 0))
	suite.NoError(callback("run", "TEST", "sma_cross", 10))
}

func (suite *EngineTestSuite) TestLifecycleCallbacksZeroValue() {
	var callbacks LifecycleCallbacks

	suite.Nil(callbacks.OnRunStart)
	suite.Nil(callbacks.OnProcessData)
	suite.Nil(callbacks.OnRunEnd)

	var got types.BacktestResult
	onEnd := OnRunEndCallback(func(runID string, result types.BacktestResult, resultFolderPath string) {
		got = result
	})
	callbacks.OnRunEnd = &onEnd

	(*callbacks.OnRunEnd)("run", types.BacktestResult{TotalTrades: 3}, "")
	suite.Equal(3, got.TotalTrades)
}
