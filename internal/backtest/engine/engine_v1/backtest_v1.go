package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/stats"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/writers"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

const (
	statsFileName      = "stats.yaml"
	tradesFileName     = "trades.parquet"
	rejectionsFileName = "rejections.parquet"
)

type BacktestEngineV1 struct {
	config        BacktestEngineV1Config
	strategy      strategy.Strategy
	dataPath      string
	resultsFolder string
	log           *logger.Logger
	state         *BacktestState
	datasource    datasource.DataSource
	initialized   bool
}

func NewBacktestEngineV1() engine.Engine {
	return NewBacktestEngineV1WithLogger(nil)
}

// NewBacktestEngineV1WithLogger creates an engine that logs to log. A nil
// logger makes Initialize build the default production logger.
func NewBacktestEngineV1WithLogger(log *logger.Logger) *BacktestEngineV1 {
	return &BacktestEngineV1{
		config:        EmptyConfig(),
		strategy:      nil,
		dataPath:      "",
		resultsFolder: "",
		log:           log,
		state:         nil,
		datasource:    nil,
		initialized:   false,
	}
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	if b.log == nil {
		var loggerError error

		b.log, loggerError = logger.NewLogger()
		if loggerError != nil {
			return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create logger", loggerError)
		}
	}

	parsed, err := LoadConfig(config)
	if err != nil {
		b.log.Error("Invalid backtest config", zap.Error(err))

		return err
	}

	return b.InitializeWithConfig(parsed)
}

// InitializeWithConfig initializes the engine from an already parsed config.
// The config is validated again and the strategy is resolved here, so an
// unknown strategy fails before any bar is read.
func (b *BacktestEngineV1) InitializeWithConfig(config BacktestEngineV1Config) error {
	if b.log == nil {
		b.log = logger.NewNopLogger()
	}

	if err := config.Validate(); err != nil {
		return err
	}

	s, err := strategy.New(config.Strategy.Name, config.StrategyParams())
	if err != nil {
		b.log.Error("Failed to create strategy",
			zap.String("strategy", string(config.Strategy.Name)),
			zap.Error(err),
		)

		return err
	}

	b.config = config
	b.strategy = s
	b.initialized = true

	b.log.Debug("Backtest engine initialized",
		zap.String("symbol", config.Symbol),
		zap.String("strategy", string(config.Strategy.Name)),
		zap.Float64("initial_capital", config.InitialCapital),
		zap.Float64("commission_rate", config.CommissionRate),
		zap.String("broker", string(config.Broker)),
	)

	return nil
}

// SetDataPath implements engine.Engine.
func (b *BacktestEngineV1) SetDataPath(path string) error {
	if path == "" {
		b.dataPath = ""

		return nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeBacktestDataPathError, err, "failed to resolve data path %s", path)
	}

	b.dataPath = absPath

	return nil
}

// SetResultsFolder implements engine.Engine.
func (b *BacktestEngineV1) SetResultsFolder(folder string) error {
	b.resultsFolder = folder

	return nil
}

// SetDataSource implements engine.Engine.
func (b *BacktestEngineV1) SetDataSource(datasource datasource.DataSource) error {
	b.datasource = datasource

	return nil
}

// State returns the ledger of the last run, or nil before the first run.
func (b *BacktestEngineV1) State() *BacktestState {
	return b.state
}

// Config returns the active configuration.
func (b *BacktestEngineV1) Config() BacktestEngineV1Config {
	return b.config
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) (types.BacktestResult, error) {
	if err := b.preRunCheck(); err != nil {
		return types.BacktestResult{}, err
	}

	runID := uuid.New().String()
	strategyName := string(b.strategy.Name())

	if b.dataPath != "" {
		if err := b.datasource.Initialize(b.dataPath); err != nil {
			b.log.Error("Failed to initialize data source",
				zap.String("data", b.dataPath),
				zap.Error(err),
			)

			return types.BacktestResult{}, err
		}
	}

	bars, err := datasource.Collect(b.datasource, b.config.StartTime, b.config.EndTime)
	if err != nil {
		return types.BacktestResult{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read bars", err)
	}

	b.state = NewBacktestState(
		b.config.InitialCapital,
		commission_fee.GetCommissionFeeHandler(b.config.Broker, b.config.CommissionRate),
	)

	if err := b.strategy.Initialize(bars); err != nil {
		return types.BacktestResult{}, errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to initialize strategy", err)
	}

	b.log.Debug("Running strategy",
		zap.String("run_id", runID),
		zap.String("strategy", strategyName),
		zap.String("data", b.dataPath),
		zap.Int("bars", len(bars)),
	)

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(runID, b.config.Symbol, strategyName, len(bars)); err != nil {
			return types.BacktestResult{}, errors.Wrap(errors.ErrCodeCallbackFailed, "run start callback failed", err)
		}
	}

	runtimeContext := strategy.RuntimeContext{
		Symbol:         b.config.Symbol,
		InitialCapital: b.config.InitialCapital,
		Positions:      b.state,
	}

	rejections := []types.Rejection{}

	for i, bar := range bars {
		if err := ctx.Err(); err != nil {
			b.log.Info("Backtest cancelled",
				zap.String("run_id", runID),
				zap.Int("processed", i),
			)

			return types.BacktestResult{}, errors.Wrap(errors.ErrCodeBacktestCancelled, "backtest cancelled", err)
		}

		intent := b.strategy.ProcessData(runtimeContext, i, bar)
		if intent.IsSome() {
			if _, err := b.state.Process(intent.Unwrap()); err != nil {
				if !errors.IsRejection(err) {
					return types.BacktestResult{}, err
				}

				rejections = append(rejections, types.Rejection{
					Intent: intent.Unwrap(),
					Code:   int(errors.GetCode(err)),
					Reason: err.Error(),
				})

				b.log.Debug("Order rejected",
					zap.String("order_id", intent.Unwrap().ID),
					zap.Error(err),
				)
			}
		}

		if callbacks.OnProcessData != nil {
			if err := (*callbacks.OnProcessData)(i+1, len(bars)); err != nil {
				return types.BacktestResult{}, errors.Wrap(errors.ErrCodeCallbackFailed, "process data callback failed", err)
			}
		}
	}

	result := stats.Calculate(b.state)

	resultFolderPath := ""
	if b.resultsFolder != "" {
		resultFolderPath = getResultFolder(b.resultsFolder, b.config.Symbol, strategyName, runID)

		if err := b.writeResults(runID, resultFolderPath, result, rejections); err != nil {
			b.log.Error("Failed to write results",
				zap.String("result", resultFolderPath),
				zap.Error(err),
			)

			return result, err
		}
	}

	b.log.Info("Backtest finished",
		zap.String("run_id", runID),
		zap.String("symbol", b.config.Symbol),
		zap.String("strategy", strategyName),
		zap.Int("total_trades", result.TotalTrades),
		zap.Int("rejected_orders", len(rejections)),
		zap.Float64("total_return_pct", result.TotalReturnPct),
		zap.Float64("final_capital", result.FinalCapital),
	)

	if callbacks.OnRunEnd != nil {
		(*callbacks.OnRunEnd)(runID, result, resultFolderPath)
	}

	return result, nil
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", fmt.Errorf("failed to generate schema: %w", err)
	}

	return schema, nil
}

func (b *BacktestEngineV1) writeResults(runID string, resultFolderPath string, result types.BacktestResult, rejections []types.Rejection) error {
	if b.state == nil {
		return errors.New(errors.ErrCodeBacktestStateNil, "backtest state is nil")
	}

	if err := os.MkdirAll(resultFolderPath, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to create result folder", err)
	}

	trades := b.state.GetAllTrades()
	tradesPath := filepath.Join(resultFolderPath, tradesFileName)

	tradesWriter := writers.NewTradesWriter(tradesPath)
	if err := tradesWriter.Initialize(); err != nil {
		return err
	}
	defer tradesWriter.Close()

	for _, trade := range trades {
		if err := tradesWriter.Write(trade); err != nil {
			return err
		}
	}

	if err := tradesWriter.Flush(); err != nil {
		return err
	}

	rejectionsWriter := writers.NewRejectionsWriter(filepath.Join(resultFolderPath, rejectionsFileName))
	if err := rejectionsWriter.Initialize(); err != nil {
		return err
	}
	defer rejectionsWriter.Close()

	for _, rejection := range rejections {
		if err := rejectionsWriter.Write(rejection); err != nil {
			return err
		}
	}

	if err := rejectionsWriter.Flush(); err != nil {
		return err
	}

	tradeStats := types.TradeStats{
		ID:              runID,
		Timestamp:       time.Now().UTC(),
		Symbol:          b.config.Symbol,
		Strategy:        types.StrategyInfo{Name: string(b.strategy.Name()), Params: b.strategy.Params()},
		StartingCapital: b.config.InitialCapital,
		CommissionRate:  b.config.CommissionRate,
		TotalFees:       types.TotalFees(trades),
		RejectedOrders:  len(rejections),
		Result:          result.Round(4),
		TradesFilePath:  tradesPath,
		DataPath:        b.dataPath,
	}

	if err := types.WriteTradeStats(filepath.Join(resultFolderPath, statsFileName), []types.TradeStats{tradeStats}); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to write stats", err)
	}

	return nil
}

func (b *BacktestEngineV1) preRunCheck() error {
	if !b.initialized || b.strategy == nil {
		return errors.New(errors.ErrCodeBacktestInitFailed, "engine is not initialized")
	}

	if b.datasource == nil {
		b.log.Error("No datasource set")

		return errors.New(errors.ErrCodeBacktestNoDatasource, "no datasource set")
	}

	return nil
}
