package types

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// BacktestResult summarises a finished run. It is derived from the ledger on
// demand and never written back into it.
type BacktestResult struct {
	// Count of all accepted trades, buys and sells.
	TotalTrades int `yaml:"total_trades" json:"total_trades"`
	// Count of sell trades whose matched round trip made money.
	WinningTrades int `yaml:"winning_trades" json:"winning_trades"`
	// Count of sell trades that were not winners.
	LosingTrades int `yaml:"losing_trades" json:"losing_trades"`
	// (final / starting - 1) * 100.
	TotalReturnPct float64 `yaml:"total_return_pct" json:"total_return_pct"`
	// Largest peak-to-trough decline of the replayed cash curve, in percent.
	MaxDrawdownPct float64 `yaml:"max_drawdown_pct" json:"max_drawdown_pct"`
	// Mean round-trip return over its population standard deviation. Not annualized.
	SharpeLikeRatio float64 `yaml:"sharpe_like_ratio" json:"sharpe_like_ratio"`
	// Winning sells over all sells, in percent.
	WinRatePct float64 `yaml:"win_rate_pct" json:"win_rate_pct"`
	// Cash balance after the last trade.
	FinalCapital float64 `yaml:"final_capital" json:"final_capital"`
}

// Round returns a copy with every float rounded half away from zero to the given places.
func (r BacktestResult) Round(places int32) BacktestResult {
	round := func(v float64) float64 {
		f, _ := decimal.NewFromFloat(v).Round(places).Float64()

		return f
	}

	r.TotalReturnPct = round(r.TotalReturnPct)
	r.MaxDrawdownPct = round(r.MaxDrawdownPct)
	r.SharpeLikeRatio = round(r.SharpeLikeRatio)
	r.WinRatePct = round(r.WinRatePct)
	r.FinalCapital = round(r.FinalCapital)

	return r
}

// StrategyInfo identifies the rule that produced a run.
type StrategyInfo struct {
	// Name is the rule identifier, e.g. "sma_cross".
	Name string `yaml:"name" json:"name"`
	// Params are the resolved parameters after defaults were applied.
	Params map[string]float64 `yaml:"params" json:"params"`
}

type TradeStats struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Symbol of the simulated instrument.
	Symbol string `yaml:"symbol" json:"symbol"`
	// Strategy contains metadata about the strategy that generated these stats.
	Strategy StrategyInfo `yaml:"strategy" json:"strategy"`
	// StartingCapital is the cash the run began with.
	StartingCapital float64 `yaml:"starting_capital" json:"starting_capital"`
	// CommissionRate is the fraction of notional charged per leg.
	CommissionRate float64 `yaml:"commission_rate" json:"commission_rate"`
	// TotalFees is the sum of commissions over all trades.
	TotalFees float64 `yaml:"total_fees" json:"total_fees"`
	// RejectedOrders counts intents the ledger refused.
	RejectedOrders int `yaml:"rejected_orders" json:"rejected_orders"`
	// Result of the run.
	Result BacktestResult `yaml:"result" json:"result"`
	// TradesFilePath is the path to the trades parquet file.
	TradesFilePath string `yaml:"trades_file_path" json:"trades_file_path"`
	// DataPath is the path to the market data file used for this backtest.
	DataPath string `yaml:"data_path" json:"data_path"`
}

// TotalFees sums commissions with decimal arithmetic so the reported figure
// does not drift with the number of trades.
func TotalFees(trades []Trade) float64 {
	total := decimal.Zero
	for _, trade := range trades {
		total = total.Add(decimal.NewFromFloat(trade.Commission))
	}

	result, _ := total.Float64()

	return result
}

func WriteTradeStats(path string, stats []TradeStats) error {
	// Marshal the struct to YAML
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal trade stats to YAML: %w", err)
	}

	// Write the YAML data to the file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write trade stats to file: %w", err)
	}

	return nil
}

// ReadTradeStats loads stats previously written by WriteTradeStats.
func ReadTradeStats(path string) ([]TradeStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trade stats file: %w", err)
	}

	var stats []TradeStats
	if err := yaml.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trade stats: %w", err)
	}

	return stats, nil
}
