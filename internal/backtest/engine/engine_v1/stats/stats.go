// Package stats derives run metrics from a finished ledger.
package stats

import (
	"math"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Ledger is the read-only view of a run the metrics need.
type Ledger interface {
	StartingCapital() float64
	CurrentCapital() float64
	GetAllTrades() []types.Trade
}

// Calculate computes the BacktestResult of a ledger. It does not mutate the ledger.
func Calculate(ledger Ledger) types.BacktestResult {
	starting := ledger.StartingCapital()
	current := ledger.CurrentCapital()
	trades := ledger.GetAllTrades()

	sells, wins := countWins(trades)

	winRate := 0.0
	if sells > 0 {
		winRate = float64(wins) / float64(sells) * 100
	}

	totalReturn := 0.0
	if starting > 0 {
		totalReturn = (current/starting - 1) * 100
	}

	return types.BacktestResult{
		TotalTrades:     len(trades),
		WinningTrades:   wins,
		LosingTrades:    sells - wins,
		TotalReturnPct:  totalReturn,
		MaxDrawdownPct:  MaxDrawdown(CapitalCurve(starting, trades)),
		SharpeLikeRatio: SharpeLike(starting, trades),
		WinRatePct:      winRate,
		FinalCapital:    current,
	}
}

// CapitalCurve replays the cash balance after each trade, starting with the
// starting capital itself.
func CapitalCurve(starting float64, trades []types.Trade) []float64 {
	curve := make([]float64, 0, len(trades)+1)
	curve = append(curve, starting)

	capital := starting
	for _, trade := range trades {
		capital += trade.CashEffect()
		curve = append(curve, capital)
	}

	return curve
}

// MaxDrawdown returns the largest peak-to-trough decline of curve in percent.
// The first element seeds the peak. An empty curve or a non-positive peak yields 0.
func MaxDrawdown(curve []float64) float64 {
	if len(curve) == 0 {
		return 0
	}

	peak := curve[0]
	maxDrawdown := 0.0

	for _, value := range curve {
		if value > peak {
			peak = value
		}

		if peak <= 0 {
			continue
		}

		drawdown := (peak - value) / peak * 100
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	return maxDrawdown
}

// roundTripPnL is the profit of selling sell against buy, net of both commissions.
func roundTripPnL(buy, sell types.Trade) float64 {
	return (sell.Price-buy.Price)*sell.Quantity - sell.Commission - buy.Commission
}

// countWins pairs every sell with the first buy in log order for the same
// symbol with an earlier timestamp. Sells without such a buy never win.
func countWins(trades []types.Trade) (sells int, wins int) {
	for _, sell := range trades {
		if sell.Side != types.PurchaseTypeSell {
			continue
		}

		sells++

		for _, buy := range trades {
			if buy.Side != types.PurchaseTypeBuy || buy.Symbol != sell.Symbol || buy.Timestamp >= sell.Timestamp {
				continue
			}

			if roundTripPnL(buy, sell) > 0 {
				wins++
			}

			break
		}
	}

	return sells, wins
}

// SharpeLike walks trades in consecutive pairs. A (Buy, Sell) pair contributes
// its round-trip pnl over the starting capital; any other pair is skipped.
// The ratio is mean over population standard deviation, or 0 with fewer than
// two samples or zero deviation.
func SharpeLike(starting float64, trades []types.Trade) float64 {
	if starting <= 0 {
		return 0
	}

	var returns []float64

	for i := 0; i+1 < len(trades); i += 2 {
		buy, sell := trades[i], trades[i+1]
		if buy.Side != types.PurchaseTypeBuy || sell.Side != types.PurchaseTypeSell {
			continue
		}

		returns = append(returns, roundTripPnL(buy, sell)/starting)
	}

	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}

	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}

	variance /= float64(len(returns))

	if variance <= 0 {
		return 0
	}

	return mean / math.Sqrt(variance)
}
