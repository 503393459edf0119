package stats

import (
	"testing"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

type fakeLedger struct {
	starting float64
	current  float64
	trades   []types.Trade
}

func (f *fakeLedger) StartingCapital() float64 {
	return f.starting
}

func (f *fakeLedger) CurrentCapital() float64 {
	return f.current
}

func (f *fakeLedger) GetAllTrades() []types.Trade {
	return f.trades
}

func newLedger(starting float64, trades ...types.Trade) *fakeLedger {
	ledger := &fakeLedger{starting: starting, trades: trades}
	ledger.current = CapitalCurve(starting, trades)[len(trades)]

	return ledger
}

func buy(price, quantity float64, timestamp int64, commission float64) types.Trade {
	return types.Trade{Symbol: "TEST", Side: types.PurchaseTypeBuy, Price: price, Quantity: quantity, Timestamp: timestamp, Commission: commission}
}

func sell(price, quantity float64, timestamp int64, commission float64) types.Trade {
	return types.Trade{Symbol: "TEST", Side: types.PurchaseTypeSell, Price: price, Quantity: quantity, Timestamp: timestamp, Commission: commission}
}

type StatsTestSuite struct {
	suite.Suite
}

func TestStatsSuite(t *testing.T) {
	suite.Run(t, new(StatsTestSuite))
}

func (suite *StatsTestSuite) TestEmptyLedger() {
	result := Calculate(newLedger(10000))

	suite.Equal(types.BacktestResult{FinalCapital: 10000}, result)
}

func (suite *StatsTestSuite) TestSingleRoundTrip() {
	result := Calculate(newLedger(10000,
		buy(100, 10, 1, 1),
		sell(110, 10, 2, 1.1),
	))

	suite.Equal(2, result.TotalTrades)
	suite.Equal(1, result.WinningTrades)
	suite.Equal(0, result.LosingTrades)
	suite.InDelta(100.0, result.WinRatePct, 1e-9)
	suite.InDelta(0.979, result.TotalReturnPct, 1e-9)
	suite.InDelta(10097.9, result.FinalCapital, 1e-9)
	// 10000 -> 8999 is the deepest point of the cash curve
	suite.InDelta(10.01, result.MaxDrawdownPct, 1e-9)
	suite.Equal(0.0, result.SharpeLikeRatio)
}

func (suite *StatsTestSuite) TestMaxDrawdown() {
	tests := []struct {
		name     string
		curve    []float64
		expected float64
	}{
		{"empty", nil, 0},
		{"single point", []float64{10000}, 0},
		{"monotonic rise", []float64{100, 110, 120}, 0},
		{"deepest trough after partial recovery", []float64{10000, 9500, 9800, 9000, 9600}, 10},
		{"new peak resets reference", []float64{100, 80, 200, 150}, 25},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.expected, MaxDrawdown(tc.curve), 1e-9)
		})
	}
}

func (suite *StatsTestSuite) TestUnmatchedSellCountsAsLosing() {
	ledger := &fakeLedger{starting: 1000, current: 1100, trades: []types.Trade{sell(100, 1, 1, 0)}}

	result := Calculate(ledger)
	suite.Equal(0, result.WinningTrades)
	suite.Equal(1, result.LosingTrades)
	suite.Equal(0.0, result.WinRatePct)
}

func (suite *StatsTestSuite) TestSameTimestampDoesNotPair() {
	result := Calculate(newLedger(1000,
		buy(10, 1, 5, 0),
		sell(20, 1, 5, 0),
	))

	suite.Equal(0, result.WinningTrades)
	suite.Equal(1, result.LosingTrades)
}

func (suite *StatsTestSuite) TestPairingUsesFirstEarlierBuy() {
	// the second sell is paired with the 100 buy, not the 80 buy
	result := Calculate(newLedger(10000,
		buy(100, 5, 1, 0),
		sell(90, 5, 2, 0),
		buy(80, 5, 3, 0),
		sell(95, 5, 4, 0),
	))

	suite.Equal(4, result.TotalTrades)
	suite.Equal(0, result.WinningTrades)
	suite.Equal(2, result.LosingTrades)
	suite.Equal(0.0, result.WinRatePct)
}

func (suite *StatsTestSuite) TestPairingIgnoresOtherSymbols() {
	other := buy(1, 1, 1, 0)
	other.Symbol = "OTHER"

	result := Calculate(newLedger(10000,
		other,
		buy(100, 1, 2, 0),
		sell(110, 1, 3, 0),
	))

	suite.Equal(1, result.WinningTrades)
}

func (suite *StatsTestSuite) TestSharpeLike() {
	tests := []struct {
		name     string
		trades   []types.Trade
		expected float64
	}{
		{
			name: "two different round trips",
			trades: []types.Trade{
				buy(1, 10, 1, 0), sell(2, 10, 2, 0),
				buy(1, 10, 3, 0), sell(4, 10, 4, 0),
			},
			expected: 2.0,
		},
		{
			name: "identical returns have zero deviation",
			trades: []types.Trade{
				buy(1, 10, 1, 0), sell(2, 10, 2, 0),
				buy(1, 10, 3, 0), sell(2, 10, 4, 0),
			},
			expected: 0,
		},
		{
			name:     "one sample",
			trades:   []types.Trade{buy(1, 10, 1, 0), sell(2, 10, 2, 0)},
			expected: 0,
		},
		{
			name: "misaligned pairs are skipped",
			trades: []types.Trade{
				buy(1, 10, 1, 0), buy(1, 10, 2, 0),
				sell(2, 10, 3, 0), sell(2, 10, 4, 0),
				buy(1, 10, 5, 0),
			},
			expected: 0,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.expected, SharpeLike(1000, tc.trades), 1e-9)
		})
	}
}

func (suite *StatsTestSuite) TestCapitalCurve() {
	curve := CapitalCurve(1000, []types.Trade{buy(10, 10, 1, 1), sell(12, 10, 2, 1)})

	suite.Equal([]float64{1000, 899, 1018}, curve)
}

func (suite *StatsTestSuite) TestCalculateIsPure() {
	ledger := newLedger(10000, buy(100, 10, 1, 1), sell(110, 10, 2, 1.1))

	suite.Equal(Calculate(ledger), Calculate(ledger))
	suite.Len(ledger.trades, 2)
}
