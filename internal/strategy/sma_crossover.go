package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// SMACross buys when the short simple moving average rises above the long one
// and sells the whole position when it falls below.
type SMACross struct {
	shortPeriod int
	longPeriod  int
	shortSMA    []float64
	longSMA     []float64

	// inPosition follows the rule's own signals, not ledger acceptance.
	inPosition bool
}

func NewSMACross(params Params) Strategy {
	return &SMACross{
		shortPeriod: params.Period(ParamShortPeriod),
		longPeriod:  params.Period(ParamLongPeriod),
	}
}

// Name implements Strategy.
func (s *SMACross) Name() StrategyName {
	return StrategyNameSMACross
}

// Params implements Strategy.
func (s *SMACross) Params() Params {
	return Params{
		ParamShortPeriod: float64(s.shortPeriod),
		ParamLongPeriod:  float64(s.longPeriod),
	}
}

// Initialize implements Strategy.
func (s *SMACross) Initialize(bars []types.Bar) error {
	closes := types.Closes(bars)
	s.shortSMA = indicator.SimpleMovingAverage(closes, s.shortPeriod)
	s.longSMA = indicator.SimpleMovingAverage(closes, s.longPeriod)
	s.inPosition = false

	return nil
}

// ProcessData implements Strategy.
func (s *SMACross) ProcessData(ctx RuntimeContext, index int, bar types.Bar) optional.Option[types.OrderIntent] {
	// both averages need a full window
	if index < s.longPeriod || index < s.shortPeriod-1 || index >= len(s.shortSMA) || index >= len(s.longSMA) {
		return optional.None[types.OrderIntent]()
	}

	short, long := s.shortSMA[index], s.longSMA[index]

	switch {
	case short > long && !s.inPosition:
		s.inPosition = true

		return optional.Some(newIntent(ctx, types.PurchaseTypeBuy, index, bar, buySize(ctx.InitialCapital, bar.Close)))
	case short < long && s.inPosition:
		s.inPosition = false

		held := heldQuantity(ctx)
		if held.IsNone() {
			return optional.None[types.OrderIntent]()
		}

		return optional.Some(newIntent(ctx, types.PurchaseTypeSell, index, bar, held.Unwrap()))
	}

	return optional.None[types.OrderIntent]()
}
