package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Momentum buys when the close moved up more than threshold over the last
// period bars and no position is open, and sells the whole position when it
// moved down more than threshold.
type Momentum struct {
	period    int
	threshold float64
	closes    []float64
}

func NewMomentum(params Params) Strategy {
	return &Momentum{
		period:    params.Period(ParamPeriod),
		threshold: params.Get(ParamThreshold),
	}
}

// Name implements Strategy.
func (m *Momentum) Name() StrategyName {
	return StrategyNameMomentum
}

// Params implements Strategy.
func (m *Momentum) Params() Params {
	return Params{
		ParamPeriod:    float64(m.period),
		ParamThreshold: m.threshold,
	}
}

// Initialize implements Strategy.
func (m *Momentum) Initialize(bars []types.Bar) error {
	m.closes = types.Closes(bars)

	return nil
}

// ProcessData implements Strategy.
func (m *Momentum) ProcessData(ctx RuntimeContext, index int, bar types.Bar) optional.Option[types.OrderIntent] {
	if index < m.period || index >= len(m.closes) {
		return optional.None[types.OrderIntent]()
	}

	previous := m.closes[index-m.period]
	if previous == 0 {
		return optional.None[types.OrderIntent]()
	}

	momentum := (m.closes[index] - previous) / previous
	held := heldQuantity(ctx)

	switch {
	case momentum > m.threshold && held.IsNone():
		return optional.Some(newIntent(ctx, types.PurchaseTypeBuy, index, bar, buySize(ctx.InitialCapital, bar.Close)))
	case momentum < -m.threshold && held.IsSome():
		return optional.Some(newIntent(ctx, types.PurchaseTypeSell, index, bar, held.Unwrap()))
	}

	return optional.None[types.OrderIntent]()
}
