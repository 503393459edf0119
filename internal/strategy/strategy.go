// Package strategy holds the built-in signal rules. A rule reads closing
// prices bar by bar and emits at most one order intent per bar.
package strategy

import (
	"strconv"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

type StrategyName string

const (
	StrategyNameSMACross StrategyName = "sma_cross"
	StrategyNameMomentum StrategyName = "momentum"
)

// AllStrategies lists every rule New can build.
var AllStrategies = []any{
	StrategyNameSMACross,
	StrategyNameMomentum,
}

// CapitalFraction is the share of the initial capital committed by every buy.
const CapitalFraction = 0.95

// PositionReader exposes the live ledger position a rule may consult.
type PositionReader interface {
	GetPosition(symbol string) optional.Option[types.Position]
}

// RuntimeContext is what a rule can see while processing a bar.
type RuntimeContext struct {
	// Symbol stamped on every emitted intent.
	Symbol string
	// InitialCapital drives buy sizing. Available cash is not used.
	InitialCapital float64
	// Positions is the ledger of the run.
	Positions PositionReader
}

type Strategy interface {
	// Name returns the rule identifier.
	Name() StrategyName
	// Params returns the resolved parameters, defaults included.
	Params() Params
	// Initialize precomputes whatever series the rule needs over the whole run.
	// It must be called before the first ProcessData and resets any rule state.
	Initialize(bars []types.Bar) error
	// ProcessData evaluates bar index and returns the intent to submit, if any.
	ProcessData(ctx RuntimeContext, index int, bar types.Bar) optional.Option[types.OrderIntent]
}

// New builds the rule registered under name. Unknown names fail with
// ErrCodeInvalidStrategy before anything is simulated.
func New(name StrategyName, params Params) (Strategy, error) {
	switch name {
	case StrategyNameSMACross:
		return NewSMACross(params), nil
	case StrategyNameMomentum:
		return NewMomentum(params), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidStrategy, "unknown strategy: %s", name)
	}
}

// buySize returns the quantity bought at price: CapitalFraction of the initial capital.
func buySize(initialCapital, price float64) float64 {
	return CapitalFraction * initialCapital / price
}

func newIntent(ctx RuntimeContext, side types.PurchaseType, index int, bar types.Bar, quantity float64) types.OrderIntent {
	prefix := "buy"
	if side == types.PurchaseTypeSell {
		prefix = "sell"
	}

	return types.OrderIntent{
		ID:        prefix + "_" + strconv.Itoa(index),
		Symbol:    ctx.Symbol,
		Side:      side,
		Price:     bar.Close,
		Quantity:  quantity,
		Timestamp: bar.Timestamp,
	}
}

// heldQuantity returns the live position size for the run symbol.
func heldQuantity(ctx RuntimeContext) optional.Option[float64] {
	if ctx.Positions == nil {
		return optional.None[float64]()
	}

	position := ctx.Positions.GetPosition(ctx.Symbol)
	if position.IsNone() {
		return optional.None[float64]()
	}

	return optional.Some(position.Unwrap().Quantity)
}
