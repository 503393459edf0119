package engine

import (
	"maps"
	"slices"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// BacktestState is the portfolio ledger of a single run. It holds the cash
// balance, the open positions and the append-only trade log.
//
// BacktestState is not safe for concurrent use. Every run owns its own state.
type BacktestState struct {
	startingCapital float64
	currentCapital  float64
	positions       map[string]types.Position
	trades          []types.Trade
	commission      commission_fee.CommissionFee
}

// StateSnapshot is a deep copy of the ledger at one point in time.
type StateSnapshot struct {
	StartingCapital float64
	CurrentCapital  float64
	Positions       map[string]types.Position
	Trades          []types.Trade
}

func NewBacktestState(startingCapital float64, commission commission_fee.CommissionFee) *BacktestState {
	if commission == nil {
		commission = commission_fee.NewZeroCommissionFee()
	}

	return &BacktestState{
		startingCapital: startingCapital,
		currentCapital:  startingCapital,
		positions:       make(map[string]types.Position),
		trades:          []types.Trade{},
		commission:      commission,
	}
}

// Process applies one order intent to the ledger. Commission is computed once
// per buy and once per sell that passes its position checks.
//
// An accepted intent deducts or credits cash, updates the position for its
// symbol and appends a Trade, which is returned. A rejected intent returns an
// error carrying one of the rejection codes and leaves the ledger untouched:
//   - ErrCodeInvalidOrderIntent: the intent failed validation
//   - ErrCodeInsufficientCapital: a buy costs more than the available cash
//   - ErrCodeNoPosition: a sell for a symbol that is not held
//   - ErrCodeInsufficientPosition: a sell for more than is held (no partial fills)
func (b *BacktestState) Process(intent types.OrderIntent) (types.Trade, error) {
	if err := intent.Validate(); err != nil {
		return types.Trade{}, err
	}

	var commission float64

	switch intent.Side {
	case types.PurchaseTypeBuy:
		commission = b.commission.Calculate(intent.Price, intent.Quantity)

		cost := intent.Notional() + commission
		if cost > b.currentCapital {
			return types.Trade{}, errors.Newf(errors.ErrCodeInsufficientCapital,
				"buy %s costs %.4f but only %.4f is available", intent.ID, cost, b.currentCapital)
		}

		b.currentCapital -= cost

		position, ok := b.positions[intent.Symbol]
		if !ok {
			position = types.Position{Symbol: intent.Symbol, Quantity: 0, AveragePrice: 0}
		}

		totalCost := position.AveragePrice*position.Quantity + intent.Price*intent.Quantity
		position.Quantity += intent.Quantity
		position.AveragePrice = totalCost / position.Quantity
		b.positions[intent.Symbol] = position

	case types.PurchaseTypeSell:
		position, ok := b.positions[intent.Symbol]
		if !ok {
			return types.Trade{}, errors.Newf(errors.ErrCodeNoPosition,
				"sell %s: no open position for %s", intent.ID, intent.Symbol)
		}

		if position.Quantity < intent.Quantity {
			return types.Trade{}, errors.Newf(errors.ErrCodeInsufficientPosition,
				"sell %s wants %.8f but only %.8f of %s is held", intent.ID, intent.Quantity, position.Quantity, intent.Symbol)
		}

		commission = b.commission.Calculate(intent.Price, intent.Quantity)
		b.currentCapital += intent.Notional() - commission

		position.Quantity -= intent.Quantity
		if position.Quantity <= 0 {
			delete(b.positions, intent.Symbol)
		} else {
			b.positions[intent.Symbol] = position
		}
	}

	trade := types.Trade{
		Symbol:     intent.Symbol,
		Side:       intent.Side,
		Price:      intent.Price,
		Quantity:   intent.Quantity,
		Timestamp:  intent.Timestamp,
		Commission: commission,
	}
	b.trades = append(b.trades, trade)

	return trade, nil
}

// StartingCapital returns the cash the run began with.
func (b *BacktestState) StartingCapital() float64 {
	return b.startingCapital
}

// CurrentCapital returns the cash currently available.
func (b *BacktestState) CurrentCapital() float64 {
	return b.currentCapital
}

// GetPosition returns the open position for symbol, if any.
func (b *BacktestState) GetPosition(symbol string) optional.Option[types.Position] {
	position, ok := b.positions[symbol]
	if !ok {
		return optional.None[types.Position]()
	}

	return optional.Some(position)
}

// GetAllPositions returns all open positions ordered by symbol.
func (b *BacktestState) GetAllPositions() []types.Position {
	positions := make([]types.Position, 0, len(b.positions))
	for _, symbol := range slices.Sorted(maps.Keys(b.positions)) {
		positions = append(positions, b.positions[symbol])
	}

	return positions
}

// GetAllTrades returns a copy of the trade log in execution order.
func (b *BacktestState) GetAllTrades() []types.Trade {
	return slices.Clone(b.trades)
}

// ReplayCapital rebuilds the cash balance from the starting capital and the
// trade log. It always equals CurrentCapital.
func (b *BacktestState) ReplayCapital() float64 {
	capital := b.startingCapital
	for _, trade := range b.trades {
		capital += trade.CashEffect()
	}

	return capital
}

// Snapshot returns a deep copy of the ledger.
func (b *BacktestState) Snapshot() StateSnapshot {
	return StateSnapshot{
		StartingCapital: b.startingCapital,
		CurrentCapital:  b.currentCapital,
		Positions:       maps.Clone(b.positions),
		Trades:          slices.Clone(b.trades),
	}
}
