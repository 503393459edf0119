package strategy

import (
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Sink receives every intent a rule emits, synchronously and in bar order.
// A returned error is the sink's verdict on the intent and does not stop the run.
type Sink func(intent types.OrderIntent) error

// Generate initializes s over bars and feeds it every bar in order. Each
// emitted intent is handed to sink before the next bar is evaluated, so the
// rule observes the ledger as updated by its previous intents. It returns the
// number of intents emitted and the number the sink refused.
func Generate(s Strategy, bars []types.Bar, ctx RuntimeContext, sink Sink) (emitted int, refused int, err error) {
	if err := s.Initialize(bars); err != nil {
		return 0, 0, err
	}

	for i, bar := range bars {
		intent := s.ProcessData(ctx, i, bar)
		if intent.IsNone() {
			continue
		}

		emitted++

		if sinkErr := sink(intent.Unwrap()); sinkErr != nil {
			refused++
		}
	}

	return emitted, refused, nil
}
