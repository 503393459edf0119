package types

import (
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

type PurchaseType string

const (
	PurchaseTypeBuy  PurchaseType = "BUY"
	PurchaseTypeSell PurchaseType = "SELL"
)

// OrderIntent is a request to buy or sell that the ledger either accepts in
// full or rejects. It is consumed exactly once and never mutated afterwards.
type OrderIntent struct {
	ID        string       `yaml:"id" json:"id" csv:"id"`
	Symbol    string       `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	Side      PurchaseType `yaml:"side" json:"side" csv:"side" validate:"required,oneof=BUY SELL"`
	Price     float64      `yaml:"price" json:"price" csv:"price" validate:"gt=0"`
	Quantity  float64      `yaml:"quantity" json:"quantity" csv:"quantity" validate:"gt=0"`
	Timestamp int64        `yaml:"timestamp" json:"timestamp" csv:"timestamp"`
}

var intentValidator = validator.New()

// Notional returns price × quantity.
func (o *OrderIntent) Notional() float64 {
	return o.Price * o.Quantity
}

// Validate validates the OrderIntent struct.
func (o *OrderIntent) Validate() error {
	if err := intentValidator.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrderIntent, "invalid order intent", err)
	}

	if math.IsInf(o.Price, 0) || math.IsInf(o.Quantity, 0) {
		return errors.Newf(errors.ErrCodeInvalidOrderIntent, "order intent %s has a non-finite price or quantity", o.ID)
	}

	return nil
}

// Rejection records an intent the ledger refused and why.
type Rejection struct {
	Intent OrderIntent `yaml:"intent" json:"intent"`
	// Code is the numeric rejection code from pkg/errors.
	Code   int    `yaml:"code" json:"code"`
	Reason string `yaml:"reason" json:"reason"`
}
