package types

// Trade is the immutable record of an accepted OrderIntent. The ordered
// trade log is the only input the metrics calculator reads.
type Trade struct {
	Symbol     string       `yaml:"symbol" json:"symbol" csv:"symbol"`
	Side       PurchaseType `yaml:"side" json:"side" csv:"side"`
	Price      float64      `yaml:"price" json:"price" csv:"price"`
	Quantity   float64      `yaml:"quantity" json:"quantity" csv:"quantity"`
	Timestamp  int64        `yaml:"timestamp" json:"timestamp" csv:"timestamp"`
	Commission float64      `yaml:"commission" json:"commission" csv:"commission"`
}

// Notional returns price × quantity.
func (t Trade) Notional() float64 {
	return t.Price * t.Quantity
}

// CashEffect returns the signed change this trade made to available cash.
// A buy costs notional plus commission, a sell yields notional minus commission.
func (t Trade) CashEffect() float64 {
	if t.Side == PurchaseTypeBuy {
		return -(t.Notional() + t.Commission)
	}

	return t.Notional() - t.Commission
}

// Position represents current holdings of an asset.
// AveragePrice is the quantity-weighted blend of every buy fill; commission
// is not folded into it.
type Position struct {
	Symbol       string  `yaml:"symbol" json:"symbol" csv:"symbol"`
	Quantity     float64 `yaml:"quantity" json:"quantity" csv:"quantity"`
	AveragePrice float64 `yaml:"average_price" json:"average_price" csv:"average_price"`
}
