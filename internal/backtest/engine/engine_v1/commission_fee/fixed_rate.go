package commission_fee

// FixedRateCommissionFee charges a fixed fraction of notional on every leg.
type FixedRateCommissionFee struct {
	rate float64
}

// NewFixedRateCommissionFee creates a commission model charging rate × notional.
// Negative rates are clamped to zero.
func NewFixedRateCommissionFee(rate float64) CommissionFee {
	if rate < 0 {
		rate = 0
	}

	return &FixedRateCommissionFee{
		rate: rate,
	}
}

// Calculate returns price × quantity × rate.
func (c *FixedRateCommissionFee) Calculate(price float64, quantity float64) float64 {
	return price * quantity * c.rate
}

// Rate returns the configured fraction of notional.
func (c *FixedRateCommissionFee) Rate() float64 {
	return c.rate
}
