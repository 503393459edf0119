package commission_fee

type CommissionFee interface {
	// Calculate the commission charged on one executed leg of the given price and quantity.
	// The result is never negative.
	Calculate(price float64, quantity float64) float64
}

type Broker string

const (
	BrokerFixedRate Broker = "fixed_rate"
	BrokerZero      Broker = "zero_commission"
)

var AllBrokers = []any{
	BrokerFixedRate,
	BrokerZero,
}

// GetCommissionFeeHandler returns the commission model for broker. Unknown
// brokers fall back to the fixed-rate model.
func GetCommissionFeeHandler(broker Broker, rate float64) CommissionFee {
	switch broker {
	case BrokerFixedRate:
		return NewFixedRateCommissionFee(rate)
	case BrokerZero:
		return NewZeroCommissionFee()
	default:
		return NewFixedRateCommissionFee(rate)
	}
}
