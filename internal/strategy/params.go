package strategy

import (
	"encoding/json"
	"maps"
	"math"
)

const (
	ParamShortPeriod = "short_period"
	ParamLongPeriod  = "long_period"
	ParamPeriod      = "period"
	ParamThreshold   = "threshold"
)

// DefaultParams are applied for every key a caller leaves out.
var DefaultParams = Params{
	ParamShortPeriod: 5,
	ParamLongPeriod:  20,
	ParamPeriod:      10,
	ParamThreshold:   0.02,
}

// Params are numeric rule parameters keyed by name. Unknown keys are ignored.
type Params map[string]float64

// SMACrossParams documents the parameters of the sma_cross rule.
type SMACrossParams struct {
	ShortPeriod int `json:"short_period" jsonschema:"title=Short Period,description=Window of the fast moving average,minimum=1,default=5"`
	LongPeriod  int `json:"long_period" jsonschema:"title=Long Period,description=Window of the slow moving average,minimum=1,default=20"`
}

// MomentumParams documents the parameters of the momentum rule.
type MomentumParams struct {
	Period    int     `json:"period" jsonschema:"title=Period,description=Lookback in bars,minimum=1,default=10"`
	Threshold float64 `json:"threshold" jsonschema:"title=Threshold,description=Fractional change that triggers a signal,default=0.02"`
}

// ParseParams decodes a JSON object of numeric parameters. Malformed input,
// or any value that is not a number, yields empty params so every value falls
// back to its default.
func ParseParams(raw string) Params {
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return Params{}
	}

	params := make(Params, len(decoded))

	for key, value := range decoded {
		v, ok := value.(float64)
		if !ok {
			return Params{}
		}

		params[key] = v
	}

	return params
}

// ParamsFromMap converts YAML-decoded values to Params. Numeric values of any
// width are kept and everything else is skipped, since YAML configs may carry
// keys meant for other rules.
func ParamsFromMap(values map[string]any) Params {
	params := Params{}

	for key, value := range values {
		switch v := value.(type) {
		case float64:
			params[key] = v
		case float32:
			params[key] = float64(v)
		case int:
			params[key] = float64(v)
		case int64:
			params[key] = float64(v)
		case int32:
			params[key] = float64(v)
		case uint64:
			params[key] = float64(v)
		}
	}

	return params
}

// Get returns the value for key, falling back to DefaultParams.
func (p Params) Get(key string) float64 {
	if v, ok := p[key]; ok {
		return v
	}

	return DefaultParams[key]
}

// Period returns the value for key truncated to a whole number of bars.
// Negative and non-finite values become 0.
func (p Params) Period(key string) int {
	v := p.Get(key)
	if math.IsNaN(v) || v <= 0 {
		return 0
	}

	if math.IsInf(v, 1) || v > math.MaxInt32 {
		return math.MaxInt32
	}

	return int(v)
}

// With returns a copy of p with key set to value.
func (p Params) With(key string, value float64) Params {
	params := maps.Clone(p)
	if params == nil {
		params = Params{}
	}

	params[key] = value

	return params
}

// Map returns p as the loosely typed map used by the YAML config.
func (p Params) Map() map[string]any {
	values := make(map[string]any, len(p))
	for key, value := range p {
		values[key] = value
	}

	return values
}
