package strategy

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// ToJSONSchema converts a struct to a JSON schema
func ToJSONSchema[T any](t T) (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	schema := r.Reflect(t)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}

// ParamsSchema returns the JSON schema of the parameters accepted by the named rule.
func ParamsSchema(name StrategyName) (string, error) {
	switch name {
	case StrategyNameSMACross:
		return ToJSONSchema(SMACrossParams{})
	case StrategyNameMomentum:
		return ToJSONSchema(MomentumParams{})
	default:
		return "", errors.Newf(errors.ErrCodeInvalidStrategy, "unknown strategy: %s", name)
	}
}
