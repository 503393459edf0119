package engine

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/version"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"gopkg.in/yaml.v3"
)

// StrategyConfig selects the signal rule of a run.
type StrategyConfig struct {
	Name   strategy.StrategyName `yaml:"name" json:"name" validate:"required" jsonschema:"title=Strategy,description=Signal rule to run,required"`
	Params map[string]any        `yaml:"params,omitempty" json:"params,omitempty" jsonschema:"title=Params,description=Numeric rule parameters. Missing keys use defaults"`
}

type BacktestEngineV1Config struct {
	Version        string                 `yaml:"version,omitempty" json:"version,omitempty" jsonschema:"title=Version,description=Engine version the config was written for"`
	Symbol         string                 `yaml:"symbol" json:"symbol" validate:"required" jsonschema:"title=Symbol,description=Symbol stamped on every order,required"`
	InitialCapital float64                `yaml:"initial_capital" json:"initial_capital" validate:"gt=0" jsonschema:"title=Initial Capital,description=Starting cash of the run,exclusiveMinimum=0,required"`
	CommissionRate float64                `yaml:"commission_rate" json:"commission_rate" validate:"gte=0,lt=1" jsonschema:"title=Commission Rate,description=Fraction of notional charged on every leg,minimum=0,exclusiveMaximum=1"`
	Broker         commission_fee.Broker  `yaml:"broker" json:"broker" jsonschema:"title=Broker,description=The broker to use for commission calculations"`
	Strategy       StrategyConfig         `yaml:"strategy" json:"strategy" jsonschema:"title=Strategy,required"`
	StartTime      optional.Option[int64] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional first bar timestamp to include"`
	EndTime        optional.Option[int64] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional last bar timestamp to include"`
}

// yamlConfig is the wire form of BacktestEngineV1Config with plain pointers
// for the optional fields.
type yamlConfig struct {
	Version        string                `yaml:"version,omitempty"`
	Symbol         string                `yaml:"symbol"`
	InitialCapital float64               `yaml:"initial_capital"`
	CommissionRate float64               `yaml:"commission_rate"`
	Broker         commission_fee.Broker `yaml:"broker,omitempty"`
	Strategy       StrategyConfig        `yaml:"strategy"`
	StartTime      *int64                `yaml:"start_time,omitempty"`
	EndTime        *int64                `yaml:"end_time,omitempty"`
}

var configValidator = validator.New()

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config
func (c *BacktestEngineV1Config) UnmarshalYAML(value *yaml.Node) error {
	var config yamlConfig
	if err := value.Decode(&config); err != nil {
		return err
	}

	c.Version = config.Version
	c.Symbol = config.Symbol
	c.InitialCapital = config.InitialCapital
	c.CommissionRate = config.CommissionRate
	c.Broker = config.Broker
	c.Strategy = config.Strategy
	c.StartTime = optional.None[int64]()
	c.EndTime = optional.None[int64]()

	if config.Broker == "" {
		c.Broker = commission_fee.BrokerFixedRate
	}

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

// MarshalYAML implements yaml.Marshaler so optional fields are written as
// plain values or left out.
func (c BacktestEngineV1Config) MarshalYAML() (any, error) {
	config := yamlConfig{
		Version:        c.Version,
		Symbol:         c.Symbol,
		InitialCapital: c.InitialCapital,
		CommissionRate: c.CommissionRate,
		Broker:         c.Broker,
		Strategy:       c.Strategy,
		StartTime:      nil,
		EndTime:        nil,
	}

	if c.StartTime.IsSome() {
		start := c.StartTime.Unwrap()
		config.StartTime = &start
	}

	if c.EndTime.IsSome() {
		end := c.EndTime.Unwrap()
		config.EndTime = &end
	}

	return config, nil
}

// LoadConfig parses and validates a YAML engine config.
func LoadConfig(content string) (BacktestEngineV1Config, error) {
	config := EmptyConfig()
	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return config, errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to parse config", err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// Validate checks field constraints, the time window, the broker and the
// config version.
func (c *BacktestEngineV1Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest config", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.StartTime.Unwrap() > c.EndTime.Unwrap() {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "start_time %d is after end_time %d",
			c.StartTime.Unwrap(), c.EndTime.Unwrap())
	}

	switch c.Broker {
	case commission_fee.BrokerFixedRate, commission_fee.BrokerZero:
	default:
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown broker: %s", c.Broker)
	}

	if err := version.CheckVersionCompatibility(version.GetVersion(), c.Version); err != nil {
		return err
	}

	return nil
}

// StrategyParams returns the numeric strategy parameters of the config.
func (c *BacktestEngineV1Config) StrategyParams() strategy.Params {
	return strategy.ParamsFromMap(c.Strategy.Params)
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[int64]" {
				return &jsonschema.Schema{
					Type: "integer",
				}
			}

			if strings.Contains(t.String(), "commission_fee.Broker") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission_fee.AllBrokers,
				}
			}

			if strings.Contains(t.String(), "strategy.StrategyName") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: strategy.AllStrategies,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// TestConfig returns a valid sma_cross config over the given window.
func TestConfig(startTime int64, endTime int64, broker commission_fee.Broker) BacktestEngineV1Config {
	return BacktestEngineV1Config{
		Version:        "",
		Symbol:         "TEST",
		InitialCapital: 10000,
		CommissionRate: 0.001,
		Broker:         broker,
		Strategy: StrategyConfig{
			Name:   strategy.StrategyNameSMACross,
			Params: map[string]any{strategy.ParamShortPeriod: 5, strategy.ParamLongPeriod: 20},
		},
		StartTime: optional.Some(startTime),
		EndTime:   optional.Some(endTime),
	}
}

// EmptyConfig returns a BacktestEngineV1Config with default values
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		Version:        "",
		Symbol:         "",
		InitialCapital: 0,
		CommissionRate: 0,
		Broker:         commission_fee.BrokerFixedRate,
		Strategy:       StrategyConfig{Name: "", Params: nil},
		StartTime:      optional.None[int64](),
		EndTime:        optional.None[int64](),
	}
}
