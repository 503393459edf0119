package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/moznion/go-optional"
	engine_v1 "github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	schemaFileName       = "backtest-engine-v1-config.json"
	sampleConfigFileName = "backtest-engine-v1-config.yaml"
)

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Write the config JSON schema and a sample config",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "output",
				Usage: "Directory to write the schema to",
				Value: "./config",
			},
			&cli.StringFlag{
				Name:  "strategy",
				Usage: "Print the parameter schema of one strategy instead",
			},
		},
		Action: schemaAction,
	}
}

func schemaAction(ctx context.Context, cmd *cli.Command) error {
	if name := cmd.String("strategy"); name != "" {
		schema, err := strategy.ParamsSchema(strategy.StrategyName(name))
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.Root().Writer, schema)

		return nil
	}

	return writeSchema(cmd.String("output"))
}

// writeSchema writes the config schema to dir and a sample config next to it
// unless one already exists.
func writeSchema(dir string) error {
	config := engine_v1.EmptyConfig()

	schemaJSON, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, schemaFileName), []byte(schemaJSON), 0644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	sampleConfigPath := filepath.Join(dir, sampleConfigFileName)
	if _, err := os.Stat(sampleConfigPath); os.IsNotExist(err) {
		if err := writeSampleConfig(sampleConfigPath, "# yaml-language-server: $schema="+schemaFileName+"\n"); err != nil {
			return err
		}
	}

	return nil
}

// sampleConfig is a valid sma_cross config over the whole series.
func sampleConfig() engine_v1.BacktestEngineV1Config {
	config := engine_v1.TestConfig(0, 0, commission_fee.BrokerFixedRate)
	config.StartTime = optional.None[int64]()
	config.EndTime = optional.None[int64]()
	config.Strategy = engine_v1.StrategyConfig{
		Name:   strategy.StrategyNameSMACross,
		Params: strategy.Params{strategy.ParamShortPeriod: 5, strategy.ParamLongPeriod: 20}.Map(),
	}

	return config
}

func writeSampleConfig(path string, header string) error {
	yamlBytes, err := yaml.Marshal(sampleConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(header), yamlBytes...), 0644); err != nil {
		return fmt.Errorf("failed to write sample config to file: %w", err)
	}

	return nil
}
