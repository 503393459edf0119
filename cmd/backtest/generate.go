package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/writers"
	"github.com/rxtech-lab/argo-backtest/mocks"
	"github.com/urfave/cli/v3"
)

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a synthetic bars file and a matching config",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "output",
				Usage: "Directory to write bars.parquet and config.yaml to",
				Value: "./data",
			},
			&cli.IntFlag{
				Name:  "count",
				Usage: "Number of bars",
				Value: 10000,
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Random seed; the same seed gives the same bars",
				Value: 42,
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Bars file format (parquet or csv)",
				Value: "parquet",
			},
		},
		Action: generateAction,
	}
}

func generateAction(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("output")

	format := cmd.String("format")
	if format != "parquet" && format != "csv" {
		return fmt.Errorf("unsupported format: %s", format)
	}

	count := int(cmd.Int("count"))
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}

	generatorConfig := mocks.DefaultConfig()
	generatorConfig.Count = count
	bars := mocks.NewDataGenerator(int64(cmd.Int("seed"))).Generate(generatorConfig)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	barsPath := filepath.Join(dir, "bars."+format)
	if err := writers.WriteBars(barsPath, bars); err != nil {
		return err
	}

	configPath := filepath.Join(dir, "config.yaml")
	if err := writeSampleConfig(configPath, ""); err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, HelpStyle.Render(fmt.Sprintf("wrote %d bars to %s and a config to %s", count, barsPath, configPath)))

	return nil
}
