package main

import (
	"context"
	"fmt"
	"os"

	engine_v1 "github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/sweep"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// axisFlags maps sweep flags to the strategy parameter they vary.
var axisFlags = map[string]string{
	"short":     strategy.ParamShortPeriod,
	"long":      strategy.ParamLongPeriod,
	"period":    strategy.ParamPeriod,
	"threshold": strategy.ParamThreshold,
}

func sweepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Run the configured strategy over a grid of parameters",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the engine config `FILE` (YAML)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the bars file (parquet or CSV)",
				Required: true,
			},
			&cli.FloatSliceFlag{
				Name:  "short",
				Usage: "Comma separated short_period values, e.g. 3,5,8",
			},
			&cli.FloatSliceFlag{
				Name:  "long",
				Usage: "Comma separated long_period values",
			},
			&cli.FloatSliceFlag{
				Name:  "period",
				Usage: "Comma separated momentum period values",
			},
			&cli.FloatSliceFlag{
				Name:  "threshold",
				Usage: "Comma separated momentum threshold values",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of concurrent runs (0 uses every CPU)",
				Value: 0,
			},
		},
		Action: sweepAction,
	}
}

func sweepAction(ctx context.Context, cmd *cli.Command) error {
	content, err := os.ReadFile(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	config, err := engine_v1.LoadConfig(string(content))
	if err != nil {
		return err
	}

	axes := map[string][]float64{}

	for flag, param := range axisFlags {
		if values := cmd.FloatSlice(flag); len(values) > 0 {
			axes[param] = values
		}
	}

	log, err := logger.NewLoggerWithLevel(cmd.String("log-level"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	ds, err := datasource.NewDataSource(":memory:", log)
	if err != nil {
		return err
	}
	defer ds.Close()

	if err := ds.Initialize(cmd.String("data")); err != nil {
		return err
	}

	bars, err := datasource.Collect(ds, config.StartTime, config.EndTime)
	if err != nil {
		return err
	}

	grid := sweep.Grid(config.StrategyParams(), axes)

	bar := progressbar.NewOptions(len(grid),
		progressbar.OptionSetDescription(fmt.Sprintf("Sweeping %s", config.Strategy.Name)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(cmd.Root().ErrWriter),
	)

	results, err := sweep.Run(ctx, config, bars, grid, sweep.Options{
		Workers: int(cmd.Int("workers")),
		Logger:  log,
		OnRunComplete: func(done int, total int) {
			_ = bar.Add(1)
		},
	})
	if err != nil {
		return err
	}

	_ = bar.Finish()

	fmt.Fprintln(cmd.Root().Writer)
	fmt.Fprintln(cmd.Root().Writer, renderSweep(results))

	return nil
}
