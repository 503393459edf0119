package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/urfave/cli/v3"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run a single backtest",
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
			&cli.StringFlag{
				Name:    "results",
				Aliases: []string{"r"},
				Usage:   "Folder to write stats and trades to",
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	config, err := os.ReadFile(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	log, err := logger.NewLoggerWithLevel(cmd.String("log-level"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	backtester := engine_v1.NewBacktestEngineV1WithLogger(log)
	if err := backtester.Initialize(string(config)); err != nil {
		return err
	}

	ds, err := datasource.NewDataSource(":memory:", log)
	if err != nil {
		return err
	}
	defer ds.Close()

	if err := backtester.SetDataSource(ds); err != nil {
		return err
	}

	if err := backtester.SetDataPath(cmd.String("data")); err != nil {
		return err
	}

	if results := cmd.String("results"); results != "" {
		if err := backtester.SetResultsFolder(results); err != nil {
			return err
		}
	}

	var resultFolder string

	onRunEnd := engine.OnRunEndCallback(func(runID string, result types.BacktestResult, resultFolderPath string) {
		resultFolder = resultFolderPath
	})

	result, err := backtester.Run(ctx, engine.LifecycleCallbacks{OnRunEnd: &onRunEnd})
	if err != nil {
		return err
	}

	cfg := backtester.Config()
	fmt.Fprintln(cmd.Root().Writer, renderSummary(cfg.Symbol, string(cfg.Strategy.Name), result))

	if resultFolder != "" {
		fmt.Fprintln(cmd.Root().Writer, HelpStyle.Render("results written to "+resultFolder))
	}

	return nil
}
