package main

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/urfave/cli/v3"
)

// defaultQuery summarises the range of a bars file.
const defaultQuery = `SELECT COUNT(*) AS bars, MIN("timestamp") AS first_timestamp, MAX("timestamp") AS last_timestamp,
MIN(low) AS min_low, MAX(high) AS max_high FROM market_data`

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "Run SQL against a bars file, exposed as the market_data view",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the bars file (parquet or CSV)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "sql",
				Usage: "Query to run; defaults to a summary of the file",
				Value: defaultQuery,
			},
		},
		Action: queryAction,
	}
}

func queryAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLoggerWithLevel(cmd.String("log-level"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	ds, err := datasource.NewDuckDBDataSource(":memory:", log)
	if err != nil {
		return err
	}
	defer ds.Close()

	if err := ds.Initialize(cmd.String("data")); err != nil {
		return err
	}

	results, err := ds.ExecuteSQL(cmd.String("sql"))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, renderQuery(results))

	return nil
}

// renderQuery prints rows as a table with columns in name order.
func renderQuery(results []datasource.SQLResult) string {
	if len(results) == 0 {
		return HelpStyle.Render("no rows")
	}

	columns := slices.Sorted(maps.Keys(results[0].Values))

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(columns...)

	for _, result := range results {
		row := make([]string, len(columns))
		for i, column := range columns {
			row[i] = formatValue(result.Values[column])
		}

		t.Row(row...)
	}

	return t.String()
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}

	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.4f", f)
	}

	return fmt.Sprint(v)
}
