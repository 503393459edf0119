package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/sweep"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	gainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// formatPct renders a percentage green when positive and red when negative.
func formatPct(v float64) string {
	s := fmt.Sprintf("%.2f%%", v)

	switch {
	case v > 0:
		return gainStyle.Render(s)
	case v < 0:
		return lossStyle.Render(s)
	}

	return s
}

func renderSummary(symbol string, strategyName string, result types.BacktestResult) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Metric", "Value").
		Row("Total trades", strconv.Itoa(result.TotalTrades)).
		Row("Winning trades", strconv.Itoa(result.WinningTrades)).
		Row("Losing trades", strconv.Itoa(result.LosingTrades)).
		Row("Win rate", fmt.Sprintf("%.2f%%", result.WinRatePct)).
		Row("Total return", formatPct(result.TotalReturnPct)).
		Row("Max drawdown", fmt.Sprintf("%.2f%%", result.MaxDrawdownPct)).
		Row("Sharpe-like", fmt.Sprintf("%.4f", result.SharpeLikeRatio)).
		Row("Final capital", fmt.Sprintf("%.2f", result.FinalCapital))

	return lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render(fmt.Sprintf("%s · %s", symbol, strategyName)),
		t.String(),
	)
}

func renderSweep(results []sweep.Result) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Params", "Trades", "Win rate", "Return", "Max DD", "Sharpe-like")

	for _, r := range results {
		t.Row(
			formatParams(r.Params),
			strconv.Itoa(r.Result.TotalTrades),
			fmt.Sprintf("%.2f%%", r.Result.WinRatePct),
			formatPct(r.Result.TotalReturnPct),
			fmt.Sprintf("%.2f%%", r.Result.MaxDrawdownPct),
			fmt.Sprintf("%.4f", r.Result.SharpeLikeRatio),
		)
	}

	out := t.String()

	if best, ok := sweep.Best(results); ok {
		out = lipgloss.JoinVertical(lipgloss.Left, out,
			TitleStyle.Render("best: "+formatParams(best.Params)+" "+formatPct(best.Result.TotalReturnPct)))
	}

	return out
}

// formatParams renders params as key=value pairs in a stable order.
func formatParams(params strategy.Params) string {
	keys := []string{strategy.ParamShortPeriod, strategy.ParamLongPeriod, strategy.ParamPeriod, strategy.ParamThreshold}

	out := ""
	for _, key := range keys {
		v, ok := params[key]
		if !ok {
			continue
		}

		if out != "" {
			out += " "
		}

		out += key + "=" + strconv.FormatFloat(v, 'f', -1, 64)
	}

	return out
}
