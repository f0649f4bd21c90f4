package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"trade-journal/internal/analytics"
	"trade-journal/internal/models"
	"trade-journal/internal/store"
	"trade-journal/pkg/utils"
)

// addStatsCommands adds performance analytics commands.
func addStatsCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Performance analytics",
		Long: `Analyze journal performance.

All statistics are recomputed from the stored trades on every invocation;
nothing is cached between runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, app)
		},
	}

	addStatsFilterFlags(cmd)

	equity := &cobra.Command{
		Use:   "equity",
		Short: "Show the cumulative P&L curve",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEquity(cmd, app)
		},
	}
	addStatsFilterFlags(equity)
	cmd.AddCommand(equity)

	monthly := &cobra.Command{
		Use:   "monthly",
		Short: "Show P&L grouped by calendar month",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonthly(cmd, app)
		},
	}
	addStatsFilterFlags(monthly)
	cmd.AddCommand(monthly)

	assets := &cobra.Command{
		Use:   "assets",
		Short: "Show P&L grouped by asset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssets(cmd, app)
		},
	}
	addStatsFilterFlags(assets)
	cmd.AddCommand(assets)

	calendar := &cobra.Command{
		Use:   "calendar",
		Short: "Show a daily P&L calendar for one month",
		Long: `Show per-day P&L for a calendar month.

Days without trades show no figure at all; absence of data is distinct
from a break-even day.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalendar(cmd, app)
		},
	}
	calendar.Flags().String("month", "", "month to show (yyyy-mm, default current)")
	cmd.AddCommand(calendar)

	strategies := &cobra.Command{
		Use:   "strategies",
		Short: "Show per-strategy performance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStrategyStats(cmd, app)
		},
	}
	addStatsFilterFlags(strategies)
	strategies.Flags().Bool("best", false, "show only the best strategy by total P&L")
	cmd.AddCommand(strategies)

	rootCmd.AddCommand(cmd)
}

func addStatsFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("asset", "", "filter by asset symbol")
	cmd.Flags().String("strategy", "", "filter by strategy reference")
	cmd.Flags().String("from", "", "start date (yyyy-mm-dd)")
	cmd.Flags().String("to", "", "end date (yyyy-mm-dd, inclusive)")
}

// statsTrades fetches the filtered trade set statistics are computed from.
func statsTrades(cmd *cobra.Command, app *App) ([]models.TradeRecord, error) {
	if app.Store == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var filter store.TradeFilter
	if cmd.Flags().Lookup("asset") != nil {
		asset, _ := cmd.Flags().GetString("asset")
		filter.Asset = models.NormalizeAsset(asset)
		filter.StrategyRef, _ = cmd.Flags().GetString("strategy")
		if from, _ := cmd.Flags().GetString("from"); from != "" {
			t, err := time.Parse("2006-01-02", from)
			if err != nil {
				return nil, fmt.Errorf("invalid --from date: %s", from)
			}
			filter.StartDate = t
		}
		if to, _ := cmd.Flags().GetString("to"); to != "" {
			t, err := time.Parse("2006-01-02", to)
			if err != nil {
				return nil, fmt.Errorf("invalid --to date: %s", to)
			}
			filter.EndDate = t.Add(24 * time.Hour)
		}
	}

	return app.Store.GetTrades(ctx, filter)
}

func runSummary(cmd *cobra.Command, app *App) error {
	output := NewOutput(cmd)
	trades, err := statsTrades(cmd, app)
	if err != nil {
		output.Error("Failed to fetch trades: %v", err)
		return err
	}

	stats := analytics.Summarize(trades)

	if output.IsJSON() {
		return output.JSON(stats)
	}

	if stats.TotalTrades == 0 {
		output.Info("No trades recorded yet.")
		return nil
	}

	output.Bold("Performance Summary")
	output.Println()
	output.Printf("  Total Trades:  %d\n", stats.TotalTrades)
	output.Printf("  Wins/Losses:   %d/%d", stats.TotalWins, stats.TotalLosses)
	if stats.BreakEven > 0 {
		output.Printf(" (+%d break-even)", stats.BreakEven)
	}
	output.Println()
	output.Printf("  Win Rate:      %.1f%%\n", stats.WinRate)
	output.Printf("  Total P&L:     %s\n", output.FormatPnL(stats.TotalPL))
	output.Printf("  Avg Win:       %s\n", utils.FormatCurrency(stats.AvgWin))
	output.Printf("  Avg Loss:      %s\n", utils.FormatCurrency(stats.AvgLoss))
	if stats.ProfitFactorOK {
		output.Printf("  Profit Factor: %.2f\n", stats.ProfitFactor)
	} else {
		output.Printf("  Profit Factor: n/a (no losses)\n")
	}
	return nil
}

func runEquity(cmd *cobra.Command, app *App) error {
	output := NewOutput(cmd)
	trades, err := statsTrades(cmd, app)
	if err != nil {
		output.Error("Failed to fetch trades: %v", err)
		return err
	}

	curve := analytics.EquityCurve(trades)

	if output.IsJSON() {
		return output.JSON(curve)
	}

	if len(curve) == 0 {
		output.Info("No trades recorded yet.")
		return nil
	}

	table := NewTable(output, "Date", "Cumulative P&L")
	for _, p := range curve {
		table.AddRow(FormatDate(p.Date), output.FormatPnL(p.Cumulative))
	}
	table.Render()
	output.Println()
	output.Printf("Final equity: %s over %d trades\n",
		output.FormatPnL(curve[len(curve)-1].Cumulative), len(curve))
	return nil
}

func runMonthly(cmd *cobra.Command, app *App) error {
	output := NewOutput(cmd)
	trades, err := statsTrades(cmd, app)
	if err != nil {
		output.Error("Failed to fetch trades: %v", err)
		return err
	}

	buckets := analytics.MonthlyPL(trades)

	if output.IsJSON() {
		return output.JSON(buckets)
	}

	if len(buckets) == 0 {
		output.Info("No trades recorded yet.")
		return nil
	}

	table := NewTable(output, "Month", "P&L")
	for _, b := range buckets {
		table.AddRow(b.Month, output.FormatPnL(b.PL))
	}
	table.Render()
	return nil
}

func runAssets(cmd *cobra.Command, app *App) error {
	output := NewOutput(cmd)
	trades, err := statsTrades(cmd, app)
	if err != nil {
		output.Error("Failed to fetch trades: %v", err)
		return err
	}

	buckets := analytics.AssetPL(trades)

	if output.IsJSON() {
		return output.JSON(buckets)
	}

	if len(buckets) == 0 {
		output.Info("No trades recorded yet.")
		return nil
	}

	table := NewTable(output, "Asset", "Trades", "P&L")
	for _, b := range buckets {
		table.AddRow(b.Asset, fmt.Sprintf("%d", b.Trades), output.FormatPnL(b.PL))
	}
	table.Render()
	return nil
}

func runCalendar(cmd *cobra.Command, app *App) error {
	output := NewOutput(cmd)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	monthStr, _ := cmd.Flags().GetString("month")
	month := time.Now()
	if monthStr != "" {
		parsed, err := time.Parse("2006-01", monthStr)
		if err != nil {
			output.Error("Invalid --month: %s (expected yyyy-mm)", monthStr)
			return err
		}
		month = parsed
	}
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	if app.Store == nil {
		output.Warning("Store not initialized. No trade data available.")
		return nil
	}

	trades, err := app.Store.GetTrades(ctx, store.TradeFilter{StartDate: start, EndDate: end})
	if err != nil {
		output.Error("Failed to fetch trades: %v", err)
		return err
	}

	daily := analytics.DailyPL(trades)

	if output.IsJSON() {
		return output.JSON(daily)
	}

	output.Bold("Daily P&L - %s", start.Format("January 2006"))
	output.Println()

	if len(daily) == 0 {
		output.Info("No trades this month.")
		return nil
	}

	table := NewTable(output, "Date", "Trades", "P&L")
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		bucket, ok := daily[analytics.DayKey(day)]
		if !ok {
			continue
		}
		table.AddRow(FormatDate(day), fmt.Sprintf("%d", bucket.Count), output.FormatPnL(bucket.PL))
	}
	table.Render()
	return nil
}

func runStrategyStats(cmd *cobra.Command, app *App) error {
	output := NewOutput(cmd)
	trades, err := statsTrades(cmd, app)
	if err != nil {
		output.Error("Failed to fetch trades: %v", err)
		return err
	}

	stats := analytics.StrategyStats(trades)

	best, _ := cmd.Flags().GetBool("best")
	if best {
		// The "none" group never wins a leaderboard.
		var candidates []models.StrategyStats
		for _, s := range stats {
			if s.StrategyRef != models.StrategyNone {
				candidates = append(candidates, s)
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].TotalPL > candidates[j].TotalPL
		})
		if len(candidates) > 1 {
			candidates = candidates[:1]
		}
		stats = candidates
	}

	if output.IsJSON() {
		return output.JSON(stats)
	}

	if len(stats) == 0 {
		output.Info("No strategy data available.")
		return nil
	}

	table := NewTable(output, "Strategy", "Trades", "Win Rate", "Avg Win", "Avg Loss", "Total P&L")
	for _, s := range stats {
		table.AddRow(
			TruncateString(s.StrategyRef, 20),
			fmt.Sprintf("%d", s.TotalTrades),
			fmt.Sprintf("%.1f%%", s.WinRate),
			utils.FormatCurrency(s.AvgWin),
			utils.FormatCurrency(s.AvgLoss),
			output.FormatPnL(s.TotalPL),
		)
	}
	table.Render()
	return nil
}
