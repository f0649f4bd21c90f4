package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/importer"
	"trade-journal/internal/logging"
	"trade-journal/internal/models"
	"trade-journal/internal/store"
	"trade-journal/pkg/id"
	"trade-journal/pkg/utils"
)

// addTradeCommands adds trade management commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "trades",
		Short: "Trade management",
		Long:  "List, add, inspect, and remove journal trades.",
	}

	cmd.AddCommand(newTradesListCmd(app))
	cmd.AddCommand(newTradesShowCmd(app))
	cmd.AddCommand(newTradesAddCmd(app))
	cmd.AddCommand(newTradesRemoveCmd(app))

	rootCmd.AddCommand(cmd)
}

func newTradesListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded trades",
		Example: `  journal trades list
  journal trades list --asset EURUSD --result win
  journal trades list --from 2026-01-01 --to 2026-06-30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if app.Store == nil {
				output.Warning("Store not initialized. No trade data available.")
				return nil
			}

			filter, err := tradeFilterFromFlags(cmd)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			trades, err := app.Store.GetTrades(ctx, filter)
			if err != nil {
				output.Error("Failed to fetch trades: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}

			if len(trades) == 0 {
				output.Info("No trades found.")
				return nil
			}

			table := NewTable(output, "ID", "Date", "Asset", "Dir", "Entry", "Exit", "Size", "P&L", "Result", "Strategy")
			for _, t := range trades {
				table.AddRow(
					TruncateString(t.ID, 10),
					FormatDate(t.TradeDate),
					t.Asset,
					string(t.Direction),
					FormatPrice(t.EntryPrice),
					FormatPrice(t.ExitPrice),
					fmt.Sprintf("%g", t.PositionSize),
					output.FormatPnL(t.ProfitLoss),
					resultCell(output, t.Result),
					TruncateString(t.StrategyRef, 15),
				)
			}
			table.Render()
			output.Println()
			output.Dim("%d trades", len(trades))
			return nil
		},
	}

	cmd.Flags().String("asset", "", "filter by asset symbol")
	cmd.Flags().String("market", "", "filter by market (forex, crypto, stocks, indices, commodities)")
	cmd.Flags().String("direction", "", "filter by direction (long, short)")
	cmd.Flags().String("result", "", "filter by result (win, loss, break-even)")
	cmd.Flags().String("strategy", "", "filter by strategy reference")
	cmd.Flags().String("from", "", "start date (yyyy-mm-dd)")
	cmd.Flags().String("to", "", "end date (yyyy-mm-dd, inclusive)")
	cmd.Flags().Int("limit", 0, "maximum rows (0 = no limit)")

	return cmd
}

func tradeFilterFromFlags(cmd *cobra.Command) (store.TradeFilter, error) {
	var filter store.TradeFilter

	asset, _ := cmd.Flags().GetString("asset")
	filter.Asset = models.NormalizeAsset(asset)

	if market, _ := cmd.Flags().GetString("market"); market != "" {
		filter.Market = models.ParseMarket(market)
	}
	if direction, _ := cmd.Flags().GetString("direction"); direction != "" {
		d, ok := models.ParseDirection(direction)
		if !ok {
			return filter, fmt.Errorf("invalid direction: %s", direction)
		}
		filter.Direction = d
	}
	if result, _ := cmd.Flags().GetString("result"); result != "" {
		switch models.Result(result) {
		case models.ResultWin, models.ResultLoss, models.ResultBreakEven:
			filter.Result = models.Result(result)
		default:
			return filter, fmt.Errorf("invalid result: %s", result)
		}
	}

	filter.StrategyRef, _ = cmd.Flags().GetString("strategy")
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	if from, _ := cmd.Flags().GetString("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, fmt.Errorf("invalid --from date: %s", from)
		}
		filter.StartDate = t
	}
	if to, _ := cmd.Flags().GetString("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, fmt.Errorf("invalid --to date: %s", to)
		}
		filter.EndDate = t.Add(24 * time.Hour)
	}

	return filter, nil
}

func newTradesShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <trade-id>",
		Short: "Show full trade details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if app.Store == nil {
				output.Warning("Store not initialized. No trade data available.")
				return nil
			}

			trade, err := app.Store.GetTradeByID(ctx, args[0])
			if err != nil {
				if apperrors.Is(err, apperrors.ErrTradeNotFound) {
					output.Error("Trade not found: %s", args[0])
				} else {
					output.Error("Failed to fetch trade: %v", err)
				}
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}

			output.Bold("Trade %s", trade.ID)
			output.Println()
			output.Printf("  Asset:       %s (%s)\n", trade.Asset, trade.Market)
			output.Printf("  Direction:   %s\n", trade.Direction)
			output.Printf("  Entry:       %s\n", FormatPrice(trade.EntryPrice))
			output.Printf("  Exit:        %s\n", FormatPrice(trade.ExitPrice))
			output.Printf("  Size:        %g\n", trade.PositionSize)
			output.Printf("  Stop Loss:   %s\n", FormatOptionalPrice(trade.StopLoss))
			output.Printf("  Take Profit: %s\n", FormatOptionalPrice(trade.TakeProfit))
			output.Printf("  P&L:         %s (%s)\n", output.FormatPnL(trade.ProfitLoss), trade.Result)
			output.Printf("  R/R Ratio:   %s\n", FormatOptionalRatio(trade.RiskReward))
			output.Printf("  Date:        %s\n", FormatDateTime(trade.TradeDate))
			if trade.StrategyRef != "" {
				output.Printf("  Strategy:    %s\n", trade.StrategyRef)
			}
			if trade.Notes != "" {
				output.Printf("  Notes:       %s\n", trade.Notes)
			}
			for _, a := range trade.Attachments {
				output.Printf("  Attachment:  %s\n", a)
			}
			if len(trade.RuleEvaluations) > 0 {
				output.Println()
				output.Bold("Rule Evaluations")
				for _, re := range trade.RuleEvaluations {
					mark := output.Green("✓")
					if !re.Passed {
						mark = output.Red("✗")
					}
					output.Printf("  %s %s (%s)\n", mark, re.RuleName, re.ActualValue)
				}
			}
			return nil
		},
	}
}

func newTradesAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a single trade",
		Long: `Record a single completed trade.

The same derivation rules as CSV import apply: profit/loss defaults to
(exit - entry) x size x direction x contract size unless --pl is given,
and the result classification always follows the profit/loss sign.`,
		Example: `  journal trades add --asset EURUSD --direction long --entry 1.0850 --exit 1.0900 --size 0.5
  journal trades add --asset BTCUSD --market crypto --direction short --entry 65000 --exit 64000 --size 0.1 --sl 65500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			candidate, err := candidateFromFlags(cmd)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			if candidate.Market == nil {
				market := models.ParseMarket(app.Config.Import.DefaultMarket)
				candidate.Market = &market
			}

			trade, ok := importer.Derive(candidate, time.Now().UTC())
			if !ok {
				err := apperrors.NewValidationError("trade", candidate.Asset,
					"asset, direction, entry, exit, and positive size are required")
				output.Error("%v", err)
				return err
			}
			trade.ID = id.New()
			trade.CreatedAt = time.Now().UTC()

			if app.Store == nil {
				output.Error("Store not initialized")
				return apperrors.ErrDatabaseError
			}
			if err := app.Store.SaveTrade(ctx, &trade); err != nil {
				output.Error("Failed to save trade: %v", err)
				return err
			}

			logging.LogTrade(app.Logger, trade.ID, trade.Asset, string(trade.Direction), trade.ProfitLoss)

			if output.IsJSON() {
				return output.JSON(trade)
			}

			output.Success("✓ Trade recorded: %s", trade.ID)
			output.Printf("  %s %s %s @ %s -> %s\n",
				trade.Asset, trade.Direction,
				fmt.Sprintf("%g", trade.PositionSize),
				FormatPrice(trade.EntryPrice), FormatPrice(trade.ExitPrice))
			output.Printf("  P&L: %s (%s)\n", output.FormatPnL(trade.ProfitLoss), trade.Result)

			risk, reward, ratio := importer.RiskReward(trade.EntryPrice, trade.StopLoss, trade.TakeProfit, trade.PositionSize)
			if trade.StopLoss != nil {
				output.Printf("  Risk: %s", utils.FormatCurrency(risk))
				if trade.TakeProfit != nil {
					output.Printf("  Reward: %s", utils.FormatCurrency(reward))
				}
				if ratio != nil {
					output.Printf("  R/R: %.2f", *ratio)
				}
				output.Println()
			}
			return nil
		},
	}

	cmd.Flags().String("asset", "", "asset symbol (required)")
	cmd.Flags().String("market", "", "market (default from config)")
	cmd.Flags().String("direction", "", "long or short (required)")
	cmd.Flags().Float64("entry", 0, "entry price (required)")
	cmd.Flags().Float64("exit", 0, "exit price (required)")
	cmd.Flags().Float64("size", 0, "position size (required)")
	cmd.Flags().Float64("sl", 0, "stop loss price")
	cmd.Flags().Float64("tp", 0, "take profit price")
	cmd.Flags().Float64("pl", 0, "profit/loss override (skips derivation)")
	cmd.Flags().String("date", "", "trade date (yyyy-mm-dd, default today)")
	cmd.Flags().String("strategy", "", "strategy reference")
	cmd.Flags().String("notes", "", "free-form notes")

	return cmd
}

func candidateFromFlags(cmd *cobra.Command) (importer.Candidate, error) {
	var c importer.Candidate

	asset, _ := cmd.Flags().GetString("asset")
	c.Asset = models.NormalizeAsset(asset)

	if marketStr, _ := cmd.Flags().GetString("market"); marketStr != "" {
		market := models.ParseMarket(marketStr)
		c.Market = &market
	}
	if directionStr, _ := cmd.Flags().GetString("direction"); directionStr != "" {
		c.RawDirection = directionStr
		if d, ok := models.ParseDirection(directionStr); ok {
			c.Direction = &d
		}
	}

	setFloatFlag := func(name string, dst **float64) {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetFloat64(name)
			*dst = &v
		}
	}
	setFloatFlag("entry", &c.EntryPrice)
	setFloatFlag("exit", &c.ExitPrice)
	setFloatFlag("size", &c.PositionSize)
	setFloatFlag("sl", &c.StopLoss)
	setFloatFlag("tp", &c.TakeProfit)
	setFloatFlag("pl", &c.ProfitLoss)

	if dateStr, _ := cmd.Flags().GetString("date"); dateStr != "" {
		t, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return c, fmt.Errorf("invalid --date: %s", dateStr)
		}
		c.TradeDate = &t
	}

	c.StrategyRef, _ = cmd.Flags().GetString("strategy")
	c.Notes, _ = cmd.Flags().GetString("notes")

	return c, nil
}

func newTradesRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <trade-id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a trade",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if app.Store == nil {
				output.Error("Store not initialized")
				return apperrors.ErrDatabaseError
			}

			if err := app.Store.DeleteTrade(ctx, args[0]); err != nil {
				if apperrors.Is(err, apperrors.ErrTradeNotFound) {
					output.Error("Trade not found: %s", args[0])
				} else {
					output.Error("Failed to delete trade: %v", err)
				}
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Trade deleted: %s", args[0])
			return nil
		},
	}
}
