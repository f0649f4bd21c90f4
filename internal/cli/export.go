package cli

import (
	"context"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"trade-journal/internal/models"
)

// tradeCSVRow is the flat CSV shape for exported trades. Optional fields
// marshal as empty cells, which the importer in turn treats as unset, so an
// export can be re-imported losslessly for the fields import understands.
type tradeCSVRow struct {
	ID           string   `csv:"id"`
	TradeDate    string   `csv:"date"`
	Asset        string   `csv:"asset"`
	Market       string   `csv:"market"`
	Direction    string   `csv:"direction"`
	EntryPrice   float64  `csv:"entry_price"`
	ExitPrice    float64  `csv:"exit_price"`
	PositionSize float64  `csv:"position_size"`
	StopLoss     *float64 `csv:"stop_loss"`
	TakeProfit   *float64 `csv:"take_profit"`
	ProfitLoss   float64  `csv:"profit_loss"`
	Result       string   `csv:"result"`
	RiskReward   *float64 `csv:"risk_reward"`
	Strategy     string   `csv:"strategy"`
	Notes        string   `csv:"notes"`
}

// addExportCommands adds the CSV export command.
func addExportCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "export <file.csv>",
		Short: "Export trades to a CSV file",
		Example: `  journal export trades.csv
  journal export q1.csv --from 2026-01-01 --to 2026-03-31`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if app.Store == nil {
				output.Warning("Store not initialized. Nothing to export.")
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

			rows := make([]tradeCSVRow, len(trades))
			for i, t := range trades {
				rows[i] = exportRow(t)
			}

			file, err := os.Create(args[0])
			if err != nil {
				output.Error("Failed to create file: %v", err)
				return err
			}
			defer file.Close()

			if err := gocsv.MarshalFile(&rows, file); err != nil {
				output.Error("Failed to write CSV: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"file":     args[0],
					"exported": len(rows),
				})
			}
			output.Success("✓ Exported %d trades to %s", len(rows), args[0])
			return nil
		},
	}

	cmd.Flags().String("asset", "", "filter by asset symbol")
	cmd.Flags().String("market", "", "filter by market")
	cmd.Flags().String("direction", "", "filter by direction (long, short)")
	cmd.Flags().String("result", "", "filter by result (win, loss, break-even)")
	cmd.Flags().String("strategy", "", "filter by strategy reference")
	cmd.Flags().String("from", "", "start date (yyyy-mm-dd)")
	cmd.Flags().String("to", "", "end date (yyyy-mm-dd, inclusive)")
	cmd.Flags().Int("limit", 0, "maximum rows (0 = no limit)")

	rootCmd.AddCommand(cmd)
}

func exportRow(t models.TradeRecord) tradeCSVRow {
	return tradeCSVRow{
		ID:           t.ID,
		TradeDate:    t.TradeDate.Format(time.RFC3339),
		Asset:        t.Asset,
		Market:       string(t.Market),
		Direction:    string(t.Direction),
		EntryPrice:   t.EntryPrice,
		ExitPrice:    t.ExitPrice,
		PositionSize: t.PositionSize,
		StopLoss:     t.StopLoss,
		TakeProfit:   t.TakeProfit,
		ProfitLoss:   t.ProfitLoss,
		Result:       string(t.Result),
		RiskReward:   t.RiskReward,
		Strategy:     t.StrategyRef,
		Notes:        t.Notes,
	}
}
