package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/importer"
	"trade-journal/internal/logging"
	"trade-journal/internal/models"
	"trade-journal/pkg/id"
)

// addImportCommands adds CSV import commands.
func addImportCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newImportCmd(app))
}

func newImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import trades from a CSV file",
		Long: `Import trades from a broker CSV export.

Column meanings are inferred from header names, so exports from different
brokers work without a fixed template. Rows missing a usable asset,
direction, entry, exit, or position size are dropped; the rest are imported
as one atomic batch. Profit/loss is taken from the file when present and
derived from prices otherwise.`,
		Example: `  journal import trades.csv
  journal import trades.csv --dry-run
  journal import trades.csv --show-rejected`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			dryRun, _ := cmd.Flags().GetBool("dry-run")
			showRejected, _ := cmd.Flags().GetBool("show-rejected")

			data, err := os.ReadFile(args[0])
			if err != nil {
				output.Error("Failed to read file: %v", err)
				return err
			}

			report, err := importer.Import(string(data), time.Now().UTC())
			if err != nil {
				if apperrors.Is(err, apperrors.ErrMalformedCSV) {
					output.Error("Malformed CSV: %v", err)
				} else if apperrors.Is(err, apperrors.ErrNoValidTrades) {
					output.Error("No valid trades found in %d rows", totalRowsOf(err))
				} else {
					output.Error("Import failed: %v", err)
				}
				return err
			}

			if report.TotalRows > app.Config.Import.MaxBatchRows {
				err := fmt.Errorf("batch of %d rows exceeds max_batch_rows (%d)",
					report.TotalRows, app.Config.Import.MaxBatchRows)
				output.Error("%v", err)
				return err
			}

			logging.LogImport(app.Logger, report.TotalRows, report.AcceptedCount(), len(report.Rejected))

			for i := range report.Accepted {
				report.Accepted[i].ID = id.New()
				report.Accepted[i].CreatedAt = time.Now().UTC()
			}

			if !dryRun {
				if app.Store == nil {
					output.Error("Store not initialized; use --dry-run to preview")
					return apperrors.ErrDatabaseError
				}
				if _, err := app.Store.ImportTrades(ctx, report.Accepted); err != nil {
					output.Error("Failed to persist batch: %v", err)
					return err
				}
			}

			if output.IsJSON() {
				return output.JSON(importResult{
					TotalRows: report.TotalRows,
					Imported:  report.AcceptedCount(),
					Rejected:  report.Rejected,
					DryRun:    dryRun,
				})
			}

			renderImportReport(output, app, report, dryRun, showRejected)
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "parse and report without persisting")
	cmd.Flags().Bool("show-rejected", false, "list rejected rows with reasons")

	return cmd
}

type importResult struct {
	TotalRows int                  `json:"total_rows"`
	Imported  int                  `json:"imported"`
	Rejected  []importer.Rejection `json:"rejected,omitempty"`
	DryRun    bool                 `json:"dry_run"`
}

func renderImportReport(output *Output, app *App, report *importer.Report, dryRun, showRejected bool) {
	if dryRun {
		output.Bold("Import Preview (dry run)")
	} else {
		output.Bold("Import Complete")
	}
	output.Println()
	output.Printf("  Rows parsed:   %d\n", report.TotalRows)
	output.Printf("  Imported:      %s\n", output.Green(fmt.Sprintf("%d", report.AcceptedCount())))
	if len(report.Rejected) > 0 {
		output.Printf("  Rejected:      %s\n", output.Red(fmt.Sprintf("%d", len(report.Rejected))))
	}
	output.Println()

	preview := report.Accepted
	if max := app.Config.Import.PreviewRows; max > 0 && len(preview) > max {
		preview = preview[:max]
	}
	if len(preview) > 0 {
		table := NewTable(output, "Asset", "Dir", "Entry", "Exit", "Size", "P&L", "Result", "Date")
		for _, t := range preview {
			table.AddRow(
				t.Asset,
				string(t.Direction),
				FormatPrice(t.EntryPrice),
				FormatPrice(t.ExitPrice),
				fmt.Sprintf("%g", t.PositionSize),
				output.FormatPnL(t.ProfitLoss),
				resultCell(output, t.Result),
				FormatDate(t.TradeDate),
			)
		}
		table.Render()
		if len(preview) < report.AcceptedCount() {
			output.Dim("... and %d more", report.AcceptedCount()-len(preview))
		}
	}

	if showRejected && len(report.Rejected) > 0 {
		output.Println()
		output.Bold("Rejected Rows")
		for _, r := range report.Rejected {
			output.Printf("  row %d: %s\n", r.Row, r.Reason)
		}
	}
}

func resultCell(output *Output, r models.Result) string {
	switch r {
	case models.ResultWin:
		return output.Green(string(r))
	case models.ResultLoss:
		return output.Red(string(r))
	default:
		return string(r)
	}
}

// totalRowsOf extracts the row count from an ImportError, if present.
func totalRowsOf(err error) int {
	var importErr *apperrors.ImportError
	if apperrors.As(err, &importErr) {
		return importErr.Rows
	}
	return 0
}
