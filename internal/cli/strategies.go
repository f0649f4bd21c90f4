package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
	"trade-journal/pkg/id"
)

// addStrategyCommands adds strategy management commands.
func addStrategyCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "Strategy management",
		Long: `Manage named trading strategies.

Trades reference strategies by name; per-strategy performance is available
under 'journal stats strategies'.`,
	}

	cmd.AddCommand(newStrategiesListCmd(app))
	cmd.AddCommand(newStrategiesAddCmd(app))
	cmd.AddCommand(newStrategiesRemoveCmd(app))

	rootCmd.AddCommand(cmd)
}

func newStrategiesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List strategies",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if app.Store == nil {
				output.Warning("Store not initialized.")
				return nil
			}

			strategies, err := app.Store.GetStrategies(ctx)
			if err != nil {
				output.Error("Failed to fetch strategies: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(strategies)
			}

			if len(strategies) == 0 {
				output.Info("No strategies defined.")
				return nil
			}

			table := NewTable(output, "ID", "Name", "Description", "Created")
			for _, s := range strategies {
				table.AddRow(
					TruncateString(s.ID, 10),
					s.Name,
					TruncateString(s.Description, 40),
					FormatDate(s.CreatedAt),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newStrategiesAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a strategy",
		Example: `  journal strategies add "London Breakout"
  journal strategies add "Trend Pullback" --description "Enter on pullback to 20 EMA in a trend"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if app.Store == nil {
				output.Error("Store not initialized")
				return apperrors.ErrDatabaseError
			}

			name := args[0]
			if name == "" {
				err := apperrors.NewValidationError("name", name, "strategy name must not be empty")
				output.Error("%v", err)
				return err
			}
			description, _ := cmd.Flags().GetString("description")

			strategy := models.Strategy{
				ID:          id.New(),
				Name:        name,
				Description: description,
				CreatedAt:   time.Now().UTC(),
			}

			if err := app.Store.SaveStrategy(ctx, &strategy); err != nil {
				output.Error("Failed to save strategy: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(strategy)
			}
			output.Success("✓ Strategy added: %s (%s)", strategy.Name, strategy.ID)
			return nil
		},
	}

	cmd.Flags().String("description", "", "strategy description")
	return cmd
}

func newStrategiesRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <strategy-id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a strategy",
		Long: `Remove a strategy definition.

Trades keep their strategy reference as a plain label, so removing a
strategy never touches recorded trades.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if app.Store == nil {
				output.Error("Store not initialized")
				return apperrors.ErrDatabaseError
			}

			if err := app.Store.DeleteStrategy(ctx, args[0]); err != nil {
				if apperrors.Is(err, apperrors.ErrStrategyNotFound) {
					output.Error("Strategy not found: %s", args[0])
				} else {
					output.Error("Failed to delete strategy: %v", err)
				}
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Strategy deleted: %s", args[0])
			return nil
		},
	}
}

// formatCondition renders a rule condition for display.
func formatCondition(c models.RuleCondition) string {
	if c.Value == nil {
		return fmt.Sprintf("%s %s", c.Field, c.Operator)
	}
	return fmt.Sprintf("%s %s %s", c.Field, c.Operator, *c.Value)
}
