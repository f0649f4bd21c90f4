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

// addRuleCommands adds trading rule commands. Rules are stored definitions
// only; evaluation outcomes arrive attached to trades from an external
// checker and are displayed as-is.
func addRuleCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Trading rule management",
		Long: `Manage trading rule definitions.

A rule is a named condition over trade fields, grouped by category (risk,
entry, trade, time). The journal stores and lists rules; it does not
evaluate them.`,
	}

	cmd.AddCommand(newRulesListCmd(app))
	cmd.AddCommand(newRulesAddCmd(app))
	cmd.AddCommand(newRulesRemoveCmd(app))

	rootCmd.AddCommand(cmd)
}

func newRulesListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if app.Store == nil {
				output.Warning("Store not initialized.")
				return nil
			}

			rules, err := app.Store.GetRules(ctx)
			if err != nil {
				output.Error("Failed to fetch rules: %v", err)
				return err
			}

			if category, _ := cmd.Flags().GetString("category"); category != "" {
				filtered := rules[:0]
				for _, r := range rules {
					if string(r.Category) == category {
						filtered = append(filtered, r)
					}
				}
				rules = filtered
			}

			if output.IsJSON() {
				return output.JSON(rules)
			}

			if len(rules) == 0 {
				output.Info("No rules defined.")
				return nil
			}

			table := NewTable(output, "ID", "Name", "Category", "Condition")
			for _, r := range rules {
				table.AddRow(
					TruncateString(r.ID, 10),
					r.Name,
					string(r.Category),
					formatCondition(r.Condition),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().String("category", "", "filter by category (risk, entry, trade, time)")
	return cmd
}

func newRulesAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a rule",
		Example: `  journal rules add "Max risk 2%" --category risk --field riskPercent --operator "<=" --value 2
  journal rules add "Stop loss set" --category trade --field stopLoss --operator exists`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if app.Store == nil {
				output.Error("Store not initialized")
				return apperrors.ErrDatabaseError
			}

			category, _ := cmd.Flags().GetString("category")
			switch models.RuleCategory(category) {
			case models.RuleCategoryRisk, models.RuleCategoryEntry,
				models.RuleCategoryTrade, models.RuleCategoryTime:
			default:
				err := fmt.Errorf("invalid category: %s", category)
				output.Error("%v", err)
				return err
			}

			field, _ := cmd.Flags().GetString("field")
			operator, _ := cmd.Flags().GetString("operator")
			if field == "" || operator == "" {
				err := apperrors.NewValidationError("condition", field, "--field and --operator are required")
				output.Error("%v", err)
				return err
			}

			condition := models.RuleCondition{Field: field, Operator: operator}
			if cmd.Flags().Changed("value") {
				v, _ := cmd.Flags().GetString("value")
				condition.Value = &v
			}

			rule := models.Rule{
				ID:        id.New(),
				Name:      args[0],
				Category:  models.RuleCategory(category),
				Condition: condition,
				CreatedAt: time.Now().UTC(),
			}

			if err := app.Store.SaveRule(ctx, &rule); err != nil {
				output.Error("Failed to save rule: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(rule)
			}
			output.Success("✓ Rule added: %s (%s)", rule.Name, rule.ID)
			output.Dim("  %s: %s", rule.Category, formatCondition(rule.Condition))
			return nil
		},
	}

	cmd.Flags().String("category", "trade", "rule category (risk, entry, trade, time)")
	cmd.Flags().String("field", "", "trade field the condition inspects")
	cmd.Flags().String("operator", "", "comparison operator (>, <, >=, <=, =, !=, exists, not_exists)")
	cmd.Flags().String("value", "", "comparison value (omit for exists/not_exists)")

	return cmd
}

func newRulesRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <rule-id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a rule",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if app.Store == nil {
				output.Error("Store not initialized")
				return apperrors.ErrDatabaseError
			}

			if err := app.Store.DeleteRule(ctx, args[0]); err != nil {
				if apperrors.Is(err, apperrors.ErrRuleNotFound) {
					output.Error("Rule not found: %s", args[0])
				} else {
					output.Error("Failed to delete rule: %v", err)
				}
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Rule deleted: %s", args[0])
			return nil
		},
	}
}
