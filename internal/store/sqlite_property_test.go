package store

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test_journal.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
		os.Remove(dbPath)
	})
	return store
}

func testTrade(id string, date time.Time, pl float64) models.TradeRecord {
	return models.TradeRecord{
		ID:           id,
		Asset:        "EURUSD",
		Market:       models.MarketForex,
		Direction:    models.DirectionLong,
		EntryPrice:   1.0500,
		ExitPrice:    1.0550,
		PositionSize: 1,
		ProfitLoss:   pl,
		Result:       models.Classify(pl),
		TradeDate:    date,
		CreatedAt:    time.Now().UTC(),
	}
}

// Property: for any batch of valid trades, importing and then retrieving
// them produces equivalent records in trade-date order.
func TestProperty_TradeRoundTripConsistency(t *testing.T) {
	store := newTestStore(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	var batchCounter int

	properties.Property("import then retrieve produces equivalent trades", prop.ForAll(
		func(count int, basePL float64) bool {
			ctx := context.Background()
			batchCounter++
			// Unique asset per batch keeps runs independent.
			asset := fmt.Sprintf("PAIR%04d", batchCounter)

			trades := make([]models.TradeRecord, count)
			base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			for i := 0; i < count; i++ {
				tr := testTrade(fmt.Sprintf("%s-%03d", asset, i), base.AddDate(0, 0, i), basePL+float64(i))
				tr.Asset = asset
				sl := tr.EntryPrice - 0.005
				tr.StopLoss = &sl
				trades[i] = tr
			}

			n, err := store.ImportTrades(ctx, trades)
			if err != nil {
				t.Logf("ImportTrades failed: %v", err)
				return false
			}
			if n != count {
				t.Logf("imported %d, expected %d", n, count)
				return false
			}

			retrieved, err := store.GetTrades(ctx, TradeFilter{Asset: asset})
			if err != nil {
				t.Logf("GetTrades failed: %v", err)
				return false
			}
			if len(retrieved) != count {
				t.Logf("retrieved %d, expected %d", len(retrieved), count)
				return false
			}

			for i, orig := range trades {
				ret := retrieved[i]
				if ret.ID != orig.ID ||
					ret.Asset != orig.Asset ||
					ret.Direction != orig.Direction ||
					ret.Result != orig.Result ||
					math.Abs(ret.ProfitLoss-orig.ProfitLoss) > 1e-9 ||
					!ret.TradeDate.Equal(orig.TradeDate) {
					t.Logf("mismatch at %d: original=%+v retrieved=%+v", i, orig, ret)
					return false
				}
				if ret.StopLoss == nil || math.Abs(*ret.StopLoss-*orig.StopLoss) > 1e-9 {
					t.Logf("stop loss mismatch at %d", i)
					return false
				}
				if ret.TakeProfit != nil {
					t.Logf("take profit should be unset at %d", i)
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 15),
		gen.Float64Range(-500, 500),
	))

	properties.Property("empty batch imports zero rows", prop.ForAll(
		func(unused int) bool {
			n, err := store.ImportTrades(context.Background(), nil)
			return err == nil && n == 0
		},
		gen.IntRange(0, 1),
	))

	properties.TestingRun(t)
}

func TestSQLiteStore_TradeFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	win := testTrade("T1", jan, 100)
	loss := testTrade("T2", feb, -50)
	loss.Asset = "GBPUSD"
	loss.Direction = models.DirectionShort
	loss.StrategyRef = "breakout"

	if _, err := store.ImportTrades(ctx, []models.TradeRecord{win, loss}); err != nil {
		t.Fatalf("ImportTrades failed: %v", err)
	}

	tests := []struct {
		name   string
		filter TradeFilter
		want   []string
	}{
		{"no filter", TradeFilter{}, []string{"T1", "T2"}},
		{"by asset", TradeFilter{Asset: "GBPUSD"}, []string{"T2"}},
		{"by result", TradeFilter{Result: models.ResultWin}, []string{"T1"}},
		{"by direction", TradeFilter{Direction: models.DirectionShort}, []string{"T2"}},
		{"by strategy", TradeFilter{StrategyRef: "breakout"}, []string{"T2"}},
		{"by date range", TradeFilter{StartDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}, []string{"T2"}},
		{"with limit", TradeFilter{Limit: 1}, []string{"T1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trades, err := store.GetTrades(ctx, tt.filter)
			if err != nil {
				t.Fatalf("GetTrades failed: %v", err)
			}
			if len(trades) != len(tt.want) {
				t.Fatalf("expected %d trades, got %d", len(tt.want), len(trades))
			}
			for i, id := range tt.want {
				if trades[i].ID != id {
					t.Errorf("position %d: expected %s, got %s", i, id, trades[i].ID)
				}
			}
		})
	}
}

func TestSQLiteStore_TradeNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.GetTradeByID(ctx, "missing"); !apperrors.Is(err, apperrors.ErrTradeNotFound) {
		t.Errorf("expected ErrTradeNotFound, got %v", err)
	}
	if err := store.DeleteTrade(ctx, "missing"); !apperrors.Is(err, apperrors.ErrTradeNotFound) {
		t.Errorf("expected ErrTradeNotFound, got %v", err)
	}
}

func TestSQLiteStore_RuleEvaluationsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tr := testTrade("T-EVAL", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 75)
	tr.Attachments = []string{"chart-before.png", "chart-after.png"}
	tr.RuleEvaluations = []models.RuleEvaluation{
		{RuleName: "Max risk 2%", Passed: true, ActualValue: "1.4%"},
		{RuleName: "Stop loss set", Passed: false, ActualValue: "missing"},
	}

	if err := store.SaveTrade(ctx, &tr); err != nil {
		t.Fatalf("SaveTrade failed: %v", err)
	}

	got, err := store.GetTradeByID(ctx, "T-EVAL")
	if err != nil {
		t.Fatalf("GetTradeByID failed: %v", err)
	}
	if len(got.Attachments) != 2 || got.Attachments[0] != "chart-before.png" {
		t.Errorf("attachments not preserved: %v", got.Attachments)
	}
	if len(got.RuleEvaluations) != 2 {
		t.Fatalf("expected 2 evaluations, got %d", len(got.RuleEvaluations))
	}
	if got.RuleEvaluations[0].RuleName != "Max risk 2%" || !got.RuleEvaluations[0].Passed {
		t.Errorf("evaluation 0 wrong: %+v", got.RuleEvaluations[0])
	}
	if got.RuleEvaluations[1].Passed {
		t.Errorf("evaluation 1 must be failed: %+v", got.RuleEvaluations[1])
	}
}

func TestSQLiteStore_StrategyCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	strategy := models.Strategy{
		ID:          "S1",
		Name:        "London Breakout",
		Description: "Trade the London open range",
		CreatedAt:   time.Now().UTC(),
	}
	if err := store.SaveStrategy(ctx, &strategy); err != nil {
		t.Fatalf("SaveStrategy failed: %v", err)
	}

	got, err := store.GetStrategyByID(ctx, "S1")
	if err != nil {
		t.Fatalf("GetStrategyByID failed: %v", err)
	}
	if got.Name != strategy.Name || got.Description != strategy.Description {
		t.Errorf("strategy mismatch: %+v", got)
	}

	all, err := store.GetStrategies(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("GetStrategies: err=%v len=%d", err, len(all))
	}

	if err := store.DeleteStrategy(ctx, "S1"); err != nil {
		t.Fatalf("DeleteStrategy failed: %v", err)
	}
	if _, err := store.GetStrategyByID(ctx, "S1"); !apperrors.Is(err, apperrors.ErrStrategyNotFound) {
		t.Errorf("expected ErrStrategyNotFound, got %v", err)
	}
}

func TestSQLiteStore_RuleCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	value := "2"
	rule := models.Rule{
		ID:       "R1",
		Name:     "Max risk 2%",
		Category: models.RuleCategoryRisk,
		Condition: models.RuleCondition{
			Field:    "riskPercent",
			Operator: "<=",
			Value:    &value,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := store.SaveRule(ctx, &rule); err != nil {
		t.Fatalf("SaveRule failed: %v", err)
	}

	existsRule := models.Rule{
		ID:       "R2",
		Name:     "Stop loss set",
		Category: models.RuleCategoryTrade,
		Condition: models.RuleCondition{
			Field:    "stopLoss",
			Operator: "exists",
		},
		CreatedAt: time.Now().UTC().Add(time.Second),
	}
	if err := store.SaveRule(ctx, &existsRule); err != nil {
		t.Fatalf("SaveRule failed: %v", err)
	}

	rules, err := store.GetRules(ctx)
	if err != nil {
		t.Fatalf("GetRules failed: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[0].Condition.Value == nil || *rules[0].Condition.Value != "2" {
		t.Errorf("rule value not preserved: %+v", rules[0].Condition)
	}
	if rules[1].Condition.Value != nil {
		t.Errorf("exists rule must have nil value: %+v", rules[1].Condition)
	}

	if err := store.DeleteRule(ctx, "R1"); err != nil {
		t.Fatalf("DeleteRule failed: %v", err)
	}
	if err := store.DeleteRule(ctx, "R1"); !apperrors.Is(err, apperrors.ErrRuleNotFound) {
		t.Errorf("expected ErrRuleNotFound, got %v", err)
	}
}
