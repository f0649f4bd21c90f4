package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trade-journal/internal/models"
)

func genTrades(plValues []float64, dayOffsets []int) []models.TradeRecord {
	n := len(plValues)
	if len(dayOffsets) < n {
		n = len(dayOffsets)
	}
	trades := make([]models.TradeRecord, n)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		trades[i] = models.TradeRecord{
			Asset:        "EURUSD",
			Direction:    models.DirectionLong,
			EntryPrice:   1.05,
			ExitPrice:    1.06,
			PositionSize: 1,
			ProfitLoss:   plValues[i],
			Result:       models.Classify(plValues[i]),
			TradeDate:    base.AddDate(0, 0, dayOffsets[i]),
		}
	}
	return trades
}

// Property: the final equity point always equals the sum of all profit/loss
// values, regardless of input order, and curve dates are non-decreasing.
func TestProperty_EquityCurveConservation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	plGen := gen.SliceOf(gen.Float64Range(-1000, 1000))
	offsetGen := gen.SliceOf(gen.IntRange(0, 365))

	properties.Property("final equity equals total P/L", prop.ForAll(
		func(plValues []float64, dayOffsets []int) bool {
			trades := genTrades(plValues, dayOffsets)
			curve := EquityCurve(trades)

			if len(curve) != len(trades) {
				t.Logf("curve length %d, expected %d", len(curve), len(trades))
				return false
			}
			if len(curve) == 0 {
				return true
			}

			var total float64
			for _, tr := range trades {
				total += tr.ProfitLoss
			}
			if math.Abs(curve[len(curve)-1].Cumulative-total) > 1e-6 {
				t.Logf("final %v, total %v", curve[len(curve)-1].Cumulative, total)
				return false
			}

			for i := 1; i < len(curve); i++ {
				if curve[i].Date.Before(curve[i-1].Date) {
					t.Logf("dates out of order at %d", i)
					return false
				}
			}
			return true
		},
		plGen,
		offsetGen,
	))

	properties.Property("bucket sums equal total P/L", prop.ForAll(
		func(plValues []float64, dayOffsets []int) bool {
			trades := genTrades(plValues, dayOffsets)

			var total float64
			for _, tr := range trades {
				total += tr.ProfitLoss
			}

			var monthlyTotal float64
			for _, b := range MonthlyPL(trades) {
				monthlyTotal += b.PL
			}
			if math.Abs(monthlyTotal-total) > 1e-6 {
				t.Logf("monthly sum %v, total %v", monthlyTotal, total)
				return false
			}

			var dailyTotal float64
			var dailyCount int
			for _, b := range DailyPL(trades) {
				dailyTotal += b.PL
				dailyCount += b.Count
			}
			if math.Abs(dailyTotal-total) > 1e-6 || dailyCount != len(trades) {
				t.Logf("daily sum %v count %d, total %v count %d",
					dailyTotal, dailyCount, total, len(trades))
				return false
			}

			return true
		},
		plGen,
		offsetGen,
	))

	properties.Property("summary counts partition the trades", prop.ForAll(
		func(plValues []float64, dayOffsets []int) bool {
			trades := genTrades(plValues, dayOffsets)
			stats := Summarize(trades)

			if stats.TotalWins+stats.TotalLosses+stats.BreakEven != stats.TotalTrades {
				t.Logf("partition broken: %+v", stats)
				return false
			}
			if stats.ProfitFactorOK &&
				(math.IsNaN(stats.ProfitFactor) || math.IsInf(stats.ProfitFactor, 0)) {
				t.Logf("profit factor not finite: %v", stats.ProfitFactor)
				return false
			}
			if !stats.ProfitFactorOK && stats.ProfitFactor != 0 {
				t.Logf("undefined profit factor carries value %v", stats.ProfitFactor)
				return false
			}
			return true
		},
		plGen,
		offsetGen,
	))

	properties.TestingRun(t)
}

// Property: aggregation never mutates its input.
func TestProperty_AggregationIsPure(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("Summarize leaves input untouched", prop.ForAll(
		func(plValues []float64, dayOffsets []int) bool {
			trades := genTrades(plValues, dayOffsets)
			snapshot := make([]models.TradeRecord, len(trades))
			copy(snapshot, trades)

			_ = Summarize(trades)

			for i := range trades {
				if trades[i].ProfitLoss != snapshot[i].ProfitLoss ||
					!trades[i].TradeDate.Equal(snapshot[i].TradeDate) ||
					trades[i].Result != snapshot[i].Result {
					t.Logf("input mutated at %d", i)
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(-1000, 1000)),
		gen.SliceOf(gen.IntRange(0, 365)),
	))

	properties.TestingRun(t)
}
