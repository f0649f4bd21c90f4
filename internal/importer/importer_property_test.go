package importer

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trade-journal/internal/models"
)

// Property: deriving the same candidate twice yields identical records, and
// every accepted record satisfies the validity invariants with a result
// classification matching the profit/loss sign.
func TestProperty_DerivationDeterministicAndValid(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	assets := []string{"EURUSD", "GBPJPY", "BTCUSD", "XAUUSD", "AAPL", "US30"}
	markets := []models.Market{
		models.MarketForex, models.MarketCrypto, models.MarketStocks,
		models.MarketIndices, models.MarketCommodities,
	}

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	properties.Property("derive is deterministic and gated", prop.ForAll(
		func(assetIdx, marketIdx int, long bool, entry, exit, size float64, hasPL bool, pl float64) bool {
			dir := models.DirectionShort
			if long {
				dir = models.DirectionLong
			}
			market := markets[marketIdx%len(markets)]

			c := Candidate{
				Asset:        assets[assetIdx%len(assets)],
				Market:       &market,
				Direction:    &dir,
				EntryPrice:   floatPtr(entry),
				ExitPrice:    floatPtr(exit),
				PositionSize: floatPtr(size),
			}
			if hasPL {
				c.ProfitLoss = floatPtr(pl)
			}

			first, okFirst := Derive(c, now)
			second, okSecond := Derive(c, now)

			if okFirst != okSecond {
				t.Logf("determinism violated: ok %v vs %v", okFirst, okSecond)
				return false
			}
			if !okFirst {
				// Only positive inputs are generated, so rejection is a bug.
				t.Logf("valid candidate rejected: %+v", c)
				return false
			}
			if first.ProfitLoss != second.ProfitLoss || first.Result != second.Result {
				t.Logf("determinism violated: %+v vs %+v", first, second)
				return false
			}

			if !first.Valid() {
				t.Logf("accepted record fails validity: %+v", first)
				return false
			}
			if first.Result != models.Classify(first.ProfitLoss) {
				t.Logf("result %s does not match profit/loss %v", first.Result, first.ProfitLoss)
				return false
			}

			if !hasPL {
				expected := (exit - entry) * size * dir.Sign() * ContractSize(c.Asset, market)
				if math.Abs(first.ProfitLoss-expected) > 1e-9*math.Max(1, math.Abs(expected)) {
					t.Logf("derived pl %v, expected %v", first.ProfitLoss, expected)
					return false
				}
			} else if first.ProfitLoss != pl {
				t.Logf("supplied pl %v not preserved, got %v", pl, first.ProfitLoss)
				return false
			}

			return true
		},
		gen.IntRange(0, len(assets)-1),
		gen.IntRange(0, len(markets)-1),
		gen.Bool(),
		gen.Float64Range(0.0001, 100000),
		gen.Float64Range(0.0001, 100000),
		gen.Float64Range(0.01, 100),
		gen.Bool(),
		gen.Float64Range(-10000, 10000),
	))

	properties.TestingRun(t)
}

// Property: for any generated CSV batch, accepted plus rejected row counts
// always equal the total, and parsing the same text twice yields the same
// outcome.
func TestProperty_ImportPartitionsRows(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("accepted + rejected == total", prop.ForAll(
		func(validRows, invalidRows int) bool {
			var b strings.Builder
			b.WriteString("asset,type,entry,exit,size,date\n")
			for i := 0; i < validRows; i++ {
				fmt.Fprintf(&b, "EURUSD,buy,1.0500,1.0550,1.0,2024-01-%02d\n", i%28+1)
			}
			for i := 0; i < invalidRows; i++ {
				b.WriteString("GBPUSD,buy,1.2700,1.2650,\n") // missing size
			}

			report, err := Import(b.String(), time.Now())
			if validRows == 0 {
				return err != nil
			}
			if err != nil {
				t.Logf("Import failed: %v", err)
				return false
			}

			if report.TotalRows != validRows+invalidRows {
				t.Logf("total %d, expected %d", report.TotalRows, validRows+invalidRows)
				return false
			}
			if report.AcceptedCount()+len(report.Rejected) != report.TotalRows {
				t.Logf("partition broken: %d + %d != %d",
					report.AcceptedCount(), len(report.Rejected), report.TotalRows)
				return false
			}
			return report.AcceptedCount() == validRows
		},
		gen.IntRange(0, 20),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}
