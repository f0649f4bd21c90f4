// Package analytics folds trade collections into the statistics shown across
// the journal: equity curve, monthly and per-asset P/L, daily calendar
// buckets, per-strategy stats, and summary ratios.
//
// Every function is a pure projection of its input: no mutation, no retained
// references, no caching. Empty input yields empty results, never an error.
package analytics

import (
	"sort"
	"time"

	"trade-journal/internal/models"
)

const (
	monthKeyLayout = "2006-01"
	dayKeyLayout   = "2006-01-02"
)

// Summarize computes the full AggregateStats projection for a trade
// collection. The input order is preserved as the equity-curve tie-break for
// trades sharing a date.
func Summarize(trades []models.TradeRecord) models.AggregateStats {
	stats := summaryRatios(trades)
	stats.EquityCurve = EquityCurve(trades)
	stats.MonthlyPL = MonthlyPL(trades)
	stats.AssetPL = AssetPL(trades)
	stats.DailyPL = DailyPL(trades)
	stats.Strategies = StrategyStats(trades)
	return stats
}

// summaryRatios computes win rate, averages, and profit factor.
func summaryRatios(trades []models.TradeRecord) models.AggregateStats {
	var stats models.AggregateStats
	stats.TotalTrades = len(trades)

	var grossProfit, grossLoss float64
	for _, t := range trades {
		stats.TotalPL += t.ProfitLoss
		switch t.Result {
		case models.ResultWin:
			stats.TotalWins++
			grossProfit += t.ProfitLoss
		case models.ResultLoss:
			stats.TotalLosses++
			grossLoss += t.ProfitLoss
		default:
			stats.BreakEven++
		}
	}

	if stats.TotalTrades > 0 {
		stats.WinRate = float64(stats.TotalWins) / float64(stats.TotalTrades) * 100
	}
	if stats.TotalWins > 0 {
		stats.AvgWin = grossProfit / float64(stats.TotalWins)
	}
	if stats.TotalLosses > 0 {
		stats.AvgLoss = grossLoss / float64(stats.TotalLosses)
	}

	// Profit factor is undefined when there is no average loss to divide by;
	// the explicit flag keeps NaN/Inf out of presentation layers.
	if absLoss := -stats.AvgLoss; absLoss > 0 {
		stats.ProfitFactor = (float64(stats.TotalWins) * stats.AvgWin) /
			(float64(stats.TotalLosses) * absLoss)
		stats.ProfitFactorOK = true
	}

	return stats
}

// EquityCurve produces cumulative P/L points ordered by trade date. The sort
// is stable: trades sharing a date keep their incoming collection order, so
// recomputing from the same input always yields the same sequence.
func EquityCurve(trades []models.TradeRecord) []models.EquityPoint {
	if len(trades) == 0 {
		return nil
	}

	sorted := make([]models.TradeRecord, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TradeDate.Before(sorted[j].TradeDate)
	})

	points := make([]models.EquityPoint, len(sorted))
	var cumulative float64
	for i, t := range sorted {
		cumulative += t.ProfitLoss
		points[i] = models.EquityPoint{Date: t.TradeDate, Cumulative: cumulative}
	}
	return points
}

// MonthlyPL groups trades by calendar month. Only months present in the data
// produce a bucket; there is no zero-filling of empty months.
func MonthlyPL(trades []models.TradeRecord) []models.MonthlyBucket {
	sums := make(map[string]float64)
	for _, t := range trades {
		sums[t.TradeDate.Format(monthKeyLayout)] += t.ProfitLoss
	}

	buckets := make([]models.MonthlyBucket, 0, len(sums))
	for month, pl := range sums {
		buckets = append(buckets, models.MonthlyBucket{Month: month, PL: pl})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Month < buckets[j].Month })
	return buckets
}

// AssetPL groups trades by exact asset string.
func AssetPL(trades []models.TradeRecord) []models.AssetBucket {
	type agg struct {
		pl    float64
		count int
	}
	sums := make(map[string]agg)
	for _, t := range trades {
		a := sums[t.Asset]
		a.pl += t.ProfitLoss
		a.count++
		sums[t.Asset] = a
	}

	buckets := make([]models.AssetBucket, 0, len(sums))
	for asset, a := range sums {
		buckets = append(buckets, models.AssetBucket{Asset: asset, PL: a.pl, Trades: a.count})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Asset < buckets[j].Asset })
	return buckets
}

// DailyPL groups trades by calendar date at yyyy-mm-dd granularity,
// independent of time of day. Days with no trades have no entry: consumers
// must render absence as "no data", which is distinct from a break-even day.
func DailyPL(trades []models.TradeRecord) map[string]models.DailyBucket {
	buckets := make(map[string]models.DailyBucket)
	for _, t := range trades {
		key := t.TradeDate.Format(dayKeyLayout)
		b := buckets[key]
		b.PL += t.ProfitLoss
		b.Count++
		buckets[key] = b
	}
	return buckets
}

// DayKey formats a time as a daily bucket key.
func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// StrategyStats groups trades by strategy reference and computes per-group
// performance. Trades with no strategy form the StrategyNone group, which
// leaderboards must exclude.
func StrategyStats(trades []models.TradeRecord) []models.StrategyStats {
	type agg struct {
		count      int
		wins       int
		losses     int
		totalPL    float64
		winSum     float64
		lossSum    float64
		firstIndex int
	}

	groups := make(map[string]*agg)
	for i, t := range trades {
		ref := t.StrategyRef
		if ref == "" {
			ref = models.StrategyNone
		}
		g, ok := groups[ref]
		if !ok {
			g = &agg{firstIndex: i}
			groups[ref] = g
		}
		g.count++
		g.totalPL += t.ProfitLoss
		switch t.Result {
		case models.ResultWin:
			g.wins++
			g.winSum += t.ProfitLoss
		case models.ResultLoss:
			g.losses++
			g.lossSum += t.ProfitLoss
		}
	}

	stats := make([]models.StrategyStats, 0, len(groups))
	for ref, g := range groups {
		s := models.StrategyStats{
			StrategyRef: ref,
			TotalTrades: g.count,
			Wins:        g.wins,
			Losses:      g.losses,
			TotalPL:     g.totalPL,
			WinRate:     float64(g.wins) / float64(g.count) * 100,
		}
		if g.wins > 0 {
			s.AvgWin = g.winSum / float64(g.wins)
		}
		if g.losses > 0 {
			s.AvgLoss = g.lossSum / float64(g.losses)
		}
		stats = append(stats, s)
	}
	sort.Slice(stats, func(i, j int) bool {
		return groups[stats[i].StrategyRef].firstIndex < groups[stats[j].StrategyRef].firstIndex
	})
	return stats
}
