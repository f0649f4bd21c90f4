package models

import "time"

// EquityPoint is one point of the cumulative P/L curve.
type EquityPoint struct {
	Date       time.Time
	Cumulative float64
}

// MonthlyBucket is the summed P/L for one calendar month.
type MonthlyBucket struct {
	Month string // "2006-01"
	PL    float64
}

// AssetBucket is the summed P/L for one asset symbol.
type AssetBucket struct {
	Asset  string
	PL     float64
	Trades int
}

// DailyBucket is the summed P/L and trade count for one calendar day.
// Days with no trades carry no bucket at all; downstream consumers must
// render the absence as "no data", distinct from a break-even day.
type DailyBucket struct {
	PL    float64
	Count int
}

// StrategyStats holds per-strategy performance. Trades with no strategy form
// their own group under StrategyNone, which leaderboards must exclude.
type StrategyStats struct {
	StrategyRef string
	TotalTrades int
	Wins        int
	Losses      int
	WinRate     float64
	TotalPL     float64
	AvgWin      float64
	AvgLoss     float64 // retains its negative sign
}

// StrategyNone is the group key for trades carrying no strategy reference.
const StrategyNone = "none"

// AggregateStats is an ephemeral projection of a TradeRecord collection.
// It owns no state and is recomputed on every request.
type AggregateStats struct {
	TotalTrades    int
	TotalWins      int
	TotalLosses    int
	BreakEven      int
	WinRate        float64 // percent
	TotalPL        float64
	AvgWin         float64
	AvgLoss        float64 // negative
	ProfitFactor   float64
	ProfitFactorOK bool // false means undefined (no losses), never NaN/Inf

	EquityCurve []EquityPoint
	MonthlyPL   []MonthlyBucket
	AssetPL     []AssetBucket
	DailyPL     map[string]DailyBucket // keyed "2006-01-02"
	Strategies  []StrategyStats
}
