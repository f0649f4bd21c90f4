package importer

import (
	"math"
	"strings"
	"time"

	"trade-journal/internal/models"
)

// currencyCodes are the ISO codes recognized when deciding whether a 6-char
// symbol is a currency pair.
var currencyCodes = map[string]bool{
	"USD": true,
	"EUR": true,
	"GBP": true,
	"JPY": true,
	"AUD": true,
	"CAD": true,
	"CHF": true,
	"NZD": true,
}

// ContractSize infers the unit multiplier converting a price difference into
// a monetary P/L for a given instrument. This is a deliberately coarse
// approximation, not exchange-accurate valuation:
//
//	forex market        -> 100000 (standard lot)
//	gold (XAU/GOLD)     -> 100
//	silver (XAG/SILVER) -> 5000
//	6-char currency pair -> 100000
//	everything else     -> 1
func ContractSize(asset string, market models.Market) float64 {
	if market == models.MarketForex {
		return 100000
	}

	symbol := stripSymbol(asset)
	if strings.Contains(symbol, "XAU") || strings.Contains(symbol, "GOLD") {
		return 100
	}
	if strings.Contains(symbol, "XAG") || strings.Contains(symbol, "SILVER") {
		return 5000
	}
	if len(symbol) == 6 && currencyCodes[symbol[:3]] && currencyCodes[symbol[3:]] {
		return 100000
	}
	return 1
}

// stripSymbol removes non-alphanumerics and upper-cases the ticker.
func stripSymbol(asset string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(asset) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RiskReward computes the risk, reward, and reward/risk ratio for a single
// trade while it is being composed. Risk requires a stop loss, reward a take
// profit; the ratio is only defined when risk is strictly positive. Each
// return value is best-effort and independent of import validity.
func RiskReward(entry float64, stopLoss, takeProfit *float64, size float64) (risk, reward float64, ratio *float64) {
	if stopLoss != nil {
		risk = math.Abs(entry-*stopLoss) * size
	}
	if takeProfit != nil {
		reward = math.Abs(*takeProfit-entry) * size
	}
	if stopLoss != nil && risk > 0 && takeProfit != nil {
		ratio = floatPtr(reward / risk)
	}
	return risk, reward, ratio
}

// Derive attempts to promote a candidate into a complete, valid TradeRecord.
// The second return value is false when the row must be excluded from the
// batch; no partial records are ever produced.
//
// Preconditions: entry price, exit price, position size, and a recognized
// direction must all be present, with positive prices and size. Profit/loss
// is taken from the source when supplied, otherwise derived as
//
//	(exit - entry) * size * sign * contractSize
//
// with sign +1 for long and -1 for short. The result classification is a
// pure function of the final profit/loss.
func Derive(c Candidate, now time.Time) (models.TradeRecord, bool) {
	var zero models.TradeRecord

	if c.Asset == "" || c.Direction == nil {
		return zero, false
	}
	if c.EntryPrice == nil || c.ExitPrice == nil || c.PositionSize == nil {
		return zero, false
	}
	entry, exit, size := *c.EntryPrice, *c.ExitPrice, *c.PositionSize
	if entry <= 0 || exit <= 0 || size <= 0 {
		return zero, false
	}

	market := models.MarketForex
	if c.Market != nil {
		market = *c.Market
	}

	var pl float64
	if c.ProfitLoss != nil {
		pl = *c.ProfitLoss
	} else {
		pl = (exit - entry) * size * c.Direction.Sign() * ContractSize(c.Asset, market)
	}
	if math.IsNaN(pl) || math.IsInf(pl, 0) {
		return zero, false
	}

	// Trade date is not part of the validity gate; undated rows are stamped
	// with the import time so the equity curve keeps ingestion order.
	tradeDate := now
	if c.TradeDate != nil {
		tradeDate = *c.TradeDate
	}

	_, _, ratio := RiskReward(entry, c.StopLoss, c.TakeProfit, size)

	return models.TradeRecord{
		Asset:        c.Asset,
		Market:       market,
		Direction:    *c.Direction,
		EntryPrice:   entry,
		ExitPrice:    exit,
		PositionSize: size,
		StopLoss:     c.StopLoss,
		TakeProfit:   c.TakeProfit,
		ProfitLoss:   pl,
		Result:       models.Classify(pl),
		RiskReward:   ratio,
		TradeDate:    tradeDate,
		StrategyRef:  c.StrategyRef,
		Notes:        c.Notes,
	}, true
}
