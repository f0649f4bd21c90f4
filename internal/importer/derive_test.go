package importer

import (
	"math"
	"testing"
	"time"

	"trade-journal/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestContractSize(t *testing.T) {
	tests := []struct {
		asset    string
		market   models.Market
		expected float64
	}{
		{"EURUSD", models.MarketForex, 100000},
		{"AAPL", models.MarketForex, 100000}, // forex market wins regardless of symbol
		{"XAUUSD", models.MarketCommodities, 100},
		{"GOLD", models.MarketCommodities, 100},
		{"XAGUSD", models.MarketCommodities, 5000},
		{"SILVER", models.MarketCommodities, 5000},
		{"EUR/USD", models.MarketStocks, 100000}, // currency pair after symbol stripping
		{"GBPJPY", models.MarketIndices, 100000},
		{"BTCUSD", models.MarketCrypto, 1}, // BTC is not a recognized currency code
		{"AAPL", models.MarketStocks, 1},
		{"US30", models.MarketIndices, 1},
	}

	for _, tt := range tests {
		if got := ContractSize(tt.asset, tt.market); got != tt.expected {
			t.Errorf("ContractSize(%q, %s) = %v, expected %v", tt.asset, tt.market, got, tt.expected)
		}
	}
}

func TestRiskReward(t *testing.T) {
	sl, tp := 90.0, 130.0
	risk, reward, ratio := RiskReward(100, &sl, &tp, 1)

	if !almostEqual(risk, 10) {
		t.Errorf("risk: expected 10, got %v", risk)
	}
	if !almostEqual(reward, 30) {
		t.Errorf("reward: expected 30, got %v", reward)
	}
	if ratio == nil || !almostEqual(*ratio, 3.0) {
		t.Errorf("ratio: expected 3.0, got %v", ratio)
	}
}

func TestRiskReward_Undefined(t *testing.T) {
	tp := 130.0
	if _, _, ratio := RiskReward(100, nil, &tp, 1); ratio != nil {
		t.Errorf("ratio must be undefined without a stop loss, got %v", *ratio)
	}

	sl := 100.0 // zero distance, zero risk
	if _, _, ratio := RiskReward(100, &sl, &tp, 1); ratio != nil {
		t.Errorf("ratio must be undefined with zero risk, got %v", *ratio)
	}

	slOnly := 90.0
	if _, _, ratio := RiskReward(100, &slOnly, nil, 1); ratio != nil {
		t.Errorf("ratio must be undefined without a take profit, got %v", *ratio)
	}
}

func TestDerive_LongForex(t *testing.T) {
	// EURUSD,forex,buy,1.0500,1.0550,1.0 -> (1.0550-1.0500)*1*1*100000 = 500
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	market := models.MarketForex
	dir := models.DirectionLong
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c := Candidate{
		Asset:        "EURUSD",
		Market:       &market,
		Direction:    &dir,
		EntryPrice:   floatPtr(1.0500),
		ExitPrice:    floatPtr(1.0550),
		PositionSize: floatPtr(1.0),
		TradeDate:    &date,
	}

	trade, ok := Derive(c, now)
	if !ok {
		t.Fatal("expected candidate to be accepted")
	}
	if !almostEqual(trade.ProfitLoss, 500.0) {
		t.Errorf("profit/loss: expected 500, got %v", trade.ProfitLoss)
	}
	if trade.Result != models.ResultWin {
		t.Errorf("result: expected win, got %s", trade.Result)
	}
	if !trade.TradeDate.Equal(date) {
		t.Errorf("trade date: expected %v, got %v", date, trade.TradeDate)
	}
	if !trade.Valid() {
		t.Error("derived record must satisfy the validity invariants")
	}
}

func TestDerive_ShortCrypto(t *testing.T) {
	// BTCUSD,crypto,sell,45000,44000,0.1 -> (44000-45000)*0.1*(-1)*1 = 100
	market := models.MarketCrypto
	dir := models.DirectionShort

	c := Candidate{
		Asset:        "BTCUSD",
		Market:       &market,
		Direction:    &dir,
		EntryPrice:   floatPtr(45000),
		ExitPrice:    floatPtr(44000),
		PositionSize: floatPtr(0.1),
	}

	trade, ok := Derive(c, time.Now())
	if !ok {
		t.Fatal("expected candidate to be accepted")
	}
	if !almostEqual(trade.ProfitLoss, 100.0) {
		t.Errorf("profit/loss: expected 100, got %v", trade.ProfitLoss)
	}
	if trade.Result != models.ResultWin {
		t.Errorf("result: expected win, got %s", trade.Result)
	}
}

func TestDerive_SuppliedProfitLossWins(t *testing.T) {
	market := models.MarketStocks
	dir := models.DirectionLong

	c := Candidate{
		Asset:        "AAPL",
		Market:       &market,
		Direction:    &dir,
		EntryPrice:   floatPtr(180),
		ExitPrice:    floatPtr(185),
		PositionSize: floatPtr(10),
		ProfitLoss:   floatPtr(-12.5), // source value overrides derivation
	}

	trade, ok := Derive(c, time.Now())
	if !ok {
		t.Fatal("expected candidate to be accepted")
	}
	if trade.ProfitLoss != -12.5 {
		t.Errorf("profit/loss: expected supplied -12.5, got %v", trade.ProfitLoss)
	}
	if trade.Result != models.ResultLoss {
		t.Errorf("result must follow profit/loss sign, got %s", trade.Result)
	}
}

func TestDerive_Rejections(t *testing.T) {
	market := models.MarketForex
	dir := models.DirectionLong

	base := Candidate{
		Asset:        "EURUSD",
		Market:       &market,
		Direction:    &dir,
		EntryPrice:   floatPtr(1.05),
		ExitPrice:    floatPtr(1.06),
		PositionSize: floatPtr(1),
	}

	tests := []struct {
		name   string
		mutate func(c *Candidate)
	}{
		{"missing asset", func(c *Candidate) { c.Asset = "" }},
		{"missing direction", func(c *Candidate) { c.Direction = nil }},
		{"missing entry", func(c *Candidate) { c.EntryPrice = nil }},
		{"missing exit", func(c *Candidate) { c.ExitPrice = nil }},
		{"missing size", func(c *Candidate) { c.PositionSize = nil }},
		{"zero entry", func(c *Candidate) { c.EntryPrice = floatPtr(0) }},
		{"negative exit", func(c *Candidate) { c.ExitPrice = floatPtr(-1) }},
		{"zero size", func(c *Candidate) { c.PositionSize = floatPtr(0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			if _, ok := Derive(c, time.Now()); ok {
				t.Error("expected candidate to be rejected")
			}
		})
	}
}

func TestDerive_MissingDateStampedWithImportTime(t *testing.T) {
	market := models.MarketForex
	dir := models.DirectionLong
	now := time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)

	c := Candidate{
		Asset:        "EURUSD",
		Market:       &market,
		Direction:    &dir,
		EntryPrice:   floatPtr(1.05),
		ExitPrice:    floatPtr(1.06),
		PositionSize: floatPtr(1),
	}

	trade, ok := Derive(c, now)
	if !ok {
		t.Fatal("expected candidate to be accepted")
	}
	if !trade.TradeDate.Equal(now) {
		t.Errorf("undated row must be stamped with import time, got %v", trade.TradeDate)
	}
}

func TestDerive_MissingMarketDefaultsToForex(t *testing.T) {
	dir := models.DirectionLong

	c := Candidate{
		Asset:        "GBPUSD",
		Direction:    &dir,
		EntryPrice:   floatPtr(1.2700),
		ExitPrice:    floatPtr(1.2650),
		PositionSize: floatPtr(1),
	}

	trade, ok := Derive(c, time.Now())
	if !ok {
		t.Fatal("expected candidate to be accepted")
	}
	if trade.Market != models.MarketForex {
		t.Errorf("market: expected forex default, got %s", trade.Market)
	}
	if !almostEqual(trade.ProfitLoss, -500.0) {
		t.Errorf("profit/loss: expected -500, got %v", trade.ProfitLoss)
	}
	if trade.Result != models.ResultLoss {
		t.Errorf("result: expected loss, got %s", trade.Result)
	}
}
