// Package models provides domain models for the trading journal.
package models

import (
	"strings"
	"time"
)

// Market represents the asset class a trade belongs to.
type Market string

const (
	MarketForex       Market = "forex"
	MarketCrypto      Market = "crypto"
	MarketStocks      Market = "stocks"
	MarketIndices     Market = "indices"
	MarketCommodities Market = "commodities"
)

// ParseMarket normalizes a market label. Unknown labels default to forex,
// mirroring the journal's historical behavior for hand-entered data.
func ParseMarket(s string) Market {
	switch Market(strings.ToLower(strings.TrimSpace(s))) {
	case MarketCrypto:
		return MarketCrypto
	case MarketStocks:
		return MarketStocks
	case MarketIndices:
		return MarketIndices
	case MarketCommodities:
		return MarketCommodities
	default:
		return MarketForex
	}
}

// Direction represents the side of a trade.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// ParseDirection normalizes source vocabulary ("buy"/"sell") into a
// Direction. The second return value is false when the label is not
// recognized.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "buy":
		return DirectionLong, true
	case "short", "sell":
		return DirectionShort, true
	default:
		return "", false
	}
}

// Sign returns the P/L sign convention for the direction: +1 for long,
// -1 for short.
func (d Direction) Sign() float64 {
	if d == DirectionShort {
		return -1
	}
	return 1
}

// Result classifies a completed trade by the sign of its profit/loss.
type Result string

const (
	ResultWin       Result = "win"
	ResultLoss      Result = "loss"
	ResultBreakEven Result = "break-even"
)

// Classify derives the result from a profit/loss value. Result is always a
// pure function of ProfitLoss; it is never stored independently of it.
func Classify(profitLoss float64) Result {
	switch {
	case profitLoss > 0:
		return ResultWin
	case profitLoss < 0:
		return ResultLoss
	default:
		return ResultBreakEven
	}
}

// TradeRecord is the canonical unit of the journal: one completed trade with
// its derived financial fields. Once persisted, records are immutable inputs
// to the analytics aggregator.
type TradeRecord struct {
	ID              string
	Asset           string
	Market          Market
	Direction       Direction
	EntryPrice      float64
	ExitPrice       float64
	PositionSize    float64
	StopLoss        *float64
	TakeProfit      *float64
	ProfitLoss      float64
	Result          Result
	RiskReward      *float64
	TradeDate       time.Time
	StrategyRef     string
	Notes           string
	Attachments     []string
	RuleEvaluations []RuleEvaluation
	CreatedAt       time.Time
}

// NormalizeAsset trims and upper-cases a ticker symbol.
func NormalizeAsset(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Valid reports whether the record satisfies the import invariants:
// positive entry/exit prices and position size, a known direction, and a
// classified result matching the profit/loss sign.
func (t *TradeRecord) Valid() bool {
	if t.Asset == "" {
		return false
	}
	if t.EntryPrice <= 0 || t.ExitPrice <= 0 || t.PositionSize <= 0 {
		return false
	}
	if t.Direction != DirectionLong && t.Direction != DirectionShort {
		return false
	}
	return t.Result == Classify(t.ProfitLoss)
}

// Strategy is a named trading strategy referenced by TradeRecord.StrategyRef.
type Strategy struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// RuleCategory groups trading rules by what they constrain.
type RuleCategory string

const (
	RuleCategoryRisk  RuleCategory = "risk"
	RuleCategoryEntry RuleCategory = "entry"
	RuleCategoryTrade RuleCategory = "trade"
	RuleCategoryTime  RuleCategory = "time"
)

// RuleCondition is the opaque predicate of a trading rule. Evaluation
// happens in a collaborator service; the journal only stores the shape.
type RuleCondition struct {
	Field    string  `json:"field"`
	Operator string  `json:"operator"` // >, <, >=, <=, =, !=, exists, not_exists
	Value    *string `json:"value,omitempty"`
}

// Rule is a user-defined trading rule definition, carried as data only.
type Rule struct {
	ID        string
	Name      string
	Category  RuleCategory
	Condition RuleCondition
	CreatedAt time.Time
}

// RuleEvaluation is a pre-computed rule outcome attached to a trade by the
// evaluating collaborator. The journal passes it through unchanged.
type RuleEvaluation struct {
	RuleName    string `json:"ruleName"`
	Passed      bool   `json:"passed"`
	ActualValue string `json:"actualValue"`
}
