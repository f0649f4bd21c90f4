// Package importer turns user-pasted CSV text into validated trade records.
//
// The pipeline has three stages: header-token field inference (parser.go),
// financial derivation (derive.go), and the batch gate (importer.go). Each
// stage is pure; rejected rows are filtered, never raised.
package importer

import (
	"time"

	"trade-journal/internal/models"
)

// Candidate is the loosely-populated intermediate record produced by header
// inference. Every canonical field is explicitly optional; a nil pointer
// means the source row never supplied the field. Candidates are promoted to
// immutable TradeRecords by a single gate in derive.go.
type Candidate struct {
	Asset        string
	Market       *models.Market
	Direction    *models.Direction
	RawDirection string // pass-through when the label is not buy/sell/long/short
	EntryPrice   *float64
	ExitPrice    *float64
	PositionSize *float64
	StopLoss     *float64
	TakeProfit   *float64
	ProfitLoss   *float64
	TradeDate    *time.Time
	StrategyRef  string
	Notes        string
}

// empty reports whether inference recognized no fields at all, in which case
// the row is dropped silently by the parser.
func (c *Candidate) empty() bool {
	return c.Asset == "" &&
		c.Market == nil &&
		c.Direction == nil &&
		c.RawDirection == "" &&
		c.EntryPrice == nil &&
		c.ExitPrice == nil &&
		c.PositionSize == nil &&
		c.StopLoss == nil &&
		c.TakeProfit == nil &&
		c.ProfitLoss == nil &&
		c.TradeDate == nil &&
		c.StrategyRef == "" &&
		c.Notes == ""
}

func floatPtr(v float64) *float64 { return &v }
