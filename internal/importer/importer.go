package importer

import (
	"time"

	"trade-journal/internal/models"

	apperrors "trade-journal/internal/errors"
)

// Rejection records why a single row was excluded from an import batch.
// The original batch API only surfaced an accepted count; the reasons are
// kept here so callers can choose to expose them.
type Rejection struct {
	Row    int // 1-based data row number, header excluded
	Reason string
}

// Report is the structured outcome of an import batch.
type Report struct {
	TotalRows int
	Accepted  []models.TradeRecord
	Rejected  []Rejection
}

// AcceptedCount returns the number of rows that survived filtering.
func (r *Report) AcceptedCount() int {
	return len(r.Accepted)
}

// Import runs the full pipeline on raw CSV text: parse, infer, derive,
// filter. Either the whole batch of valid rows is returned for submission
// or none is: zero valid rows yields ErrNoValidTrades, and structurally
// malformed CSV yields a hard parse error. Individual bad rows are filtered,
// never raised.
func Import(text string, now time.Time) (*Report, error) {
	candidates, err := ParseCSV(text)
	if err != nil {
		return nil, err
	}

	report := &Report{TotalRows: len(candidates)}
	for i, c := range candidates {
		record, ok := Derive(c, now)
		if !ok {
			report.Rejected = append(report.Rejected, Rejection{
				Row:    i + 1,
				Reason: rejectionReason(c),
			})
			continue
		}
		report.Accepted = append(report.Accepted, record)
	}

	if len(report.Accepted) == 0 {
		return nil, apperrors.NewImportError(report.TotalRows, "no valid trades found", apperrors.ErrNoValidTrades)
	}

	return report, nil
}

// rejectionReason names the first failed precondition for diagnostics.
func rejectionReason(c Candidate) string {
	switch {
	case c.Asset == "":
		return "missing asset"
	case c.Direction == nil && c.RawDirection != "":
		return "unrecognized direction: " + c.RawDirection
	case c.Direction == nil:
		return "missing direction"
	case c.EntryPrice == nil:
		return "missing or non-numeric entry price"
	case c.ExitPrice == nil:
		return "missing or non-numeric exit price"
	case c.PositionSize == nil:
		return "missing or non-numeric position size"
	case *c.EntryPrice <= 0 || *c.ExitPrice <= 0:
		return "non-positive price"
	case *c.PositionSize <= 0:
		return "non-positive position size"
	default:
		return "profit/loss not computable"
	}
}
