package importer

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"trade-journal/internal/models"

	apperrors "trade-journal/internal/errors"
)

// dateLayouts are the ISO-ish representations accepted for trade dates,
// tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02 15:04:05",
	"2006.01.02",
	"01/02/2006",
}

// ParseCSV parses raw CSV text (header row, comma-separated, double-quote
// escaping) into candidate records, one per recognizable data row.
//
// Header matching is heuristic: each lower-cased, trimmed header token is
// tested by substring containment against the canonical rule table, top to
// bottom. Several headers may feed the same canonical field in one row;
// later matches in column order overwrite earlier ones. Cells with empty
// values leave the field unset. Rows in which no field is recognized are
// dropped silently.
//
// Structurally malformed CSV (unbalanced quoting) is a hard parse error
// wrapping ErrMalformedCSV; everything below that level is filtering, not
// failure.
func ParseCSV(text string) ([]Candidate, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimSpace(text)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMalformedCSV, err.Error())
	}

	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var candidates []Candidate
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrMalformedCSV, err.Error())
		}

		c := inferRow(headers, row)
		if c.empty() {
			continue
		}
		candidates = append(candidates, c)
	}

	return candidates, nil
}

// inferRow applies the header rule table to one data row.
func inferRow(headers, row []string) Candidate {
	var c Candidate

	for i, value := range row {
		if i >= len(headers) {
			break
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		assignField(&c, headers[i], value)
	}

	return c
}

// assignField routes one cell to its canonical field. The rules are
// independent: a header may satisfy more than one of them, matching the
// journal's historical import behavior. The take-profit rule shadows the
// generic profit rule for the same header.
func assignField(c *Candidate, header, value string) {
	if strings.Contains(header, "asset") || strings.Contains(header, "symbol") {
		c.Asset = models.NormalizeAsset(value)
	}
	if strings.Contains(header, "type") || strings.Contains(header, "direction") {
		if dir, ok := models.ParseDirection(value); ok {
			c.Direction = &dir
			c.RawDirection = ""
		} else {
			c.Direction = nil
			c.RawDirection = strings.ToLower(value)
		}
	}
	if strings.Contains(header, "entry") || strings.Contains(header, "open") {
		c.EntryPrice = parseFloat(value)
	}
	if strings.Contains(header, "exit") || strings.Contains(header, "close") {
		c.ExitPrice = parseFloat(value)
	}
	if strings.Contains(header, "size") || strings.Contains(header, "volume") || strings.Contains(header, "lot") {
		c.PositionSize = parseFloat(value)
	}
	if strings.Contains(header, "stop") || strings.Contains(header, "sl") {
		c.StopLoss = parseFloat(value)
	}
	matchedTakeProfit := false
	if strings.Contains(header, "profit") && (strings.Contains(header, "take") || strings.Contains(header, "tp")) {
		c.TakeProfit = parseFloat(value)
		matchedTakeProfit = true
	}
	if !matchedTakeProfit &&
		(strings.Contains(header, "profit") || strings.Contains(header, "pl") || strings.Contains(header, "p/l")) {
		c.ProfitLoss = parseFloat(value)
	}
	if strings.Contains(header, "date") || strings.Contains(header, "time") {
		if t, ok := parseDate(value); ok {
			c.TradeDate = &t
		}
	}
	if strings.Contains(header, "note") || strings.Contains(header, "comment") {
		c.Notes = value
	}
	if strings.Contains(header, "market") {
		m := models.ParseMarket(value)
		c.Market = &m
	}
	if strings.Contains(header, "strategy") {
		c.StrategyRef = value
	}
}

// parseFloat returns nil when the cell is not a number, leaving the field
// unset rather than set to zero.
func parseFloat(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return floatPtr(v)
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
