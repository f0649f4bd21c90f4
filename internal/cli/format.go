package cli

import (
	"fmt"
	"time"

	"trade-journal/pkg/utils"
)

// FormatDate formats a date as yyyy-mm-dd.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDateTime formats a timestamp for display.
func FormatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// FormatPrice formats an instrument price.
func FormatPrice(price float64) string {
	return utils.FormatPrice(price)
}

// FormatOptionalPrice formats a price that may be unset.
func FormatOptionalPrice(price *float64) string {
	if price == nil {
		return "-"
	}
	return utils.FormatPrice(*price)
}

// FormatOptionalRatio formats a reward/risk ratio that may be undefined.
func FormatOptionalRatio(ratio *float64) string {
	if ratio == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *ratio)
}

// TruncateString shortens a string for table cells.
func TruncateString(s string, max int) string {
	return utils.TruncateString(s, max)
}
