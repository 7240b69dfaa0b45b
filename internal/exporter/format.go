package exporter

import (
	"fmt"
	"time"
)

// formatFloat2 formats a float64 for report cells with exactly 2 decimal places
func formatFloat2(f float64) string {
	// Always format with exactly 2 decimal places for consistency
	// This ensures values like 13.4 appear as 13.40 in the sheet
	return fmt.Sprintf("%.2f", f)
}

// formatFloat3 formats a float64 with 3 decimal places, used for weekly
// point totals which carry fractional points from partial hours
func formatFloat3(f float64) string {
	return fmt.Sprintf("%.3f", f)
}

// formatFloat0 formats a float64 rounded to a whole number
func formatFloat0(f float64) string {
	return fmt.Sprintf("%.0f", f)
}

// formatShortDate renders a date as "Mar 7". Nil dates render as empty cells.
func formatShortDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("Jan 2")
}
