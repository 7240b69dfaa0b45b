package dataprocessing

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date layouts recognized by ParseDate, in order of specificity. The Zoho
// export writes "01/Jul/2025 01:00 AM" style timestamps; the trailing layouts
// cover free-form values seen in hand-edited sheets.
var dateLayouts = []string{
	"02/Jan/2006 03:04 PM",
	"02/Jan/2006 3:04 PM",
	"2/Jan/2006 3:04 PM",
	"02/Jan/2006",
	"2/Jan/2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
	"2/1/2006",
	"Jan 2, 2006",
}

var (
	timeOfDayRe  = regexp.MustCompile(`^(\d{1,2}):(\d{2})`)
	nonNumericRe = regexp.MustCompile(`[^0-9.]`)
)

// ParseDate converts a raw cell value into a timestamp. Blank input and
// unparseable input both yield nil; parsing never fails with an error. When
// the cell holds a hyphen-separated range ("26/Jun/2025 12:00 AM - ...") only
// the leading date is taken.
func ParseDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	// Range values keep only the start.
	if idx := strings.Index(s, " - "); idx > 0 {
		s = strings.TrimSpace(s[:idx])
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// ParseDecimal converts a raw cell value into a float. Blank input yields 0.
// A leading "=" is spreadsheet formula residue: the value cannot be derived
// here, so it also yields 0 and the caller computes from hours instead. A
// value shaped like H:MM is treated as hours and minutes. Anything else is
// stripped down to digits and decimal points before parsing.
func ParseDecimal(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	if strings.HasPrefix(s, "=") {
		return 0
	}

	if m := timeOfDayRe.FindStringSubmatch(s); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		return float64(hours) + float64(minutes)/60
	}

	cleaned := nonNumericRe.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}
