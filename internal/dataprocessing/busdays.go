package dataprocessing

import "time"

// BusinessDays counts weekdays between start and end, inclusive of both
// endpoints, matching the spreadsheet NETWORKDAYS convention: the same
// calendar day counts as 1, and a reversed range yields the negated forward
// count. Lead time, cycle time and release delay all go through this single
// implementation.
func BusinessDays(start, end time.Time) float64 {
	start = truncateToDay(start)
	end = truncateToDay(end)

	if end.Before(start) {
		return -BusinessDays(end, start)
	}
	if start.Equal(end) {
		return 1
	}

	var days float64
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			days++
		}
	}
	return days
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
