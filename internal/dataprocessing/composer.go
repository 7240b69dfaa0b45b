package dataprocessing

import (
	"strings"
	"time"

	"prodsheet/pkg/contracts/domain"
)

// ReportWindow is the optional week selection for the completed section.
// When set, only items whose actual release falls inside [Start, End] count
// as completed this week.
type ReportWindow struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether t falls inside the window, inclusive at both
// ends. An unset window contains everything.
func (w ReportWindow) Contains(t time.Time) bool {
	if w.Start == nil || w.End == nil {
		return true
	}
	return !t.Before(*w.Start) && !t.After(*w.End)
}

func (w ReportWindow) isSet() bool {
	return w.Start != nil && w.End != nil
}

// Item display types that identify a meeting row.
var meetingTypes = map[string]bool{
	"meeting":        true,
	"meetings":       true,
	"daily stand-up": true,
	"standup":        true,
	"stand-up":       true,
}

// Item name keywords that identify a meeting row.
var meetingKeywords = []string{"standup", "meeting", "demo", "discussion", "stand-up"}

// Composer selects and orders the rows for each report section. Styling is a
// presentation concern and lives in the exporter; only the selection
// predicates and ordering belong here.
type Composer struct {
	calc *Calculator
}

// NewComposer creates a composer over the given calculator (needed for the
// item classification used by meeting detection).
func NewComposer(calc *Calculator) *Composer {
	if calc == nil {
		calc = NewCalculator(nil, DefaultCalculatorConfig())
	}
	return &Composer{calc: calc}
}

// Completed returns the reconciled rows of the completed section: entries
// with an actual release date inside the window, regular items ordered before
// meeting items.
func (c *Composer) Completed(entries []domain.TimesheetEntry, window ReportWindow) []domain.TimesheetEntry {
	var completed []domain.TimesheetEntry
	for _, entry := range entries {
		released := entry.ActualReleaseDate
		if released == nil {
			continue
		}
		if window.isSet() && !window.Contains(*released) {
			continue
		}
		completed = append(completed, entry)
	}

	grouped := Reconcile(completed)

	var regular, meetings []domain.TimesheetEntry
	for _, entry := range grouped {
		if c.IsMeeting(entry) {
			meetings = append(meetings, entry)
		} else {
			regular = append(regular, entry)
		}
	}
	return append(regular, meetings...)
}

// InProgress returns the reconciled rows of the in-progress section: items
// with no release yet, items released outside the window, and items whose
// status says they are still in flight. Meeting log entries are excluded.
func (c *Composer) InProgress(entries []domain.TimesheetEntry, window ReportWindow) []domain.TimesheetEntry {
	var open []domain.TimesheetEntry
	for _, entry := range entries {
		if strings.EqualFold(strings.TrimSpace(entry.LogType), "meeting") {
			continue
		}

		released := entry.ActualReleaseDate
		switch {
		case released == nil:
			open = append(open, entry)
		case window.isSet() && !window.Contains(*released):
			open = append(open, entry)
		case entry.HasInProgressStatus():
			open = append(open, entry)
		}
	}
	return Reconcile(open)
}

// IsMeeting reports whether the entry renders as a meeting row, either by
// its display classification or by a meeting keyword in its name.
func (c *Composer) IsMeeting(entry domain.TimesheetEntry) bool {
	if meetingTypes[strings.ToLower(strings.TrimSpace(c.calc.ExportItemType(entry)))] {
		return true
	}
	name := strings.ToLower(entry.ItemName)
	for _, keyword := range meetingKeywords {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}
