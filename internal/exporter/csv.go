package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"prodsheet/pkg/contracts/domain"
)

// EntryCSVExporter writes the stored entries as a flat CSV, one row per
// entry including the cached metric columns. It is the machine-readable
// companion to the formatted workbook report.
type EntryCSVExporter struct{}

// NewEntryCSVExporter creates a CSV exporter for timesheet entries.
func NewEntryCSVExporter() *EntryCSVExporter {
	return &EntryCSVExporter{}
}

// Write streams the entries to w as CSV. A UTF-8 BOM is written first so
// Excel recognises the encoding when the file is opened directly.
func (e *EntryCSVExporter) Write(w io.Writer, entries []domain.TimesheetEntry) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(e.headers()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, entry := range entries {
		if err := writer.Write(e.entryToRow(entry)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

func (e *EntryCSVExporter) headers() []string {
	return []string{
		"ItemID", "ItemName", "ItemDetail", "ItemType", "LogType", "Epic",
		"Application", "ProjectName", "LogOwner", "TeamName", "ReportedBy",
		"Status", "LogDate", "RequestedDate", "ExpectedStartDate",
		"ExpectedReleaseDate", "ActualStartDate", "ActualReleaseDate",
		"LogHours", "EstimatedPoints", "ActualPoints", "LeadTime",
		"CycleTime", "DefectsDensity", "WeeklyPoints", "StoryPointAccuracy",
		"ReleaseDelay", "Remarks", "ZohoLink",
	}
}

func (e *EntryCSVExporter) entryToRow(entry domain.TimesheetEntry) []string {
	return []string{
		entry.ItemID,
		entry.ItemName,
		entry.ItemDetail,
		entry.ItemType,
		entry.LogType,
		entry.Epic,
		entry.Application,
		entry.ProjectName,
		entry.LogOwner,
		entry.TeamName,
		entry.ReportedBy,
		entry.Status,
		formatISODate(entry.LogDate),
		formatISODate(entry.RequestedDate),
		formatISODate(entry.ExpectedStartDate),
		formatISODate(entry.ExpectedReleaseDate),
		formatISODate(entry.ActualStartDate),
		formatISODate(entry.ActualReleaseDate),
		formatFloat2(entry.LogHoursDecimal),
		formatFloat2(entry.EstimatedPoints),
		formatFloat2(entry.ActualPoints),
		formatFloat2(entry.LeadTime),
		formatFloat2(entry.CycleTime),
		formatFloat2(entry.DefectsDensity),
		formatFloat2(entry.WeeklyPoints),
		formatFloat2(entry.StoryPointAccuracy),
		formatFloat2(entry.ReleaseDelay),
		entry.Remarks,
		entry.ZohoLink,
	}
}

func formatISODate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
