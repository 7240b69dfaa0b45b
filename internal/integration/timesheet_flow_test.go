// Package integration exercises the full timesheet pipeline end to end:
// workbook ingest, normalization, metric calculation, persistence and report
// generation, with nothing mocked.
package integration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"prodsheet/internal/dataprocessing"
	"prodsheet/internal/exporter"
	"prodsheet/internal/services"
	"prodsheet/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// buildWorkbook creates a Zoho-style export in memory: a metadata preamble,
// the header row at row 8, and data rows beneath it.
func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	// Preamble the real export carries above the header row
	require.NoError(t, f.SetCellValue(sheet, "A1", "Weekly Timesheet Export"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "Generated for review"))

	headers := []interface{}{
		"Item ID", "Item Name", "Log Owner", "Team Name", "Log Type",
		"Log Hours", "Estimation Points", "Actual Points", "Status",
		"Requested Date", "Actual Start Date", "Actual Release Date",
		"Expected Release Date", "Log Date",
	}
	require.NoError(t, f.SetSheetRow(sheet, "A8", &headers))

	for i, row := range rows {
		cell := fmt.Sprintf("A%d", 9+i)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func newPipeline(t *testing.T) *services.TimesheetService {
	t.Helper()

	entryStore, err := store.Open(":memory:", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { entryStore.Close() })

	return services.NewTimesheetService(testLogger(), entryStore, services.Options{
		DefaultTeamName: "CTS",
	})
}

func TestUploadThroughReportFlow(t *testing.T) {
	svc := newPipeline(t)
	ctx := context.Background()

	workbook := buildWorkbook(t, [][]interface{}{
		{"ITEM-1", "Login rework", "alice", "CTS", "Development",
			"4:30", "5", "4", "Released",
			"01/Jul/2025", "03/Jul/2025", "10/Jul/2025", "08/Jul/2025", "03/Jul/2025"},
		{"ITEM-1", "Login rework", "alice", "CTS", "Development",
			"2:00", "", "", "Released",
			"", "", "", "", "04/Jul/2025"},
		{"ITEM-2", "Checkout bug", "bob", "", "Bug",
			"1.5", "2", "2", "Released",
			"02/Jul/2025", "04/Jul/2025", "07/Jul/2025", "07/Jul/2025", "04/Jul/2025"},
	})

	result, err := svc.Upload(ctx, workbook, "timesheet.xlsx", "")
	require.NoError(t, err)

	// Two rows of ITEM-1 by alice collapse into one entry
	assert.Equal(t, 2, result.TotalEntries)
	require.Len(t, result.Entries, 2)

	var item1Hours float64
	for _, e := range result.Entries {
		switch e.ItemID {
		case "ITEM-1":
			item1Hours = e.LogHoursDecimal
			assert.Equal(t, "alice", e.LogOwner)
			assert.Equal(t, "CTS", e.TeamName)
			assert.InDelta(t, 5.0, e.EstimatedPoints, 0.001)
		case "ITEM-2":
			// Missing team falls back to the configured default
			assert.Equal(t, "CTS", e.TeamName)
		default:
			t.Fatalf("unexpected item %q", e.ItemID)
		}
	}
	assert.InDelta(t, 6.5, item1Hours, 0.001)

	// Stored dataset is queryable with identical content
	data, err := svc.Data(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, data.TotalEntries)
	assert.NotEmpty(t, data.MemberStats)
	assert.Equal(t, 2, data.TeamStats.TotalMembers)

	// Recalculation is stable: same inputs, same metrics
	recalc, err := svc.Recalculate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, recalc.TotalEntries)
	assert.InDelta(t, data.Averages.AverageLeadTime, recalc.Averages.AverageLeadTime, 0.001)
	assert.InDelta(t, data.Averages.AverageCycleTime, recalc.Averages.AverageCycleTime, 0.001)

	// The rendered report opens as a workbook with the expected sheet
	var report bytes.Buffer
	require.NoError(t, svc.WriteReport(ctx, &report, dataprocessing.ReportWindow{}))

	rendered, err := excelize.OpenReader(bytes.NewReader(report.Bytes()))
	require.NoError(t, err)
	defer rendered.Close()
	assert.Contains(t, rendered.GetSheetList(), exporter.SheetName)

	rows, err := rendered.GetRows(exporter.SheetName)
	require.NoError(t, err)
	assert.Greater(t, len(rows), 2)

	// CSV export carries one line per entry plus the header
	var csv bytes.Buffer
	require.NoError(t, svc.WriteCSV(ctx, &csv))
	assert.Equal(t, 3, bytes.Count(csv.Bytes(), []byte("\n")))
}

func TestReuploadReplacesDataset(t *testing.T) {
	svc := newPipeline(t)
	ctx := context.Background()

	first := buildWorkbook(t, [][]interface{}{
		{"ITEM-1", "First", "alice", "CTS", "Development",
			"2", "3", "3", "Released", "", "", "", "", "01/Jul/2025"},
	})
	_, err := svc.Upload(ctx, first, "first.xlsx", "")
	require.NoError(t, err)

	second := buildWorkbook(t, [][]interface{}{
		{"ITEM-9", "Second", "carol", "CTS", "Development",
			"1", "1", "1", "Released", "", "", "", "", "08/Jul/2025"},
		{"ITEM-10", "Third", "carol", "CTS", "Development",
			"2", "2", "2", "Released", "", "", "", "", "09/Jul/2025"},
	})
	result, err := svc.Upload(ctx, second, "second.xlsx", "")
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalEntries)

	data, err := svc.Data(ctx)
	require.NoError(t, err)
	require.Len(t, data.Entries, 2)
	for _, e := range data.Entries {
		assert.NotEqual(t, "ITEM-1", e.ItemID)
	}
}

func TestClearEmptiesStore(t *testing.T) {
	svc := newPipeline(t)
	ctx := context.Background()

	workbook := buildWorkbook(t, [][]interface{}{
		{"ITEM-1", "Only", "alice", "CTS", "Development",
			"2", "3", "3", "Released", "", "", "", "", "01/Jul/2025"},
	})
	_, err := svc.Upload(ctx, workbook, "timesheet.xlsx", "")
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx))

	_, err = svc.Recalculate(ctx)
	assert.True(t, errors.Is(err, services.ErrNoEntries))

	var report bytes.Buffer
	err = svc.WriteReport(ctx, &report, dataprocessing.ReportWindow{})
	assert.True(t, errors.Is(err, services.ErrNoEntries))
}

func TestUploadRejectsGarbage(t *testing.T) {
	svc := newPipeline(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, bytes.NewReader([]byte("not a workbook")), "timesheet.xlsx", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrInvalidInput))
}
