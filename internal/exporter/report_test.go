package exporter

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"prodsheet/internal/dataprocessing"
	"prodsheet/pkg/contracts/domain"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func reportEntries() []domain.TimesheetEntry {
	return []domain.TimesheetEntry{
		{
			ItemID:              "T1",
			ItemName:            "Fix login",
			ItemType:            "Bug",
			Epic:                "Portal",
			LogOwner:            "alice",
			LogHoursDecimal:     4,
			EstimatedPoints:     1,
			ActualPoints:        1,
			RequestedDate:       datePtr(2025, 3, 3),
			ExpectedStartDate:   datePtr(2025, 3, 4),
			ExpectedReleaseDate: datePtr(2025, 3, 6),
			ActualStartDate:     datePtr(2025, 3, 4),
			ActualReleaseDate:   datePtr(2025, 3, 6),
		},
		{
			ItemID:            "M1",
			ItemName:          "Daily standup",
			ItemType:          "Meeting",
			LogOwner:          "alice",
			LogHoursDecimal:   1,
			ActualReleaseDate: datePtr(2025, 3, 5),
		},
		{
			ItemID:          "T2",
			ItemName:        "Build report",
			ItemType:        "Story",
			LogOwner:        "bob",
			LogHoursDecimal: 6,
			Status:          "InProgress",
		},
	}
}

func generateTestReport(t *testing.T) *excelize.File {
	t.Helper()

	exp := NewReportExporter(nil, dataprocessing.NewCalculator(nil, dataprocessing.DefaultCalculatorConfig()))
	window := dataprocessing.ReportWindow{
		Start: datePtr(2025, 3, 3),
		End:   datePtr(2025, 3, 9),
	}

	f, err := exp.Generate(context.Background(), reportEntries(), window, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestGenerateSheetLayout(t *testing.T) {
	f := generateTestReport(t)

	assert.Equal(t, SheetName, f.GetSheetName(0))

	// Team summary block.
	v, err := f.GetCellValue(SheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Total Team members count:", v)
	v, err = f.GetCellValue(SheetName, "B1")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
	v, err = f.GetCellValue(SheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Total available team: 96.36%", v)

	// Header row at row 7.
	v, err = f.GetCellValue(SheetName, "A7")
	require.NoError(t, err)
	assert.Equal(t, "APPLICATION", v)
	v, err = f.GetCellValue(SheetName, "T7")
	require.NoError(t, err)
	assert.Equal(t, "Release delay", v)
}

func TestGenerateCompletedSection(t *testing.T) {
	f := generateTestReport(t)

	// Regular completed item first (row 8), meeting after it (row 9).
	v, err := f.GetCellValue(SheetName, "B8")
	require.NoError(t, err)
	assert.Equal(t, "Fix login", v)
	v, err = f.GetCellValue(SheetName, "D8")
	require.NoError(t, err)
	assert.Equal(t, "Bug", v)
	v, err = f.GetCellValue(SheetName, "A8")
	require.NoError(t, err)
	assert.Equal(t, "Portal", v)

	v, err = f.GetCellValue(SheetName, "B9")
	require.NoError(t, err)
	assert.Equal(t, "Daily standup", v)

	// Totals row follows the completed items.
	v, err = f.GetCellValue(SheetName, "A10")
	require.NoError(t, err)
	assert.Equal(t, "TOTALS/AVERAGES", v)
}

func TestGenerateInProgressAndMemberSections(t *testing.T) {
	f := generateTestReport(t)

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)

	var inProgressRow, memberRow int
	for i, row := range rows {
		if len(row) > 0 && row[0] == "In progress" {
			inProgressRow = i + 1
		}
		if len(row) > 0 && row[0] == "Member-wise Calculation" {
			memberRow = i + 1
		}
	}
	require.NotZero(t, inProgressRow)
	require.NotZero(t, memberRow)
	assert.Greater(t, memberRow, inProgressRow)

	// The unreleased item lands under "In progress".
	v, err := f.GetCellValue(SheetName, cellAfter("B", inProgressRow, 1))
	require.NoError(t, err)
	assert.Equal(t, "Build report", v)

	// Member rows are sorted by name and close with the team summary.
	v, err = f.GetCellValue(SheetName, cellAfter("A", memberRow, 2))
	require.NoError(t, err)
	assert.Equal(t, "alice", v)
	v, err = f.GetCellValue(SheetName, cellAfter("A", memberRow, 3))
	require.NoError(t, err)
	assert.Equal(t, "bob", v)
	v, err = f.GetCellValue(SheetName, cellAfter("A", memberRow, 4))
	require.NoError(t, err)
	assert.Equal(t, "Total team members", v)
}

func cellAfter(col string, row, offset int) string {
	return fmt.Sprintf("%s%d", col, row+offset)
}

func TestWriteProducesWorkbook(t *testing.T) {
	exp := NewReportExporter(nil, dataprocessing.NewCalculator(nil, dataprocessing.DefaultCalculatorConfig()))

	var buf bytes.Buffer
	err := exp.Write(context.Background(), &buf, reportEntries(), dataprocessing.ReportWindow{}, 90)
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(SheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Total available team: 90.00%", v)
}

func TestItemTypeColor(t *testing.T) {
	assert.Equal(t, "FFFF9999", itemTypeColor("Bug"))
	assert.Equal(t, "FF99FF99", itemTypeColor("New Request"))
	assert.Equal(t, "FFFFFF99", itemTypeColor("Meeting"))
	assert.Equal(t, "", itemTypeColor("Unknown"))
}
