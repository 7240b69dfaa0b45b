package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/xuri/excelize/v2"

	"prodsheet/internal/dataprocessing"
	"prodsheet/pkg/contracts/domain"
)

// SheetName is the title of the single worksheet in the generated report.
const SheetName = "Weekly Production Report"

// reportColumns is the width of the main report table (columns A through T).
const reportColumns = 20

// mainHeaders are the column headers of the completed and in-progress
// sections.
var mainHeaders = []interface{}{
	"APPLICATION",
	"ITEM NAME",
	"Item detail / Subtask",
	"ITEM TYPE",
	"TEAM NAME",
	"Requested Date",
	"Expected Start date",
	"Expected Release Date",
	"Actual Start Date",
	"Actual Release Date",
	"Lead Time",
	"Cycle Time",
	"Defects density",
	"Estimated Points",
	"Actual Points",
	"Weekly Points",
	"Story point Accuracy",
	"Remarks",
	"ZOHO LINK",
	"Release delay",
}

// memberHeaders are the column headers of the member-wise section.
var memberHeaders = []interface{}{
	"Resource",
	"Planned Leave",
	"Unplanned Leave",
	"Leave Count",
	"Average Lead Time",
	"Average Cycle Time",
	"Average Defect Density",
	"Total Weekly Points",
	"Capacity",
	"Story point accuracy",
	"Average Release Delay",
}

// ReportExporter renders the formatted weekly production report workbook.
type ReportExporter struct {
	logger     *slog.Logger
	calculator *dataprocessing.Calculator
	composer   *dataprocessing.Composer
	aggregator *dataprocessing.Aggregator
}

// NewReportExporter creates a report exporter backed by the given
// calculator.
func NewReportExporter(logger *slog.Logger, calc *dataprocessing.Calculator) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportExporter{
		logger:     logger.With(slog.String("component", "report_exporter")),
		calculator: calc,
		composer:   dataprocessing.NewComposer(calc),
		aggregator: dataprocessing.NewAggregator(logger, calc),
	}
}

// Generate builds the report workbook for the given entries. The window
// restricts the completed section to items released inside it; a zero window
// includes every released item. Availability is the externally supplied team
// availability percentage.
func (e *ReportExporter) Generate(ctx context.Context, entries []domain.TimesheetEntry, window dataprocessing.ReportWindow, availability float64) (*excelize.File, error) {
	averages, memberStats, teamStats := e.aggregator.Summarize(ctx, entries, availability)
	completed := e.composer.Completed(entries, window)
	inProgress := e.composer.InProgress(entries, window)

	e.logger.InfoContext(ctx, "generating report",
		slog.Int("entry_count", len(entries)),
		slog.Int("completed_count", len(completed)),
		slog.Int("in_progress_count", len(inProgress)),
		slog.Int("member_count", len(memberStats)))

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name report sheet: %w", err)
	}

	styles, err := newReportStyles(f)
	if err != nil {
		return nil, fmt.Errorf("failed to register report styles: %w", err)
	}

	b := &reportBuilder{file: f, styles: styles, exporter: e}
	if err := b.build(averages, memberStats, teamStats, completed, inProgress); err != nil {
		return nil, err
	}

	e.setColumnWidths(f)
	return f, nil
}

// Write generates the report and streams the finished workbook to w.
func (e *ReportExporter) Write(ctx context.Context, w io.Writer, entries []domain.TimesheetEntry, window dataprocessing.ReportWindow, availability float64) error {
	f, err := e.Generate(ctx, entries, window, availability)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write report workbook: %w", err)
	}
	return nil
}

func (e *ReportExporter) setColumnWidths(f *excelize.File) {
	_ = f.SetColWidth(SheetName, "A", "A", 22)
	_ = f.SetColWidth(SheetName, "B", "C", 32)
	_ = f.SetColWidth(SheetName, "D", "E", 16)
	_ = f.SetColWidth(SheetName, "F", "J", 14)
	_ = f.SetColWidth(SheetName, "K", "Q", 12)
	_ = f.SetColWidth(SheetName, "R", "S", 28)
	_ = f.SetColWidth(SheetName, "T", "T", 12)
}

// reportBuilder writes the report sections top to bottom, keeping a running
// row cursor so section positions never have to be rediscovered by scanning.
type reportBuilder struct {
	file     *excelize.File
	styles   *reportStyles
	exporter *ReportExporter
	row      int
}

func (b *reportBuilder) build(averages domain.Averages, memberStats map[string]domain.MemberStats, teamStats domain.TeamStats, completed, inProgress []domain.TimesheetEntry) error {
	b.row = 1

	if err := b.writeTeamSummary(averages, teamStats); err != nil {
		return err
	}
	if err := b.writeSummaryTotals(averages); err != nil {
		return err
	}
	if err := b.writeMainHeaders(); err != nil {
		return err
	}
	if err := b.writeEntrySection(completed); err != nil {
		return err
	}
	if err := b.writeTotalsRow(averages); err != nil {
		return err
	}
	b.skipRows(2)
	if err := b.writeInProgressSection(inProgress); err != nil {
		return err
	}
	b.skipRows(2)
	return b.writeMemberSection(memberStats, averages, teamStats)
}

func (b *reportBuilder) setRow(values []interface{}) error {
	cell := fmt.Sprintf("A%d", b.row)
	if err := b.file.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", b.row, err)
	}
	b.row++
	return nil
}

func (b *reportBuilder) skipRows(n int) {
	b.row += n
}

// styleRow applies a style across the given column span of a single row.
func (b *reportBuilder) styleRow(row int, firstCol, lastCol string, styleID int) {
	_ = b.file.SetCellStyle(SheetName,
		fmt.Sprintf("%s%d", firstCol, row),
		fmt.Sprintf("%s%d", lastCol, row),
		styleID)
}

// writeTeamSummary emits rows 1 through 4 plus the blank spacer row.
func (b *reportBuilder) writeTeamSummary(averages domain.Averages, teamStats domain.TeamStats) error {
	rows := [][]interface{}{
		{"Total Team members count:", teamStats.TotalMembers},
		{"Capacity: based on team availability and effort est.", ""},
		{fmt.Sprintf("Total available team: %.2f%%", teamStats.Availability), ""},
		{"Total points delivered: " + formatFloat3(averages.TotalWeeklyPoints), ""},
	}
	for _, r := range rows {
		if err := b.setRow(r); err != nil {
			return err
		}
	}
	b.styleRow(1, "A", "B", b.styles.teamSummary)
	b.styleRow(2, "A", "B", b.styles.teamSummary)
	b.styleRow(3, "A", "B", b.styles.teamSummary)
	b.styleRow(4, "A", "B", b.styles.teamSummary)
	b.skipRows(1)
	return nil
}

// writeSummaryTotals emits the highlighted totals row above the headers.
// Values land in columns K through Q plus T, mirroring the header columns
// they summarize.
func (b *reportBuilder) writeSummaryTotals(averages domain.Averages) error {
	row := make([]interface{}, reportColumns)
	for i := range row {
		row[i] = ""
	}
	row[10] = formatFloat0(averages.AverageLeadTime)
	row[11] = formatFloat0(averages.AverageCycleTime)
	row[12] = formatFloat2(averages.AverageDefectsDensity)
	row[13] = formatFloat0(averages.TotalEstimatedPoints)
	row[14] = formatFloat2(averages.TotalActualPoints)
	row[15] = formatFloat3(averages.TotalWeeklyPoints)
	row[16] = formatFloat2(averages.AverageStoryPointAccuracy)
	row[19] = formatFloat2(averages.AverageReleaseDelay)

	summaryRow := b.row
	if err := b.setRow(row); err != nil {
		return err
	}
	b.styleRow(summaryRow, "K", "T", b.styles.summaryTotals)
	return nil
}

func (b *reportBuilder) writeMainHeaders() error {
	headerRow := b.row
	if err := b.setRow(mainHeaders); err != nil {
		return err
	}
	b.styleRow(headerRow, "A", "T", b.styles.mainHeader)
	_ = b.file.SetRowHeight(SheetName, headerRow, 25)
	return nil
}

// writeEntrySection emits one row per reconciled entry, highlighting the
// item-type cell with the type's colour.
func (b *reportBuilder) writeEntrySection(entries []domain.TimesheetEntry) error {
	for _, entry := range entries {
		itemType := b.exporter.calculator.ExportItemType(entry)
		row := b.row
		if err := b.setRow(b.entryRow(entry, itemType)); err != nil {
			return err
		}
		if styleID, ok := b.styles.itemTypeFill(itemType); ok {
			_ = b.file.SetCellStyle(SheetName, fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), styleID)
		}
	}
	return nil
}

func (b *reportBuilder) entryRow(entry domain.TimesheetEntry, itemType string) []interface{} {
	metrics := b.exporter.calculator.Compute(entry)

	owner := entry.LogOwner
	if owner == "" {
		owner = entry.TeamName
	}

	return []interface{}{
		entry.Epic,
		entry.ItemName,
		entry.ItemDetail,
		itemType,
		owner,
		formatShortDate(entry.RequestedDate),
		formatShortDate(entry.ExpectedStartDate),
		formatShortDate(entry.ExpectedReleaseDate),
		formatShortDate(entry.ActualStartDate),
		formatShortDate(entry.ActualReleaseDate),
		metrics.LeadTime,
		metrics.CycleTime,
		metrics.DefectsDensity,
		entry.EstimatedPoints,
		entry.ActualPoints,
		formatFloat2(metrics.WeeklyPointsTotal()),
		formatFloat2(metrics.StoryPointAccuracy),
		entry.Remarks,
		entry.ZohoLink,
		metrics.ReleaseDelay,
	}
}

func (b *reportBuilder) writeTotalsRow(averages domain.Averages) error {
	row := []interface{}{
		"TOTALS/AVERAGES",
		"", "", "", "", "", "", "", "", "",
		formatFloat2(averages.AverageLeadTime),
		formatFloat2(averages.AverageCycleTime),
		formatFloat2(averages.AverageDefectsDensity),
		formatFloat0(averages.TotalEstimatedPoints),
		formatFloat0(averages.TotalActualPoints),
		formatFloat3(averages.TotalWeeklyPoints),
		formatFloat2(averages.AverageStoryPointAccuracy),
		"", "",
		formatFloat2(averages.AverageReleaseDelay),
	}
	totalsRow := b.row
	if err := b.setRow(row); err != nil {
		return err
	}
	b.styleRow(totalsRow, "A", "T", b.styles.totalsRow)
	return nil
}

func (b *reportBuilder) writeInProgressSection(entries []domain.TimesheetEntry) error {
	headRow := b.row
	if err := b.setRow([]interface{}{"In progress"}); err != nil {
		return err
	}
	b.styleRow(headRow, "A", "T", b.styles.inProgressHead)

	return b.writeEntrySection(entries)
}

func (b *reportBuilder) writeMemberSection(memberStats map[string]domain.MemberStats, averages domain.Averages, teamStats domain.TeamStats) error {
	headRow := b.row
	if err := b.setRow([]interface{}{"Member-wise Calculation"}); err != nil {
		return err
	}
	b.styleRow(headRow, "A", "K", b.styles.memberHead)

	columnsRow := b.row
	if err := b.setRow(memberHeaders); err != nil {
		return err
	}
	b.styleRow(columnsRow, "A", "K", b.styles.memberColumns)

	// Maps have no order; sort members by name for a stable report.
	members := make([]string, 0, len(memberStats))
	for member := range memberStats {
		members = append(members, member)
	}
	sort.Strings(members)

	for _, member := range members {
		stats := memberStats[member]
		row := []interface{}{
			member,
			stats.PlannedLeave,
			stats.UnplannedLeave,
			stats.LeaveCount,
			formatFloat2(stats.AverageLeadTime),
			formatFloat2(stats.AverageCycleTime),
			formatFloat2(stats.AverageDefectsDensity),
			formatFloat2(stats.TotalWeeklyPoints),
			formatFloat2(stats.Capacity),
			formatFloat2(stats.AverageStoryPointAccuracy),
			formatFloat2(stats.AverageReleaseDelay),
		}
		if err := b.setRow(row); err != nil {
			return err
		}
	}

	summaryRow := b.row
	err := b.setRow([]interface{}{
		"Total team members",
		teamStats.TotalMembers,
		"", "", "",
		"Total weekly points",
		formatFloat3(averages.TotalWeeklyPoints),
		"",
		"Team Availability",
		fmt.Sprintf("%.2f%%", teamStats.Availability),
		"",
	})
	if err != nil {
		return err
	}
	b.styleRow(summaryRow, "A", "K", b.styles.memberSummary)
	return nil
}
