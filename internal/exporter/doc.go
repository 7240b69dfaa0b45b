// Package exporter renders the formatted weekly production report workbook.
//
// The report is a single styled worksheet with four sections laid out top to
// bottom:
//
// Team summary: member count, availability and total points delivered
// (rows 1-4), followed by a highlighted totals row above the main headers.
//
// Completed items: one row per reconciled (item, owner) group released
// inside the report window, regular items first and meetings last, with the
// item-type cell colour coded.
//
// In progress: unreleased items plus items released outside the window or
// still carrying an in-progress status.
//
// Member-wise calculation: per-contributor averages, weekly point totals and
// capacity, closed by a team summary row.
//
// Example usage:
//
//	exp := exporter.NewReportExporter(logger, calc)
//	err := exp.Write(ctx, w, entries, window, availability)
package exporter
