// Package dataprocessing implements the timesheet metric computation and
// reconciliation engine. It turns heterogeneous spreadsheet rows into
// canonical timesheet entries and computes the productivity metrics that the
// report is built from.
//
// # Architecture
//
// The package is organized into six components, applied in order:
//
//  1. Normalizer: maps arbitrary header labels to canonical fields through a
//     priority-ordered alias table and applies fallback substitutions
//  2. Parser: converts textual date and numeric cells into canonical values
//  3. Business-day calculator: inclusive weekday-only day counts
//     (spreadsheet NETWORKDAYS convention)
//  4. Reconciler: merges duplicate log rows for the same (item, owner) pair
//  5. Calculator: the six core metrics plus the export item classification
//  6. Aggregator: per-item totals, per-member rollups, team-wide averages
//
// # Data Flow
//
//	raw rows → Normalizer → Reconciler → Calculator → Aggregator → Composer
//
// # Error Handling
//
// Business-data gaps are never errors. Unparseable dates degrade to nil,
// unparseable numbers to zero, missing identity to sentinel group keys, and
// aggregates over an empty set to a zero-filled structure. The components
// only fail loudly on structurally invalid input.
package dataprocessing
