package dataprocessing

import (
	"prodsheet/pkg/contracts/domain"
)

// Reconcile merges raw canonical entries that describe the same work item
// logged by the same person. A single item logged across several days arrives
// as several rows; the report must show it once with summed effort.
//
// Entries are partitioned by (item_id, log_owner), with sentinel components
// substituted for missing identity so every entry lands in a group. The first
// entry of a group is the representative; log hours and actual points are
// summed across the group, and empty remarks/link fields are backfilled from
// the first member that has them. First-seen group order is preserved.
func Reconcile(entries []domain.TimesheetEntry) []domain.TimesheetEntry {
	groups := make(map[string]int, len(entries))
	merged := make([]domain.TimesheetEntry, 0, len(entries))

	for _, entry := range entries {
		key := entry.GroupKey()
		idx, seen := groups[key]
		if !seen {
			groups[key] = len(merged)
			merged = append(merged, entry)
			continue
		}

		base := &merged[idx]
		base.LogHoursDecimal += entry.LogHoursDecimal
		base.ActualPoints += entry.ActualPoints
		if base.Remarks == "" {
			base.Remarks = entry.Remarks
		}
		if base.ZohoLink == "" {
			base.ZohoLink = entry.ZohoLink
		}
	}

	return merged
}
