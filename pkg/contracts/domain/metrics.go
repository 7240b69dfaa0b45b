package domain

// WeeklyPointsBucket is one (item, owner) group's share of the weekly-points
// calculation. The metric is a list of buckets, not a scalar: callers sum the
// WeeklyPoints field to obtain a numeric total.
type WeeklyPointsBucket struct {
	ItemID       string  `json:"item_id"`
	LogOwner     string  `json:"log_owner"`
	TotalHours   float64 `json:"total_hours"`
	WeeklyPoints float64 `json:"weekly_points"`
}

// MetricSet is the computed output of the metric calculator for one entry or
// one reconciled group. It is not persisted except when cached back onto the
// originating TimesheetEntry.
type MetricSet struct {
	LeadTime           float64              `json:"lead_time"`
	CycleTime          float64              `json:"cycle_time"`
	DefectsDensity     float64              `json:"defects_density"`
	WeeklyPoints       []WeeklyPointsBucket `json:"weekly_points"`
	StoryPointAccuracy float64              `json:"story_point_accuracy"`
	ReleaseDelay       float64              `json:"release_delay"`
}

// WeeklyPointsTotal flattens the weekly-points list into a numeric total.
func (m *MetricSet) WeeklyPointsTotal() float64 {
	var total float64
	for _, bucket := range m.WeeklyPoints {
		total += bucket.WeeklyPoints
	}
	return total
}

// Averages is the team-wide aggregate over a set of computed metrics. An
// empty input set yields a zero-filled structure with every field present,
// never a nil or partial result.
type Averages struct {
	TotalEstimatedPoints      float64 `json:"total_estimated_points"`
	TotalActualPoints         float64 `json:"total_actual_points"`
	TotalWeeklyPoints         float64 `json:"total_weekly_points"`
	AverageLeadTime           float64 `json:"average_lead_time"`
	AverageCycleTime          float64 `json:"average_cycle_time"`
	AverageDefectsDensity     float64 `json:"average_defects_density"`
	AverageStoryPointAccuracy float64 `json:"average_story_point_accuracy"`
	AverageReleaseDelay       float64 `json:"average_release_delay"`
}

// MemberStats is the per-contributor rollup, derived on every report request
// and never persisted.
type MemberStats struct {
	EntryCount int     `json:"entry_count"`
	Averages           // embedded per-member aggregate
	Capacity   float64 `json:"capacity"`

	// Leave figures would come from an HR system; rendered as zero until one
	// is integrated.
	PlannedLeave   float64 `json:"planned_leave"`
	UnplannedLeave float64 `json:"unplanned_leave"`
	LeaveCount     int     `json:"leave_count"`
}

// TeamStats is the team-level summary. Availability is supplied externally
// (an HR figure); this package never computes it.
type TeamStats struct {
	TotalMembers              int     `json:"total_members"`
	Availability              float64 `json:"availability"`
	TotalPoints               float64 `json:"total_points"`
	TotalEstimatedPoints      float64 `json:"total_estimated_points"`
	TotalActualPoints         float64 `json:"total_actual_points"`
	AverageStoryPointAccuracy float64 `json:"average_story_point_accuracy"`
}
