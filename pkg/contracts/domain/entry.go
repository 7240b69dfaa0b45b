package domain

import (
	"strings"
	"time"
)

// Sentinel group-key components used when an entry is missing its natural
// identity. They keep reconciliation total: every entry lands in some group.
const (
	NoItemID   = "no_id"
	NoLogOwner = "no_owner"
)

// TimesheetEntry is the canonical record produced by the field normalizer.
// Every business field is optional; missing values are the zero value (or nil
// for dates), never an error. An entry must pass through fallback resolution
// exactly once before it is reconciled, and dates are parsed exactly once at
// import time.
type TimesheetEntry struct {
	ID uint `json:"id" gorm:"primaryKey"`

	// Identity. ItemID + LogOwner form the natural dedup key.
	ItemID   string `json:"item_id"`
	LogOwner string `json:"log_owner"`
	TeamName string `json:"team_name"`

	// Descriptive fields.
	ItemName    string `json:"item_name"`
	ItemDetail  string `json:"item_detail"`
	Epic        string `json:"epic"`
	ItemType    string `json:"item_type"`
	LogType     string `json:"log_type"`
	ReportedBy  string `json:"reported_by"`
	Remarks     string `json:"remarks"`
	ZohoLink    string `json:"zoho_link"`
	Application string `json:"application"`
	ProjectName string `json:"project_name"`
	Status      string `json:"status"`

	// Numeric fields. Parsed once by the decimal parser; 0 means absent.
	LogHoursDecimal float64 `json:"log_hours_decimal"`
	EstimatedPoints float64 `json:"estimated_points"`
	ActualPoints    float64 `json:"actual_points"`

	// Temporal fields. Parsed once by the date parser; nil means absent.
	LogDate             *time.Time `json:"log_date"`
	RequestedDate       *time.Time `json:"requested_date"`
	ExpectedStartDate   *time.Time `json:"expected_start_date"`
	ExpectedReleaseDate *time.Time `json:"expected_release_date"`
	ActualStartDate     *time.Time `json:"actual_start_date"`
	ActualReleaseDate   *time.Time `json:"actual_release_date"`
	StartDate           *time.Time `json:"start_date"`
	ReleaseDate         *time.Time `json:"release_date"`
	CompletedOn         *time.Time `json:"completed_on"`

	// Computed metric fields, written back once after import and recomputable
	// on demand. Recomputation from the same stored fields yields identical
	// results. WeeklyPoints holds the flattened sum of the entry's
	// weekly-points buckets.
	LeadTime           float64 `json:"lead_time"`
	CycleTime          float64 `json:"cycle_time"`
	DefectsDensity     float64 `json:"defects_density"`
	WeeklyPoints       float64 `json:"weekly_points"`
	StoryPointAccuracy float64 `json:"story_point_accuracy"`
	ReleaseDelay       float64 `json:"release_delay"`
}

// GroupKey returns the reconciliation key for the entry, substituting
// sentinels for missing identity components.
func (e *TimesheetEntry) GroupKey() string {
	itemID := e.ItemID
	if itemID == "" {
		itemID = NoItemID
	}
	owner := e.LogOwner
	if owner == "" {
		owner = NoLogOwner
	}
	return itemID + "|" + owner
}

// ResolvedReleaseDate returns the actual release date, falling back to the
// raw release date when the actual is absent.
func (e *TimesheetEntry) ResolvedReleaseDate() *time.Time {
	if e.ActualReleaseDate != nil {
		return e.ActualReleaseDate
	}
	return e.ReleaseDate
}

// ResolvedStartDate returns the actual start date, falling back to the raw
// start date when the actual is absent.
func (e *TimesheetEntry) ResolvedStartDate() *time.Time {
	if e.ActualStartDate != nil {
		return e.ActualStartDate
	}
	return e.StartDate
}

// InProgressStatuses are the status values (compared case-insensitively) that
// mark an entry as still in flight regardless of its dates.
var InProgressStatuses = map[string]bool{
	"inprogress":  true,
	"in progress": true,
	"on hold":     true,
}

// HasInProgressStatus reports whether the entry's free-text status matches a
// known in-progress value.
func (e *TimesheetEntry) HasInProgressStatus() bool {
	return InProgressStatuses[strings.ToLower(strings.TrimSpace(e.Status))]
}
