package dataprocessing

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"prodsheet/pkg/contracts/domain"
)

// CalculatorConfig holds the business constants behind the point formulas.
// The values are inherited from the spreadsheet the report replaced; they are
// configuration, not derived numbers.
type CalculatorConfig struct {
	MinutesPerPoint    float64 // minutes of logged effort per weekly point
	CapacityMultiplier float64 // member capacity = total weekly points * multiplier
}

// DefaultCalculatorConfig returns the production constants: 240 minutes per
// point and a 10x capacity multiplier.
func DefaultCalculatorConfig() CalculatorConfig {
	return CalculatorConfig{
		MinutesPerPoint:    240,
		CapacityMultiplier: 10,
	}
}

// Calculator computes the six core metrics and the export item
// classification. It never fails on missing fields: absent dates degrade the
// date metrics to 0 and absent numbers contribute nothing.
type Calculator struct {
	logger *slog.Logger
	cfg    CalculatorConfig
}

// NewCalculator creates a metric calculator. A nil logger falls back to the
// default slog logger; zero config values take their defaults.
func NewCalculator(logger *slog.Logger, cfg CalculatorConfig) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinutesPerPoint <= 0 {
		cfg.MinutesPerPoint = 240
	}
	if cfg.CapacityMultiplier <= 0 {
		cfg.CapacityMultiplier = 10
	}
	return &Calculator{
		logger: logger.With(slog.String("component", "calculator")),
		cfg:    cfg,
	}
}

// Config returns the constants the calculator was built with.
func (c *Calculator) Config() CalculatorConfig {
	return c.cfg
}

// Compute calculates the full metric set for one entry (or one reconciled
// group, which is the same shape with summed hours).
func (c *Calculator) Compute(entry domain.TimesheetEntry) domain.MetricSet {
	single := []domain.TimesheetEntry{entry}
	return domain.MetricSet{
		LeadTime:           c.leadTime(entry),
		CycleTime:          c.cycleTime(entry),
		DefectsDensity:     c.DefectsDensity(entry),
		WeeklyPoints:       c.WeeklyPoints(single),
		StoryPointAccuracy: c.StoryPointAccuracy(single),
		ReleaseDelay:       c.releaseDelay(entry),
	}
}

// ComputeAll computes metric sets for a batch of entries, logging the batch
// boundaries. The i-th result corresponds to the i-th entry.
func (c *Calculator) ComputeAll(ctx context.Context, entries []domain.TimesheetEntry) []domain.MetricSet {
	c.logger.InfoContext(ctx, "computing metrics", slog.Int("entry_count", len(entries)))

	sets := make([]domain.MetricSet, len(entries))
	for i, entry := range entries {
		sets[i] = c.Compute(entry)
	}

	c.logger.InfoContext(ctx, "metrics computed", slog.Int("entry_count", len(entries)))
	return sets
}

// leadTime is the inclusive business-day span from request to release, or 0
// when either date is missing.
func (c *Calculator) leadTime(e domain.TimesheetEntry) float64 {
	requested := e.RequestedDate
	released := e.ResolvedReleaseDate()
	if requested == nil || released == nil {
		return 0
	}
	return BusinessDays(*requested, *released)
}

// cycleTime is the inclusive business-day span from start to release, or 0
// when either date is missing.
func (c *Calculator) cycleTime(e domain.TimesheetEntry) float64 {
	started := e.ResolvedStartDate()
	released := e.ResolvedReleaseDate()
	if started == nil || released == nil {
		return 0
	}
	return BusinessDays(*started, *released)
}

// DefectsDensity classifies an entry as defect work (1) or not (0). Whether
// the work was planned changes the branch taken, but in both branches only
// bug, defect and hotfix item types count as defects; stories, tasks and
// everything else do not.
func (c *Calculator) DefectsDensity(e domain.TimesheetEntry) float64 {
	itemType := strings.ToLower(e.ItemType)

	if strings.Contains(strings.ToLower(e.ReportedBy), "planned") {
		if isDefectType(itemType) {
			return 1
		}
		return 0
	}

	if isDefectType(itemType) {
		return 1
	}
	return 0
}

func isDefectType(lowerItemType string) bool {
	return strings.Contains(lowerItemType, "bug") ||
		strings.Contains(lowerItemType, "defect") ||
		strings.Contains(lowerItemType, "hotfix")
}

// WeeklyPoints groups the entries by (item_id, log_owner), sums each group's
// logged hours and converts them to points. The result is a list of buckets,
// not a scalar: callers sum the WeeklyPoints field for a numeric total.
func (c *Calculator) WeeklyPoints(entries []domain.TimesheetEntry) []domain.WeeklyPointsBucket {
	index := make(map[string]int, len(entries))
	buckets := make([]domain.WeeklyPointsBucket, 0, len(entries))

	for _, entry := range entries {
		key := entry.GroupKey()
		i, seen := index[key]
		if !seen {
			i = len(buckets)
			index[key] = i
			itemID, owner := entry.ItemID, entry.LogOwner
			if itemID == "" {
				itemID = domain.NoItemID
			}
			if owner == "" {
				owner = domain.NoLogOwner
			}
			buckets = append(buckets, domain.WeeklyPointsBucket{ItemID: itemID, LogOwner: owner})
		}
		buckets[i].TotalHours += entry.LogHoursDecimal
	}

	for i := range buckets {
		buckets[i].WeeklyPoints = buckets[i].TotalHours * 60 / c.cfg.MinutesPerPoint
	}
	return buckets
}

// StoryPointAccuracy averages, across the weekly-points groups, the ratio of
// estimated to actual points as a percentage. A value below 100 means effort
// exceeded the estimate. Groups where either side is zero are excluded from
// the average entirely; when no group qualifies the result is 0.
func (c *Calculator) StoryPointAccuracy(entries []domain.TimesheetEntry) float64 {
	buckets := c.WeeklyPoints(entries)

	var total float64
	var count int
	for _, bucket := range buckets {
		estimated := c.estimatedPointsFor(entries, bucket)
		if estimated > 0 && bucket.WeeklyPoints > 0 {
			total += estimated / bucket.WeeklyPoints * 100
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// estimatedPointsFor looks up the estimate of the first entry belonging to
// the bucket's (item, owner) group.
func (c *Calculator) estimatedPointsFor(entries []domain.TimesheetEntry, bucket domain.WeeklyPointsBucket) float64 {
	for _, entry := range entries {
		if entry.GroupKey() == bucket.ItemID+"|"+bucket.LogOwner {
			return entry.EstimatedPoints
		}
	}
	return 0
}

// releaseDelay is the signed business-day gap between the expected and
// actual release. Positive means late, negative means early, 0 when either
// date is missing.
func (c *Calculator) releaseDelay(e domain.TimesheetEntry) float64 {
	expected := e.ExpectedReleaseDate
	actual := e.ResolvedReleaseDate()
	if expected == nil || actual == nil {
		return 0
	}
	if !actual.Before(*expected) {
		return BusinessDays(*expected, *actual)
	}
	return -BusinessDays(*actual, *expected)
}

// ExportItemType resolves the display label used for report sectioning and
// row coloring. Precedence: an explicit off-hour log type wins, then the
// planned / unplanned branch with bug, defect and hotfix taking priority over
// story and task, and anything unrecognized falls through to the raw item
// type capitalized.
func (c *Calculator) ExportItemType(e domain.TimesheetEntry) string {
	logType := strings.ToLower(e.LogType)
	if strings.Contains(logType, "off hour") || strings.Contains(logType, "offhour") {
		return "Off Hour"
	}

	itemType := strings.ToLower(e.ItemType)
	switch {
	case strings.Contains(itemType, "bug"):
		return "Bug"
	case strings.Contains(itemType, "defect"):
		return "Defect"
	case strings.Contains(itemType, "hotfix"):
		return "Hotfix"
	}

	if strings.Contains(strings.ToLower(e.ReportedBy), "planned") {
		return "Planned"
	}
	if strings.Contains(itemType, "story") || strings.Contains(itemType, "task") {
		return "New Request"
	}
	return titleCase(e.ItemType)
}

// titleCase upper-cases the first rune of the raw type, keeping the rest
// as exported.
func titleCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Unknown"
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
