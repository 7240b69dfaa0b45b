package dataprocessing

import (
	"context"
	"log/slog"
	"math"

	"prodsheet/pkg/contracts/domain"
)

// DefaultAvailability is the placeholder team availability percentage used
// when no figure is supplied. The real number comes from an HR system; this
// package never computes it.
const DefaultAvailability = 96.36

// Aggregator rolls computed metrics up into team- and member-level
// summaries. Aggregates are recomputed on every request, never incrementally
// mutated.
type Aggregator struct {
	logger *slog.Logger
	calc   *Calculator
}

// NewAggregator creates an aggregator on top of the given calculator. A nil
// calculator gets a default one.
func NewAggregator(logger *slog.Logger, calc *Calculator) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if calc == nil {
		calc = NewCalculator(logger, DefaultCalculatorConfig())
	}
	return &Aggregator{
		logger: logger.With(slog.String("component", "aggregator")),
		calc:   calc,
	}
}

// Averages computes the team-wide aggregate over the entries. An empty input
// yields a zero-filled structure, never an error. Zero metric values are
// legitimate data points and are included in the means.
func (a *Aggregator) Averages(entries []domain.TimesheetEntry) domain.Averages {
	if len(entries) == 0 {
		return domain.Averages{}
	}

	var avg domain.Averages
	var leadSum, cycleSum, densitySum, accuracySum, delaySum float64

	for _, entry := range entries {
		set := a.calc.Compute(entry)
		weekly := set.WeeklyPointsTotal()

		avg.TotalEstimatedPoints += entry.EstimatedPoints
		avg.TotalActualPoints += weekly
		avg.TotalWeeklyPoints += weekly

		leadSum += set.LeadTime
		cycleSum += set.CycleTime
		densitySum += set.DefectsDensity
		accuracySum += set.StoryPointAccuracy
		delaySum += set.ReleaseDelay
	}

	n := float64(len(entries))
	avg.AverageLeadTime = round2(leadSum / n)
	avg.AverageCycleTime = round2(cycleSum / n)
	avg.AverageDefectsDensity = round2(densitySum / n)
	avg.AverageStoryPointAccuracy = round2(accuracySum / n)
	avg.AverageReleaseDelay = round2(delaySum / n)
	return avg
}

// MemberStats partitions the entries by log owner and computes each member's
// aggregate plus capacity. Entries without an owner are left out of the
// member view (they still count in team-wide averages).
func (a *Aggregator) MemberStats(entries []domain.TimesheetEntry) map[string]domain.MemberStats {
	byOwner := make(map[string][]domain.TimesheetEntry)
	for _, entry := range entries {
		if entry.LogOwner == "" {
			continue
		}
		byOwner[entry.LogOwner] = append(byOwner[entry.LogOwner], entry)
	}

	stats := make(map[string]domain.MemberStats, len(byOwner))
	for owner, ownerEntries := range byOwner {
		averages := a.Averages(ownerEntries)
		stats[owner] = domain.MemberStats{
			EntryCount: len(ownerEntries),
			Averages:   averages,
			Capacity:   averages.TotalWeeklyPoints * a.calc.Config().CapacityMultiplier,
		}
	}
	return stats
}

// TeamStats computes the team-level summary. Availability is an externally
// supplied constant; values at or below zero select the default placeholder.
func (a *Aggregator) TeamStats(entries []domain.TimesheetEntry, availability float64) domain.TeamStats {
	if availability <= 0 {
		availability = DefaultAvailability
	}

	owners := make(map[string]struct{})
	for _, entry := range entries {
		if entry.LogOwner != "" {
			owners[entry.LogOwner] = struct{}{}
		}
	}

	averages := a.Averages(entries)
	return domain.TeamStats{
		TotalMembers:              len(owners),
		Availability:              availability,
		TotalPoints:               averages.TotalWeeklyPoints,
		TotalEstimatedPoints:      averages.TotalEstimatedPoints,
		TotalActualPoints:         averages.TotalActualPoints,
		AverageStoryPointAccuracy: averages.AverageStoryPointAccuracy,
	}
}

// Summarize computes all three aggregate views in one pass over the stored
// entries, logging the batch boundaries.
func (a *Aggregator) Summarize(ctx context.Context, entries []domain.TimesheetEntry, availability float64) (domain.Averages, map[string]domain.MemberStats, domain.TeamStats) {
	a.logger.InfoContext(ctx, "aggregating entries", slog.Int("entry_count", len(entries)))

	averages := a.Averages(entries)
	members := a.MemberStats(entries)
	team := a.TeamStats(entries, availability)

	a.logger.InfoContext(ctx, "aggregation complete",
		slog.Int("member_count", len(members)),
		slog.Float64("total_weekly_points", averages.TotalWeeklyPoints))
	return averages, members, team
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
