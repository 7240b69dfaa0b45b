package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodsheet/pkg/contracts/domain"
)

func TestComposerCompleted(t *testing.T) {
	composer := NewComposer(newTestCalculator())

	weekStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	weekEnd := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	inWeek := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2023, 12, 5, 0, 0, 0, 0, time.UTC)

	entries := []domain.TimesheetEntry{
		{ItemID: "T1", LogOwner: "Alice", ItemType: "Story", ActualReleaseDate: &inWeek, LogHoursDecimal: 2},
		{ItemID: "T1", LogOwner: "Alice", ItemType: "Story", ActualReleaseDate: &inWeek, LogHoursDecimal: 3},
		{ItemID: "T2", LogOwner: "Bob", ItemType: "Bug", ActualReleaseDate: &lastMonth},
		{ItemID: "T3", LogOwner: "Cara"}, // never released
		{ItemID: "M1", LogOwner: "Alice", ItemName: "Daily Standup", ItemType: "Meeting", ActualReleaseDate: &inWeek},
	}

	t.Run("window filters and meetings go last", func(t *testing.T) {
		rows := composer.Completed(entries, ReportWindow{Start: &weekStart, End: &weekEnd})
		require.Len(t, rows, 2)
		assert.Equal(t, "T1", rows[0].ItemID)
		assert.InDelta(t, 5.0, rows[0].LogHoursDecimal, 1e-9, "duplicate rows reconcile before display")
		assert.Equal(t, "M1", rows[1].ItemID, "meeting rows follow regular rows")
	})

	t.Run("no window keeps every released item", func(t *testing.T) {
		rows := composer.Completed(entries, ReportWindow{})
		require.Len(t, rows, 3)
		assert.Equal(t, "T1", rows[0].ItemID)
		assert.Equal(t, "T2", rows[1].ItemID)
		assert.Equal(t, "M1", rows[2].ItemID)
	})
}

func TestComposerInProgress(t *testing.T) {
	composer := NewComposer(newTestCalculator())

	weekStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	weekEnd := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	inWeek := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2023, 12, 5, 0, 0, 0, 0, time.UTC)

	entries := []domain.TimesheetEntry{
		{ItemID: "T1", LogOwner: "Alice"},                                          // no release date
		{ItemID: "T2", LogOwner: "Bob", ActualReleaseDate: &lastMonth},             // released outside window
		{ItemID: "T3", LogOwner: "Cara", ActualReleaseDate: &inWeek},               // done this week
		{ItemID: "T4", LogOwner: "Dan", ActualReleaseDate: &inWeek, Status: "On Hold"},
		{ItemID: "M1", LogOwner: "Alice", LogType: "Meeting"},                      // meetings excluded
	}

	rows := composer.InProgress(entries, ReportWindow{Start: &weekStart, End: &weekEnd})
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ItemID
	}
	assert.Equal(t, []string{"T1", "T2", "T4"}, ids)
}

func TestComposerIsMeeting(t *testing.T) {
	composer := NewComposer(newTestCalculator())

	tests := []struct {
		name  string
		entry domain.TimesheetEntry
		want  bool
	}{
		{name: "meeting item type", entry: domain.TimesheetEntry{ItemType: "Meetings"}, want: true},
		{name: "standup keyword in name", entry: domain.TimesheetEntry{ItemName: "Sprint standup notes", ItemType: "Task", ReportedBy: "Planned"}, want: true},
		{name: "demo keyword in name", entry: domain.TimesheetEntry{ItemName: "Customer Demo prep"}, want: true},
		{name: "regular story", entry: domain.TimesheetEntry{ItemName: "Implement cache", ItemType: "Story"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, composer.IsMeeting(tt.entry))
		})
	}
}
