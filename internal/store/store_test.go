package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodsheet/pkg/contracts/domain"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleEntries() []domain.TimesheetEntry {
	logDate := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return []domain.TimesheetEntry{
		{ItemID: "T1", LogOwner: "alice", ItemName: "Fix login", LogHoursDecimal: 4, LogDate: &logDate},
		{ItemID: "T2", LogOwner: "bob", ItemName: "Build report", LogHoursDecimal: 2.5},
		{ItemID: "T3", LogOwner: "carol", ItemName: "Ship export", EstimatedPoints: 3},
	}
}

func TestReplaceAllAndListAll(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceAll(ctx, sampleEntries()))

	got, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Insertion order survives the round trip.
	assert.Equal(t, "T1", got[0].ItemID)
	assert.Equal(t, "T2", got[1].ItemID)
	assert.Equal(t, "T3", got[2].ItemID)
	assert.Equal(t, 4.0, got[0].LogHoursDecimal)
	require.NotNil(t, got[0].LogDate)
	assert.Equal(t, 10, got[0].LogDate.Day())
}

func TestReplaceAllDiscardsPreviousDataset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceAll(ctx, sampleEntries()))
	require.NoError(t, s.ReplaceAll(ctx, []domain.TimesheetEntry{
		{ItemID: "T9", LogOwner: "dave", ItemName: "New upload"},
	}))

	got, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "T9", got[0].ItemID)
}

func TestReplaceAllEmptyClears(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceAll(ctx, sampleEntries()))
	require.NoError(t, s.ReplaceAll(ctx, nil))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpdateMetrics(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceAll(ctx, sampleEntries()))

	entries, err := s.ListAll(ctx)
	require.NoError(t, err)

	entries[0].LeadTime = 5
	entries[0].WeeklyPoints = 1.25
	entries[0].StoryPointAccuracy = 80
	require.NoError(t, s.UpdateMetrics(ctx, entries))

	got, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got[0].LeadTime)
	assert.Equal(t, 1.25, got[0].WeeklyPoints)
	assert.Equal(t, 80.0, got[0].StoryPointAccuracy)
	assert.Zero(t, got[1].LeadTime)
}

func TestUpdateMetricsSkipsUnsavedEntries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.UpdateMetrics(ctx, []domain.TimesheetEntry{{ItemID: "T1", LeadTime: 3}})
	require.NoError(t, err)
}

func TestCountAndClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceAll(ctx, sampleEntries()))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.NoError(t, s.Clear(ctx))

	count, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
