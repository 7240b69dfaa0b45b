// Package store persists timesheet entries in SQLite through GORM. The
// dataset is small (one spreadsheet's worth of rows), so the store favours
// whole-table operations: an upload replaces every entry atomically rather
// than merging into existing rows.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apierrors "prodsheet/internal/errors"
	"prodsheet/pkg/contracts/domain"
)

// EntryStore is the persistence surface the timesheet service depends on.
type EntryStore interface {
	// ReplaceAll atomically swaps the stored dataset for entries. Either
	// every entry lands or the previous dataset survives untouched.
	ReplaceAll(ctx context.Context, entries []domain.TimesheetEntry) error

	// UpdateMetrics writes the cached metric columns back for the given
	// entries, matched by primary key.
	UpdateMetrics(ctx context.Context, entries []domain.TimesheetEntry) error

	// ListAll returns every stored entry in insertion order.
	ListAll(ctx context.Context) ([]domain.TimesheetEntry, error)

	// Count reports how many entries are stored.
	Count(ctx context.Context) (int64, error)

	// Clear removes every stored entry.
	Clear(ctx context.Context) error
}

// SQLiteStore implements EntryStore on a SQLite database file.
type SQLiteStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// insertBatchSize keeps bulk inserts under SQLite's bound-variable limit.
// TimesheetEntry has ~30 columns; 100 rows stays well below the 32k cap.
const insertBatchSize = 100

// Open creates (or opens) the SQLite database at path and migrates the
// entry schema. Use ":memory:" for an ephemeral database.
func Open(path string, log *slog.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = slog.Default()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, apierrors.NewStorageError(fmt.Sprintf("failed to open database at %s", path), err)
	}

	if err := db.AutoMigrate(&domain.TimesheetEntry{}); err != nil {
		return nil, apierrors.NewStorageError("failed to migrate entry schema", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: log.With(slog.String("component", "entry_store")),
	}, nil
}

// ReplaceAll swaps the dataset in a single transaction: the old rows are
// deleted and the new ones inserted, so readers never see a mix of uploads.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, entries []domain.TimesheetEntry) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.TimesheetEntry{}).Error; err != nil {
			return apierrors.NewStorageError("failed to clear previous entries", err)
		}
		if len(entries) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(entries, insertBatchSize).Error; err != nil {
			return apierrors.NewStorageError("failed to insert entries", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "entry dataset replaced", slog.Int("entry_count", len(entries)))
	return nil
}

// UpdateMetrics persists the cached metric columns for each entry. Entries
// without a primary key are skipped.
func (s *SQLiteStore) UpdateMetrics(ctx context.Context, entries []domain.TimesheetEntry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range entries {
			e := &entries[i]
			if e.ID == 0 {
				continue
			}
			err := tx.Model(&domain.TimesheetEntry{}).
				Where("id = ?", e.ID).
				Updates(map[string]interface{}{
					"lead_time":            e.LeadTime,
					"cycle_time":           e.CycleTime,
					"defects_density":      e.DefectsDensity,
					"weekly_points":        e.WeeklyPoints,
					"story_point_accuracy": e.StoryPointAccuracy,
					"release_delay":        e.ReleaseDelay,
				}).Error
			if err != nil {
				return apierrors.NewStorageError(fmt.Sprintf("failed to update metrics for entry %d", e.ID), err)
			}
		}
		return nil
	})
}

// ListAll returns the stored entries ordered by insertion, which preserves
// the upload's first-seen row order.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.TimesheetEntry, error) {
	var entries []domain.TimesheetEntry
	if err := s.db.WithContext(ctx).Order("id asc").Find(&entries).Error; err != nil {
		return nil, apierrors.NewStorageError("failed to list entries", err)
	}
	return entries, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.TimesheetEntry{}).Count(&count).Error; err != nil {
		return 0, apierrors.NewStorageError("failed to count entries", err)
	}
	return count, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&domain.TimesheetEntry{}).Error; err != nil {
		return apierrors.NewStorageError("failed to clear entries", err)
	}
	s.logger.InfoContext(ctx, "entry dataset cleared")
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
