package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"prodsheet/internal/dataprocessing"
	"prodsheet/internal/exporter"
	"prodsheet/internal/ingest"
	"prodsheet/internal/store"
	"prodsheet/pkg/contracts/domain"
)

// DefaultTeamName is assigned to entries whose workbook carries no team
// column and no owner to fall back on.
const DefaultTeamName = "CTS"

// reportFilePrefix names generated report downloads.
const reportFilePrefix = "Weekly_Prod_List"

// Options configures a TimesheetService.
type Options struct {
	// Availability is the externally supplied team availability percentage.
	// Zero selects the default.
	Availability float64

	// DefaultTeamName overrides the team assigned to entries without one.
	DefaultTeamName string

	// HeaderOffset is the number of metadata rows above the header row in
	// uploaded workbooks. Negative selects the default.
	HeaderOffset int
}

// TimesheetService orchestrates the upload, calculation and reporting
// pipeline over the entry store.
type TimesheetService struct {
	logger     *slog.Logger
	store      store.EntryStore
	reader     *ingest.Reader
	normalizer *dataprocessing.Normalizer
	calculator *dataprocessing.Calculator
	aggregator *dataprocessing.Aggregator
	reportExp  *exporter.ReportExporter
	csvExp     *exporter.EntryCSVExporter

	availability float64
	defaultTeam  string

	formulaOverrides map[string]string
}

// NewTimesheetService wires the full processing pipeline around the given
// entry store.
func NewTimesheetService(logger *slog.Logger, entryStore store.EntryStore, opts Options) *TimesheetService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Availability <= 0 {
		opts.Availability = dataprocessing.DefaultAvailability
	}
	if opts.DefaultTeamName == "" {
		opts.DefaultTeamName = DefaultTeamName
	}
	if opts.HeaderOffset < 0 {
		opts.HeaderOffset = ingest.DefaultHeaderOffset
	}

	calc := dataprocessing.NewCalculator(logger, dataprocessing.DefaultCalculatorConfig())

	return &TimesheetService{
		logger:           logger.With(slog.String("component", "timesheet_service")),
		store:            entryStore,
		reader:           ingest.NewReader(logger, opts.HeaderOffset),
		normalizer:       dataprocessing.NewNormalizer(dataprocessing.DefaultAliasTable()),
		calculator:       calc,
		aggregator:       dataprocessing.NewAggregator(logger, calc),
		reportExp:        exporter.NewReportExporter(logger, calc),
		csvExp:           exporter.NewEntryCSVExporter(),
		availability:     opts.Availability,
		defaultTeam:      opts.DefaultTeamName,
		formulaOverrides: make(map[string]string),
	}
}

// UploadResult is returned after an upload has been ingested and processed.
type UploadResult struct {
	TotalEntries      int                     `json:"total_entries"`
	Entries           []domain.TimesheetEntry `json:"entries"`
	Averages          domain.Averages         `json:"averages"`
	DownloadAvailable bool                    `json:"download_available"`
}

// Upload ingests an uploaded workbook, replacing the stored dataset with its
// normalized rows and caching the computed metrics back onto each entry.
// teamName is assigned to rows whose team resolution came up empty; blank
// selects the service default.
func (s *TimesheetService) Upload(ctx context.Context, file io.Reader, filename, teamName string) (*UploadResult, error) {
	if teamName == "" {
		teamName = s.defaultTeam
	}

	workbook, err := s.reader.Read(ctx, file, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	entries := s.normalizer.NormalizeRows(workbook.Headers, workbook.Rows)
	if len(entries) == 0 {
		return nil, ErrEmptyUpload
	}

	for i := range entries {
		if entries[i].TeamName == "" {
			entries[i].TeamName = teamName
		}
	}

	if err := s.store.ReplaceAll(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	stored, averages, err := s.recalculate(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "timesheet upload processed",
		slog.String("filename", filename),
		slog.String("team_name", teamName),
		slog.Int("entry_count", len(stored)))

	return &UploadResult{
		TotalEntries:      len(stored),
		Entries:           stored,
		Averages:          averages,
		DownloadAvailable: true,
	}, nil
}

// DataResult bundles the stored entries with every aggregate view.
type DataResult struct {
	Entries      []domain.TimesheetEntry       `json:"entries"`
	Averages     domain.Averages               `json:"averages"`
	TeamStats    domain.TeamStats              `json:"team_stats"`
	MemberStats  map[string]domain.MemberStats `json:"member_stats"`
	TotalEntries int                           `json:"total_entries"`
}

// Data returns the stored dataset with its aggregates. An empty store is not
// an error; the result carries empty collections and zero-filled aggregates.
func (s *TimesheetService) Data(ctx context.Context) (*DataResult, error) {
	entries, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	averages, memberStats, teamStats := s.aggregator.Summarize(ctx, entries, s.availability)

	return &DataResult{
		Entries:      entries,
		Averages:     averages,
		TeamStats:    teamStats,
		MemberStats:  memberStats,
		TotalEntries: len(entries),
	}, nil
}

// RecalculateResult reports the outcome of a metrics recalculation.
type RecalculateResult struct {
	TotalEntries int             `json:"total_entries"`
	Averages     domain.Averages `json:"averages"`
}

// Recalculate recomputes every metric from the stored raw fields and writes
// the cached columns back. It fails with ErrNoEntries on an empty store.
func (s *TimesheetService) Recalculate(ctx context.Context) (*RecalculateResult, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNoEntries
	}

	entries, averages, err := s.recalculate(ctx)
	if err != nil {
		return nil, err
	}

	return &RecalculateResult{
		TotalEntries: len(entries),
		Averages:     averages,
	}, nil
}

// recalculate loads the stored entries, computes their metrics, persists the
// cached columns and returns the refreshed dataset with its averages.
func (s *TimesheetService) recalculate(ctx context.Context) ([]domain.TimesheetEntry, domain.Averages, error) {
	entries, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, domain.Averages{}, err
	}

	metrics := s.calculator.ComputeAll(ctx, entries)
	for i := range entries {
		m := metrics[i]
		entries[i].LeadTime = m.LeadTime
		entries[i].CycleTime = m.CycleTime
		entries[i].DefectsDensity = m.DefectsDensity
		entries[i].WeeklyPoints = m.WeeklyPointsTotal()
		entries[i].StoryPointAccuracy = round2(m.StoryPointAccuracy)
		entries[i].ReleaseDelay = m.ReleaseDelay
	}

	if err := s.store.UpdateMetrics(ctx, entries); err != nil {
		return nil, domain.Averages{}, fmt.Errorf("failed to cache metrics: %w", err)
	}

	return entries, s.aggregator.Averages(entries), nil
}

// Clear removes every stored entry.
func (s *TimesheetService) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// ReportFilename generates the download filename for a report produced now.
func (s *TimesheetService) ReportFilename(now time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", reportFilePrefix, now.Format("2006-01-02_150405"))
}

// WriteReport renders the formatted weekly production report for the stored
// dataset into w. It fails with ErrNoEntries on an empty store.
func (s *TimesheetService) WriteReport(ctx context.Context, w io.Writer, window dataprocessing.ReportWindow) error {
	entries, err := s.store.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return ErrNoEntries
	}

	return s.reportExp.Write(ctx, w, entries, window, s.availability)
}

// WriteCSV streams the stored dataset as flat CSV into w. It fails with
// ErrNoEntries on an empty store.
func (s *TimesheetService) WriteCSV(ctx context.Context, w io.Writer) error {
	entries, err := s.store.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return ErrNoEntries
	}

	return s.csvExp.Write(w, entries)
}

// Formulas returns the human-readable description of each metric, with any
// recorded overrides applied.
func (s *TimesheetService) Formulas() map[string]string {
	formulas := map[string]string{
		"lead_time":            "Lead Time = business days from Requested Date to Actual Release Date",
		"cycle_time":           "Cycle Time = business days from Actual Start Date to Actual Release Date",
		"defects_density":      "Defects Density = 1 if the item type is a Bug, Defect or Hotfix, 0 otherwise",
		"weekly_points":        "Weekly Points = (logged hours * 60) / 240, summed per item and owner",
		"story_point_accuracy": "Story Point Accuracy = mean of (Estimated Points / Weekly Points) * 100 over groups with both values",
		"release_delay":        "Release Delay = business days between Expected and Actual Release Date, negative when early",
	}
	for key, formula := range s.formulaOverrides {
		formulas[key] = formula
	}
	return formulas
}

// UpdateFormula records a formula description override. Only documentation
// changes; the calculation engine is not reconfigurable at runtime.
func (s *TimesheetService) UpdateFormula(key, formula string) (map[string]string, error) {
	if key == "" || formula == "" {
		return nil, ErrInvalidInput
	}
	if _, ok := s.Formulas()[key]; !ok {
		return nil, ErrUnknownFormula
	}

	s.formulaOverrides[key] = formula
	return map[string]string{key: formula}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
