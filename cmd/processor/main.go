// Command processor runs the timesheet pipeline in batch mode: it reads one
// or more exported timesheet workbooks, computes the productivity metrics and
// writes the weekly production report without starting the web server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"prodsheet/internal/config"
	"prodsheet/internal/dataprocessing"
	"prodsheet/internal/files"
	"prodsheet/internal/infrastructure"
	"prodsheet/internal/services"
	"prodsheet/internal/store"
	"prodsheet/internal/validation"
)

func main() {
	inPath := flag.String("in", "", "input .xlsx file or directory of .xlsx files (defaults to data/uploads relative to executable)")
	outDir := flag.String("out", "", "output directory for reports (defaults to data/reports relative to executable)")
	teamName := flag.String("team", "", "team name assigned to entries without one")
	startDate := flag.String("start", "", "report window start (YYYY-MM-DD)")
	endDate := flag.String("end", "", "report window end (YYYY-MM-DD)")
	withCSV := flag.Bool("csv", false, "also write the raw entries as CSV")
	flag.Parse()

	// Initialize paths first to get default directories
	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}

	if *inPath == "" {
		*inPath = paths.UploadsDir
	}
	if *outDir == "" {
		*outDir = paths.ReportsDir
	}

	// Ensure all required directories exist
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
		cfg.Logging.FilePath = paths.GetLogPath("processor.log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	if *teamName == "" {
		*teamName = cfg.Timesheet.DefaultTeamName
	}

	window, err := parseWindow(*startDate, *endDate)
	if err != nil {
		logger.Error("Invalid report window", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Starting timesheet batch processing",
		slog.String("input", *inPath),
		slog.String("output_dir", *outDir),
		slog.String("team", *teamName),
		slog.String("executable_dir", paths.ExecutableDir))

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateOutputDirectory(*outDir); err != nil {
		logger.Error("Output directory unusable", slog.String("error", err.Error()))
		os.Exit(1)
	}

	workbooks, err := collectWorkbooks(*inPath, validator)
	if err != nil {
		logger.Error("Failed to read input", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("Found %d workbook(s)\n", len(workbooks))
	if len(workbooks) == 0 {
		logger.Warn("No .xlsx workbooks found",
			slog.String("input", *inPath))
		fmt.Println("Nothing to process")
		return
	}

	// An ephemeral store keeps the batch run independent of the server's
	// database
	entryStore, err := store.Open(":memory:", logger)
	if err != nil {
		logger.Error("Failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer entryStore.Close()

	svc := services.NewTimesheetService(logger, entryStore, services.Options{
		Availability:    cfg.Timesheet.TeamAvailability,
		DefaultTeamName: *teamName,
		HeaderOffset:    cfg.Timesheet.HeaderOffset,
	})

	ctx := context.Background()
	exitCode := 0
	manager := files.NewManager(paths)
	lastReport := ""

	for i, file := range workbooks {
		fmt.Printf("Processing workbook %d of %d: %s\n", i+1, len(workbooks), filepath.Base(file))

		reportPath, err := processWorkbook(ctx, svc, file, *teamName, *outDir, window, *withCSV, logger)
		if err != nil {
			logger.Error("Workbook processing failed",
				slog.String("file", file),
				slog.String("error", err.Error()))
			exitCode = 1
			continue
		}
		lastReport = reportPath
	}

	// Keep a stable path to the newest report so the web UI and scripts can
	// link to it without knowing the timestamped name
	if lastReport != "" {
		if err := manager.CopyFile(lastReport, paths.LatestReportXLSX); err != nil {
			logger.Warn("Failed to update latest report copy",
				slog.String("src", lastReport),
				slog.String("error", err.Error()))
		}
	}

	fmt.Printf("Processing complete: %d workbook(s)\n", len(workbooks))
	os.Exit(exitCode)
}

// processWorkbook runs the full pipeline for a single workbook: ingest,
// calculate, and render the styled report next to the other outputs. It
// returns the path of the report it wrote.
func processWorkbook(ctx context.Context, svc *services.TimesheetService, path, teamName, outDir string, window dataprocessing.ReportWindow, withCSV bool, logger *slog.Logger) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	result, err := svc.Upload(ctx, f, filepath.Base(path), teamName)
	if err != nil {
		return "", fmt.Errorf("process workbook: %w", err)
	}

	logger.Info("Workbook processed",
		slog.String("file", filepath.Base(path)),
		slog.Int("entries", result.TotalEntries),
		slog.Float64("avg_lead_time", result.Averages.AverageLeadTime),
		slog.Float64("avg_cycle_time", result.Averages.AverageCycleTime))

	reportPath := filepath.Join(outDir, svc.ReportFilename(time.Now()))
	out, err := os.Create(reportPath)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer out.Close()

	if err := svc.WriteReport(ctx, out, window); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	logger.Info("Report written", slog.String("path", reportPath))
	fmt.Printf("Report written: %s\n", reportPath)

	if withCSV {
		csvPath := strings.TrimSuffix(reportPath, ".xlsx") + ".csv"
		csvFile, err := os.Create(csvPath)
		if err != nil {
			return "", fmt.Errorf("create csv file: %w", err)
		}
		defer csvFile.Close()

		if err := svc.WriteCSV(ctx, csvFile); err != nil {
			return "", fmt.Errorf("write csv: %w", err)
		}
		logger.Info("CSV written", slog.String("path", csvPath))
	}

	return reportPath, nil
}

// collectWorkbooks expands path into a list of validated .xlsx files. A file
// path is validated and returned as-is; a directory is scanned one level
// deep, oldest workbook first, and unreadable or malformed files are
// dropped.
func collectWorkbooks(path string, validator *validation.FileValidator) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validator.ValidateWorkbookFile(path); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	if err := validator.ValidateInputDirectory(path, "*.xlsx"); err != nil {
		return nil, err
	}

	found, err := files.NewDiscovery(path).FindWorkbooks(".")
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, f := range found {
		if err := validator.ValidateWorkbookFile(f.Path); err != nil {
			continue
		}
		paths = append(paths, f.Path)
	}
	return paths, nil
}

// parseWindow builds the report window from the optional start and end flags.
func parseWindow(start, end string) (dataprocessing.ReportWindow, error) {
	var window dataprocessing.ReportWindow

	if start != "" {
		t, err := time.Parse("2006-01-02", start)
		if err != nil {
			return window, fmt.Errorf("invalid start date %q: expected YYYY-MM-DD", start)
		}
		window.Start = &t
	}
	if end != "" {
		t, err := time.Parse("2006-01-02", end)
		if err != nil {
			return window, fmt.Errorf("invalid end date %q: expected YYYY-MM-DD", end)
		}
		window.End = &t
	}
	if window.Start != nil && window.End != nil && window.End.Before(*window.Start) {
		return window, fmt.Errorf("end date precedes start date")
	}
	return window, nil
}
