package http

import (
	"context"
	"io"
	"time"

	"prodsheet/internal/dataprocessing"
	"prodsheet/internal/services"
)

// TimesheetServiceInterface defines the interface for timesheet operations
type TimesheetServiceInterface interface {
	Upload(ctx context.Context, file io.Reader, filename, teamName string) (*services.UploadResult, error)
	Data(ctx context.Context) (*services.DataResult, error)
	Recalculate(ctx context.Context) (*services.RecalculateResult, error)
	Clear(ctx context.Context) error

	// Report downloads
	ReportFilename(now time.Time) string
	WriteReport(ctx context.Context, w io.Writer, window dataprocessing.ReportWindow) error
	WriteCSV(ctx context.Context, w io.Writer) error

	// Formula documentation
	Formulas() map[string]string
	UpdateFormula(key, formula string) (map[string]string, error)
}
