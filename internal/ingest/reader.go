// Package ingest reads timesheet workbook exports and hands the core a
// header list plus raw value rows. File-format concerns (xlsx vs csv, the
// metadata preamble above the header row) stop here; nothing downstream sees
// a spreadsheet.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apierrors "prodsheet/internal/errors"
)

// DefaultHeaderOffset is the number of metadata rows a Zoho export carries
// above the header row: rows 1-7 are preamble, row 8 holds the column
// headers.
const DefaultHeaderOffset = 7

// Workbook is the raw content handed to the normalizer: one header row and
// the positional data rows beneath it.
type Workbook struct {
	Headers []string
	Rows    [][]string
}

// Reader extracts workbooks from uploaded files.
type Reader struct {
	logger       *slog.Logger
	headerOffset int
}

// NewReader creates a reader that skips headerOffset metadata rows before
// the header row. A negative offset selects the default.
func NewReader(logger *slog.Logger, headerOffset int) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	if headerOffset < 0 {
		headerOffset = DefaultHeaderOffset
	}
	return &Reader{
		logger:       logger.With(slog.String("component", "ingest_reader")),
		headerOffset: headerOffset,
	}
}

// ReadFile opens the file at path and extracts its workbook, dispatching on
// the file extension. Only .xlsx and .csv are supported.
func (r *Reader) ReadFile(ctx context.Context, path string) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apierrors.NewParsingError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()
	return r.Read(ctx, f, filepath.Base(path))
}

// Read extracts the workbook from an already-open stream. The filename is
// only used to pick the format.
func (r *Reader) Read(ctx context.Context, src io.Reader, filename string) (*Workbook, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	r.logger.InfoContext(ctx, "reading timesheet upload",
		slog.String("filename", filename),
		slog.Int("header_offset", r.headerOffset))

	var rows [][]string
	var err error
	switch ext {
	case ".xlsx", ".xls", ".xlsm":
		rows, err = r.readExcel(src)
	case ".csv":
		rows, err = r.readCSV(src)
	default:
		return nil, apierrors.NewAppValidationError(fmt.Sprintf("unsupported file type %q: expected .xlsx or .csv", ext))
	}
	if err != nil {
		return nil, err
	}

	workbook, err := r.split(rows)
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "timesheet upload read",
		slog.String("filename", filename),
		slog.Int("header_count", len(workbook.Headers)),
		slog.Int("row_count", len(workbook.Rows)))
	return workbook, nil
}

// readExcel pulls every row of the first sheet. Zoho exports carry their
// data on the first (and usually only) sheet.
func (r *Reader) readExcel(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, apierrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apierrors.NewParsingError("workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apierrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheets[0]), err)
	}
	return rows, nil
}

func (r *Reader) readCSV(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apierrors.NewParsingError("failed to read csv", err)
	}
	return rows, nil
}

// split separates the metadata preamble, the header row and the data rows.
// A workbook too short to contain a header row is structurally invalid.
func (r *Reader) split(rows [][]string) (*Workbook, error) {
	if len(rows) <= r.headerOffset {
		return nil, apierrors.NewParsingError(fmt.Sprintf("workbook has %d rows, header row expected at row %d", len(rows), r.headerOffset+1), nil)
	}

	headers := make([]string, len(rows[r.headerOffset]))
	for i, h := range rows[r.headerOffset] {
		headers[i] = strings.TrimSpace(h)
	}

	return &Workbook{
		Headers: headers,
		Rows:    rows[r.headerOffset+1:],
	}, nil
}
