package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"prodsheet/internal/dataprocessing"
	apierrors "prodsheet/internal/errors"
	"prodsheet/internal/files"
	custommw "prodsheet/internal/middleware"
	"prodsheet/internal/services"
)

// maxUploadBytes caps multipart uploads. Zoho weekly exports are well under 1MB.
const maxUploadBytes = 10 << 20

// TimesheetHandler handles timesheet HTTP requests with RFC 7807 compliance
type TimesheetHandler struct {
	service      TimesheetServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	archive      *files.Manager
	validation   *custommw.ValidationMiddleware
	query        *custommw.QueryParamValidator
}

// NewTimesheetHandler creates a new timesheet handler with RFC 7807 error
// handling. archive may be nil, in which case uploaded workbooks are not
// kept on disk.
func NewTimesheetHandler(service TimesheetServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, archive *files.Manager) *TimesheetHandler {
	return &TimesheetHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "timesheet_handler")),
		errorHandler: errorHandler,
		archive:      archive,
		validation:   custommw.NewValidationMiddleware(logger, errorHandler),
		query:        custommw.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the timesheet routes with proper Chi patterns
func (h *TimesheetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/upload", h.Upload)
	r.Get("/data", h.GetData)
	r.With(custommw.AuditLog(h.logger)).Delete("/data", h.ClearData)
	r.Post("/recalculate", h.Recalculate)
	r.Get("/download", h.Download)
	r.Get("/formulas", h.GetFormulas)
	r.With(
		custommw.ContentTypeValidator("application/json"),
		h.validation.ValidateRequest,
	).Post("/formulas/update", h.UpdateFormula)

	return r
}

// Upload handles POST /api/timesheet/upload with a multipart timesheet export
func (h *TimesheetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"INVALID_UPLOAD",
			"Request must be multipart/form-data with a timesheet file",
			map[string]interface{}{
				"error": err.Error(),
			},
		))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "Timesheet file is required"))
		return
	}
	defer file.Close()

	teamName := r.FormValue("team_name")

	h.logger.InfoContext(r.Context(), "processing timesheet upload",
		slog.String("request_id", reqID),
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
		slog.String("team_name", teamName),
	)

	result, err := h.service.Upload(r.Context(), file, header.Filename, teamName)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to process upload",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("filename", header.Filename),
		)

		switch {
		case errors.Is(err, services.ErrEmptyUpload):
			h.errorHandler.HandleError(w, r, apierrors.New(
				http.StatusBadRequest,
				"EMPTY_UPLOAD",
				"The uploaded file contains no data rows",
			))
		case errors.Is(err, services.ErrInvalidInput):
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusBadRequest,
				"INVALID_UPLOAD",
				"The uploaded file could not be parsed",
				map[string]interface{}{
					"filename": header.Filename,
					"error":    err.Error(),
				},
			))
		default:
			h.errorHandler.HandleError(w, r, apierrors.ErrUploadProcessing(err))
		}
		return
	}

	h.archiveUpload(r, file, header.Filename, reqID)

	render.JSON(w, r, map[string]interface{}{
		"status":             "success",
		"message":            "Timesheet processed successfully",
		"total_entries":      result.TotalEntries,
		"averages":           result.Averages,
		"download_available": result.DownloadAvailable,
		"data":               result.Entries,
	})
}

// archiveUpload keeps a copy of a successfully processed workbook in the
// uploads directory. Archiving is best effort: a failure is logged but never
// fails the request, since the data is already stored.
func (h *TimesheetHandler) archiveUpload(r *http.Request, file multipart.File, filename, reqID string) {
	if h.archive == nil {
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.logger.WarnContext(r.Context(), "failed to rewind upload for archiving",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		return
	}

	saved, err := h.archive.SaveUpload(filename, file)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to archive upload",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("filename", filename),
		)
		return
	}

	h.logger.InfoContext(r.Context(), "upload archived",
		slog.String("path", saved),
		slog.String("request_id", reqID),
	)
}

// GetData handles GET /api/timesheet/data
func (h *TimesheetHandler) GetData(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "fetching timesheet data",
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	result, err := h.service.Data(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get timesheet data",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":        "success",
		"data":          result.Entries,
		"count":         result.TotalEntries,
		"averages":      result.Averages,
		"team_stats":    result.TeamStats,
		"member_stats":  result.MemberStats,
	})
}

// ClearData handles DELETE /api/timesheet/data
func (h *TimesheetHandler) ClearData(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "clearing timesheet data",
		slog.String("request_id", reqID),
	)

	if err := h.service.Clear(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to clear timesheet data",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"message": "Timesheet data cleared",
	})
}

// Recalculate handles POST /api/timesheet/recalculate
func (h *TimesheetHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "recalculating metrics",
		slog.String("request_id", reqID),
	)

	result, err := h.service.Recalculate(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to recalculate metrics",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)

		if errors.Is(err, services.ErrNoEntries) {
			h.errorHandler.HandleError(w, r, apierrors.ErrNoTimesheetData)
			return
		}

		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":        "success",
		"message":       "Metrics recalculated",
		"total_entries": result.TotalEntries,
		"averages":      result.Averages,
	})
}

// Download handles GET /api/timesheet/download.
// The format query parameter selects the styled xlsx report (default) or a raw csv dump.
// Optional start/end query parameters (YYYY-MM-DD) restrict the completed section to one week.
func (h *TimesheetHandler) Download(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	format, ok := h.query.ValidateEnum(w, r, "format", []string{"xlsx", "csv"}, "xlsx")
	if !ok {
		return
	}

	window, err := parseReportWindow(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("start", err.Error()))
		return
	}

	h.logger.InfoContext(r.Context(), "generating report download",
		slog.String("request_id", reqID),
		slog.String("format", format),
	)

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="timesheet_entries.csv"`)
		err = h.service.WriteCSV(r.Context(), w)
	default:
		filename := h.service.ReportFilename(time.Now())
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		err = h.service.WriteReport(r.Context(), w, window)
	}

	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to generate download",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("format", format),
		)

		// Only handle error if response not yet written
		if !isResponseWritten(w) {
			if errors.Is(err, services.ErrNoEntries) {
				h.errorHandler.HandleError(w, r, apierrors.ErrNoTimesheetData)
				return
			}
			h.errorHandler.HandleError(w, r, apierrors.ErrReportGeneration(err))
		}
	}
}

// GetFormulas handles GET /api/timesheet/formulas
func (h *TimesheetHandler) GetFormulas(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":   "success",
		"formulas": h.service.Formulas(),
	})
}

// UpdateFormula handles POST /api/timesheet/formulas/update
func (h *TimesheetHandler) UpdateFormula(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	var req struct {
		Key     string `json:"key"`
		Formula string `json:"formula"`
	}

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"INVALID_REQUEST",
			"Invalid request body",
			map[string]interface{}{
				"error": err.Error(),
			},
		))
		return
	}

	h.logger.InfoContext(r.Context(), "updating formula description",
		slog.String("request_id", reqID),
		slog.String("key", req.Key),
	)

	formulas, err := h.service.UpdateFormula(req.Key, req.Formula)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to update formula",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("key", req.Key),
		)

		switch {
		case errors.Is(err, services.ErrUnknownFormula):
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusNotFound,
				"UNKNOWN_FORMULA",
				fmt.Sprintf("Formula '%s' not found", req.Key),
				map[string]interface{}{
					"key": req.Key,
				},
			))
		case errors.Is(err, services.ErrInvalidInput):
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("key", "Formula key and text are required"))
		default:
			h.errorHandler.HandleError(w, r, err)
		}
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":   "success",
		"message":  "Formula updated",
		"formulas": formulas,
	})
}

// isResponseWritten checks if the response has already been started
func isResponseWritten(w http.ResponseWriter) bool {
	// Check if writer is a wrapped response writer with status
	if ww, ok := w.(interface{ Status() int }); ok {
		return ww.Status() != 0
	}
	return false
}

// parseReportWindow reads optional start/end query parameters into a report window
func parseReportWindow(r *http.Request) (dataprocessing.ReportWindow, error) {
	var window dataprocessing.ReportWindow

	if raw := r.URL.Query().Get("start"); raw != "" {
		start, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return window, fmt.Errorf("invalid start date %q: expected YYYY-MM-DD", raw)
		}
		window.Start = &start
	}

	if raw := r.URL.Query().Get("end"); raw != "" {
		end, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return window, fmt.Errorf("invalid end date %q: expected YYYY-MM-DD", raw)
		}
		window.End = &end
	}

	return window, nil
}
