package http

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "prodsheet/internal/errors"
	"prodsheet/internal/files"
)

// ReportsHandler exposes the archive of generated report files on disk.
// Reports produced by the batch processor and the web download endpoint
// share the same directory, so both show up here.
type ReportsHandler struct {
	reportsDir   string
	discovery    *files.Discovery
	manager      *files.Manager
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportsHandler creates a handler rooted at the given reports directory.
func NewReportsHandler(reportsDir string, manager *files.Manager, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportsHandler {
	return &ReportsHandler{
		reportsDir:   reportsDir,
		discovery:    files.NewDiscovery(reportsDir),
		manager:      manager,
		logger:       logger.With(slog.String("component", "reports_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the router for report archive endpoints
func (h *ReportsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListReports)
	r.Get("/latest", h.DownloadLatest)
	r.Get("/{filename}", h.DownloadReport)
	return r
}

// reportEntry is the JSON shape of one archived report.
type reportEntry struct {
	Name     string `json:"name"`
	Size     int64  `json:"size_bytes"`
	Modified string `json:"modified"`
}

// ListReports handles GET /api/reports
func (h *ReportsHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	found, err := h.discovery.FindReports(".")
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list reports",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusInternalServerError, "REPORT_LIST_FAILED", "Failed to list generated reports"))
		return
	}

	entries := make([]reportEntry, 0, len(found))
	for _, f := range found {
		entries = append(entries, reportEntry{
			Name:     f.Name,
			Size:     f.Size,
			Modified: f.ModTime.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"reports": entries,
		"count":   len(entries),
	})
}

// DownloadReport handles GET /api/reports/{filename}
func (h *ReportsHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	filename := chi.URLParam(r, "filename")

	if !isSafeReportName(filename) {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(
			"filename", "must be a generated report filename"))
		return
	}

	path := filepath.Join(h.reportsDir, filename)
	if !h.manager.FileExists(path) {
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusNotFound, "REPORT_NOT_FOUND", "No such report"))
		return
	}

	h.logger.InfoContext(r.Context(), "serving archived report",
		slog.String("filename", filename),
		slog.String("request_id", reqID),
	)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	http.ServeFile(w, r, path)
}

// DownloadLatest handles GET /api/reports/latest, serving the most recently
// generated report without the caller knowing its timestamped name.
func (h *ReportsHandler) DownloadLatest(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	found, err := h.discovery.FindReports(".")
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list reports",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusInternalServerError, "REPORT_LIST_FAILED", "Failed to list generated reports"))
		return
	}

	latest, ok := files.GetLatestFile(found)
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusNotFound, "REPORT_NOT_FOUND", "No reports have been generated yet"))
		return
	}

	h.logger.InfoContext(r.Context(), "serving latest report",
		slog.String("filename", latest.Name),
		slog.String("request_id", reqID),
	)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+latest.Name+`"`)
	http.ServeFile(w, r, latest.Path)
}

// isSafeReportName accepts only flat report filenames, no path separators
// or traversal.
func isSafeReportName(name string) bool {
	if name == "" || name != filepath.Base(name) {
		return false
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return false
	}
	return strings.HasPrefix(name, "Weekly_Prod_List") && strings.HasSuffix(name, ".xlsx")
}
