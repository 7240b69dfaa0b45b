package errors

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// maxCapturedBody bounds how much of a JSON request body is retained for
// failure logging. Formula updates are tiny; anything larger is suspect.
const maxCapturedBody = 64 << 10

// loggedBodyLimit caps the body excerpt that lands in a log record.
const loggedBodyLimit = 500

// FailureLogger logs API requests that end in an error status, attaching a
// sanitized excerpt of the JSON payload when one was sent. Multipart workbook
// uploads are never captured. Panics are converted to RFC 7807 responses
// through the shared error handler.
type FailureLogger struct {
	handler *ErrorHandler
	logger  *slog.Logger
}

// NewFailureLogger creates the failure logging middleware.
func NewFailureLogger(handler *ErrorHandler, logger *slog.Logger) *FailureLogger {
	return &FailureLogger{
		handler: handler,
		logger:  logger.With(slog.String("component", "failure_logger")),
	}
}

// Handler returns the middleware handler function.
func (fl *FailureLogger) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if capturable(r) {
			body, _ = io.ReadAll(io.LimitReader(r.Body, maxCapturedBody))
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			if rvr := recover(); rvr != nil {
				fl.handler.HandlePanic(ww, r, rvr)
			}
		}()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status < 400 {
			return
		}

		level := slog.LevelWarn
		if status >= 500 {
			level = slog.LevelError
		}

		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		}
		if r.URL.RawQuery != "" {
			attrs = append(attrs, slog.String("query", r.URL.RawQuery))
		}
		if len(body) > 0 {
			excerpt := sanitizePayload(string(body))
			if len(excerpt) > loggedBodyLimit {
				excerpt = excerpt[:loggedBodyLimit] + "..."
			}
			attrs = append(attrs, slog.String("request_body", excerpt))
		}

		fl.logger.LogAttrs(r.Context(), level, "request failed", attrs...)
	})
}

// capturable reports whether the request body is worth retaining: only JSON
// payloads are logged, never spreadsheet uploads or empty bodies.
func capturable(r *http.Request) bool {
	if r.Body == nil || r.ContentLength <= 0 {
		return false
	}
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// sanitizePayload redacts credential-bearing fields from a JSON payload
// before it reaches the logs. Non-JSON input passes through untouched.
func sanitizePayload(body string) string {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return body
	}

	sensitiveFields := []string{
		"password", "token", "secret", "api_key", "apiKey",
		"credit_card", "ssn",
	}
	for _, field := range sensitiveFields {
		if _, exists := data[field]; exists {
			data[field] = "[REDACTED]"
		}
	}

	sanitized, _ := json.Marshal(data)
	return string(sanitized)
}
