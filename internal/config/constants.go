package config

import "time"

// Application constants - hardcoded values for the ProdSheet system
const (
	// Application Info
	AppName    = "ProdSheet"
	AppVersion = "1.0.0"

	// Timesheet Processing
	DefaultTeamName        = "CTS"
	DefaultHeaderOffset    = 7     // metadata rows above the header row in Zoho exports
	DefaultAvailability    = 96.36 // percent of nominal team capacity
	MinutesPerStoryPoint   = 240
	CapacityPointsPerWeek  = 10
	ReportFilenamePrefix   = "Weekly_Prod_List"
	ReportSheetName        = "Weekly Production Report"

	// Upload Limits
	MaxUploadBytes     = 10 * 1024 * 1024 // 10MB
	UploadPattern      = ".*\\.(xlsx|xls|xlsm|csv)$"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per minute
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultHTTPTimeout      = 30 * time.Second
	UploadProcessingTimeout = 5 * time.Minute
	ReportGenerationTimeout = 5 * time.Minute

	// File Paths (relative to executable)
	DefaultDataDir    = "data"
	DefaultLogsDir    = "logs"
	DefaultWebDir     = "web"
	DefaultUploadsDir = "data/uploads"
	DefaultReportsDir = "data/reports"

	// Log Settings
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	MaxLogFileSize    = 100 * 1024 * 1024 // 100MB
	MaxLogFileAge     = 30                // days
	MaxLogFileBackups = 10

	// Error Messages
	ErrNoTimesheetData  = "No timesheet data available. Upload a timesheet export first."
	ErrEmptyUpload      = "The uploaded file contains no data rows."
	ErrUnsupportedFile  = "Unsupported file type. Upload a .xlsx or .csv export."
	ErrUploadTooLarge   = "The uploaded file exceeds the maximum allowed size."

	// Success Messages
	MsgUploadComplete    = "Timesheet processed successfully."
	MsgOperationSuccess  = "Operation completed successfully."
)

// API Endpoints (internal)
const (
	APIBasePath         = "/api"
	TimesheetEndpoint   = "/api/timesheet"
	UploadEndpoint      = "/api/timesheet/upload"
	DataEndpoint        = "/api/timesheet/data"
	DownloadEndpoint    = "/api/timesheet/download"
	FormulasEndpoint    = "/api/timesheet/formulas"
	RecalculateEndpoint = "/api/timesheet/recalculate"
	HealthEndpoint      = "/health"
)
