// Package config provides centralized configuration management for ProdSheet.
// It handles loading configuration from multiple sources, validation, and provides
// a type-safe API for accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration files (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern PRODSHEET_* for namespacing:
//
//	PRODSHEET_SERVER_PORT=8080
//	PRODSHEET_DATABASE_PATH=data/timesheet.db
//	PRODSHEET_TIMESHEET_TEAM_AVAILABILITY=96.36
//	PRODSHEET_LOGGING_LEVEL=info
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which handles all file system paths relative to the executable location:
//
//	paths, err := config.GetPaths()
//	uploadPath := paths.GetUploadPath("timesheet.xlsx")
//	reportPath := paths.GetReportPath("Weekly_Prod_List_2025-03-14.xlsx")
//
// # Validation
//
// All configuration is validated at load time to ensure:
//
//	- Required fields are present
//	- Values are within acceptable ranges
//	- File paths are accessible
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
