// Package files provides file system operations and discovery utilities
// for the ProdSheet application.
//
// This package contains two main components:
//
// Discovery: Provides file discovery operations such as finding timesheet
// workbooks, generated weekly reports, and files matching specific patterns.
// It also includes utilities for filtering files by date range and finding
// the latest file.
//
// Manager: Provides basic file management operations such as archiving
// uploaded workbooks, copying, moving, deleting files, and ensuring
// directories exist. Relative paths are resolved against the application's
// executable-relative directory layout.
//
// Example usage:
//
//	// Create a discovery instance
//	discovery := files.NewDiscovery("/path/to/base")
//
//	// Find all generated reports, newest first
//	reports, err := discovery.FindReports("reports")
//
//	// Create a manager instance
//	manager := files.NewManager(paths)
//
//	// Check if file exists
//	if manager.FileExists("reports/Weekly_Prod_List_2025-03-14.xlsx") {
//	    // Process file
//	}
package files
