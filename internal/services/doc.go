// Package services implements the business logic layer of the timesheet
// application. It provides a clean separation between HTTP handlers and data
// access, ensuring that business rules are centralized and testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Transaction management for data consistency
//	5. Domain-focused methods that encapsulate business rules
//
// # Available Services
//
// The package provides one core service:
//
//	- TimesheetService: ingests uploaded workbooks, persists the normalized
//	  entries, computes and caches productivity metrics, and renders the
//	  weekly production report
//
// # Error Handling
//
// Services return domain-specific errors that handlers can transform:
//
//	- ErrNoEntries when an operation requires a stored dataset
//	- ErrInvalidInput for malformed uploads or parameters
//	- Internal errors for unexpected failures
//
// # Testing
//
// Services are tested against an in-memory entry store, so every test runs
// the real normalization and calculation pipeline end to end.
package services
