package services

import "errors"

// Timesheet service errors
var (
	// Dataset errors
	ErrNoEntries = errors.New("no timesheet entries stored")

	// Upload errors
	ErrEmptyUpload     = errors.New("uploaded file contains no data rows")
	ErrInvalidFileType = errors.New("invalid file type")

	// Formula errors
	ErrUnknownFormula = errors.New("unknown formula key")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)
