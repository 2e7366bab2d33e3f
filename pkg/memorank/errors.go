package memorank

import (
	"errors"
	"strings"
)

// Error type constants for classification
const (
	ErrTypeDatabase   = "database"
	ErrTypeValidation = "validation"
	ErrTypeIO         = "io"
	ErrTypeUnknown    = "unknown"
)

// Sentinel errors returned by engine operations.
var (
	ErrNilStore    = errors.New("entry store is required")
	ErrEmptyUserID = errors.New("user id cannot be empty")
)

// ClassifyError inspects an error and returns its type classification.
// This enables grouping errors by category in metrics and telemetry.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}

	errStrLower := strings.ToLower(err.Error())

	// Check for database errors (SQLite specific)
	if strings.Contains(errStrLower, "sql") ||
		strings.Contains(errStrLower, "database") ||
		strings.Contains(errStrLower, "constraint") ||
		strings.Contains(errStrLower, "transaction") {
		return ErrTypeDatabase
	}

	// Check for validation errors
	if errors.Is(err, ErrEmptyUserID) ||
		strings.Contains(errStrLower, "invalid") ||
		strings.Contains(errStrLower, "required") ||
		strings.Contains(errStrLower, "cannot be empty") ||
		strings.Contains(errStrLower, "must be") {
		return ErrTypeValidation
	}

	// Check for filesystem errors from the telemetry sink
	if strings.Contains(errStrLower, "no such file") ||
		strings.Contains(errStrLower, "permission denied") ||
		strings.Contains(errStrLower, "file") {
		return ErrTypeIO
	}

	// Default to unknown
	return ErrTypeUnknown
}
