package models

import "fmt"

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrPackageParse ErrorType = iota
	ErrExtract
	ErrInvalidConfig
	ErrInspection
	ErrReport
	ErrSigning
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrPackageParse:
		return "PackageParse"
	case ErrExtract:
		return "Extract"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrInspection:
		return "Inspection"
	case ErrReport:
		return "Report"
	case ErrSigning:
		return "Signing"
	default:
		return "Unknown"
	}
}

// AuditError represents an error raised while preparing or running an audit
type AuditError struct {
	Type    ErrorType
	Package string
	Err     error
}

// Error implements the error interface
func (e *AuditError) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Package, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *AuditError) Unwrap() error {
	return e.Err
}
