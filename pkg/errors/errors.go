package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown    ErrorCode = "UNKNOWN"
	ErrPermission ErrorCode = "PERMISSION"

	// Environment errors
	ErrUnsupportedEnvironment ErrorCode = "UNSUPPORTED_ENVIRONMENT"

	// Provisioning errors
	ErrMetadataQuery   ErrorCode = "METADATA_QUERY_FAILED"
	ErrPackageInstall  ErrorCode = "PKG_INSTALL_FAILED"
	ErrFallbackInstall ErrorCode = "FALLBACK_INSTALL_FAILED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// FileSystem errors
	ErrFileAccess      ErrorCode = "FILE_ACCESS"
	ErrSymlinkCreate   ErrorCode = "SYMLINK_CREATE"
	ErrSymlinkConflict ErrorCode = "SYMLINK_CONFLICT"
	ErrDirCreate       ErrorCode = "DIR_CREATE"
)

// DotupError represents a structured error with code and details
type DotupError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DotupError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DotupError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DotupError) Is(target error) bool {
	var targetErr *DotupError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DotupError with the given code and message
func New(code ErrorCode, message string) *DotupError {
	return &DotupError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DotupError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DotupError {
	return &DotupError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DotupError
func Wrap(err error, code ErrorCode, message string) *DotupError {
	if err == nil {
		return nil
	}
	return &DotupError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DotupError {
	if err == nil {
		return nil
	}
	return &DotupError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DotupError) WithDetail(key string, value interface{}) *DotupError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// GetCode extracts the ErrorCode from an error, returning ErrUnknown for
// errors that are not DotupErrors.
func GetCode(err error) ErrorCode {
	var dotupErr *DotupError
	if errors.As(err, &dotupErr) {
		return dotupErr.Code
	}
	return ErrUnknown
}

// IsCode checks whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	var dotupErr *DotupError
	if errors.As(err, &dotupErr) {
		return dotupErr.Code == code
	}
	return false
}
