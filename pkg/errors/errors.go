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
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Authentication errors
	ErrAuth ErrorCode = "AUTH"

	// Remote store errors
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrTransfer       ErrorCode = "TRANSFER"
	ErrRetryExhausted ErrorCode = "RETRY_EXHAUSTED"

	// Local precondition errors
	ErrLocalFileMissing ErrorCode = "LOCAL_FILE_MISSING"
	ErrLocalDirMissing  ErrorCode = "LOCAL_DIR_MISSING"
)

// DriveError represents a structured error with code and details
type DriveError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DriveError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DriveError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DriveError) Is(target error) bool {
	var targetErr *DriveError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DriveError with the given code and message
func New(code ErrorCode, message string) *DriveError {
	return &DriveError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DriveError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DriveError {
	return &DriveError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DriveError
func Wrap(err error, code ErrorCode, message string) *DriveError {
	if err == nil {
		return nil
	}
	return &DriveError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DriveError {
	if err == nil {
		return nil
	}
	return &DriveError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DriveError) WithDetail(key string, value interface{}) *DriveError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var driveErr *DriveError
	if errors.As(err, &driveErr) {
		return driveErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DriveError
func GetErrorCode(err error) ErrorCode {
	var driveErr *DriveError
	if errors.As(err, &driveErr) {
		return driveErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a DriveError
func GetErrorDetails(err error) map[string]interface{} {
	var driveErr *DriveError
	if errors.As(err, &driveErr) {
		return driveErr.Details
	}
	return nil
}

// permanentCodes are failures that retrying cannot change: the local
// precondition or remote state that produced them is stable.
var permanentCodes = map[ErrorCode]bool{
	ErrNotFound:         true,
	ErrLocalFileMissing: true,
	ErrLocalDirMissing:  true,
	ErrAuth:             true,
	ErrInvalidInput:     true,
	ErrConfigLoad:       true,
	ErrConfigParse:      true,
	ErrConfigValid:      true,
}

// IsPermanent reports whether err is classified as a permanent failure.
// Unclassified errors are treated as transient so that network hiccups
// and rate limits stay retryable.
func IsPermanent(err error) bool {
	var driveErr *DriveError
	if errors.As(err, &driveErr) {
		return permanentCodes[driveErr.Code]
	}
	return false
}
