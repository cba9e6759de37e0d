package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error type
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"
	ErrCodeEmptyPattern  ErrorCode = "EMPTY_PATTERN"

	// Input errors
	ErrCodeInputOpenFailed ErrorCode = "INPUT_OPEN_FAILED"
	ErrCodeInputReadFailed ErrorCode = "INPUT_READ_FAILED"

	// History errors
	ErrCodeHistoryFailed ErrorCode = "HISTORY_FAILED"
)

// FreqError is the base error type for all freq plumbing errors. The
// counting core itself never fails; everything here belongs to the
// boundary around it, and all of it is fatal to the run.
type FreqError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface
func (e *FreqError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *FreqError) Unwrap() error {
	return e.Err
}

// Is checks if this error matches the target
func (e *FreqError) Is(target error) bool {
	t, ok := target.(*FreqError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new freq error
func NewError(code ErrorCode, message string) *FreqError {
	return &FreqError{Code: code, Message: message}
}

// WrapError wraps an existing error
func WrapError(code ErrorCode, message string, err error) *FreqError {
	return &FreqError{Code: code, Message: message, Err: err}
}

// Common error constructors

func NewEmptyPatternError() *FreqError {
	return NewError(ErrCodeEmptyPattern, "pattern must be non-empty")
}

func NewInputOpenFailedError(path string, err error) *FreqError {
	return WrapError(ErrCodeInputOpenFailed, fmt.Sprintf("failed to open %s", path), err)
}

func NewInputReadFailedError(path string, err error) *FreqError {
	return WrapError(ErrCodeInputReadFailed, fmt.Sprintf("failed to read %s", path), err)
}

func NewHistoryFailedError(err error) *FreqError {
	return WrapError(ErrCodeHistoryFailed, "failed to record run history", err)
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var fe *FreqError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}
