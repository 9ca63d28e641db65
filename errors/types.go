package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Registry and navigation errors
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeInvalidSector ErrorCode = "INVALID_SECTOR"
	ErrCodeParseError    ErrorCode = "PARSE_ERROR"

	// Remote link errors
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	ErrCodeUnreachable      ErrorCode = "UNREACHABLE"

	// Command execution errors
	ErrCodeCommandFailed ErrorCode = "COMMAND_FAILED"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// TosError represents a structured error with context
type TosError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *TosError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *TosError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *TosError) WithDetail(key string, value interface{}) *TosError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *TosError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new TosError
func New(code ErrorCode, message string) *TosError {
	return &TosError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a TosError
func Wrap(err error, code ErrorCode, message string) *TosError {
	return &TosError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error carries the given code anywhere in its chain
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	tosErr, ok := err.(*TosError)
	if !ok || tosErr.Code != code {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return true
}

// GetCode extracts the outermost error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	tosErr, ok := err.(*TosError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return tosErr.Code
}

// Message returns the human-readable message of a TosError, or err.Error()
// for any other error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if tosErr, ok := err.(*TosError); ok {
		return tosErr.Message
	}
	return err.Error()
}
