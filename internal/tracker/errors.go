package tracker

import (
	"errors"
	"fmt"
)

// ValidationError reports input the tracker refused to save.
type ValidationError struct {
	// Code identifies the error category.
	Code ValidationCode

	// Field names the offending input field.
	Field string

	// Message is a human-readable description.
	Message string
}

// ValidationCode categorizes validation errors.
type ValidationCode string

const (
	// ErrCodeMissingField indicates a required field was blank.
	ErrCodeMissingField ValidationCode = "MISSING_FIELD"

	// ErrCodeUnknownReference indicates a referenced record does not exist.
	ErrCodeUnknownReference ValidationCode = "UNKNOWN_REFERENCE"

	// ErrCodeWrongType indicates a referenced ingredient cannot fill the role.
	ErrCodeWrongType ValidationCode = "WRONG_TYPE"

	// ErrCodeInvalidValue indicates a value outside its allowed set.
	ErrCodeInvalidValue ValidationCode = "INVALID_VALUE"
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func missing(field string) *ValidationError {
	return &ValidationError{Code: ErrCodeMissingField, Field: field, Message: field + " is required"}
}

func unknownRef(field, format string, args ...any) *ValidationError {
	return &ValidationError{Code: ErrCodeUnknownReference, Field: field, Message: fmt.Sprintf(format, args...)}
}
