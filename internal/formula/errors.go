package formula

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is the single error kind returned by this package.
var ErrInvalidInput = errors.New("invalid input")

// InputError describes which argument was rejected and why.
// It unwraps to ErrInvalidInput.
type InputError struct {
	// Field names the offending argument, e.g. "measured_temp_c".
	Field string

	// Value is the rejected value.
	Value float64

	// Reason is a short human-readable explanation.
	Reason string

	// Missing is set when the value was not given at all; Value is then
	// meaningless.
	Missing bool
}

// Error implements the error interface.
func (e *InputError) Error() string {
	if e.Missing {
		return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid input: %s=%v: %s", e.Field, e.Value, e.Reason)
}

// MissingField reports a required value that was not supplied.
func MissingField(field string) *InputError {
	return &InputError{Field: field, Reason: "required", Missing: true}
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// IsInvalidInput reports whether err (or anything it wraps) is an input error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func invalid(field string, value float64, reason string) *InputError {
	return &InputError{Field: field, Value: value, Reason: reason}
}

// requireFinite rejects NaN and ±Inf.
func requireFinite(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return invalid(field, value, "must be a finite number")
	}
	return nil
}

// requirePositive rejects non-finite, zero and negative values.
func requirePositive(field string, value float64) error {
	if err := requireFinite(field, value); err != nil {
		return err
	}
	if value <= 0 {
		return invalid(field, value, "must be greater than zero")
	}
	return nil
}
