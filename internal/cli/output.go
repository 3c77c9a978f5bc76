package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/sakemonkey/sakemonkey/internal/dataset"
	"github.com/sakemonkey/sakemonkey/internal/formula"
	"github.com/sakemonkey/sakemonkey/internal/sheets"
	"github.com/sakemonkey/sakemonkey/internal/store"
	"github.com/sakemonkey/sakemonkey/internal/tracker"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected input (invalid reading, unknown reference, bad dataset)
	ExitCommandError = 2 // Command error (bad flags, config, database, spreadsheet access)
)

// Error codes reported in the error envelope. Tracker validation errors use
// their own codes (MISSING_FIELD, UNKNOWN_REFERENCE, ...).
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeConfig       = "E002" // Config could not be loaded
	ErrCodeDatabase     = "E003" // Database could not be opened
	ErrCodeUsage        = "E004" // Bad flags or arguments
	ErrCodeNotFound     = "E005" // Record not found
	ErrCodeInvalidInput = "E101" // Measurement outside the formula domain
	ErrCodeDataset      = "E102" // Dataset failed schema validation or import
	ErrCodeSheets       = "E201" // Spreadsheet access failed
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	// Reported is set once the error has been written to the output.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles text, JSON and YAML output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard response envelope for JSON and YAML output.
type CLIResponse struct {
	Status string    `json:"status" yaml:"status"`                   // "ok" or "error"
	Data   any       `json:"data,omitempty" yaml:"data,omitempty"`   // success payload
	Error  *CLIError `json:"error,omitempty" yaml:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code" yaml:"code"`                           // "E001", "UNKNOWN_REFERENCE", etc.
	Message string `json:"message" yaml:"message"`                     // human-readable message
	Details any    `json:"details,omitempty" yaml:"details,omitempty"` // additional context
}

func (f *OutputFormatter) structured() bool {
	return f.Format == "json" || f.Format == "yaml"
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	if f.Format == "yaml" {
		enc := yaml.NewEncoder(f.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(resp); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.structured() {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Render outputs data in a structured format, or calls text to write the
// human-readable rendering.
func (f *OutputFormatter) Render(data any, text func(w io.Writer)) error {
	if f.structured() {
		return f.Success(data)
	}
	text(f.Writer)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.structured() {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// With structured formats verbose logs go to ErrWriter to keep stdout parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Fail reports err through the formatter and returns the ExitError the
// command should return. Rejected input exits 1, everything else 2.
func (f *OutputFormatter) Fail(err error) error {
	code, exit, details := classify(err)
	message := err.Error()
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err != nil {
		message = exitErr.Err.Error()
	}
	_ = f.Error(code, message, details)
	out := WrapExitError(exit, code, err)
	out.Reported = true
	return out
}

// IsReported reports whether err was already written by Fail.
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}

// commandError tags err with an envelope code. The message of the returned
// ExitError is the code.
func commandError(code string, err error) *ExitError {
	return WrapExitError(ExitCommandError, code, err)
}

func classify(err error) (code string, exit int, details any) {
	var (
		exitErr   *ExitError
		verr      *tracker.ValidationError
		inputErr  *formula.InputError
		schemaErr *dataset.SchemaError
		recErr    *dataset.RecordError
		accessErr *sheets.AccessError
	)
	switch {
	case errors.As(err, &verr):
		return string(verr.Code), ExitFailure, map[string]string{"field": verr.Field}
	case errors.As(err, &inputErr):
		details := map[string]any{"field": inputErr.Field}
		if !math.IsNaN(inputErr.Value) && !math.IsInf(inputErr.Value, 0) {
			details["value"] = inputErr.Value
		}
		return ErrCodeInvalidInput, ExitFailure, details
	case errors.As(err, &schemaErr), errors.As(err, &recErr):
		return ErrCodeDataset, ExitFailure, nil
	case errors.Is(err, store.ErrNotFound):
		return ErrCodeNotFound, ExitFailure, nil
	case errors.As(err, &accessErr):
		return ErrCodeSheets, ExitCommandError, map[string]int{"status": accessErr.Status}
	case errors.Is(err, sheets.ErrNoCredentials):
		return ErrCodeSheets, ExitCommandError, nil
	case errors.As(err, &exitErr):
		return exitErr.Message, exitErr.Code, nil
	}
	return ErrCodeGeneric, ExitCommandError, nil
}
