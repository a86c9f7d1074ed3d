// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters, misaligned series, type mismatches
//   - Data/Resource errors (200-299): Data not found, query failures, unavailable resources
//   - Indicator errors (300-399): Technical indicator calculation and lookup errors
//   - Strategy errors (400-499): Strategy lookup, configuration, and runtime errors
//   - Backtest errors (600-699): Backtest engine and stage errors
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeQueryFailed, "failed to execute query", originalErr)
//
//	// Check for a structural failure
//	if errors.IsInvalidSeriesError(err) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error.
// Typed errors report their own category code; anything else yields ErrCodeUnknown.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	var insufficient *InsufficientDataError
	if errors.As(err, &insufficient) {
		return ErrCodeInsufficientData
	}

	var invalid *InvalidSeriesError
	if errors.As(err, &invalid) {
		return ErrCodeInvalidSeries
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// InsufficientDataError represents an error when there is not enough data
// for a calculation (e.g., crossover detection needs a prior bar).
type InsufficientDataError struct {
	Required int    // Minimum data points required
	Actual   int    // Actual data points available
	Strategy string // Optional: strategy context
	Message  string // Human-readable message
}

// NewInsufficientDataError creates a new InsufficientDataError.
func NewInsufficientDataError(required, actual int, strategy, message string) *InsufficientDataError {
	return &InsufficientDataError{
		Required: required,
		Actual:   actual,
		Strategy: strategy,
		Message:  message,
	}
}

// NewInsufficientDataErrorf creates a new InsufficientDataError with a formatted message.
func NewInsufficientDataErrorf(required, actual int, strategy, format string, args ...any) *InsufficientDataError {
	return &InsufficientDataError{
		Required: required,
		Actual:   actual,
		Strategy: strategy,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *InsufficientDataError) Error() string {
	return e.Message
}

// IsInsufficientDataError checks if an error is an InsufficientDataError.
// It uses errors.As to check the error chain.
func IsInsufficientDataError(err error) bool {
	var insufficientErr *InsufficientDataError

	return errors.As(err, &insufficientErr)
}

// InvalidSeriesReason tells which structural rule a series broke.
type InvalidSeriesReason string

const (
	// InvalidSeriesReasonOrder means dates are not strictly increasing.
	InvalidSeriesReasonOrder InvalidSeriesReason = "order"
	// InvalidSeriesReasonLength means two aligned inputs have different lengths.
	InvalidSeriesReasonLength InvalidSeriesReason = "length"
)

// InvalidSeriesError represents a structural violation of an input series:
// out-of-order dates or misaligned lengths.
type InvalidSeriesError struct {
	Reason   InvalidSeriesReason
	Index    int // first offending index, -1 for length mismatches
	Expected int // expected length, only set for length mismatches
	Actual   int // actual length, only set for length mismatches
	Message  string
}

// NewOrderError reports that the element at index does not strictly follow its predecessor.
func NewOrderError(index int, format string, args ...any) *InvalidSeriesError {
	return &InvalidSeriesError{
		Reason:  InvalidSeriesReasonOrder,
		Index:   index,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewLengthError reports two aligned inputs with different lengths.
func NewLengthError(expected, actual int, format string, args ...any) *InvalidSeriesError {
	return &InvalidSeriesError{
		Reason:   InvalidSeriesReasonLength,
		Index:    -1,
		Expected: expected,
		Actual:   actual,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *InvalidSeriesError) Error() string {
	return e.Message
}

// IsInvalidSeriesError checks if an error is an InvalidSeriesError.
func IsInvalidSeriesError(err error) bool {
	var invalidErr *InvalidSeriesError

	return errors.As(err, &invalidErr)
}

// StageError records which pipeline stage of which strategy failed.
type StageError struct {
	Strategy string
	Stage    string
	Err      error
}

// NewStageError wraps err with the strategy and stage it came from.
func NewStageError(strategy, stage string, err error) *StageError {
	return &StageError{
		Strategy: strategy,
		Stage:    stage,
		Err:      err,
	}
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("strategy %s failed at %s stage: %v", e.Strategy, e.Stage, e.Err)
}

// Unwrap returns the stage failure.
func (e *StageError) Unwrap() error {
	return e.Err
}
