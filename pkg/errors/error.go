// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters, malformed series, type mismatches
//   - Data/Resource errors (200-299): Data not found, query and write failures
//   - Indicator errors (300-399): Technical indicator calculation and lookup errors
//   - Feature pipeline errors (400-499): Feature engineering, scaler and sequence errors
//   - Forecast errors (500-599): Predictor and iterative forecast errors
//
// Besides the coded *Error, the package defines typed errors for the failure
// modes callers branch on: InsufficientDataError, InsufficientFeatureDataError,
// InsufficientHistoryError, DegenerateBandError and UnsupportedIndicatorError.
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeQueryFailed, "failed to execute query", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeInsufficientData) { ... }
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

// ErrorCode returns the code of the error.
func (e *Error) ErrorCode() ErrorCode {
	return e.Code
}

// coded is implemented by every error type of this package.
type coded interface {
	ErrorCode() ErrorCode
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

// GetCode extracts the ErrorCode of the first coded error in err's chain.
// Returns ErrCodeUnknown if no error in the chain carries a code.
func GetCode(err error) ErrorCode {
	var c coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// InsufficientDataError represents an error when there is not enough data
// for an indicator calculation (e.g. RSI requiring period+1 prices).
type InsufficientDataError struct {
	Required  int    // Minimum data points required
	Actual    int    // Actual data points available
	Indicator string // Optional: indicator context
	Message   string // Human-readable message
}

// NewInsufficientDataError creates a new InsufficientDataError.
func NewInsufficientDataError(required, actual int, indicator, message string) *InsufficientDataError {
	return &InsufficientDataError{
		Required:  required,
		Actual:    actual,
		Indicator: indicator,
		Message:   message,
	}
}

// NewInsufficientDataErrorf creates a new InsufficientDataError with a formatted message.
func NewInsufficientDataErrorf(required, actual int, indicator, format string, args ...any) *InsufficientDataError {
	return &InsufficientDataError{
		Required:  required,
		Actual:    actual,
		Indicator: indicator,
		Message:   fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *InsufficientDataError) Error() string {
	return e.Message
}

// ErrorCode returns ErrCodeInsufficientData.
func (e *InsufficientDataError) ErrorCode() ErrorCode {
	return ErrCodeInsufficientData
}

// IsInsufficientDataError checks if an error is an InsufficientDataError.
// It uses errors.As to check the error chain.
func IsInsufficientDataError(err error) bool {
	var insufficientErr *InsufficientDataError

	return errors.As(err, &insufficientErr)
}

// InsufficientFeatureDataError is returned when feature engineering leaves
// fewer complete rows than the pipeline requires.
type InsufficientFeatureDataError struct {
	Required int
	Actual   int
}

// NewInsufficientFeatureDataError creates a new InsufficientFeatureDataError.
func NewInsufficientFeatureDataError(required, actual int) *InsufficientFeatureDataError {
	return &InsufficientFeatureDataError{
		Required: required,
		Actual:   actual,
	}
}

// Error implements the error interface.
func (e *InsufficientFeatureDataError) Error() string {
	return fmt.Sprintf("insufficient feature data: only %d complete rows after feature engineering, need at least %d", e.Actual, e.Required)
}

// ErrorCode returns ErrCodeInsufficientFeatureData.
func (e *InsufficientFeatureDataError) ErrorCode() ErrorCode {
	return ErrCodeInsufficientFeatureData
}

// IsInsufficientFeatureDataError checks if an error is an InsufficientFeatureDataError.
func IsInsufficientFeatureDataError(err error) bool {
	var featureErr *InsufficientFeatureDataError

	return errors.As(err, &featureErr)
}

// InsufficientHistoryError is returned by the forecaster when recomputing
// features over the extended series leaves fewer rows than one window.
type InsufficientHistoryError struct {
	Required int // Window length
	Actual   int // Feature rows available
	Step     int // Forecast step (1-based) at which the window could not be built
}

// NewInsufficientHistoryError creates a new InsufficientHistoryError.
func NewInsufficientHistoryError(required, actual, step int) *InsufficientHistoryError {
	return &InsufficientHistoryError{
		Required: required,
		Actual:   actual,
		Step:     step,
	}
}

// Error implements the error interface.
func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history at forecast step %d: %d feature rows, window needs %d", e.Step, e.Actual, e.Required)
}

// ErrorCode returns ErrCodeInsufficientHistory.
func (e *InsufficientHistoryError) ErrorCode() ErrorCode {
	return ErrCodeInsufficientHistory
}

// IsInsufficientHistoryError checks if an error is an InsufficientHistoryError.
func IsInsufficientHistoryError(err error) bool {
	var historyErr *InsufficientHistoryError

	return errors.As(err, &historyErr)
}

// DegenerateBandError is returned when a band position is requested for a
// Bollinger band of zero width.
type DegenerateBandError struct {
	Index int // Position in the input series, -1 when not applicable
}

// NewDegenerateBandError creates a new DegenerateBandError.
func NewDegenerateBandError(index int) *DegenerateBandError {
	return &DegenerateBandError{Index: index}
}

// Error implements the error interface.
func (e *DegenerateBandError) Error() string {
	if e.Index < 0 {
		return "degenerate Bollinger band: upper and lower band are equal, band position is undefined"
	}

	return fmt.Sprintf("degenerate Bollinger band at index %d: upper and lower band are equal, band position is undefined", e.Index)
}

// ErrorCode returns ErrCodeDegenerateBand.
func (e *DegenerateBandError) ErrorCode() ErrorCode {
	return ErrCodeDegenerateBand
}

// IsDegenerateBandError checks if an error is a DegenerateBandError.
func IsDegenerateBandError(err error) bool {
	var bandErr *DegenerateBandError

	return errors.As(err, &bandErr)
}

// UnsupportedIndicatorError is returned when an unknown indicator name is requested.
type UnsupportedIndicatorError struct {
	Name string
}

// NewUnsupportedIndicatorError creates a new UnsupportedIndicatorError.
func NewUnsupportedIndicatorError(name string) *UnsupportedIndicatorError {
	return &UnsupportedIndicatorError{Name: name}
}

// Error implements the error interface.
func (e *UnsupportedIndicatorError) Error() string {
	return fmt.Sprintf("indicator '%s' is not supported", e.Name)
}

// ErrorCode returns ErrCodeUnsupportedIndicator.
func (e *UnsupportedIndicatorError) ErrorCode() ErrorCode {
	return ErrCodeUnsupportedIndicator
}

// IsUnsupportedIndicatorError checks if an error is an UnsupportedIndicatorError.
func IsUnsupportedIndicatorError(err error) bool {
	var unsupportedErr *UnsupportedIndicatorError

	return errors.As(err, &unsupportedErr)
}
