// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	// ErrNoData is returned when a journal has no usable entries to report on.
	ErrNoData            = errors.New("no statistics available")
	ErrJournalNotFound   = errors.New("journal not found")
	ErrMalformedRecord   = errors.New("malformed record")
	ErrConfigInvalid     = errors.New("invalid configuration")
	ErrDatabaseError     = errors.New("database error")
	ErrInputValidation   = errors.New("input validation failed")
	ErrUnsupportedFormat = errors.New("unsupported import format")
)

// MalformedRecordError describes a trade entry that failed normalization.
// It matches ErrMalformedRecord with errors.Is.
type MalformedRecordError struct {
	EntryID int64
	Field   string
	Value   interface{}
	Reason  string
	Err     error
}

func (e *MalformedRecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed entry %d: %s (%v): %s: %v", e.EntryID, e.Field, e.Value, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed entry %d: %s (%v): %s", e.EntryID, e.Field, e.Value, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// NewMalformedRecordError creates a new MalformedRecordError.
func NewMalformedRecordError(entryID int64, field string, value interface{}, reason string, err error) *MalformedRecordError {
	return &MalformedRecordError{
		EntryID: entryID,
		Field:   field,
		Value:   value,
		Reason:  reason,
		Err:     err,
	}
}

// NoDataError reports a journal whose entries were all dropped as malformed.
// It matches ErrNoData with errors.Is.
type NoDataError struct {
	Skipped int
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("%v: all %d entries are malformed", ErrNoData, e.Skipped)
}

func (e *NoDataError) Is(target error) bool {
	return target == ErrNoData
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInputValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// StoreError represents a failed storage operation.
type StoreError struct {
	Operation string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error [%s]: %v", e.Operation, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrDatabaseError
}

// NewStoreError creates a new StoreError.
func NewStoreError(operation string, err error) *StoreError {
	return &StoreError{
		Operation: operation,
		Err:       err,
	}
}

// DataError represents a problem with imported data files.
type DataError struct {
	Source  string
	Line    int
	Message string
	Err     error
}

func (e *DataError) Error() string {
	loc := e.Source
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Source, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("data error [%s]: %s: %v", loc, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s]: %s", loc, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(source string, line int, message string, err error) *DataError {
	return &DataError{
		Source:  source,
		Line:    line,
		Message: message,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
