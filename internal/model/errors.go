package model

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies job failures for callers. Categories carry a
// human-readable message; stack traces never reach end users.
type ErrorCategory string

const (
	ErrInvalidInput        ErrorCategory = "invalid_input"
	ErrExtractionFailed    ErrorCategory = "extraction_failed"
	ErrTranscriptionFailed ErrorCategory = "transcription_failed"
	ErrResourceExhausted   ErrorCategory = "resource_exhausted"
	ErrInternal            ErrorCategory = "internal_error"
)

// CategoryError attaches a failure category to an underlying error.
// Adapters return these at their boundary so the orchestrator never
// depends on adapter-internal error types.
type CategoryError struct {
	Category ErrorCategory
	Message  string
	Err      error
}

func (e *CategoryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *CategoryError) Unwrap() error {
	return e.Err
}

// NewCategoryError wraps err with a failure category and message.
func NewCategoryError(category ErrorCategory, message string, err error) *CategoryError {
	return &CategoryError{Category: category, Message: message, Err: err}
}

// Categorize maps any error to its JobError. Unclassified errors become
// internal_error.
func Categorize(err error) JobError {
	if ce, ok := AsCategoryError(err); ok {
		msg := ce.Message
		if ce.Err != nil {
			msg = fmt.Sprintf("%s: %v", ce.Message, ce.Err)
		}
		return JobError{Category: ce.Category, Message: msg}
	}
	return JobError{Category: ErrInternal, Message: err.Error()}
}

// AsCategoryError unwraps err looking for a CategoryError.
func AsCategoryError(err error) (*CategoryError, bool) {
	var ce *CategoryError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
