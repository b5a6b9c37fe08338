package schema

import (
	"errors"
	"fmt"
)

// Error codes for structured error reporting.
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeConflict   = "CONFLICT"
	ErrCodeStore      = "STORE_ERROR"
	ErrCodeExpression = "EXPRESSION_ERROR"
	ErrCodeRender     = "RENDER_ERROR"
)

// CaseGraphError is the structured error type for all casegraph operations.
type CaseGraphError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	CaseID  string         `json:"case_id,omitempty"`
	Cause   error          `json:"-"`
}

func (e *CaseGraphError) Error() string {
	if e.CaseID != "" {
		return fmt.Sprintf("[%s] case %s: %s", e.Code, e.CaseID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *CaseGraphError) Unwrap() error {
	return e.Cause
}

// NewError creates a new CaseGraphError.
func NewError(code, message string) *CaseGraphError {
	return &CaseGraphError{Code: code, Message: message}
}

// NewErrorf creates a new CaseGraphError with a formatted message.
func NewErrorf(code, format string, args ...any) *CaseGraphError {
	return &CaseGraphError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCase attaches a case ID to the error.
func (e *CaseGraphError) WithCase(caseID string) *CaseGraphError {
	e.CaseID = caseID
	return e
}

// WithCause attaches an underlying cause.
func (e *CaseGraphError) WithCause(err error) *CaseGraphError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *CaseGraphError) WithDetails(details map[string]any) *CaseGraphError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first CaseGraphError in err's chain, or "".
func CodeOf(err error) string {
	var cgErr *CaseGraphError
	if errors.As(err, &cgErr) {
		return cgErr.Code
	}
	return ""
}

// IsNotFound reports whether err carries the NOT_FOUND code.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}
