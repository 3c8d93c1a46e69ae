package workflow

import (
	"fmt"
)

// ErrorType classifies workflow failures.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeExecution  ErrorType = "execution"
	ErrorTypeCancelled  ErrorType = "cancelled"
)

// Error is a stage-scoped workflow error. Stage failures are recorded on the
// run state and routed to the error terminal; they are never retried.
type Error struct {
	Type    ErrorType `json:"type"`
	Stage   string    `json:"stage,omitempty"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Stage, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a validation error for the given stage.
func NewValidationError(stage, message string) *Error {
	return &Error{Type: ErrorTypeValidation, Stage: stage, Message: message}
}

// NewExecutionError wraps a stage execution failure.
func NewExecutionError(stage string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeExecution,
		Stage:   stage,
		Message: cause.Error(),
		Cause:   cause,
	}
}

// NewCancellationError marks a run aborted by context cancellation.
func NewCancellationError(stage string) *Error {
	return &Error{Type: ErrorTypeCancelled, Stage: stage, Message: "run cancelled"}
}
