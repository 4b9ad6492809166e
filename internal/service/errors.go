package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent conditions that callers may want to check for with
// errors.Is().
var (
	// ErrProjectNotFound indicates the referenced project does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrProjectNotFound = errors.New("project not found")

	// ErrUnitNotFound indicates the referenced generation unit does not
	// exist. API layer should map this to HTTP 404 Not Found.
	ErrUnitNotFound = errors.New("generation unit not found")

	// ErrBatchNotFound indicates no units exist for the batch ID.
	// API layer should map this to HTTP 404 Not Found.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrSourceNotReady indicates a refinement or brand kit was requested
	// against a unit that has not completed generation. API layer should
	// map this to HTTP 409 Conflict.
	ErrSourceNotReady = errors.New("source unit has no completed artifact")

	// ErrSetup indicates the flow failed before any unit reached
	// Generating: prompt production, record creation, or event dispatch
	// broke down. For credit-gated flows the reservation has already been
	// refunded when this error is returned. API layer should map this to
	// HTTP 500.
	ErrSetup = errors.New("batch setup failed")
)

// OrchestrationError wraps unexpected errors from the generation services
// with operation context.
type OrchestrationError struct {
	// Operation is the operation that failed (e.g., "start_portfolio")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for OrchestrationError.
func (e *OrchestrationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *OrchestrationError) Unwrap() error {
	return e.Err
}

// newOrchestrationError wraps err with operation context. Known sentinel
// errors pass through unwrapped so callers can match them directly.
func newOrchestrationError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{
		ErrProjectNotFound, ErrUnitNotFound, ErrBatchNotFound, ErrSourceNotReady, ErrSetup,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	return &OrchestrationError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
