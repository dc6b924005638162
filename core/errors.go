package core

import "fmt"

// ValidationError is an input-shape error rejected before any row is
// written: "<field> must not be null", "must be text", or a domain-check
// failure. It is surfaced directly to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError wraps a plain message as a ValidationError.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// QuarantineError is raised by InsertStateUpdate when a candidate is
// rejected and logged to invalid_state_updates. Reason is one of the
// InvalidStateUpdateReason constants (as a string, since
// "invalid_state: <underlying message>" is not itself a fixed enum value).
type QuarantineError struct {
	Reason string
	Status StateUpdateStatus
}

func (e *QuarantineError) Error() string { return e.Reason }
