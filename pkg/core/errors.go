package core

import (
	"fmt"
)

// ExecutionError represents a structured error with kind and details
type ExecutionError struct {
	Kind    ErrorKind
	Code    string                 // Machine-readable code: not_clickable_in_time, session_failure, etc.
	Message string                 // Human-readable message
	Locator string                 // Locator involved, if any
	Details map[string]interface{} // Additional context
	Cause   error                  // Underlying error
}

// Error implements the error interface
func (e *ExecutionError) Error() string {
	msg := e.Message
	if e.Locator != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Locator)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an ExecutionError with the same code.
// Copies made through the With* helpers still match their sentinel.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// Hard reports whether the error must abort the login flow.
func (e *ExecutionError) Hard() bool {
	return e.Kind.IsHard()
}

func (e *ExecutionError) clone() *ExecutionError {
	return &ExecutionError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message,
		Locator: e.Locator,
		Details: e.Details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error with the given cause
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithMessage returns a copy of the error with a custom message
func (e *ExecutionError) WithMessage(msg string) *ExecutionError {
	c := e.clone()
	c.Message = msg
	return c
}

// WithLocator returns a copy of the error bound to a locator
func (e *ExecutionError) WithLocator(locator string) *ExecutionError {
	c := e.clone()
	c.Locator = locator
	return c
}

// WithDetails returns a copy of the error with additional details
func (e *ExecutionError) WithDetails(details map[string]interface{}) *ExecutionError {
	merged := make(map[string]interface{})
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	c := e.clone()
	c.Details = merged
	return c
}

// Predefined errors
var (
	// Lookup errors (soft, swallowed by existence checks)
	ErrLookupTimeout = &ExecutionError{
		Kind:    KindLookupTimeout,
		Code:    "lookup_timeout",
		Message: "element not present in time",
	}

	// Interaction errors
	ErrNotClickableInTime = &ExecutionError{
		Kind:    KindInteractionFailed,
		Code:    "not_clickable_in_time",
		Message: "element not clickable in time",
	}
	ErrNotPresentInTime = &ExecutionError{
		Kind:    KindInteractionFailed,
		Code:    "not_present_in_time",
		Message: "element not present in time",
	}

	// Session errors
	ErrSessionFailure = &ExecutionError{
		Kind:    KindSession,
		Code:    "session_failure",
		Message: "automation session error",
	}
	ErrAppActivation = &ExecutionError{
		Kind:    KindSession,
		Code:    "app_activation_failed",
		Message: "could not activate app",
	}

	// Config errors
	ErrInvalidConfig = &ExecutionError{
		Kind:    KindConfig,
		Code:    "invalid_config",
		Message: "invalid configuration",
	}
)
