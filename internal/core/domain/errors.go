// Package domain defines the core domain models for sessiondx.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
// Error codes follow the format defined in specs/governance/error-codes.md.
//
// @req RQ-0104
// @design DS-0104
type DomainError struct {
	Code    string // Error code (e.g., "SX-SESS-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
//
// @design DS-0104
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
//
// @design DS-0104
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
//
// @design DS-0104
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Session Errors (SESS)
// Reference: specs/governance/error-codes.md Section 3.1
// ============================================================================

var (
	// ErrSessionNotFound indicates the referenced session does not exist.
	ErrSessionNotFound = NewDomainError("SX-SESS-4040", "session not found")

	// ErrSessionEnded indicates the session is already in a terminal state.
	ErrSessionEnded = NewDomainError("SX-SESS-4090", "session already ended")

	// ErrSessionValidation indicates session input validation failed.
	ErrSessionValidation = NewDomainError("SX-SESS-4001", "session validation failed")
)

// ============================================================================
// Invocation / Step Errors (INVK, STEP)
// Reference: specs/governance/error-codes.md Section 3.2
// ============================================================================

var (
	// ErrInvocationNotFound indicates the referenced invocation does not exist.
	ErrInvocationNotFound = NewDomainError("SX-INVK-4040", "invocation not found")

	// ErrStepNotFound indicates the referenced invocation step does not exist.
	ErrStepNotFound = NewDomainError("SX-STEP-4040", "invocation step not found")

	// ErrRecorderFailed indicates a step could not be recorded, including
	// when the write exhausted its retries.
	ErrRecorderFailed = NewDomainError("SX-RCRD-5000", "step recording failed")

	// ErrRecorderNoInvocationID indicates the gateway accepted the invocation
	// but returned no invocation id.
	ErrRecorderNoInvocationID = NewDomainError("SX-RCRD-5001", "no invocation id returned")
)

// ============================================================================
// Gateway Errors (GATE)
// Reference: specs/governance/error-codes.md Section 3.3
// ============================================================================

var (
	// ErrGatewayValidation indicates the gateway rejected a write as invalid.
	ErrGatewayValidation = NewDomainError("SX-GATE-4000", "request rejected by gateway")

	// ErrGatewayThrottled indicates the gateway rate limit was exceeded.
	ErrGatewayThrottled = NewDomainError("SX-GATE-4290", "gateway rate limit exceeded")

	// ErrGatewayTransient indicates a call failed for a retryable reason.
	ErrGatewayTransient = NewDomainError("SX-GATE-5030", "gateway temporarily unavailable")

	// ErrMalformedResponse indicates an expected field was absent from a
	// gateway response.
	ErrMalformedResponse = NewDomainError("SX-GATE-5001", "malformed gateway response")
)

// ============================================================================
// Argument Errors (ARG)
// Reference: specs/governance/error-codes.md Section 3.4
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("SX-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("SX-ARG-1002", "missing required argument")
)
