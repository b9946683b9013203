// Package domain defines the core domain models for the CompliTracker client.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a client domain error with a structured error code.
// Codes have the form CT-<AREA>-<NNNN>.
type DomainError struct {
	Code    string // Error code (e.g., "CT-TOKN-4011")
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
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// MessageOf returns the backend-supplied message carried in err's details,
// or fallback when there is none.
func MessageOf(err error, fallback string) string {
	var de *DomainError
	if errors.As(err, &de) && de.Details != "" {
		return de.Details
	}
	return fallback
}

// ============================================================================
// Token Errors (TOKN)
// ============================================================================

var (
	// ErrTokenMalformed indicates the stored token could not be decoded.
	ErrTokenMalformed = NewDomainError("CT-TOKN-4000", "malformed token")

	// ErrTokenExpired indicates the token decoded fine but is past its expiry.
	ErrTokenExpired = NewDomainError("CT-TOKN-4011", "token expired")

	// ErrNoRefreshToken indicates a refresh was requested without a refresh token.
	ErrNoRefreshToken = NewDomainError("CT-TOKN-4040", "no refresh token stored")
)

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrUnauthorized indicates the backend rejected the token or credentials.
	ErrUnauthorized = NewDomainError("CT-AUTH-4010", "unauthorized")

	// ErrAlreadyAuthenticated indicates login was attempted with an active session.
	ErrAlreadyAuthenticated = NewDomainError("CT-AUTH-4090", "already logged in")

	// ErrLoginRequired indicates a protected view was requested without a session.
	ErrLoginRequired = NewDomainError("CT-AUTH-4011", "login required")
)

// ============================================================================
// Transport and System Errors (NET, SYS)
// ============================================================================

var (
	// ErrNetworkFailure indicates the backend could not be reached.
	ErrNetworkFailure = NewDomainError("CT-NET-5030", "backend unreachable")

	// ErrRemote indicates the backend answered with an unexpected failure.
	ErrRemote = NewDomainError("CT-SYS-5000", "request failed")

	// ErrStore indicates the token store failed.
	ErrStore = NewDomainError("CT-SYS-5001", "token store error")

	// ErrBadResponse indicates the backend answered with a body the client cannot use.
	ErrBadResponse = NewDomainError("CT-SYS-5002", "unexpected response from backend")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrValidation indicates client-side form validation failed.
	// It never reaches the session controller.
	ErrValidation = NewDomainError("CT-ARG-4001", "validation failed")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("CT-ARG-4002", "missing required argument")
)
