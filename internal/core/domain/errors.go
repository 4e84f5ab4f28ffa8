package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError represents a client error with a structured error code.
// Codes follow the format CK-<AREA>-<NNNN>.
type DomainError struct {
	Code    string // Error code (e.g., "CK-SESS-4010")
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

// ============================================================================
// Session Errors (SESS)
// ============================================================================

var (
	// ErrNotAuthenticated indicates an operation needs a session but none is set.
	ErrNotAuthenticated = NewDomainError("CK-SESS-4010", "not signed in")

	// ErrTokenMalformed indicates the session token could not be inspected.
	ErrTokenMalformed = NewDomainError("CK-SESS-4000", "malformed token")
)

// ============================================================================
// Transport Errors (NET)
// ============================================================================

var (
	// ErrRequestCanceled indicates the caller abandoned the request.
	// Any response that arrives afterwards is discarded.
	ErrRequestCanceled = NewDomainError("CK-NET-4990", "request canceled")

	// ErrRequestTimeout indicates the caller's deadline passed before a response.
	ErrRequestTimeout = NewDomainError("CK-NET-4080", "request timed out")

	// ErrDecodeResponse indicates a 2xx response body could not be decoded.
	ErrDecodeResponse = NewDomainError("CK-NET-5020", "malformed response body")

	// ErrEncodeRequest indicates the request body could not be encoded.
	ErrEncodeRequest = NewDomainError("CK-NET-4001", "malformed request body")

	// ErrMissingPathParam indicates an endpoint was expanded with too few arguments.
	ErrMissingPathParam = NewDomainError("CK-NET-4002", "missing path parameter")
)

// ============================================================================
// Configuration Errors (CONF)
// ============================================================================

var (
	// ErrConfigInvalid indicates the client configuration failed validation.
	ErrConfigInvalid = NewDomainError("CK-CONF-4000", "invalid configuration")
)

// GenericFailureMessage is shown when no more specific message is available.
const GenericFailureMessage = "Something went wrong. Please try again."

// NetworkErrorMessage is shown for transport failures.
const NetworkErrorMessage = "Network error. Please try again."

// NetworkError is a transport-level failure: no response was received.
type NetworkError struct {
	Op    string // HTTP method
	URL   string
	Cause error
}

// NewNetworkError creates a NetworkError.
func NewNetworkError(op, url string, cause error) *NetworkError {
	return &NetworkError{Op: op, URL: url, Cause: cause}
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Op, e.URL, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// HTTPError is returned when the backend answered with a non-2xx status.
type HTTPError struct {
	Status  int
	Message string // backend "error" field, verbatim; empty if absent
	Body    []byte
}

// NewHTTPError creates an HTTPError.
func NewHTTPError(status int, message string, body []byte) *HTTPError {
	return &HTTPError{Status: status, Message: message, Body: body}
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d", e.Status)
}

// NotFound reports whether the backend answered 404.
func (e *HTTPError) NotFound() bool {
	return e.Status == 404
}

// Unauthorized reports whether the backend rejected the credentials.
func (e *HTTPError) Unauthorized() bool {
	return e.Status == 401 || e.Status == 403
}

// FieldError describes one invalid input field.
type FieldError struct {
	Field  string
	Reason string
}

// ReasonRequired is the FieldError reason for a missing value.
const ReasonRequired = "is required"

// ValidationError is raised before any network call when required input is missing.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Reason: reason}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Reason)
	}
	return strings.Join(parts, "; ")
}

// PersistenceError is a Session Store read or write failure.
type PersistenceError struct {
	Op    string // "read", "write" or "remove"
	Key   string
	Cause error
}

// NewPersistenceError creates a PersistenceError.
func NewPersistenceError(op, key string, cause error) *PersistenceError {
	return &PersistenceError{Op: op, Key: key, Cause: cause}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("session store %s %q: %v", e.Op, e.Key, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// UserMessage maps an error to the text shown to the user.
// Backend messages are surfaced verbatim; fallback is used when the
// backend gave none.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if fallback == "" {
		fallback = GenericFailureMessage
	}

	// Config errors keep their own wording even when they carry a cause.
	var de *DomainError
	if errors.As(err, &de) && de.Code == ErrConfigInvalid.Code {
		if de.Details != "" {
			return "Invalid configuration: " + de.Details
		}
		return "Invalid configuration"
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Message != "" {
			return httpErr.Message
		}
		return fallback
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		for _, f := range valErr.Fields {
			if f.Reason != ReasonRequired {
				return valErr.Error()
			}
		}
		return "Please fill all fields"
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return NetworkErrorMessage
	}

	var perErr *PersistenceError
	if errors.As(err, &perErr) {
		return "Could not save your session on this device"
	}

	if errors.As(err, &de) {
		switch de.Code {
		case ErrNotAuthenticated.Code:
			return "Please log in first"
		case ErrRequestCanceled.Code:
			return "Cancelled"
		case ErrRequestTimeout.Code:
			return "Request timed out. Please try again."
		}
	}
	return fallback
}
