// Package domain contains the core domain models and types.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure cases.
var (
	// ErrEmptyPayload indicates the incident payload is empty or whitespace only.
	ErrEmptyPayload = errors.New("incident payload is empty")

	// ErrPayloadTooLarge indicates the payload exceeds the maximum allowed size.
	ErrPayloadTooLarge = errors.New("incident payload exceeds maximum size")

	// ErrTicketNotFound indicates no ticket exists with the requested ID.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// MalformedFormatError reports an XML incident document that could not be
// parsed after its raw event block was removed.
type MalformedFormatError struct {
	// Diagnostic is the error returned by the XML decoder.
	Diagnostic error
}

// Error implements the error interface.
func (e *MalformedFormatError) Error() string {
	return fmt.Sprintf("malformed XML incident: %v", e.Diagnostic)
}

// Unwrap returns the decoder diagnostic.
func (e *MalformedFormatError) Unwrap() error {
	return e.Diagnostic
}

// IntakeError wraps an error with the operation that produced it.
type IntakeError struct {
	// Op is the operation that failed.
	Op string

	// Err is the underlying error.
	Err error

	// ClientFault marks errors caused by the submitted payload rather than
	// by the service.
	ClientFault bool
}

// Error implements the error interface.
func (e *IntakeError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *IntakeError) Unwrap() error {
	return e.Err
}

// WrapError creates a new IntakeError with context.
func WrapError(op string, err error, clientFault bool) *IntakeError {
	return &IntakeError{
		Op:          op,
		Err:         err,
		ClientFault: clientFault,
	}
}

// IsClientFault reports whether err was caused by the caller's input.
// Malformed incident documents are always client faults.
func IsClientFault(err error) bool {
	var malformed *MalformedFormatError
	if errors.As(err, &malformed) {
		return true
	}
	var ie *IntakeError
	if errors.As(err, &ie) {
		return ie.ClientFault
	}
	return false
}
