// Package apperr defines the error taxonomy shared by the sync engine.
// Pure components raise ValidationError/ParseError and never recover;
// the sync orchestrator is the only layer that catches broadly.
package apperr

import "fmt"

// ValidationError indicates malformed or incomplete input, such as a
// payload missing its envelope id.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Msg
}

// Validation builds a ValidationError with a formatted message.
func Validation(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// AuthenticationError indicates a webhook signature mismatch.
type AuthenticationError struct {
	Msg string
}

func (e *AuthenticationError) Error() string {
	return "authentication: " + e.Msg
}

// Authentication builds an AuthenticationError with a formatted message.
func Authentication(format string, args ...interface{}) error {
	return &AuthenticationError{Msg: fmt.Sprintf(format, args...)}
}

// ParseError indicates a malformed inbound document.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse: %s: %v", e.Msg, e.Err)
	}
	return "parse: " + e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// ProviderError indicates a failed or timed-out upstream API call.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("docusign %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// StorageError indicates a failed database write or transaction.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
