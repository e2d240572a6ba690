// Package errors defines the error types used throughout solmint.
//
// Every failure the wizard can hit is reported as a WizardError carrying a
// stable code, so callers can branch with errors.Is instead of matching on
// message text.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the wizard.
const (
	ErrCodeRPCFailed         = "RPC_FAILED"
	ErrCodeDecodeFailed      = "DECODE_FAILED"
	ErrCodeCommandFailed     = "COMMAND_FAILED"
	ErrCodeMarkerNotFound    = "MARKER_NOT_FOUND"
	ErrCodeStateIO           = "STATE_IO"
	ErrCodeStateCorrupt      = "STATE_CORRUPT"
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeCanceled          = "CANCELED"
	ErrCodeTxFailed          = "TX_FAILED"
)

// WizardError represents an error raised by one of the wizard components.
type WizardError struct {
	// Code is a unique error code for this error type.
	Code string

	// Message is a human-readable error message.
	Message string

	// Cause is the underlying error, if any.
	Cause error

	// Details contains additional error context.
	Details map[string]any
}

// Error implements the error interface.
func (e *WizardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *WizardError) Unwrap() error {
	return e.Cause
}

// Is reports whether the error matches the target by code.
func (e *WizardError) Is(target error) bool {
	t, ok := target.(*WizardError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause adds a cause to the error.
func (e *WizardError) WithCause(cause error) *WizardError {
	e.Cause = cause
	return e
}

// WithDetails adds details to the error.
func (e *WizardError) WithDetails(details map[string]any) *WizardError {
	e.Details = details
	return e
}

// NewError creates a new WizardError.
func NewError(code, message string) *WizardError {
	return &WizardError{
		Code:    code,
		Message: message,
	}
}

// Sentinels for errors.Is checks. Do not mutate; use the constructors below
// to build errors carrying a cause.
var (
	ErrRPCFailed         = NewError(ErrCodeRPCFailed, "rpc request failed")
	ErrDecodeFailed      = NewError(ErrCodeDecodeFailed, "decode failed")
	ErrCommandFailed     = NewError(ErrCodeCommandFailed, "external command failed")
	ErrMarkerNotFound    = NewError(ErrCodeMarkerNotFound, "expected output marker not found")
	ErrStateIO           = NewError(ErrCodeStateIO, "state file i/o failed")
	ErrStateCorrupt      = NewError(ErrCodeStateCorrupt, "state file is corrupt")
	ErrInvalidInput      = NewError(ErrCodeInvalidInput, "invalid input")
	ErrInvalidTransition = NewError(ErrCodeInvalidTransition, "invalid workflow transition")
	ErrCanceled          = NewError(ErrCodeCanceled, "operation canceled")
	ErrTxFailed          = NewError(ErrCodeTxFailed, "transaction failed")
)

// RPCFailed creates an error for a failed ledger request.
func RPCFailed(method string, cause error) *WizardError {
	return NewError(ErrCodeRPCFailed, fmt.Sprintf("%s failed", method)).WithCause(cause)
}

// DecodeFailed creates an error for decoding failures.
func DecodeFailed(what string, cause error) *WizardError {
	return NewError(ErrCodeDecodeFailed, fmt.Sprintf("failed to decode %s", what)).WithCause(cause)
}

// CommandFailed creates an error for an external command that could not run
// or exited non-zero.
func CommandFailed(command string, cause error) *WizardError {
	return NewError(ErrCodeCommandFailed, fmt.Sprintf("command %q failed", command)).WithCause(cause)
}

// MarkerNotFound creates an error for command output missing an expected line.
func MarkerNotFound(marker string) *WizardError {
	return NewError(ErrCodeMarkerNotFound, fmt.Sprintf("no output line contains %q", marker))
}

// StateIO creates an error for state file read/write failures.
func StateIO(op string, cause error) *WizardError {
	return NewError(ErrCodeStateIO, fmt.Sprintf("failed to %s state", op)).WithCause(cause)
}

// StateCorrupt creates an error for a state file that exists but cannot be used.
func StateCorrupt(reason string, cause error) *WizardError {
	return NewError(ErrCodeStateCorrupt, reason).WithCause(cause)
}

// InvalidInput creates an error for user input that failed to parse.
func InvalidInput(field string, cause error) *WizardError {
	return NewError(ErrCodeInvalidInput, fmt.Sprintf("invalid %s", field)).WithCause(cause)
}

// InvalidTransition creates an error for a step change the workflow forbids.
func InvalidTransition(from, action string) *WizardError {
	return NewError(ErrCodeInvalidTransition, fmt.Sprintf("cannot %s from step %q", action, from))
}

// Canceled creates an error for an operation stopped by its context.
func Canceled(what string, cause error) *WizardError {
	return NewError(ErrCodeCanceled, fmt.Sprintf("%s canceled", what)).WithCause(cause)
}

// TxFailed creates an error for a transaction rejected by the ledger.
func TxFailed(signature string, cause error) *WizardError {
	return NewError(ErrCodeTxFailed, fmt.Sprintf("transaction %s failed", signature)).WithCause(cause)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
