package insight

import (
	"errors"
	"fmt"
)

// Sentinel errors for the command layer.
var (
	// ErrSessionNil indicates that a nil session was provided to NewClient.
	ErrSessionNil = errors.New("insight: session is nil")

	// ErrCommandFailed indicates that the device answered a command with a
	// non-success status code. Use errors.As with *CommandError for the
	// code and its documented meaning.
	ErrCommandFailed = errors.New("insight: command failed")

	// ErrInvalidArgument indicates that a command argument failed
	// client-side validation before any wire interaction. Use errors.As
	// with *ValidationError for the offending field.
	ErrInvalidArgument = errors.New("insight: invalid argument")

	// ErrClientExists indicates that a manager already holds a client
	// registered under the given name.
	ErrClientExists = errors.New("insight: client already registered")

	// ErrClientNotFound indicates that a manager holds no client registered
	// under the given name.
	ErrClientNotFound = errors.New("insight: client not found")
)

// CommandError reports a command the device rejected with a non-success
// status code. Message carries the documented meaning of the code for the
// command that produced it, or a generic note for undocumented codes.
//
// It matches ErrCommandFailed under errors.Is.
type CommandError struct {
	// Command is the two-letter command mnemonic.
	Command string
	// Code is the status code the device returned.
	Code int
	// Message is the documented meaning of Code for this command.
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("insight: command %s failed with status %d: %s", e.Command, e.Code, e.Message)
}

// Is reports whether target is ErrCommandFailed, allowing errors.Is matching
// against the sentinel.
func (e *CommandError) Is(target error) bool {
	return target == ErrCommandFailed
}

// ValidationError reports a command argument rejected before any wire
// interaction.
//
// It matches ErrInvalidArgument under errors.Is.
type ValidationError struct {
	// Field names the rejected argument.
	Field string
	// Reason describes the constraint the argument violated.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("insight: invalid %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrInvalidArgument, allowing errors.Is
// matching against the sentinel.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func newValidationError(field string, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
