package native

import (
	"errors"
	"fmt"
)

// Sentinel errors for the Native Mode protocol core.
var (
	// ErrConfigNil indicates that a nil SessionConfig was provided.
	ErrConfigNil = errors.New("native: session config is nil")

	// ErrTransport indicates a socket connect, read, or write failure.
	// A transport failure is always terminal for the session.
	ErrTransport = errors.New("native: transport failure")

	// ErrProtocol indicates a malformed or incomplete response: non-ASCII
	// bytes, a payload shorter than declared, or an unparseable numeric token.
	// It is terminal for the current transaction and leaves the session state
	// indeterminate.
	ErrProtocol = errors.New("native: protocol violation")

	// ErrHandshake indicates a greeting or login prompt mismatch during Open.
	// Use errors.As with *HandshakeError to inspect the mismatched prompt.
	ErrHandshake = errors.New("native: handshake failure")

	// ErrNotReady indicates that the session has not completed the login
	// handshake, or has been closed.
	ErrNotReady = errors.New("native: session is not in ready state")

	// ErrTransactionInFlight indicates that a command was issued while the
	// prior transaction's response had not been fully consumed. The protocol
	// is strictly half-duplex with no pipelining.
	ErrTransactionInFlight = errors.New("native: transaction already in flight")

	// ErrInvalidTransition is returned when an attempt is made to transition
	// the session state out of lifecycle order.
	ErrInvalidTransition = errors.New("native: invalid session state transition")
)

// HandshakeError reports a greeting or login prompt that did not match the
// device-defined handshake sequence byte-for-byte.
//
// It matches ErrHandshake under errors.Is.
type HandshakeError struct {
	// Expected is the literal prompt the handshake required.
	Expected string
	// Got is the line actually received.
	Got string
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("native: handshake failure, expected %q, received %q", e.Expected, e.Got)
}

// Is reports whether target is ErrHandshake, allowing errors.Is matching
// against the sentinel.
func (e *HandshakeError) Is(target error) bool {
	return target == ErrHandshake
}
