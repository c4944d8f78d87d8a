package client

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport is wrapped by every failure reported by a Caller.
	ErrTransport = errors.New("client: transport failure")

	// ErrTimeout is returned when no reply arrives within the call timeout.
	ErrTimeout = errors.New("client: call timed out")

	// ErrClosed is returned when calling through a closed caller.
	ErrClosed = errors.New("client: caller closed")

	// ErrUnknownDomain is returned for a command domain other than App, Std or Daq.
	ErrUnknownDomain = errors.New("client: unknown command domain")

	// ErrBadReply is returned when a server reply cannot be decoded.
	ErrBadReply = errors.New("client: malformed reply")
)

// TransportError reports a failed server call. It matches both ErrTransport
// and the underlying cause with errors.Is.
type TransportError struct {
	Domain Domain
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("client: %s/%s: %v", e.Domain, e.Method, e.Err)
}

// Unwrap exposes ErrTransport and the cause.
func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// ServerError is an error message returned by the server itself.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "server error: " + e.Message
}
