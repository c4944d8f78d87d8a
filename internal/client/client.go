package client

import (
	"context"
	"fmt"
	"strings"
)

// Domain selects the server command interface a method belongs to.
type Domain string

const (
	DomainApp Domain = "App"
	DomainStd Domain = "Std"
	DomainDaq Domain = "Daq"
)

// Valid reports whether d is a known domain.
func (d Domain) Valid() bool {
	switch d {
	case DomainApp, DomainStd, DomainDaq:
		return true
	}
	return false
}

// ParseDomain accepts a domain name case-insensitively.
func ParseDomain(s string) (Domain, error) {
	for _, d := range []Domain{DomainApp, DomainStd, DomainDaq} {
		if strings.EqualFold(string(d), s) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDomain, s)
}

// Caller performs one remote method call and returns the server reply.
//
// Implementations must honour ctx cancellation and must be safe for
// concurrent use.
type Caller interface {
	Call(ctx context.Context, domain Domain, method string, args ...any) (string, error)
}

// CallerFunc adapts a function to the Caller interface.
type CallerFunc func(ctx context.Context, domain Domain, method string, args ...any) (string, error)

// Call implements Caller.
func (f CallerFunc) Call(ctx context.Context, domain Domain, method string, args ...any) (string, error) {
	return f(ctx, domain, method, args...)
}

// Logger defines the logging interface used by commands and callers.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
