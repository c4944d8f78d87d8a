package setup

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for the setup package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, setup.ErrUnknownDeviceType) {
//	    // offer the list of registered types
//	}
var (
	// ErrUnknownDeviceType is returned when a device type is not registered.
	ErrUnknownDeviceType = errors.New("setup: unknown device type")

	// ErrDispatch is returned when a payload cannot be applied to a device.
	ErrDispatch = errors.New("setup: cannot apply payload")

	// ErrNotManaged is returned when a device name is unknown to the server.
	ErrNotManaged = errors.New("setup: device not managed by the server")

	// ErrUnknownCapability is returned when a device type has no such setup method.
	ErrUnknownCapability = errors.New("setup: unknown capability")

	// ErrUnsupported is returned by operations a device kind does not support.
	ErrUnsupported = errors.New("setup: operation not supported")

	// ErrInvalidDefinition is returned when a device type declaration is inconsistent.
	ErrInvalidDefinition = errors.New("setup: invalid definition")
)

// DispatchError reports a payload key that could not be applied to a device.
type DispatchError struct {
	DeviceID string
	DevType  string
	Key      string
	Err      error
}

func (e *DispatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "setup: device %q (%s)", e.DeviceID, e.DevType)
	if e.Key != "" {
		fmt.Fprintf(&b, ": parameter %q", e.Key)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both ErrDispatch and the underlying cause.
func (e *DispatchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDispatch}
	}
	return []error{ErrDispatch, e.Err}
}

// UnknownDeviceTypeError names the missing device type and the registered ones.
type UnknownDeviceTypeError struct {
	DevType   string
	Available []string
}

func (e *UnknownDeviceTypeError) Error() string {
	return fmt.Sprintf("setup: unknown device type %q, expecting one of: %s",
		e.DevType, strings.Join(e.Available, ", "))
}

// Unwrap allows errors.Is(err, ErrUnknownDeviceType).
func (e *UnknownDeviceTypeError) Unwrap() error { return ErrUnknownDeviceType }

// ElementError identifies the failing element of a batch payload.
type ElementError struct {
	Index    int
	DeviceID string
	DevType  string
	Err      error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("setup: element #%d: setting up %q as %s failed: %v",
		e.Index, e.DeviceID, e.DevType, e.Err)
}

func (e *ElementError) Unwrap() error { return e.Err }

// MissingArgumentError is returned by Call when a required argument is absent.
type MissingArgumentError struct {
	Capability string
	Arg        string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("setup: %s: missing required argument %q", e.Capability, e.Arg)
}

func (e *MissingArgumentError) Unwrap() error { return ErrDispatch }
