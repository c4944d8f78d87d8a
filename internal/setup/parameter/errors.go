package parameter

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned when a wire value fails a parser's type, range or
// membership constraints. Check it with errors.Is; use errors.As with
// *ValidationError to reach the parameter name and offending value.
var ErrInvalid = errors.New("parameter: invalid value")

// ValidationError describes a rejected parameter value.
type ValidationError struct {
	Param  string // wire name, empty when raised by a bare parser
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("%s, got %#v", e.Reason, e.Value)
	}
	return fmt.Sprintf("parameter %q: %s, got %#v", e.Param, e.Reason, e.Value)
}

// Unwrap allows errors.Is(err, ErrInvalid).
func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

func invalid(value any, format string, args ...any) error {
	return &ValidationError{Value: value, Reason: fmt.Sprintf(format, args...)}
}

// named returns err attributed to the parameter name. Other errors are
// wrapped so the name still appears.
func named(name string, err error) error {
	if verr, ok := err.(*ValidationError); ok { //nolint:errorlint // only a bare parser error is renamed
		cp := *verr
		cp.Param = name
		return &cp
	}
	return fmt.Errorf("parameter %q: %w", name, err)
}
