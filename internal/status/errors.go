package status

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Domain-specific errors for status operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrTimeout is returned when a wait does not complete in time.
	ErrTimeout = errors.New("status: wait timed out")

	// ErrNothingToWait is returned when no status key matches the waited suffix.
	ErrNothingToWait = errors.New("status: nothing to wait for")
)

// TimeoutError describes a wait that did not complete.
type TimeoutError struct {
	Key      string
	DevNames []string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("status: timeout of wait for %s on [%s] after %v",
		e.Key, strings.Join(e.DevNames, " "), e.Timeout)
}

// Unwrap allows errors.Is(err, ErrTimeout).
func (e *TimeoutError) Unwrap() error { return ErrTimeout }
