package status

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/nerrad567/fcs-core/internal/client"
)

// Default wait timing.
const (
	DefaultTimeout = 60 * time.Second
	DefaultPeriod  = 500 * time.Millisecond
)

// Logger is the logging interface used by Waiter.
type Logger interface {
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

// Predicate tests one status value.
type Predicate func(v any) bool

// Equal returns a predicate matching values equal to want. Numbers compare
// by value regardless of their Go type.
func Equal(want any) Predicate {
	return func(v any) bool {
		if a, ok := number(want); ok {
			b, ok := number(v)
			return ok && a == b
		}
		return reflect.DeepEqual(v, want)
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

// Operator folds the predicate results of several devices.
type Operator int

// Operators.
const (
	All Operator = iota
	Any
)

func (o Operator) fold(match Predicate, values []any) bool {
	for _, v := range values {
		ok := match(v)
		if o == Any && ok {
			return true
		}
		if o == All && !ok {
			return false
		}
	}
	return o == All
}

// Checker tells whether devices currently report a status value.
type Checker struct {
	Caller client.Caller
	// Key is the status key suffix, e.g. "lcs.substate".
	Key   string
	Match Predicate
	Op    Operator
}

// Check queries App/DevStatus for devnames (all devices when empty) and
// folds Match over the values found under Key.
func (c Checker) Check(ctx context.Context, devnames ...string) (bool, error) {
	lines, err := client.DevStatus(ctx, c.Caller, devnames...)
	if err != nil {
		return false, err
	}
	return c.evaluate(Parse(lines))
}

func (c Checker) evaluate(st *Status) (bool, error) {
	restricted, scalar := st.Restricted(c.Key)
	if scalar != nil {
		return c.Match(scalar.Value), nil
	}
	if restricted.Len() == 0 {
		return false, fmt.Errorf("%w: key suffix %q", ErrNothingToWait, c.Key)
	}
	return c.Op.fold(c.Match, restricted.Values()), nil
}

// Waiter polls App/DevStatus until a Checker passes.
type Waiter struct {
	Checker
	Timeout time.Duration
	Period  time.Duration
	Logger  Logger
}

// NewWaiter returns a waiter for key equal to value on all devices with
// the default timing.
func NewWaiter(caller client.Caller, key string, value any) *Waiter {
	return &Waiter{
		Checker: Checker{Caller: caller, Key: key, Match: Equal(value), Op: All},
		Timeout: DefaultTimeout,
		Period:  DefaultPeriod,
	}
}

// WaitResult is delivered by WaitAsync.
type WaitResult struct {
	Elapsed time.Duration
	Err     error
}

// Wait polls until the check passes and returns the elapsed time. A status
// without any key under Key aborts the wait with ErrNothingToWait.
func (w *Waiter) Wait(ctx context.Context, devnames ...string) (time.Duration, error) {
	timeout, period := w.Timeout, w.Period
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	logger := w.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	start := time.Now()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		ok, err := w.Check(ctx, devnames...)
		if err != nil {
			return time.Since(start), err
		}
		if ok {
			return time.Since(start), nil
		}
		logger.Debug("status not reached", "key", w.Key, "devices", devnames)

		select {
		case <-ctx.Done():
			return time.Since(start), ctx.Err()
		case <-deadline.C:
			return time.Since(start), &TimeoutError{Key: w.Key, DevNames: devnames, Timeout: timeout}
		case <-ticker.C:
		}
	}
}

// WaitAsync runs Wait in its own goroutine. The channel receives one
// result and is closed.
func (w *Waiter) WaitAsync(ctx context.Context, devnames ...string) <-chan WaitResult {
	ch := make(chan WaitResult, 1)
	go func() {
		defer close(ch)
		elapsed, err := w.Wait(ctx, devnames...)
		ch <- WaitResult{Elapsed: elapsed, Err: err}
	}()
	return ch
}
