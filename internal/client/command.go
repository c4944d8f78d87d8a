package client

import (
	"context"
	"errors"
	"time"
)

// Callback is invoked once after every command execution. err is nil on
// success.
type Callback func(err error)

// Result is delivered by ExecAsync.
type Result struct {
	Reply string
	Err   error
}

// Command is one server method bound to a Caller.
//
// Exec logs failures and always fires the callback, whether the call
// succeeded, failed or was cancelled. Commands are immutable; With returns a
// new Command with extra leading arguments.
type Command struct {
	caller   Caller
	domain   Domain
	method   string
	args     []any
	callback Callback
	logger   Logger
}

// NewCommand binds method in domain to caller. callback may be nil.
func NewCommand(caller Caller, domain Domain, method string, callback Callback) *Command {
	return &Command{
		caller:   caller,
		domain:   domain,
		method:   method,
		callback: callback,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger used to report failed executions.
func (c *Command) SetLogger(logger Logger) *Command {
	c.logger = logger
	return c
}

// Domain returns the command domain.
func (c *Command) Domain() Domain { return c.domain }

// Method returns the method name.
func (c *Command) Method() string { return c.method }

// With returns a copy of c whose calls are prefixed with args.
func (c *Command) With(args ...any) *Command {
	cp := *c
	cp.args = append(append([]any(nil), c.args...), args...)
	return &cp
}

// Exec calls the method and returns the server reply.
func (c *Command) Exec(ctx context.Context, args ...any) (string, error) {
	all := append(append([]any(nil), c.args...), args...)

	start := time.Now()
	reply, err := c.call(ctx, all)
	if err != nil {
		c.logger.Error("command failed",
			"domain", c.domain,
			"method", c.method,
			"duration", time.Since(start),
			"error", err,
		)
	} else {
		c.logger.Debug("command executed",
			"domain", c.domain,
			"method", c.method,
			"duration", time.Since(start),
		)
	}

	if c.callback != nil {
		c.callback(err)
	}
	return reply, err
}

// ExecAsync runs Exec in a new goroutine. The returned channel receives
// exactly one Result and is then closed.
func (c *Command) ExecAsync(ctx context.Context, args ...any) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		reply, err := c.Exec(ctx, args...)
		out <- Result{Reply: reply, Err: err}
	}()
	return out
}

func (c *Command) call(ctx context.Context, args []any) (string, error) {
	if !c.domain.Valid() {
		return "", c.wrap(ErrUnknownDomain)
	}
	if err := ctx.Err(); err != nil {
		return "", c.wrap(err)
	}
	reply, err := c.caller.Call(ctx, c.domain, c.method, args...)
	if err != nil {
		return "", c.wrap(err)
	}
	return reply, nil
}

func (c *Command) wrap(err error) error {
	var terr *TransportError
	if errors.As(err, &terr) {
		return err
	}
	return &TransportError{Domain: c.domain, Method: c.method, Err: err}
}
