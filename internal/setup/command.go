package setup

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/fcs-core/internal/client"
)

// SetupMethod is the App method receiving setup buffers.
const SetupMethod = "Setup"

// BufferSource is anything producing wire elements to send: a Device, an
// Assembly or a Buffer.
type BufferSource interface {
	Buffer() ([]Element, error)
}

type frozenSource []Element

func (f frozenSource) Buffer() ([]Element, error) { return f, nil }

// DispatchRecord describes one App/Setup call.
type DispatchRecord struct {
	RequestID string
	Elements  []Element
	Message   string
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

// Succeeded reports whether the server accepted the buffer.
func (r DispatchRecord) Succeeded() bool { return r.Err == nil }

// Recorder observes dispatches. Implementations must not block.
type Recorder interface {
	RecordDispatch(ctx context.Context, rec DispatchRecord)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, rec DispatchRecord)

// RecordDispatch calls f.
func (f RecorderFunc) RecordDispatch(ctx context.Context, rec DispatchRecord) { f(ctx, rec) }

type multiRecorder []Recorder

func (m multiRecorder) RecordDispatch(ctx context.Context, rec DispatchRecord) {
	for _, r := range m {
		r.RecordDispatch(ctx, rec)
	}
}

// Recorders fans a record out to every non-nil recorder.
func Recorders(rs ...Recorder) Recorder {
	out := make(multiRecorder, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// SetupCommand sends the elements of a BufferSource with App/Setup.
//
// The callback fires after every execution, with nil on success.
type SetupCommand struct {
	caller   client.Caller
	src      BufferSource
	callback client.Callback
	logger   Logger
	recorder Recorder
}

// NewSetupCommand returns a command sending src. A frozen command copies
// the elements of src now; otherwise they are read when the command runs.
func NewSetupCommand(caller client.Caller, src BufferSource, froze bool, cb client.Callback) *SetupCommand {
	if froze {
		elements, err := src.Buffer()
		if err != nil {
			src = errSource{err}
		} else {
			src = frozenSource(elements)
		}
	}
	return &SetupCommand{caller: caller, src: src, callback: cb, logger: noopLogger{}}
}

type errSource struct{ err error }

func (e errSource) Buffer() ([]Element, error) { return nil, e.err }

// SetLogger sets the logger and returns the command.
func (c *SetupCommand) SetLogger(logger Logger) *SetupCommand {
	c.logger = logger
	return c
}

// SetRecorder sets the dispatch observer and returns the command.
func (c *SetupCommand) SetRecorder(r Recorder) *SetupCommand {
	c.recorder = r
	return c
}

// Exec sends the elements and returns the server message.
func (c *SetupCommand) Exec(ctx context.Context) (string, error) {
	elements, err := c.src.Buffer()
	if err != nil {
		if c.callback != nil {
			c.callback(err)
		}
		return "", err
	}
	if c.caller == nil {
		if c.callback != nil {
			c.callback(ErrNoCaller)
		}
		return "", ErrNoCaller
	}

	rec := DispatchRecord{
		RequestID: uuid.NewString(),
		Elements:  elements,
		StartedAt: time.Now(),
	}
	cmd := client.NewCommand(c.caller, client.DomainApp, SetupMethod, c.callback).SetLogger(c.logger)
	rec.Message, rec.Err = cmd.Exec(ctx, elements)
	rec.Duration = time.Since(rec.StartedAt)

	if rec.Err != nil {
		c.logger.Error("setup dispatch failed",
			"request_id", rec.RequestID, "elements", len(elements), "error", rec.Err)
	} else {
		c.logger.Info("setup dispatched",
			"request_id", rec.RequestID, "elements", len(elements), "duration", rec.Duration)
	}
	if c.recorder != nil {
		c.recorder.RecordDispatch(context.WithoutCancel(ctx), rec)
	}
	return rec.Message, rec.Err
}

// ExecAsync runs Exec in its own goroutine. The channel receives one
// result and is closed.
func (c *SetupCommand) ExecAsync(ctx context.Context) <-chan client.Result {
	out := make(chan client.Result, 1)
	go func() {
		defer close(out)
		reply, err := c.Exec(ctx)
		out <- client.Result{Reply: reply, Err: err}
	}()
	return out
}

type clearer interface {
	Clear()
}

// clearOnSuccess returns a callback clearing c after a successful dispatch.
func clearOnSuccess(c clearer, logger Logger) client.Callback {
	if logger == nil {
		logger = noopLogger{}
	}
	return func(err error) {
		if err == nil {
			c.Clear()
			return
		}
		if errors.Is(err, context.Canceled) {
			logger.Info("setup command cancelled, buffer wasn't cleaned")
			return
		}
		logger.Info("setup command execution failed, buffer wasn't cleaned", "error", err)
	}
}
