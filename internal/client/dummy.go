package client

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// RecordedCall is one call received by a Dummy.
type RecordedCall struct {
	Domain Domain
	Method string
	Args   []any
}

type scripted struct {
	reply string
	err   error
}

// Dummy is a Caller that never leaves the process. It records every call
// and answers with scripted replies (empty string by default).
type Dummy struct {
	mu      sync.Mutex
	calls   []RecordedCall
	replies map[string][]scripted
	out     io.Writer
}

// NewDummy returns a Dummy with no scripted replies.
func NewDummy() *Dummy {
	return &Dummy{replies: make(map[string][]scripted)}
}

// SetOutput makes the Dummy print each call to w.
func (d *Dummy) SetOutput(w io.Writer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.out = w
}

// Reply queues a reply for domain/method. Queued replies are consumed in
// order; the last one is repeated once the queue is drained.
func (d *Dummy) Reply(domain Domain, method, reply string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := dummyKey(domain, method)
	d.replies[key] = append(d.replies[key], scripted{reply: reply, err: err})
}

// Call implements Caller.
func (d *Dummy) Call(ctx context.Context, domain Domain, method string, args ...any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls = append(d.calls, RecordedCall{
		Domain: domain,
		Method: method,
		Args:   append([]any(nil), args...),
	})
	if d.out != nil {
		fmt.Fprintf(d.out, "dummy %s/%s called with %v\n", domain, method, args) //nolint:errcheck // Best effort trace
	}

	key := dummyKey(domain, method)
	queue := d.replies[key]
	if len(queue) == 0 {
		return "", nil
	}
	next := queue[0]
	if len(queue) > 1 {
		d.replies[key] = queue[1:]
	}
	return next.reply, next.err
}

// Calls returns a copy of the recorded calls.
func (d *Dummy) Calls() []RecordedCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]RecordedCall(nil), d.calls...)
}

// CallsTo returns the recorded calls for one method.
func (d *Dummy) CallsTo(domain Domain, method string) []RecordedCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []RecordedCall
	for _, c := range d.calls {
		if c.Domain == domain && c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls and scripted replies.
func (d *Dummy) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = nil
	d.replies = make(map[string][]scripted)
}

func dummyKey(domain Domain, method string) string {
	return string(domain) + "/" + method
}
