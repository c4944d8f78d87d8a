// Package history keeps a local record of the setup buffers sent to the
// FCS server.
//
// SQLiteRepository implements setup.Recorder: wire it into a Buffer with
// setup.WithRecorder and every App/Setup call lands in the
// dispatch_history table, successful or not.
package history

import (
	"context"
	"time"

	"github.com/nerrad567/fcs-core/internal/setup"
)

// Outcome values stored with each entry.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Entry is one recorded dispatch.
type Entry struct {
	ID        int64           `json:"id"`
	RequestID string          `json:"request_id"`
	Service   string          `json:"service"`
	Elements  []setup.Element `json:"elements"`
	Outcome   string          `json:"outcome"`
	Message   string          `json:"message,omitempty"`
	Error     string          `json:"error,omitempty"`
	Duration  time.Duration   `json:"duration"`
	CreatedAt time.Time       `json:"created_at"`
}

// Filter narrows List. The zero value lists everything.
type Filter struct {
	// Outcome restricts to OutcomeSuccess or OutcomeFailure.
	Outcome string
	// Since drops entries created before it.
	Since time.Time
	// Limit defaults to 50 and is capped at 200.
	Limit int
}

// Repository stores and lists dispatch records.
type Repository interface {
	setup.Recorder

	Record(ctx context.Context, rec setup.DispatchRecord) error
	List(ctx context.Context, f Filter) ([]Entry, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Logger is the logging interface used by the repository.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}
