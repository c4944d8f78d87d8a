package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/fcs-core/internal/setup"
)

const (
	defaultLimit = 50
	maxLimit     = 200

	// timeLayout sorts lexically, so created_at comparisons work on TEXT.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// ErrInvalidFilter is returned by List for an unknown outcome.
var ErrInvalidFilter = errors.New("history: invalid filter")

// SQLiteRepository stores dispatch records in the dispatch_history table.
type SQLiteRepository struct {
	db      *sql.DB
	service string
	logger  Logger
	now     func() time.Time
}

var _ Repository = (*SQLiteRepository)(nil)

// NewSQLiteRepository returns a repository writing to db. service names
// the FCS server the dispatches were sent to.
func NewSQLiteRepository(db *sql.DB, service string) *SQLiteRepository {
	return &SQLiteRepository{
		db:      db,
		service: service,
		logger:  noopLogger{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetLogger sets the logger used when RecordDispatch fails.
func (r *SQLiteRepository) SetLogger(logger Logger) {
	r.logger = logger
}

// RecordDispatch implements setup.Recorder. Failures are logged, never
// returned to the dispatching buffer.
func (r *SQLiteRepository) RecordDispatch(ctx context.Context, rec setup.DispatchRecord) {
	if err := r.Record(ctx, rec); err != nil {
		r.logger.Warn("recording dispatch failed", "request_id", rec.RequestID, "error", err)
	}
}

// Record inserts rec.
func (r *SQLiteRepository) Record(ctx context.Context, rec setup.DispatchRecord) error {
	if rec.RequestID == "" {
		return fmt.Errorf("request id is required")
	}
	elements := rec.Elements
	if elements == nil {
		elements = []setup.Element{}
	}
	payload, err := json.Marshal(elements)
	if err != nil {
		return fmt.Errorf("marshalling elements: %w", err)
	}

	outcome, errText := OutcomeSuccess, ""
	if !rec.Succeeded() {
		outcome, errText = OutcomeFailure, rec.Err.Error()
	}
	created := rec.StartedAt.UTC()
	if rec.StartedAt.IsZero() {
		created = r.now()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO dispatch_history
		 (request_id, service, elements, payload, outcome, message, error, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID,
		r.service,
		len(elements),
		string(payload),
		outcome,
		rec.Message,
		errText,
		rec.Duration.Milliseconds(),
		created.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting dispatch history: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (r *SQLiteRepository) List(ctx context.Context, f Filter) ([]Entry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	var where []string
	var args []any
	switch f.Outcome {
	case "":
	case OutcomeSuccess, OutcomeFailure:
		where = append(where, "outcome = ?")
		args = append(args, f.Outcome)
	default:
		return nil, fmt.Errorf("%w: outcome %q", ErrInvalidFilter, f.Outcome)
	}
	if !f.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, f.Since.UTC().Format(timeLayout))
	}

	query := `SELECT id, request_id, service, payload, outcome, message, error, duration_ms, created_at
		FROM dispatch_history`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying dispatch history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e          Entry
			payload    string
			durationMS int64
			createdAt  string
		)
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Service, &payload, &e.Outcome,
			&e.Message, &e.Error, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning dispatch history: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &e.Elements); err != nil {
			return nil, fmt.Errorf("unmarshalling elements of %s: %w", e.RequestID, err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		if e.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dispatch history: %w", err)
	}
	return entries, nil
}

// Prune deletes entries older than olderThan and returns how many went.
func (r *SQLiteRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}
	cutoff := r.now().Add(-olderThan).Format(timeLayout)
	res, err := r.db.ExecContext(ctx, "DELETE FROM dispatch_history WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting dispatch history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if ts, err := time.Parse(timeLayout, value); err == nil {
		return ts, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing created_at %q: %w", value, err)
	}
	return ts, nil
}
