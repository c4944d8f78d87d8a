package influxdb

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// DispatchStats counts dispatches per outcome.
type DispatchStats struct {
	Counts map[string]int64
}

// Total returns the number of dispatches of every outcome.
func (s DispatchStats) Total() int64 {
	var n int64
	for _, c := range s.Counts {
		n += c
	}
	return n
}

// DispatchStats counts the dispatches sent to service during the last
// window.
func (c *Client) DispatchStats(ctx context.Context, service string, window time.Duration) (DispatchStats, error) {
	if !c.IsConnected() || c.query == nil {
		return DispatchStats{}, ErrNotConnected
	}
	if window <= 0 {
		return DispatchStats{}, fmt.Errorf("%w: window must be positive", ErrQueryFailed)
	}

	result, err := c.query.Query(ctx, dispatchStatsQuery(c.bucket, service, window))
	if err != nil {
		return DispatchStats{}, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	defer result.Close()

	stats := DispatchStats{Counts: make(map[string]int64)}
	for result.Next() {
		rec := result.Record()
		outcome, _ := rec.ValueByKey("outcome").(string)
		count, ok := rec.Value().(int64)
		if !ok {
			continue
		}
		stats.Counts[outcome] += count
	}
	if err := result.Err(); err != nil {
		return DispatchStats{}, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	return stats, nil
}

// dispatchStatsQuery builds the Flux query counting elements fields, one
// row per outcome.
func dispatchStatsQuery(bucket, service string, window time.Duration) string {
	return fmt.Sprintf(`from(bucket: %s)
  |> range(start: -%ds)
  |> filter(fn: (r) => r._measurement == %s and r.service == %s and r._field == "elements")
  |> group(columns: ["outcome"])
  |> count()`,
		strconv.Quote(bucket),
		int64(window.Seconds()),
		strconv.Quote(DispatchMeasurement),
		strconv.Quote(service),
	)
}
