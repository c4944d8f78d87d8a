package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// DispatchMeasurement is the measurement holding one point per dispatch.
const DispatchMeasurement = "fcs_dispatch"

// Dispatch describes one App/Setup call.
type Dispatch struct {
	Service  string
	Outcome  string
	Elements int
	Duration time.Duration
	// At defaults to now.
	At time.Time
}

// WriteDispatch queues a point for d. It never blocks and is a no-op on a
// closed client.
func (c *Client) WriteDispatch(d Dispatch) {
	if !c.IsConnected() {
		return
	}
	c.writer.WritePoint(dispatchPoint(d))
}

func dispatchPoint(d Dispatch) *write.Point {
	at := d.At
	if at.IsZero() {
		at = time.Now()
	}
	return write.NewPoint(
		DispatchMeasurement,
		map[string]string{
			"service": d.Service,
			"outcome": d.Outcome,
		},
		map[string]any{
			"elements":    d.Elements,
			"duration_ms": d.Duration.Milliseconds(),
		},
		at,
	)
}
