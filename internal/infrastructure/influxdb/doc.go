// Package influxdb records setup dispatch metrics in InfluxDB v2.
//
// Every App/Setup call becomes one point of the fcs_dispatch measurement:
//
//	fcs_dispatch,service=fcs1,outcome=success elements=3i,duration_ms=412i
//
// Writes are non-blocking and batched by the official client; asynchronous
// write failures reach the callback set with SetOnError. DispatchStats reads
// the counts back with a Flux query for `fcsctl history --stats`.
//
//	c, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // metrics are optional
//	}
//	defer c.Close()
//	c.WriteDispatch(influxdb.Dispatch{Service: "fcs1", Outcome: "success", Elements: 3})
package influxdb
