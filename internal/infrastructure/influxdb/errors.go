package influxdb

import "errors"

// Errors returned by Client. Check them with errors.Is.
var (
	ErrNotConnected     = errors.New("influxdb: not connected")
	ErrConnectionFailed = errors.New("influxdb: connection failed")
	ErrQueryFailed      = errors.New("influxdb: query failed")
	ErrDisabled         = errors.New("influxdb: disabled in configuration")
)
