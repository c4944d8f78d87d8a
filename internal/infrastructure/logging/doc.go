// Package logging provides structured logging for fcsctl and the FCS
// client libraries.
//
// It wraps log/slog. Library packages (setup, client, status, devcache,
// history) only declare the small Logger interface they need, which
// *Logger satisfies:
//
//	logger := logging.New(cfg.Logging, version)
//	buf.SetLogger(logger.With("component", "setup"))
//
// Configuration:
//
//	logging:
//	  level: "warn"      # debug, info, warn, error
//	  format: "text"     # json, text
//	  output: "stderr"   # stdout, stderr
//
// Never log MQTT passwords, Redis passwords or InfluxDB tokens.
package logging
