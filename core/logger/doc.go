// Package logger builds the application's zap logger.
//
// Every API request is tagged with a ray id by the rayid middleware; the
// WithRayID helper pulls it off the Fiber context and attaches it to the log
// entry so all lines belonging to one request correlate.
//
// Encoding and minimum level come from Config:
//   - Level: debug, info, warn, error
//   - Format: json (default) or console for local development
//
// Usage:
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("listening", zap.String("port", cfg.Server.Port))
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("handler failed", zap.Error(err))
package logger
