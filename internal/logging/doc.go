// Package logging assembles structured slog loggers and formatting helpers used
// across pqueue.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so CLI invocations can tag log
// lines with a correlation ID. The package also provides a no-op logger for
// tests and for engines constructed without a logger.
package logging
