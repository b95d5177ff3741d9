// Package logging assembles structured slog loggers and formatting helpers used
// across starreview.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code automatically
// tags log lines with video IDs, stages, and run IDs. The package also provides
// a no-op logger for tests and wiring code that cannot fail.
package logging
