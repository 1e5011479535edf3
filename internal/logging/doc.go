// Package logging assembles structured slog loggers and formatting helpers used
// across cinephile.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so query handlers can tag log
// lines with operation names and correlation IDs. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
//
// Logs go to stderr by default so command output on stdout stays clean.
package logging
