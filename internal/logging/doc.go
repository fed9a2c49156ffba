// Package logging assembles structured slog loggers and formatting helpers used
// across fitcsv.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with run IDs and stages. Console output is colourised only when the
// destination is a terminal. A no-op logger is provided for tests and wiring
// code that cannot fail.
package logging
