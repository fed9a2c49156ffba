// Package main hosts the fitcsv CLI entrypoint and command graph.
//
// The Cobra command tree maps terminal invocations onto the internal
// packages: convert and batch drive the ROOT engine through
// internal/convert, check compares finished CSV files, status runs the
// preflight checks, and history lists recorded engine runs. Configuration
// resolution and logger construction live in commandContext so subcommands
// only deal with flags and output.
package main
