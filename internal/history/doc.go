// Package history persists a record of every engine run in SQLite.
//
// Each conversion that reaches the engine appends one row: run ID, kind and
// format, file count, output and manifest paths, the rendered macro call, exit
// code, and duration. The CLI history command reads the most recent rows so a
// failed batch can be traced back to its manifest.
package history
