// Package convert orchestrates a full conversion run.
//
// A Converter resolves the user's inputs into a file set, optionally sorts it
// by the numeric key in each path, hands the set to the macro builder, and
// then runs the ROOT engine with the resulting invocation. While the engine
// writes the CSV an advisory lock is held on "<output>.lock" so two fitcsv
// processes never write the same file. Every engine run is recorded in the
// run history when one is configured.
//
// Batch chains the data conversion and the fit conversion the way the
// analysis tutorial does, reports both outcomes independently, and finishes
// with a row alignment check of the two CSV files.
package convert
