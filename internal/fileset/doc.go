// Package fileset turns raw path arguments into a validated, ordered set of
// conversion inputs.
//
// Resolve expands a single manifest argument into its listed paths, checks
// every path exists, makes it absolute, and derives one kind (fit or root)
// for the whole set. Sort orders the set by a numeric key pulled from each
// path so CSV rows line up with run or bin numbers.
package fileset
