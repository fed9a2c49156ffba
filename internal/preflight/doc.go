// Package preflight provides readiness checks for the ROOT environment and
// the filesystem paths a conversion depends on.
//
// The CLI "fitcsv status" command runs RunAll and renders the results as a
// table. Checks never modify anything; a directory that does not exist yet
// passes when it could be created.
package preflight
