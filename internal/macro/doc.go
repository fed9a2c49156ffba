// Package macro builds engine invocations for a resolved file set.
//
// A Call is the structured form of a ROOT macro call: a macro file plus an
// ordered list of typed arguments. It is only rendered to ROOT's textual call
// syntax by Expression, at the process boundary. Builder chooses the macro
// and preload script for the set's kind, applies output-name defaults, and
// writes the manifest file the macro reads its inputs from.
package macro
