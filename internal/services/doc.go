// Package services defines shared utilities consumed by the conversion
// pipeline and its external engine client.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging.
//   - The error taxonomy (configuration, missing input, mixed input types,
//     invalid kind, sort index, engine execution) as sentinel markers plus
//     typed errors, and the Wrap helper that attaches stage context.
//   - ExitCode, which maps a run error to the process exit status.
//
// The rootengine subpackage wraps the external ROOT engine.
package services
