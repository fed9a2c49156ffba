// Package rootengine wraps the ROOT batch engine used to run the extraction
// macros.
//
// Client.Run launches one non-interactive batch session for an invocation and
// blocks until it exits. Standard output can be forwarded line by line through
// a callback while the engine runs; both streams are buffered into the
// returned Result. A non-zero exit becomes an EngineExecutionError carrying
// the captured stderr. Command execution sits behind the Executor interface so
// tests can substitute a stub.
package rootengine
