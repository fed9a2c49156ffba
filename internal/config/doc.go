// Package config loads, normalizes, and validates fitcsv configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ROOTSYS and FSROOT. The Config type is the single object handed to the
// conversion pipeline: callers never read the process environment themselves.
//
// RequireEngine is the gate conversions pass before any file is touched; it
// reports a ConfigurationError when the ROOT environment is not loaded.
package config
