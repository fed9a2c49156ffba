package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration   = errors.New("configuration error")
	ErrMissingInput    = errors.New("missing input")
	ErrMixedInputType  = errors.New("mixed input types")
	ErrInvalidKind     = errors.New("invalid kind")
	ErrSortIndex       = errors.New("sort index out of range")
	ErrEngineExecution = errors.New("engine execution failed")
)

// ConfigurationError reports an unusable environment or configuration value.
type ConfigurationError struct {
	Setting string
	Detail  string
}

func (e *ConfigurationError) Error() string {
	if e.Setting == "" {
		return fmt.Sprintf("%s: %s", ErrConfiguration, e.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Setting, e.Detail)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// MissingInputError identifies the first referenced input that does not exist.
type MissingInputError struct {
	Path   string
	Reason string
}

func (e *MissingInputError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "does not exist"
	}
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrMissingInput, reason)
	}
	return fmt.Sprintf("%s: file %s %s", ErrMissingInput, e.Path, reason)
}

func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }

// MixedInputTypeError reports a file set whose extensions do not agree on a
// single kind.
type MixedInputTypeError struct {
	Extensions []string
}

func (e *MixedInputTypeError) Error() string {
	return fmt.Sprintf("%s: inputs must be all .fit or all .root files (found %s)", ErrMixedInputType, strings.Join(e.Extensions, ", "))
}

func (e *MixedInputTypeError) Is(target error) bool { return target == ErrMixedInputType }

// InvalidKindError flags a kind/format combination no macro exists for.
type InvalidKindError struct {
	Kind   string
	Format string
}

func (e *InvalidKindError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("%s: %q", ErrInvalidKind, e.Kind)
	}
	return fmt.Sprintf("%s: %q (format %q)", ErrInvalidKind, e.Kind, e.Format)
}

func (e *InvalidKindError) Is(target error) bool { return target == ErrInvalidKind }

// SortIndexError reports a sort position with no matching numeric substring.
type SortIndexError struct {
	Path    string
	Index   int
	Matches int
}

func (e *SortIndexError) Error() string {
	return fmt.Sprintf("%s: index %d requested but %s has %d numeric substrings", ErrSortIndex, e.Index, e.Path, e.Matches)
}

func (e *SortIndexError) Is(target error) bool { return target == ErrSortIndex }

// EngineExecutionError carries the exit status and captured stderr of a
// failed engine run.
type EngineExecutionError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *EngineExecutionError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", ErrEngineExecution, e.ExitCode)
	if e.Err != nil && e.ExitCode < 0 {
		msg = fmt.Sprintf("%s: %v", ErrEngineExecution, e.Err)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += "\n" + stderr
	}
	return msg
}

func (e *EngineExecutionError) Is(target error) bool { return target == ErrEngineExecution }

func (e *EngineExecutionError) Unwrap() error { return e.Err }

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrConfiguration
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps a run error to the process exit status. Engine failures
// propagate the engine's own status; everything else exits 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var engineErr *EngineExecutionError
	if errors.As(err, &engineErr) && engineErr.ExitCode > 0 {
		return engineErr.ExitCode
	}
	return 1
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "conversion failure"
	}
	return strings.Join(parts, ": ")
}
