package rootengine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"fitcsv/internal/macro"
	"fitcsv/internal/services"
)

// BatchFlags select a non-interactive, batch, quiet ROOT session without
// logon scripts or the splash screen.
var BatchFlags = []string{"-n", "-l", "-b", "-q"}

// Result captures the outcome of one engine run.
type Result struct {
	Args     []string
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, cmd Command, onStdout func(string)) (Output, error)
}

// Command is one process launch.
type Command struct {
	Binary string
	Args   []string
	Env    []string
}

// Output is what an Executor collected from the process.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithTimeout bounds each run. Zero or negative waits indefinitely.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRootSys exports ROOTSYS to the engine process.
func WithRootSys(path string) Option {
	return func(c *Client) {
		c.rootsys = strings.TrimSpace(path)
	}
}

// Client wraps ROOT batch interactions.
type Client struct {
	binary  string
	rootsys string
	timeout time.Duration
	exec    Executor
}

// New constructs a ROOT engine client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("root binary required")
	}
	client := &Client{
		binary: binary,
		exec:   commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the configured executable.
func (c *Client) Binary() string { return c.binary }

// Args returns the argument vector for inv, excluding the binary.
func Args(inv macro.Invocation) []string {
	args := append([]string(nil), BatchFlags...)
	if preload := strings.TrimSpace(inv.Preload); preload != "" {
		args = append(args, preload)
	}
	return append(args, inv.Call.Expression())
}

// Run executes inv and waits for the engine to exit. onStdout, when non-nil,
// receives each stdout line as it is produced.
func (c *Client) Run(ctx context.Context, inv macro.Invocation, onStdout func(string)) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := Command{Binary: c.binary, Args: Args(inv), Env: c.environ()}
	start := time.Now()
	out, err := c.exec.Run(ctx, cmd, onStdout)
	result := Result{
		Args:     cmd.Args,
		Stdout:   out.Stdout,
		Stderr:   out.Stderr,
		ExitCode: out.ExitCode,
		Duration: time.Since(start),
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		result.ExitCode = -1
		return result, &services.EngineExecutionError{ExitCode: -1, Stderr: out.Stderr, Err: err}
	}
	if out.ExitCode != 0 {
		return result, &services.EngineExecutionError{ExitCode: out.ExitCode, Stderr: out.Stderr}
	}
	return result, nil
}

func (c *Client) environ() []string {
	env := os.Environ()
	if c.rootsys == "" {
		return env
	}
	filtered := env[:0:0]
	for _, kv := range env {
		if strings.HasPrefix(kv, "ROOTSYS=") {
			continue
		}
		filtered = append(filtered, kv)
	}
	return append(filtered, "ROOTSYS="+c.rootsys)
}
