package rootengine

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, command Command, onStdout func(string)) (Output, error) {
	cmd := exec.CommandContext(ctx, command.Binary, command.Args...) //nolint:gosec
	if len(command.Env) > 0 {
		cmd.Env = command.Env
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Output{}, fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return Output{}, fmt.Errorf("start command: %w", err)
	}

	// stdout must be fully drained before Wait closes the pipe.
	var lines strings.Builder
	scanErr := drain(stdout, &lines, onStdout)
	if scanErr != nil {
		_ = cmd.Process.Kill()
	}

	waitErr := cmd.Wait()
	out := Output{Stdout: lines.String(), Stderr: stderr.String()}
	if scanErr != nil {
		return out, fmt.Errorf("scan output: %w", scanErr)
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) && ctx.Err() == nil {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, fmt.Errorf("wait command: %w", waitErr)
	}
	return out, nil
}

func drain(r io.Reader, sink *strings.Builder, forward func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		sink.WriteString(line)
		sink.WriteByte('\n')
		if forward != nil {
			forward(line)
		}
	}
	return scanner.Err()
}
