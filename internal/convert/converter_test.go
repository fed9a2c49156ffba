package convert_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"fitcsv/internal/config"
	"fitcsv/internal/convert"
	"fitcsv/internal/history"
	"fitcsv/internal/logging"
	"fitcsv/internal/macro"
	"fitcsv/internal/services"
	"fitcsv/internal/services/rootengine"
	"fitcsv/internal/testsupport"
)

type stubExecutor struct {
	lines    []string
	stderr   string
	exitCode int
	commands []rootengine.Command
}

func (s *stubExecutor) Run(_ context.Context, cmd rootengine.Command, onStdout func(string)) (rootengine.Output, error) {
	s.commands = append(s.commands, cmd)
	var out strings.Builder
	for _, line := range s.lines {
		out.WriteString(line + "\n")
		if onStdout != nil {
			onStdout(line)
		}
	}
	return rootengine.Output{Stdout: out.String(), Stderr: s.stderr, ExitCode: s.exitCode}, nil
}

func (s *stubExecutor) lastCall() string {
	if len(s.commands) == 0 {
		return ""
	}
	args := s.commands[len(s.commands)-1].Args
	return args[len(args)-1]
}

func newConverter(t *testing.T, cfg *config.Config, exec rootengine.Executor, opts ...convert.Option) *convert.Converter {
	t.Helper()
	opts = append([]convert.Option{convert.WithExecutor(exec)}, opts...)
	conv, err := convert.New(cfg, logging.NewNop(), opts...)
	if err != nil {
		t.Fatalf("convert.New: %v", err)
	}
	return conv
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestNewRequiresRootSys(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutRootSys())
	_, err := convert.New(cfg, logging.NewNop())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "ROOTSYS") {
		t.Fatalf("expected ROOTSYS in error, got %q", err.Error())
	}
}

func TestRunSortedFitConversion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	inputs := testsupport.WriteInputs(t, dir, "bin_2.fit", "bin_10.fit", "bin_1.fit")
	exec := &stubExecutor{}
	store := testsupport.MustOpenHistory(t, cfg)
	conv := newConverter(t, cfg, exec, convert.WithRecorder(store))

	opts := macro.DefaultOptions(cfg)
	opts.Output = filepath.Join(dir, "fits")
	result, err := conv.Run(context.Background(), inputs, opts)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Engine == nil || result.Engine.ExitCode != 0 {
		t.Fatalf("expected engine result, got %#v", result.Engine)
	}
	if result.Plan.Output != filepath.Join(dir, "fits.csv") {
		t.Fatalf("expected .csv suffix appended, got %q", result.Plan.Output)
	}

	want := []string{inputs[2], inputs[0], inputs[1]}
	got := readLines(t, result.Plan.Invocation.Manifest)
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("manifest order = %v, want %v", got, want)
	}

	if len(exec.commands) != 1 {
		t.Fatalf("expected one engine call, got %d", len(exec.commands))
	}
	cmd := exec.commands[0]
	if cmd.Binary != cfg.EngineBinary() {
		t.Fatalf("unexpected binary %q", cmd.Binary)
	}
	if !strings.HasSuffix(exec.lastCall(), `"`+result.Plan.Output+`",0)`) {
		t.Fatalf("unexpected call %q", exec.lastCall())
	}

	runs, err := store.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one recorded run, got %d", len(runs))
	}
	if runs[0].RunID != result.Plan.ID || runs[0].FileCount != 3 || runs[0].Status != history.StatusSucceeded {
		t.Fatalf("unexpected recorded run %#v", runs[0])
	}
}

func TestRunUnsortedKeepsArgumentOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	inputs := testsupport.WriteInputs(t, dir, "bin_2.root", "bin_10.root", "bin_1.root")
	conv := newConverter(t, cfg, &stubExecutor{})

	opts := macro.DefaultOptions(cfg)
	opts.Sort = false
	opts.Output = filepath.Join(dir, "data.csv")
	result, err := conv.Run(context.Background(), inputs, opts)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	got := readLines(t, result.Plan.Invocation.Manifest)
	if strings.Join(got, "|") != strings.Join(inputs, "|") {
		t.Fatalf("manifest order = %v, want %v", got, inputs)
	}
}

func TestRunPreviewSkipsEngine(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	inputs := testsupport.WriteInputs(t, dir, "a_3.root", "a_1.root")
	exec := &stubExecutor{}
	conv := newConverter(t, cfg, exec)

	opts := macro.DefaultOptions(cfg)
	opts.Preview = true
	result, err := conv.Run(context.Background(), inputs, opts)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !result.Plan.Preview() || result.Engine != nil {
		t.Fatal("expected preview plan without engine result")
	}
	if len(exec.commands) != 0 {
		t.Fatalf("expected no engine call, got %d", len(exec.commands))
	}
	if result.Plan.Files[0] != inputs[1] {
		t.Fatalf("expected sorted preview, got %v", result.Plan.Files)
	}
	entries, err := os.ReadDir(cfg.ManifestDir())
	if err != nil {
		t.Fatalf("read manifest dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no manifest for preview, found %d files", len(entries))
	}
}

func TestRunInputErrorsStopBeforeEngine(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	mixed := testsupport.WriteInputs(t, dir, "a.fit", "b.root")
	exec := &stubExecutor{}
	conv := newConverter(t, cfg, exec)

	cases := []struct {
		name   string
		inputs []string
		marker error
	}{
		{"missing", []string{filepath.Join(dir, "nope.fit")}, services.ErrMissingInput},
		{"mixed", mixed, services.ErrMixedInputType},
		{"empty", nil, services.ErrMissingInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := conv.Run(context.Background(), tc.inputs, macro.DefaultOptions(cfg))
			if !errors.Is(err, tc.marker) {
				t.Fatalf("expected %v, got %v", tc.marker, err)
			}
			if services.ExitCode(err) != 1 {
				t.Fatalf("expected exit code 1, got %d", services.ExitCode(err))
			}
		})
	}
	if len(exec.commands) != 0 {
		t.Fatalf("expected no engine calls, got %d", len(exec.commands))
	}
}

func TestRunEngineFailurePropagatesExitCode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	inputs := testsupport.WriteInputs(t, dir, "bin_1.fit")
	exec := &stubExecutor{exitCode: 3, stderr: "Error: cannot open file"}
	store := testsupport.MustOpenHistory(t, cfg)
	conv := newConverter(t, cfg, exec, convert.WithRecorder(store))

	opts := macro.DefaultOptions(cfg)
	opts.Output = filepath.Join(dir, "fits.csv")
	_, err := conv.Run(context.Background(), inputs, opts)
	var engineErr *services.EngineExecutionError
	if !errors.As(err, &engineErr) {
		t.Fatalf("expected EngineExecutionError, got %v", err)
	}
	if engineErr.Stderr != "Error: cannot open file" {
		t.Fatalf("expected stderr captured, got %q", engineErr.Stderr)
	}
	if services.ExitCode(err) != 3 {
		t.Fatalf("expected exit code 3, got %d", services.ExitCode(err))
	}

	runs, err := store.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != history.StatusFailed || runs[0].ExitCode != 3 {
		t.Fatalf("expected failed run recorded, got %#v", runs)
	}
}

func TestRunVerboseEchoesEngineOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	inputs := testsupport.WriteInputs(t, dir, "bin_1.fit")
	exec := &stubExecutor{lines: []string{"Analyzing File: bin_1.fit"}}
	var stdout bytes.Buffer
	conv := newConverter(t, cfg, exec, convert.WithStdout(&stdout))

	opts := macro.DefaultOptions(cfg)
	opts.Output = filepath.Join(dir, "fits.csv")
	if _, err := conv.Run(context.Background(), inputs, opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected quiet run, got %q", stdout.String())
	}

	opts.Verbose = true
	if _, err := conv.Run(context.Background(), inputs, opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stdout.String() != "Analyzing File: bin_1.fit\n" {
		t.Fatalf("unexpected echoed output %q", stdout.String())
	}
}

func TestRunFailsFastWhenOutputLocked(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	inputs := testsupport.WriteInputs(t, dir, "bin_1.fit")
	output := filepath.Join(dir, "fits.csv")

	lockPath, err := convert.LockPath(cfg, output)
	if err != nil {
		t.Fatalf("LockPath: %v", err)
	}
	if filepath.Dir(lockPath) != cfg.ManifestDir() {
		t.Fatalf("expected lock under manifest dir, got %s", lockPath)
	}
	held := flock.New(lockPath)
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("pre-lock failed: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	exec := &stubExecutor{}
	conv := newConverter(t, cfg, exec)
	opts := macro.DefaultOptions(cfg)
	opts.Output = output
	_, err = conv.Run(context.Background(), inputs, opts)
	if !errors.Is(err, convert.ErrOutputLocked) {
		t.Fatalf("expected ErrOutputLocked, got %v", err)
	}
	if len(exec.commands) != 0 {
		t.Fatal("engine must not run while output is locked")
	}
}

func TestRunLeavesNoLockBesideOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	inputs := testsupport.WriteInputs(t, dir, "bin_1.fit")
	output := filepath.Join(dir, "out", "fits.csv")

	conv := newConverter(t, cfg, &stubExecutor{})
	opts := macro.DefaultOptions(cfg)
	opts.Output = output
	if _, err := conv.Run(context.Background(), inputs, opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if _, err := os.Stat(output + ".lock"); !os.IsNotExist(err) {
		t.Fatalf("expected no lock file next to output, stat err %v", err)
	}
	first, _ := convert.LockPath(cfg, output)
	second, _ := convert.LockPath(cfg, filepath.Join(dir, "out", "..", "out", "fits.csv"))
	if first != second {
		t.Fatalf("expected lock keyed by absolute output path, got %s and %s", first, second)
	}
}

func TestRunWithStubbedEngineScript(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedEngine(`printf '%s\n' "$@" > "$ROOTSYS/args.txt"
echo "Analyzing File: done"`))
	dir := t.TempDir()
	inputs := testsupport.WriteInputs(t, dir, "sample_1.root")
	var stdout bytes.Buffer
	conv, err := convert.New(cfg, logging.NewNop(), convert.WithStdout(&stdout))
	if err != nil {
		t.Fatalf("convert.New: %v", err)
	}

	opts := macro.DefaultOptions(cfg)
	opts.FSRoot = true
	opts.Verbose = true
	opts.Output = filepath.Join(dir, "data.csv")
	result, err := conv.Run(context.Background(), inputs, opts)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	args := readLines(t, filepath.Join(cfg.Engine.RootSys, "args.txt"))
	want := []string{"-n", "-l", "-b", "-q", cfg.Engine.FSRootLogon, result.Plan.Invocation.Call.Expression()}
	if strings.Join(args, "|") != strings.Join(want, "|") {
		t.Fatalf("engine argv = %q, want %q", args, want)
	}
	if !strings.Contains(stdout.String(), "Analyzing File: done") {
		t.Fatalf("expected verbose engine output, got %q", stdout.String())
	}
}
