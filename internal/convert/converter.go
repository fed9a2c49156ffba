package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"fitcsv/internal/config"
	"fitcsv/internal/fileset"
	"fitcsv/internal/history"
	"fitcsv/internal/logging"
	"fitcsv/internal/macro"
	"fitcsv/internal/services"
	"fitcsv/internal/services/rootengine"
)

// Stage names used in logs and wrapped errors.
const (
	StageResolve = "resolve"
	StageSort    = "sort"
	StageBuild   = "build"
	StageEngine  = "engine"
)

// ErrOutputLocked reports that another process holds the output lock.
var ErrOutputLocked = errors.New("output is locked by another fitcsv run")

// LockPath returns the lock file guarding output. Locks live in the manifest
// directory, named by a hash of the absolute output path, so nothing extra
// lands next to the CSV.
func LockPath(cfg *config.Config, output string) (string, error) {
	abs, err := filepath.Abs(output)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}
	dir := cfg.ManifestDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create lock dir: %w", err)
	}
	key := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+abs))
	return filepath.Join(dir, "fitcsv-"+key.String()+".lock"), nil
}

// Recorder persists finished engine runs.
type Recorder interface {
	Record(ctx context.Context, run history.Run) (int64, error)
}

// Result describes one conversion.
type Result struct {
	Plan   macro.Plan
	Engine *rootengine.Result
}

// Converter wires the resolver, sorter, builder, and engine together.
type Converter struct {
	cfg         *config.Config
	logger      *slog.Logger
	builder     *macro.Builder
	engine      *rootengine.Client
	recorder    Recorder
	stdout      io.Writer
	builderOpts []macro.BuilderOption
	engineOpts  []rootengine.Option
}

// Option configures a Converter.
type Option func(*Converter)

// WithExecutor replaces the process executor used by the engine client.
func WithExecutor(exec rootengine.Executor) Option {
	return func(c *Converter) {
		c.engineOpts = append(c.engineOpts, rootengine.WithExecutor(exec))
	}
}

// WithBuilderOptions forwards options to the macro builder.
func WithBuilderOptions(opts ...macro.BuilderOption) Option {
	return func(c *Converter) {
		c.builderOpts = append(c.builderOpts, opts...)
	}
}

// WithRecorder records every engine run. A nil recorder disables history.
func WithRecorder(recorder Recorder) Option {
	return func(c *Converter) {
		c.recorder = recorder
	}
}

// WithStdout sets where engine output is echoed in verbose mode.
func WithStdout(w io.Writer) Option {
	return func(c *Converter) {
		if w != nil {
			c.stdout = w
		}
	}
}

// New validates the engine environment and constructs a Converter. A missing
// ROOTSYS fails here, before any input is looked at.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Converter, error) {
	if cfg == nil {
		return nil, errors.New("convert: config required")
	}
	if err := cfg.RequireEngine(); err != nil {
		return nil, err
	}
	c := &Converter{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "convert"),
		stdout: io.Discard,
	}
	for _, opt := range opts {
		opt(c)
	}

	engineOpts := []rootengine.Option{rootengine.WithRootSys(cfg.Engine.RootSys)}
	if cfg.Engine.TimeoutSeconds > 0 {
		engineOpts = append(engineOpts, rootengine.WithTimeout(time.Duration(cfg.Engine.TimeoutSeconds)*time.Second))
	}
	engine, err := rootengine.New(cfg.EngineBinary(), append(engineOpts, c.engineOpts...)...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "engine", "create client", err)
	}
	c.engine = engine
	c.builder = macro.NewBuilder(cfg, c.builderOpts...)
	return c, nil
}

// Plan resolves, sorts, and builds without running the engine. With
// opts.Preview no manifest is written.
func (c *Converter) Plan(ctx context.Context, inputs []string, opts macro.Options) (macro.Plan, error) {
	return c.plan(ctx, inputs, opts, "")
}

// plan rejects a resolved set whose kind differs from want, when want is set.
func (c *Converter) plan(ctx context.Context, inputs []string, opts macro.Options, want fileset.Kind) (macro.Plan, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithContext(services.WithStage(ctx, StageResolve), c.logger)
	set, err := fileset.Resolve(inputs, opts.FSRoot)
	if err != nil {
		return macro.Plan{}, err
	}
	if want != "" && set.Kind != want {
		return macro.Plan{}, services.Wrap(services.ErrInvalidKind, StageResolve, "check kind",
			fmt.Sprintf("expected %s inputs, got %s", want, set.Kind), nil)
	}
	logger.Debug("resolved inputs",
		logging.Int("files", set.Len()),
		logging.String("kind", string(set.Kind)),
		logging.String("format", string(set.Format)),
		logging.Strings("paths", set.Paths),
	)

	if opts.Sort {
		set, err = set.Sorted(opts.SortIndex)
		if err != nil {
			return macro.Plan{}, err
		}
		logging.WithContext(services.WithStage(ctx, StageSort), c.logger).Debug("sorted inputs",
			logging.Int("sort_index", opts.SortIndex),
		)
	}

	return c.builder.Build(set, opts)
}

// Run performs one conversion. Preview plans return without invoking the
// engine. Engine failures come back as *services.EngineExecutionError.
func (c *Converter) Run(ctx context.Context, inputs []string, opts macro.Options) (Result, error) {
	return c.run(ctx, inputs, opts, "")
}

func (c *Converter) run(ctx context.Context, inputs []string, opts macro.Options, want fileset.Kind) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	plan, err := c.plan(ctx, inputs, opts, want)
	if err != nil {
		return Result{}, err
	}
	result := Result{Plan: plan}
	if plan.Preview() {
		return result, nil
	}

	ctx = services.WithStage(services.WithRunID(ctx, plan.ID), StageEngine)
	logger := logging.WithContext(ctx, c.logger)

	lockPath, err := LockPath(c.cfg, plan.Output)
	if err != nil {
		return result, err
	}
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return result, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return result, fmt.Errorf("%w: %s", ErrOutputLocked, plan.Output)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	logger.Info("running engine",
		logging.String("kind", string(plan.Kind)),
		logging.Int("files", len(plan.Files)),
		logging.String("output", plan.Output),
		logging.String("manifest", plan.Invocation.Manifest),
		logging.Bool("sorted", opts.Sort),
		logging.Bool("acceptance_corrected", opts.AcceptanceCorrected),
	)
	logger.Debug("engine call", logging.String("call", plan.Invocation.Call.Expression()))

	var onStdout func(string)
	if opts.Verbose {
		onStdout = func(line string) { fmt.Fprintln(c.stdout, line) }
	}
	started := time.Now()
	engineResult, runErr := c.engine.Run(ctx, *plan.Invocation, onStdout)
	result.Engine = &engineResult

	if runErr != nil {
		logger.Error("engine failed",
			logging.Int("exit_code", engineResult.ExitCode),
			logging.Duration("duration", engineResult.Duration),
			logging.Error(runErr),
		)
	} else {
		logger.Info("engine finished",
			logging.String("output", plan.Output),
			logging.Duration("duration", engineResult.Duration),
		)
	}
	c.record(ctx, logger, plan, started, engineResult, runErr)
	return result, runErr
}

func (c *Converter) record(ctx context.Context, logger *slog.Logger, plan macro.Plan, started time.Time, res rootengine.Result, runErr error) {
	if c.recorder == nil {
		return
	}
	run := history.Run{
		RunID:     plan.ID,
		StartedAt: started,
		Kind:      string(plan.Kind),
		Format:    string(plan.Format),
		FileCount: len(plan.Files),
		Output:    plan.Output,
		Manifest:  plan.Invocation.Manifest,
		Call:      plan.Invocation.Call.Expression(),
		ExitCode:  res.ExitCode,
		Duration:  res.Duration,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if _, err := c.recorder.Record(ctx, run); err != nil {
		logger.Warn("failed to record run history", logging.Error(err))
	}
}
