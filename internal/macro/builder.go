package macro

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"fitcsv/internal/config"
	"fitcsv/internal/fileset"
	"fitcsv/internal/fileutil"
	"fitcsv/internal/services"
)

const csvSuffix = ".csv"

// Options carries the user's conversion choices.
type Options struct {
	AcceptanceCorrected bool
	Output              string
	MassBranch          string
	TreeName            string
	MesonIndex          string
	Verbose             bool
	Preview             bool
	Sort                bool
	SortIndex           int
	FSRoot              bool
}

// DefaultOptions seeds Options from the conversion section of the config.
func DefaultOptions(cfg *config.Config) Options {
	return Options{
		MassBranch: cfg.Conversion.MassBranch,
		TreeName:   cfg.Conversion.TreeName,
		MesonIndex: cfg.Conversion.MesonIndex,
		Sort:       cfg.Conversion.Sorted,
		SortIndex:  cfg.Conversion.SortIndex,
	}
}

// Invocation is everything the engine needs for one run.
type Invocation struct {
	// Preload is a script executed before the call, or empty.
	Preload  string
	Call     Call
	Manifest string
	Output   string
	Kind     fileset.Kind
	Format   fileset.Format
}

// Plan is the builder result. Invocation is nil for previews.
type Plan struct {
	ID         string
	Files      []string
	Kind       fileset.Kind
	Format     fileset.Format
	Output     string
	Invocation *Invocation
}

// Preview reports whether the plan stops before the engine.
func (p Plan) Preview() bool { return p.Invocation == nil }

// Builder turns resolved file sets into engine invocations.
type Builder struct {
	engine      config.Engine
	macroPath   func(string) string
	manifestDir string
	fitOutput   string
	dataOutput  string
	newID       func() string
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithFitOutput overrides the default output name for fit conversions.
func WithFitOutput(name string) BuilderOption {
	return func(b *Builder) {
		if strings.TrimSpace(name) != "" {
			b.fitOutput = name
		}
	}
}

// WithIDGenerator replaces the uuid-based run ID source (tests).
func WithIDGenerator(fn func() string) BuilderOption {
	return func(b *Builder) {
		if fn != nil {
			b.newID = fn
		}
	}
}

// NewBuilder constructs a Builder from config.
func NewBuilder(cfg *config.Config, opts ...BuilderOption) *Builder {
	b := &Builder{
		engine:      cfg.Engine,
		macroPath:   cfg.MacroPath,
		manifestDir: cfg.ManifestDir(),
		fitOutput:   cfg.Conversion.FitOutput,
		dataOutput:  cfg.Conversion.DataOutput,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OutputName applies kind defaults and the .csv suffix rule.
func (b *Builder) OutputName(kind fileset.Kind, requested string) string {
	name := strings.TrimSpace(requested)
	if name == "" {
		if kind == fileset.KindFit {
			name = b.fitOutput
		} else {
			name = b.dataOutput
		}
	}
	if !strings.HasSuffix(name, csvSuffix) {
		name += csvSuffix
	}
	return name
}

// Build produces a plan for set. The set is used in the order given; sorting
// happens before Build. With opts.Preview no manifest is written.
func (b *Builder) Build(set fileset.Set, opts Options) (Plan, error) {
	if set.Len() == 0 {
		return Plan{}, &services.MissingInputError{Reason: "no input files given"}
	}
	plan := Plan{
		Files:  append([]string(nil), set.Paths...),
		Kind:   set.Kind,
		Format: set.Format,
		Output: b.OutputName(set.Kind, opts.Output),
	}

	macroName, preload, err := b.selectMacro(set)
	if err != nil {
		return Plan{}, err
	}
	if opts.Preview {
		return plan, nil
	}

	plan.ID = b.newID()
	manifest, err := WriteManifest(b.manifestDir, plan.ID, plan.Files)
	if err != nil {
		return Plan{}, err
	}

	plan.Invocation = &Invocation{
		Preload:  preload,
		Call:     Call{Macro: b.macroPath(macroName), Args: arguments(set, opts, manifest, plan.Output)},
		Manifest: manifest,
		Output:   plan.Output,
		Kind:     set.Kind,
		Format:   set.Format,
	}
	return plan, nil
}

// selectMacro picks the macro file and preload script for the set.
func (b *Builder) selectMacro(set fileset.Set) (string, string, error) {
	switch {
	case set.Kind == fileset.KindFit:
		return b.engine.FitMacro, b.macroPath(b.engine.AmpToolsLoader), nil
	case set.Kind == fileset.KindRoot && set.Format == fileset.FormatPlain:
		return b.engine.BinMacro, "", nil
	case set.Kind == fileset.KindRoot && set.Format == fileset.FormatFSRoot:
		if strings.Contains(b.engine.FSRootLogon, "${") {
			return "", "", &services.ConfigurationError{
				Setting: "FSROOT",
				Detail:  fmt.Sprintf("logon script %q is unresolved; export FSROOT or set engine.fsroot_logon", b.engine.FSRootLogon),
			}
		}
		return b.engine.FSRootMacro, b.macroPath(b.engine.FSRootLogon), nil
	default:
		return "", "", &services.InvalidKindError{Kind: string(set.Kind), Format: string(set.Format)}
	}
}

func arguments(set fileset.Set, opts Options, manifest, output string) []Arg {
	switch {
	case set.Kind == fileset.KindFit:
		return []Arg{String(manifest), String(output), Bool(opts.AcceptanceCorrected)}
	case set.Format == fileset.FormatFSRoot:
		return []Arg{String(manifest), String(output), String(opts.TreeName), String(opts.MesonIndex)}
	default:
		return []Arg{String(manifest), String(output), String(opts.MassBranch)}
	}
}

// WriteManifest writes paths, one per line, to dir/fitcsv-<id>.txt. The file
// is left in place after the run.
func WriteManifest(dir, id string, paths []string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, fmt.Sprintf("fitcsv-%s.txt", id))
	var b strings.Builder
	for _, p := range paths {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	if err := fileutil.WriteFileAtomic(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}
