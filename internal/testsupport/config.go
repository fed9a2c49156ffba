package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"fitcsv/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// ROOTSYS points at a temp directory so RequireEngine passes.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Engine.RootSys = filepath.Join(base, "root")
	cfgVal.Engine.MacroDir = filepath.Join(base, "scripts")
	cfgVal.Engine.FSRootLogon = filepath.Join(base, "fsroot", "rootlogon.FSROOT.C")
	cfgVal.Conversion.ManifestDir = filepath.Join(base, "manifests")
	cfgVal.History.Path = filepath.Join(base, "history.db")

	for _, dir := range []string{cfgVal.Engine.RootSys, cfgVal.Engine.MacroDir, cfgVal.Conversion.ManifestDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithoutRootSys clears the ROOT environment on the test config.
func WithoutRootSys() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Engine.RootSys = ""
	}
}

// WithHistoryDisabled turns off the sqlite run history.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithStubbedEngine writes a shell script as $ROOTSYS/bin/root. The script
// body runs with the engine arguments as "$@".
func WithStubbedEngine(body string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.cfg.Engine.RootSys, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\n" + body + "\n")
		if err := os.WriteFile(filepath.Join(binDir, b.cfg.Engine.Binary), script, 0o755); err != nil {
			b.t.Fatalf("write engine stub: %v", err)
		}
	}
}
