package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"fitcsv/internal/fileutil"
	"fitcsv/internal/services"
)

//go:embed sample_config.toml
var sampleConfig string

// Engine describes how the external ROOT engine and its macros are located.
type Engine struct {
	Binary         string `toml:"binary"`
	RootSys        string `toml:"rootsys"`
	MacroDir       string `toml:"macro_dir"`
	AmpToolsLoader string `toml:"amptools_loader"`
	FSRootLogon    string `toml:"fsroot_logon"`
	FitMacro       string `toml:"fit_macro"`
	BinMacro       string `toml:"bin_macro"`
	FSRootMacro    string `toml:"fsroot_macro"`
	// TimeoutSeconds bounds a single engine run. Zero waits indefinitely.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Conversion holds defaults for the convert command flags.
type Conversion struct {
	MassBranch     string `toml:"mass_branch"`
	TreeName       string `toml:"tree_name"`
	MesonIndex     string `toml:"meson_index"`
	Sorted         bool   `toml:"sorted"`
	SortIndex      int    `toml:"sort_index"`
	ManifestDir    string `toml:"manifest_dir"`
	FitOutput      string `toml:"fit_output"`
	DataOutput     string `toml:"data_output"`
	BatchFitOutput string `toml:"batch_fit_output"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// History controls the sqlite run history.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Config encapsulates all configuration values for fitcsv.
//
// Configuration sections by subsystem:
//   - Engine: ROOT binary, ROOTSYS, and macro locations
//   - Conversion: flag defaults (branch names, sorting, output names)
//   - Logging: log format and level
//   - History: run history database
type Config struct {
	Engine     Engine     `toml:"engine"`
	Conversion Conversion `toml:"conversion"`
	Logging    Logging    `toml:"logging"`
	History    History    `toml:"history"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/fitcsv/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("fitcsv.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// RequireEngine reports a ConfigurationError when the ROOT environment is not
// available. Conversions call it before touching any input file.
func (c *Config) RequireEngine() error {
	if strings.TrimSpace(c.Engine.RootSys) == "" {
		return &services.ConfigurationError{
			Setting: "ROOTSYS",
			Detail:  "path is not loaded; source your ROOT setup script (e.g. setup_gluex.sh) or set engine.rootsys",
		}
	}
	if strings.TrimSpace(c.Engine.Binary) == "" {
		return &services.ConfigurationError{Setting: "engine.binary", Detail: "must be set"}
	}
	return nil
}

// EngineBinary returns the ROOT executable. A bare binary name is resolved
// under $ROOTSYS/bin when present there, otherwise it is left for PATH lookup.
func (c *Config) EngineBinary() string {
	binary := strings.TrimSpace(c.Engine.Binary)
	if binary == "" || strings.ContainsRune(binary, filepath.Separator) || c.Engine.RootSys == "" {
		return binary
	}
	candidate := filepath.Join(c.Engine.RootSys, "bin", binary)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate
	}
	return binary
}

// MacroPath resolves a macro or script name against engine.macro_dir. Absolute
// names are returned unchanged.
func (c *Config) MacroPath(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Engine.MacroDir, name)
}

// ManifestDir returns the directory manifests are written to.
func (c *Config) ManifestDir() string {
	if strings.TrimSpace(c.Conversion.ManifestDir) == "" {
		return os.TempDir()
	}
	return c.Conversion.ManifestDir
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// expandEnv substitutes $VAR references that are set, leaving unset ones intact
// so validation can point at them.
func expandEnv(value string) string {
	return os.Expand(value, func(name string) string {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			return v
		}
		return "${" + name + "}"
	})
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if err := fileutil.WriteFileAtomic(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() (string, error) {
	var b strings.Builder
	encoder := toml.NewEncoder(&b)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return b.String(), nil
}
