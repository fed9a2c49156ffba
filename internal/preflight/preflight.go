package preflight

import (
	"path/filepath"

	"fitcsv/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Optional checks only matter for some conversions and do not fail status.
	Optional bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckRootSys(cfg.Engine.RootSys),
		CheckBinary("ROOT engine", cfg.EngineBinary()),
	}

	macros := []struct {
		name     string
		file     string
		optional bool
	}{
		{"Fit macro", cfg.Engine.FitMacro, false},
		{"AmpTools loader", cfg.Engine.AmpToolsLoader, false},
		{"Bin macro", cfg.Engine.BinMacro, false},
		{"FSRoot macro", cfg.Engine.FSRootMacro, true},
		{"FSRoot logon", cfg.Engine.FSRootLogon, true},
	}
	for _, m := range macros {
		result := CheckReadableFile(m.name, cfg.MacroPath(m.file))
		result.Optional = m.optional
		results = append(results, result)
	}

	results = append(results, CheckDirectoryAccess("Manifest directory", cfg.ManifestDir()))

	if cfg.History.Enabled {
		results = append(results, CheckDirectoryAccess("History directory", filepath.Dir(cfg.History.Path)))
	}
	return results
}

// Failed reports whether any required check did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}
