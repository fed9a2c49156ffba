package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeEngine(); err != nil {
		return err
	}
	if err := c.normalizeConversion(); err != nil {
		return err
	}
	c.normalizeLogging()
	return c.normalizeHistory()
}

func (c *Config) normalizeEngine() error {
	var err error
	c.Engine.Binary = strings.TrimSpace(c.Engine.Binary)
	if c.Engine.Binary == "" {
		c.Engine.Binary = defaultEngineBinary
	}
	c.Engine.RootSys = strings.TrimSpace(c.Engine.RootSys)
	if c.Engine.RootSys == "" {
		if value, ok := os.LookupEnv("ROOTSYS"); ok {
			c.Engine.RootSys = strings.TrimSpace(value)
		}
	}
	if c.Engine.RootSys != "" {
		if c.Engine.RootSys, err = expandPath(c.Engine.RootSys); err != nil {
			return fmt.Errorf("engine.rootsys: %w", err)
		}
	}
	if strings.TrimSpace(c.Engine.MacroDir) == "" {
		c.Engine.MacroDir = defaultMacroDir
	}
	if c.Engine.MacroDir, err = expandPath(expandEnv(c.Engine.MacroDir)); err != nil {
		return fmt.Errorf("engine.macro_dir: %w", err)
	}
	c.Engine.AmpToolsLoader = normalizeScript(c.Engine.AmpToolsLoader, defaultAmpToolsLoader)
	c.Engine.FSRootLogon = normalizeScript(c.Engine.FSRootLogon, defaultFSRootLogon)
	c.Engine.FitMacro = defaultString(c.Engine.FitMacro, defaultFitMacro)
	c.Engine.BinMacro = defaultString(c.Engine.BinMacro, defaultBinMacro)
	c.Engine.FSRootMacro = defaultString(c.Engine.FSRootMacro, defaultFSRootMacro)
	return nil
}

// normalizeScript expands environment references and leaves bare file names
// alone so ROOT can resolve them through its macro path.
func normalizeScript(value, fallback string) string {
	value = expandEnv(defaultString(value, fallback))
	if strings.ContainsRune(value, filepath.Separator) && !strings.Contains(value, "${") {
		if expanded, err := expandPath(value); err == nil {
			return expanded
		}
	}
	return value
}

func (c *Config) normalizeConversion() error {
	c.Conversion.MassBranch = defaultString(c.Conversion.MassBranch, defaultMassBranch)
	c.Conversion.TreeName = defaultString(c.Conversion.TreeName, defaultTreeName)
	c.Conversion.MesonIndex = strings.ReplaceAll(defaultString(c.Conversion.MesonIndex, defaultMesonIndex), " ", "")
	c.Conversion.FitOutput = defaultString(c.Conversion.FitOutput, defaultFitOutput)
	c.Conversion.DataOutput = defaultString(c.Conversion.DataOutput, defaultDataOutput)
	c.Conversion.BatchFitOutput = defaultString(c.Conversion.BatchFitOutput, defaultBatchFitOutput)
	if strings.TrimSpace(c.Conversion.ManifestDir) != "" {
		dir, err := expandPath(c.Conversion.ManifestDir)
		if err != nil {
			return fmt.Errorf("conversion.manifest_dir: %w", err)
		}
		c.Conversion.ManifestDir = dir
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	path, err := expandPath(c.History.Path)
	if err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	c.History.Path = path
	return nil
}

func defaultString(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
