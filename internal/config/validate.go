package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var mesonIndexPattern = regexp.MustCompile(`^\d+(,\d+)*$`)

// Validate ensures the configuration is usable. ROOTSYS is deliberately not
// required here so that config utilities work without a ROOT install; see
// RequireEngine.
func (c *Config) Validate() error {
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateConversion(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateEngine() error {
	if c.Engine.TimeoutSeconds < 0 {
		return errors.New("engine.timeout_seconds must not be negative")
	}
	for key, value := range map[string]string{
		"engine.fit_macro":    c.Engine.FitMacro,
		"engine.bin_macro":    c.Engine.BinMacro,
		"engine.fsroot_macro": c.Engine.FSRootMacro,
	} {
		if !strings.HasSuffix(value, ".C") && !strings.HasSuffix(value, ".cc") && !strings.HasSuffix(value, ".cxx") {
			return fmt.Errorf("%s must name a ROOT macro file (.C, .cc, .cxx), got %q", key, value)
		}
	}
	return nil
}

func (c *Config) validateConversion() error {
	if !mesonIndexPattern.MatchString(c.Conversion.MesonIndex) {
		return fmt.Errorf("conversion.meson_index must be a comma-separated list of integers, got %q", c.Conversion.MesonIndex)
	}
	if strings.ContainsAny(c.Conversion.MassBranch, "\" \t") {
		return fmt.Errorf("conversion.mass_branch must be a single branch name, got %q", c.Conversion.MassBranch)
	}
	if strings.ContainsAny(c.Conversion.TreeName, "\" \t") {
		return fmt.Errorf("conversion.tree_name must be a single tree name, got %q", c.Conversion.TreeName)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
