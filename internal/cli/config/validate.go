package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fp-wemove/ingrid-iplug-dsc/internal/cli/output"
	intconfig "github.com/fp-wemove/ingrid-iplug-dsc/internal/config"
)

var (
	logLevels  = []string{"debug", "info", "warn", "warning", "error"}
	logFormats = []string{"text", "json"}
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := intconfig.ValidateTarget(c.Target); err != nil {
		return fmt.Errorf("invalid target configuration: %w", err)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if strings.TrimSpace(c.Records.RecordSQL) == "" {
		return fmt.Errorf("records.record_sql is required")
	}
	if c.Index.Script != "" && strings.TrimSpace(c.Index.SQL) != "" {
		return fmt.Errorf("index.script and index.sql are mutually exclusive")
	}
	if !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log_level %q (expected one of %s)", c.LogLevel, strings.Join(logLevels, ", "))
	}
	if !slices.Contains(logFormats, strings.ToLower(c.LogFormat)) {
		return fmt.Errorf("invalid log_format %q (expected one of %s)", c.LogFormat, strings.Join(logFormats, ", "))
	}
	if c.OutputFormat != "" && output.Mode(c.OutputFormat) == output.ModeAuto && !strings.EqualFold(c.OutputFormat, string(output.ModeAuto)) {
		return fmt.Errorf("invalid output %q (expected one of %s)", c.OutputFormat, strings.Join(output.Modes, ", "))
	}
	return nil
}
