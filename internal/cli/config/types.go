// Package config provides configuration management for the ingrid-dsc CLI.
//
// Values are layered with koanf: defaults, then ingrid-dsc.yaml, then
// INGRID_DSC_ environment variables, then explicitly set flags.
package config

import (
	"github.com/fp-wemove/ingrid-iplug-dsc/internal/engine"
	"github.com/fp-wemove/ingrid-iplug-dsc/internal/record"
	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = core.TargetConfig

// RecordsConfig is an alias for the shared record selection configuration.
type RecordsConfig = core.RecordsConfig

// IndexConfig selects how index documents are produced.
type IndexConfig struct {
	// Script is a Starlark file or "preset:<name>".
	Script string `koanf:"script"`
	// SQL maps every column of its first row, queried with the record id.
	// Without Script and SQL the built-in object mapper is used.
	SQL string `koanf:"sql"`
}

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Port  int  `koanf:"port"`
	Watch bool `koanf:"watch"`
}

// Config holds all CLI configuration options.
type Config struct {
	Target       *TargetConfig `koanf:"target"`
	Records      RecordsConfig `koanf:"records"`
	Index        IndexConfig   `koanf:"index"`
	StatePath    string        `koanf:"state_path"`
	Concurrency  int           `koanf:"concurrency"`
	ExportDir    string        `koanf:"export_dir"`
	LogLevel     string        `koanf:"log_level"`
	LogFormat    string        `koanf:"log_format"`
	OutputFormat string        `koanf:"output"`
	Verbose      bool          `koanf:"verbose"`
	Server       ServerConfig  `koanf:"server"`
}

// Default configuration values.
const (
	DefaultStateFile  = ".ingrid-dsc/state.db"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultServerPort = 8080
)

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		Records: RecordsConfig{
			RecordSQL:     record.DefaultRecordSQL,
			RecordByIDSQL: record.DefaultRecordByIDSQL,
		},
		StatePath:    DefaultStateFile,
		Concurrency:  engine.DefaultConcurrency,
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
		OutputFormat: DefaultOutput,
		Server:       ServerConfig{Port: DefaultServerPort, Watch: true},
	}
}
