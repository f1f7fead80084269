// Package config holds configuration helpers shared by the CLI and the
// engine: target defaults, target validation and config file discovery.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/adapter"
	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// Default configuration values.
const (
	DefaultTargetType   = "postgres"
	DefaultPostgresPort = 5432
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// DefaultSchemaForType returns the default schema for a database type.
func DefaultSchemaForType(dbType string) string {
	switch strings.ToLower(dbType) {
	case "postgres":
		return "public"
	default:
		return "main"
	}
}

// ApplyTargetDefaults applies default values to a TargetConfig based on the target type.
func ApplyTargetDefaults(t *core.TargetConfig) {
	if t == nil {
		return
	}
	if t.Type == "" {
		t.Type = DefaultTargetType
	}
	t.Type = strings.ToLower(t.Type)
	if name, ok := adapter.Canonical(t.Type); ok {
		t.Type = name
	}

	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}

	switch t.Type {
	case "postgres":
		if t.Port == 0 {
			t.Port = DefaultPostgresPort
		}
	case "sqlite", "duckdb":
		// file databases accept the path under either key
		if t.Path == "" {
			t.Path = t.Database
		}
	}
}

// ValidateTarget checks that the target names a registered adapter.
func ValidateTarget(t *core.TargetConfig) error {
	if t == nil || t.Type == "" {
		return fmt.Errorf("target type is required")
	}
	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}
	return nil
}

// ExpandEnvVars expands ${VAR} patterns with environment variable values.
// Unset variables are left as written.
func ExpandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})
}

// ExpandTargetEnvVars expands environment variables in the sensitive target fields.
func ExpandTargetEnvVars(t *core.TargetConfig) {
	if t == nil {
		return
	}
	t.Password = ExpandEnvVars(t.Password)
	t.User = ExpandEnvVars(t.User)
	t.Host = ExpandEnvVars(t.Host)
	t.Database = ExpandEnvVars(t.Database)
}
