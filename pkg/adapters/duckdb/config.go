package duckdb

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds DuckDB-specific configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// Extensions to install and load (e.g., "postgres", "sqlite", "spatial")
	Extensions []string `mapstructure:"extensions"`

	// Settings to apply at session level (e.g., memory_limit, threads)
	Settings map[string]string `mapstructure:"settings"`

	// Attach lists catalog databases made visible to the session,
	// typically an IGC snapshot exported to SQLite or a live PostgreSQL catalog.
	Attach []AttachConfig `mapstructure:"attach"`
}

// AttachConfig describes one ATTACH statement.
type AttachConfig struct {
	// Alias is the database name inside DuckDB.
	Alias string `mapstructure:"alias"`

	// Path is a file path or a libpq connection string.
	Path string `mapstructure:"path"`

	// Type: "sqlite", "postgres" or empty for a DuckDB file.
	Type string `mapstructure:"type,omitempty"`

	// ReadOnly attaches the database read-only (default true).
	ReadOnly *bool `mapstructure:"read_only,omitempty"`

	// Use makes the attached database the default for unqualified names.
	Use bool `mapstructure:"use,omitempty"`
}

func parseParams(raw map[string]any) (*Params, error) {
	params := &Params{}
	if len(raw) == 0 {
		return params, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           params,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create params decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid duckdb params: %w", err)
	}

	for i, a := range params.Attach {
		if a.Alias == "" || a.Path == "" {
			return nil, fmt.Errorf("invalid duckdb params: attach[%d] requires alias and path", i)
		}
	}
	return params, nil
}
