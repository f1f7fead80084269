// Package adapter provides the database adapter contract used to read the
// catalog.
//
// Concrete adapter implementations are in pkg/adapters/ subdirectories and
// register themselves with this package from their init() functions.
package adapter

import (
	"context"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// Config is an alias for core.AdapterConfig.
type Config = core.AdapterConfig

// Adapter defines the interface that all catalog database adapters must
// implement.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a statement that doesn't return rows.
	Exec(ctx context.Context, sql string, args ...any) error

	// Query executes a statement and materializes every result row.
	// Statements use '?' placeholders regardless of the backing database.
	Query(ctx context.Context, sql string, args ...any) ([]*core.Row, error)

	// DialectName returns the name of the SQL dialect spoken by the adapter.
	DialectName() string
}
