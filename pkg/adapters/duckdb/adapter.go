// Package duckdb provides a DuckDB catalog adapter.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/adapter"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
	params *Params
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "duckdb"
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return err
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	a.Logger.Debug("connecting to duckdb", slog.String("path", path))

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	// session state (settings, attachments, USE) lives on a single connection
	db.SetMaxOpenConns(1)

	a.DB = db
	a.Cfg = cfg
	a.params = params

	if err := a.setup(ctx); err != nil {
		_ = a.Close()
		return err
	}
	return nil
}

func (a *Adapter) setup(ctx context.Context) error {
	for _, ext := range a.params.Extensions {
		a.Logger.Debug("loading duckdb extension", slog.String("extension", ext))
		if err := a.Exec(ctx, "INSTALL "+ext); err != nil {
			return fmt.Errorf("failed to install extension %s: %w", ext, err)
		}
		if err := a.Exec(ctx, "LOAD "+ext); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
	}

	keys := make([]string, 0, len(a.params.Settings))
	for k := range a.params.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := a.Exec(ctx, fmt.Sprintf("SET %s = '%s'", k, escapeLiteral(a.params.Settings[k]))); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", k, err)
		}
	}

	for _, att := range a.params.Attach {
		a.Logger.Debug("attaching catalog database", slog.String("alias", att.Alias), slog.String("type", att.Type))
		if err := a.Exec(ctx, buildAttachSQL(att)); err != nil {
			return fmt.Errorf("failed to attach %s: %w", att.Alias, err)
		}
		if att.Use {
			if err := a.Exec(ctx, "USE "+att.Alias); err != nil {
				return fmt.Errorf("failed to use %s: %w", att.Alias, err)
			}
		}
	}
	return nil
}

// buildAttachSQL renders an ATTACH statement for a catalog database.
func buildAttachSQL(att AttachConfig) string {
	var opts []string
	if att.Type != "" {
		opts = append(opts, "TYPE "+att.Type)
	}
	if att.ReadOnly == nil || *att.ReadOnly {
		opts = append(opts, "READ_ONLY")
	}

	stmt := fmt.Sprintf("ATTACH '%s' AS %s", escapeLiteral(att.Path), att.Alias)
	if len(opts) > 0 {
		stmt += " (" + strings.Join(opts, ", ") + ")"
	}
	return stmt
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

var _ adapter.Adapter = (*Adapter)(nil)
