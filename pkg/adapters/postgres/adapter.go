// Package postgres reads IGC catalogs from PostgreSQL through pgx.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/adapter"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
)

const (
	defaultHost    = "localhost"
	defaultPort    = 5432
	defaultSSLMode = "disable"
)

// Adapter is a catalog adapter for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New returns an unconnected adapter. A nil logger discards output.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &Adapter{}
	a.Logger = logger
	a.Placeholder = adapter.PlaceholderDollar
	return a
}

// DialectName implements adapter.Adapter.
func (a *Adapter) DialectName() string { return "postgres" }

// Connect opens the pool and verifies the catalog is reachable.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	a.Logger.Debug("connecting to catalog",
		slog.String("dialect", a.DialectName()),
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database),
		slog.String("schema", cfg.Schema))

	db, err := sql.Open("pgx", connString(cfg))
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres %s/%s: %w", cfg.Host, cfg.Database, err)
	}

	a.DB, a.Cfg = db, cfg
	return nil
}

// connString renders cfg as a postgres:// URL. Options become query
// parameters and the schema is put on the search_path, since IGC catalogs
// frequently live outside public.
func connString(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = defaultHost
	}
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}

	q := url.Values{}
	q.Set("sslmode", defaultSSLMode)
	for k, v := range cfg.Options {
		q.Set(k, v)
	}
	if cfg.Schema != "" {
		q.Set("search_path", cfg.Schema)
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(host, strconv.Itoa(port)),
		Path:     "/" + cfg.Database,
		RawQuery: q.Encode(),
	}
	switch {
	case cfg.Username != "" && cfg.Password != "":
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	case cfg.Username != "":
		u.User = url.User(cfg.Username)
	}
	return u.String()
}

var _ adapter.Adapter = (*Adapter)(nil)
