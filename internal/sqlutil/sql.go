// Package sqlutil implements the catalog query service used by the mappers.
package sqlutil

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// RowQuerier is the part of adapter.Adapter the query service needs.
type RowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) ([]*core.Row, error)
}

// SQL runs parameterized catalog queries and logs them at debug level.
type SQL struct {
	db     RowQuerier
	logger *slog.Logger
}

// New creates a query service on top of db.
func New(db RowQuerier, logger *slog.Logger) *SQL {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQL{db: db, logger: logger}
}

// All returns every row of the query, an empty slice when there are none.
func (s *SQL) All(ctx context.Context, query string, args ...any) ([]*core.Row, error) {
	if s.db == nil {
		return nil, core.ErrNotConnected
	}
	s.logger.Debug("sql", slog.String("query", query), slog.Any("params", args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}
	if rows == nil {
		rows = []*core.Row{}
	}
	return rows, nil
}

// First returns the first row of the query or nil when the result is empty.
func (s *SQL) First(ctx context.Context, query string, args ...any) (*core.Row, error) {
	rows, err := s.All(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

var _ core.Querier = (*SQL)(nil)
