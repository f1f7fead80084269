// Package record enumerates and resolves the catalog records to map.
package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// Default statements select published IGC objects.
const (
	DefaultRecordSQL     = "SELECT DISTINCT id FROM t01_object WHERE work_state='V' AND publish_id=1"
	DefaultRecordByIDSQL = DefaultRecordSQL + " AND id=?"
)

// ErrNoRecordByIDSQL is returned by ByID when no by-id statement is configured.
var ErrNoRecordByIDSQL = errors.New("records.record_by_id_sql not set")

// Producer yields source records from configurable statements. The first
// column of each result row is the record id.
type Producer struct {
	sql    core.Querier
	cfg    core.RecordsConfig
	logger *slog.Logger
}

// NewProducer creates a producer. Empty statements in cfg are left empty;
// callers apply defaults through configuration.
func NewProducer(q core.Querier, cfg core.RecordsConfig, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Producer{sql: q, cfg: cfg, logger: logger}
}

// IDs returns the ids of all records selected by the record statement.
func (p *Producer) IDs(ctx context.Context) ([]string, error) {
	if strings.TrimSpace(p.cfg.RecordSQL) == "" {
		return nil, errors.New("records.record_sql not set")
	}
	rows, err := p.sql.All(ctx, p.cfg.RecordSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate records: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		id, ok := firstColumn(row)
		if !ok {
			continue
		}
		ids = append(ids, id)
	}
	p.logger.Debug("enumerated records", slog.Int("count", len(ids)))
	return ids, nil
}

// ByID resolves id through the by-id statement. Ids that do not meet the
// statement's publication conditions yield core.ErrRecordNotFound.
func (p *Producer) ByID(ctx context.Context, id string) (*core.DatabaseRecord, error) {
	if strings.TrimSpace(p.cfg.RecordByIDSQL) == "" {
		return nil, ErrNoRecordByIDSQL
	}
	row, err := p.sql.First(ctx, p.cfg.RecordByIDSQL, core.SQLKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve record %s: %w", id, err)
	}
	resolved, ok := firstColumn(row)
	if !ok {
		p.logger.Debug("record not found by sql", slog.String("id", id), slog.String("sql", p.cfg.RecordByIDSQL))
		return nil, fmt.Errorf("record %s: %w", id, core.ErrRecordNotFound)
	}
	p.logger.Debug("record found by sql", slog.String("id", id))
	return core.NewDatabaseRecord(resolved), nil
}

func firstColumn(row *core.Row) (string, bool) {
	cols := row.Columns()
	if len(cols) == 0 || !row.Has(cols[0]) {
		return "", false
	}
	return strings.TrimSpace(row.String(cols[0])), true
}

// MappingError is the failure of one record during a run.
type MappingError struct {
	RecordID string
	Err      error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("record %s: %v", e.RecordID, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }
