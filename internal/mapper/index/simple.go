package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// SimpleMapper runs one configured statement with the record id as its only
// argument and adds every column of the first row as a field.
type SimpleMapper struct {
	sql   core.Querier
	query string
}

// NewSimpleMapper creates a SimpleMapper for query.
func NewSimpleMapper(q core.Querier, query string) *SimpleMapper {
	return &SimpleMapper{sql: q, query: query}
}

// Map implements Mapper. A record without a row fails with
// core.ErrRecordNotFound.
func (m *SimpleMapper) Map(ctx context.Context, rec core.SourceRecord, doc *Document) error {
	dbRec, err := core.AsDatabaseRecord(rec)
	if err != nil {
		return err
	}
	if m.query == "" {
		return errors.New("simple index mapper: no sql configured")
	}

	row, err := m.sql.First(ctx, m.query, dbRec.Key())
	if err != nil {
		return fmt.Errorf("map record %s: %w", dbRec.ID(), err)
	}
	if row == nil {
		return fmt.Errorf("map record %s: %w", dbRec.ID(), core.ErrRecordNotFound)
	}
	for _, col := range row.Columns() {
		doc.Add(col, row.Get(col))
	}
	return nil
}

var _ Mapper = (*SimpleMapper)(nil)
