package store

import (
	"fmt"
	"time"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// RecordError stores the failure of one record in a run.
func (s *SQLiteStore) RecordError(runID, recordID, errMsg string) error {
	if s.db == nil {
		return errNotOpened
	}

	_, err := s.db.Exec(
		`INSERT INTO record_errors (run_id, record_id, error, created_at) VALUES (?, ?, ?, ?)`,
		runID, recordID, errMsg, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record error for %s: %w", recordID, err)
	}
	return nil
}

// ListErrors returns the record errors of a run in insertion order.
func (s *SQLiteStore) ListErrors(runID string) ([]*core.RecordError, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.Query(
		`SELECT run_id, record_id, error, created_at FROM record_errors WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list errors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*core.RecordError
	for rows.Next() {
		e := &core.RecordError{}
		if err := rows.Scan(&e.RunID, &e.RecordID, &e.Error, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan record error: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
