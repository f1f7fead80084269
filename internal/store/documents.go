package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// SaveDocument inserts or replaces the IDF document of a record.
func (s *SQLiteStore) SaveDocument(doc *core.Document) error {
	if s.db == nil {
		return errNotOpened
	}
	if doc == nil || doc.RecordID == "" {
		return fmt.Errorf("%w: document without record id", core.ErrInvalidArgument)
	}

	mappedAt := doc.MappedAt
	if mappedAt.IsZero() {
		mappedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO documents (record_id, run_id, file_identifier, idf, mapped_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (record_id) DO UPDATE SET
			run_id = excluded.run_id,
			file_identifier = excluded.file_identifier,
			idf = excluded.idf,
			mapped_at = excluded.mapped_at`,
		doc.RecordID, nullString(doc.RunID), doc.FileIdentifier, doc.IDF, mappedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save document %s: %w", doc.RecordID, err)
	}
	return nil
}

// GetDocument retrieves the stored document of a record. Unknown records
// yield core.ErrRecordNotFound.
func (s *SQLiteStore) GetDocument(recordID string) (*core.Document, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	doc := &core.Document{}
	var runID sql.NullString
	err := s.db.QueryRow(
		`SELECT record_id, run_id, file_identifier, idf, mapped_at FROM documents WHERE record_id = ?`,
		recordID,
	).Scan(&doc.RecordID, &runID, &doc.FileIdentifier, &doc.IDF, &doc.MappedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", recordID, core.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	doc.RunID = runID.String
	return doc, nil
}

// ListDocuments returns all stored documents without their IDF body,
// ordered by record id.
func (s *SQLiteStore) ListDocuments() ([]*core.Document, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.Query(`SELECT record_id, run_id, file_identifier, mapped_at FROM documents ORDER BY record_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []*core.Document
	for rows.Next() {
		doc := &core.Document{}
		var runID sql.NullString
		if err := rows.Scan(&doc.RecordID, &runID, &doc.FileIdentifier, &doc.MappedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.RunID = runID.String
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// SaveIndexFields replaces the index fields of a record.
func (s *SQLiteStore) SaveIndexFields(recordID string, fields []core.IndexField) (err error) {
	if s.db == nil {
		return errNotOpened
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`DELETE FROM index_fields WHERE record_id = ?`, recordID); err != nil {
		return fmt.Errorf("failed to clear index fields of %s: %w", recordID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO index_fields (record_id, position, name, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, f := range fields {
		if _, err = stmt.Exec(recordID, i, f.Name, f.Value); err != nil {
			return fmt.Errorf("failed to save index field %s of %s: %w", f.Name, recordID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit index fields: %w", err)
	}
	return nil
}

// GetIndexFields returns the index fields of a record in stored order.
// A mapped record without fields yields an empty slice; records that were
// never mapped yield core.ErrRecordNotFound.
func (s *SQLiteStore) GetIndexFields(recordID string) ([]core.IndexField, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.Query(`SELECT name, value FROM index_fields WHERE record_id = ? ORDER BY position`, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get index fields: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var fields []core.IndexField
	for rows.Next() {
		var f core.IndexField
		if err := rows.Scan(&f.Name, &f.Value); err != nil {
			return nil, fmt.Errorf("failed to scan index field: %w", err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return fields, nil
	}

	var mapped int
	err = s.db.QueryRow(`SELECT COUNT(*) FROM documents WHERE record_id = ?`, recordID).Scan(&mapped)
	if err != nil {
		return nil, fmt.Errorf("failed to look up document %s: %w", recordID, err)
	}
	if mapped == 0 {
		return nil, fmt.Errorf("index fields %s: %w", recordID, core.ErrRecordNotFound)
	}
	return []core.IndexField{}, nil
}
