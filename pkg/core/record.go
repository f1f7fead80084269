package core

import "fmt"

// RecordKind names the backing store a source record comes from.
type RecordKind string

// RecordKindDatabase marks records resolved from the relational catalog.
const RecordKindDatabase RecordKind = "database"

// SourceRecord is the opaque handle a mapper receives from the host.
type SourceRecord interface {
	Kind() RecordKind
	ID() string
}

// DatabaseRecord identifies one row of the catalog by primary key.
type DatabaseRecord struct {
	id string
}

// NewDatabaseRecord wraps a catalog primary key.
func NewDatabaseRecord(id string) *DatabaseRecord {
	return &DatabaseRecord{id: id}
}

// Kind implements SourceRecord.
func (r *DatabaseRecord) Kind() RecordKind { return RecordKindDatabase }

// ID implements SourceRecord.
func (r *DatabaseRecord) ID() string { return r.id }

// Key returns the primary key as a query argument (see SQLKey).
func (r *DatabaseRecord) Key() any { return SQLKey(r.id) }

func (r *DatabaseRecord) String() string {
	return fmt.Sprintf("DatabaseRecord{id=%s}", r.id)
}

// AsDatabaseRecord narrows a source record to a catalog record.
// Anything else fails with ErrInvalidArgument.
func AsDatabaseRecord(rec SourceRecord) (*DatabaseRecord, error) {
	dbRec, ok := rec.(*DatabaseRecord)
	if !ok || dbRec == nil {
		return nil, fmt.Errorf("%w: record is no database record (%T)", ErrInvalidArgument, rec)
	}
	return dbRec, nil
}
