package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// ListObjectClass is the IGC syslist naming the object classes.
const ListObjectClass = 8000

const (
	sqlObject       = "SELECT * FROM t01_object WHERE id=?"
	sqlParentObject = "SELECT fk_obj_uuid FROM object_node WHERE obj_uuid=?"
)

// ObjectDeps are the collaborators of an ObjectMapper.
type ObjectDeps struct {
	SQL      core.Querier
	Syslists SyslistNamer
	Logger   *slog.Logger
}

// ObjectMapper is the built-in index mapper for IGC t01_object records.
type ObjectMapper struct {
	sql      core.Querier
	syslists SyslistNamer
	logger   *slog.Logger
}

// NewObjectMapper creates an ObjectMapper. A nil logger discards output.
func NewObjectMapper(deps ObjectDeps) *ObjectMapper {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ObjectMapper{sql: deps.SQL, syslists: deps.Syslists, logger: logger}
}

// Map implements Mapper.
func (m *ObjectMapper) Map(ctx context.Context, rec core.SourceRecord, doc *Document) error {
	dbRec, err := core.AsDatabaseRecord(rec)
	if err != nil {
		return err
	}
	m.logger.Debug("mapping source record to index document", slog.String("record", dbRec.String()))

	rows, err := m.sql.All(ctx, sqlObject, dbRec.Key())
	if err != nil {
		return fmt.Errorf("load object %s: %w", dbRec.ID(), err)
	}

	tr := NewTransformer(doc, m.syslists, m.logger)
	for _, row := range rows {
		doc.Add("t01_object.id", row.Get("id"))
		doc.Add("t01_object.obj_id", row.Get("obj_uuid"))
		doc.Add("t01_object.org_obj_id", row.Get("org_obj_id"))
		doc.Add("t01_object.obj_class", row.Get("obj_class"))
		doc.Add("t01_object.mod_time", row.Get("mod_time"))
		doc.Add("t01_object.time_type", row.Get("time_type"))
		doc.Add("title", row.Get("obj_name"))
		doc.Add("summary", row.Get("obj_descr"))

		if err := tr.AddSyslistEntryName(ctx, ListObjectClass, row.Get("obj_class"),
			[]string{"t01_object.obj_class_name"}, ""); err != nil {
			return fmt.Errorf("map object %s: %w", dbRec.ID(), err)
		}

		parent, err := m.sql.First(ctx, sqlParentObject, row.Get("obj_uuid"))
		if err != nil {
			return fmt.Errorf("map object %s: %w", dbRec.ID(), err)
		}
		doc.Add("parent.object_node.obj_uuid", parent.Get("fk_obj_uuid"))

		tr.ProcessTimeFields(row.String("time_from"), row.String("time_to"), row.String("time_type"))
	}
	return nil
}

var _ Mapper = (*ObjectMapper)(nil)
