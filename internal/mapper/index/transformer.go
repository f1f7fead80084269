package index

import (
	"context"
	"log/slog"

	"github.com/fp-wemove/ingrid-iplug-dsc/internal/codelist"
)

// Time boundaries written when only one end of a period is known.
const (
	InfinitePast   = "00000000"
	InfiniteFuture = "99999999"
)

// IGC time_type values.
const (
	TimeFromTo = "von"
	TimeSince  = "seit"
	TimeAt     = "am"
	TimeUntil  = "bis"
)

// SyslistNamer resolves all language names of a syslist entry.
type SyslistNamer interface {
	SyslistNames(ctx context.Context, listID int, entryID any) ([]codelist.SyslistName, error)
}

// Transformer derives additional index fields from catalog values. A
// Transformer belongs to a single mapping call.
type Transformer struct {
	doc    *Document
	names  SyslistNamer
	logger *slog.Logger

	// time values seen by the running ProcessTimeFields call
	seen map[string]string
}

// NewTransformer creates a transformer writing to doc.
func NewTransformer(doc *Document, names SyslistNamer, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Transformer{doc: doc, names: names, logger: logger, seen: make(map[string]string, 3)}
}

// AddSyslistEntryName adds the name of a syslist entry in every language
// found to each of fields. If langField is not empty the language of every
// name is added there as well.
func (t *Transformer) AddSyslistEntryName(ctx context.Context, listID int, entryID any, fields []string, langField string) error {
	names, err := t.names.SyslistNames(ctx, listID, entryID)
	if err != nil {
		return err
	}
	for _, n := range names {
		for _, field := range fields {
			t.doc.Add(field, n.Name)
		}
		if langField != "" {
			t.doc.Add(langField, n.Lang)
		}
	}
	return nil
}

// ProcessTimeFields adds t0/t1/t2 according to the IGC time type.
//
//	von  -> t1=from, t2=to
//	seit -> t1=from
//	am   -> t0=from
//	bis  -> t2=to
//
// Values are cut to yyyyMMdd. An open period gets the missing end set to
// InfinitePast or InfiniteFuture.
func (t *Transformer) ProcessTimeFields(from, to, timeType string) {
	switch timeType {
	case TimeFromTo:
		t.doc.Add("t1", t.timeValue("t1", from))
		t.doc.Add("t2", t.timeValue("t2", to))
	case TimeSince:
		t.doc.Add("t1", t.timeValue("t1", from))
	case TimeAt:
		t.doc.Add("t0", t.timeValue("t0", from))
	case TimeUntil:
		t.doc.Add("t2", t.timeValue("t2", to))
	}

	_, t0 := t.seen["t0"]
	_, t1 := t.seen["t1"]
	_, t2 := t.seen["t2"]
	switch {
	case t1 && !t2 && !t0:
		t.logger.Debug("t1 is set, t2 and t0 not set: set t2 to " + InfiniteFuture)
		t.doc.RemoveFields("t2")
		t.doc.Add("t2", InfiniteFuture)
	case !t1 && t2 && !t0:
		t.logger.Debug("t2 is set, t1 and t0 not set: set t1 to " + InfinitePast)
		t.doc.RemoveFields("t1")
		t.doc.Add("t1", InfinitePast)
	}
	clear(t.seen)
}

func (t *Transformer) timeValue(field, value string) string {
	if len(value) > 8 {
		value = value[:8]
	}
	if value != "" {
		t.seen[field] = value
	}
	return value
}
