// Package index maps catalog records to flat search-index documents.
//
// An index document is an ordered list of field/value pairs. Mappers append
// to the document of the current call; nothing is shared between calls.
package index

import (
	"context"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// Mapper fills an index document for one source record.
type Mapper interface {
	Map(ctx context.Context, rec core.SourceRecord, doc *Document) error
}

// Document is an ordered field/value sink. Fields may repeat.
type Document struct {
	fields []core.IndexField
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Add appends field with the string form of value. Absent values (see
// core.HasValue) are skipped; Add reports whether the field was stored.
func (d *Document) Add(field string, value any) bool {
	if !core.HasValue(value) {
		return false
	}
	d.fields = append(d.fields, core.IndexField{Name: field, Value: core.ToString(value)})
	return true
}

// RemoveFields drops every occurrence of field.
func (d *Document) RemoveFields(field string) {
	kept := d.fields[:0]
	for _, f := range d.fields {
		if f.Name != field {
			kept = append(kept, f)
		}
	}
	d.fields = kept
}

// Values returns the values of field in insertion order.
func (d *Document) Values(field string) []string {
	var out []string
	for _, f := range d.fields {
		if f.Name == field {
			out = append(out, f.Value)
		}
	}
	return out
}

// Get returns the first value of field, "" if the field is absent.
func (d *Document) Get(field string) string {
	for _, f := range d.fields {
		if f.Name == field {
			return f.Value
		}
	}
	return ""
}

// Fields returns a copy of all pairs in insertion order.
func (d *Document) Fields() []core.IndexField {
	out := make([]core.IndexField, len(d.fields))
	copy(out, d.fields)
	return out
}

// Len returns the number of stored pairs.
func (d *Document) Len() int {
	return len(d.fields)
}
