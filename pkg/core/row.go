package core

import "strings"

// Row is one result row of a catalog query. Columns keep the order the
// database returned them in; lookups by name are case-insensitive because
// catalog drivers disagree on identifier case.
type Row struct {
	columns []string
	values  map[string]any
}

// NewRow creates a row from parallel column and value slices.
// Later duplicates of a column name (e.g. from joins) shadow earlier ones.
func NewRow(columns []string, values []any) *Row {
	r := &Row{
		columns: make([]string, 0, len(columns)),
		values:  make(map[string]any, len(columns)),
	}
	for i, col := range columns {
		key := strings.ToLower(col)
		if _, seen := r.values[key]; !seen {
			r.columns = append(r.columns, col)
		}
		var v any
		if i < len(values) {
			v = values[i]
		}
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		r.values[key] = v
	}
	return r
}

// RowOf builds a row from alternating column/value pairs. Intended for tests
// and fixtures: RowOf("id", 1, "name", "x").
func RowOf(pairs ...any) *Row {
	cols := make([]string, 0, len(pairs)/2)
	vals := make([]any, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		name, _ := pairs[i].(string)
		cols = append(cols, name)
		vals = append(vals, pairs[i+1])
	}
	return NewRow(cols, vals)
}

// Get returns the raw value of a column, nil when the row or column is absent.
func (r *Row) Get(column string) any {
	if r == nil {
		return nil
	}
	return r.values[strings.ToLower(column)]
}

// String returns the column value rendered by ToString.
func (r *Row) String(column string) string {
	return ToString(r.Get(column))
}

// Has reports whether the column carries a value according to HasValue.
func (r *Row) Has(column string) bool {
	return HasValue(r.Get(column))
}

// Columns returns the column names in result order.
func (r *Row) Columns() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Len returns the number of distinct columns.
func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.columns)
}
