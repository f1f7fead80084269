package script

import (
	"fmt"
	"strings"
	"time"

	"go.starlark.net/starlark"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// GoToStarlark converts a Go value to a Starlark value.
// Supported types: string, []byte, int, int32, int64, float32, float64,
// bool, time.Time, *core.Row, []*core.Row, []string, []any, map[string]any
func GoToStarlark(v any) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}

	switch val := v.(type) {
	case string:
		return starlark.String(val), nil

	case []byte:
		return starlark.String(string(val)), nil

	case int:
		return starlark.MakeInt(val), nil

	case int32:
		return starlark.MakeInt64(int64(val)), nil

	case int64:
		return starlark.MakeInt64(val), nil

	case float32:
		return starlark.Float(float64(val)), nil

	case float64:
		return starlark.Float(val), nil

	case bool:
		return starlark.Bool(val), nil

	case time.Time:
		return starlark.String(core.ToString(val)), nil

	case *core.Row:
		if val == nil {
			return starlark.None, nil
		}
		return &Row{row: val}, nil

	case []*core.Row:
		list := make([]starlark.Value, len(val))
		for i, r := range val {
			list[i] = &Row{row: r}
		}
		return starlark.NewList(list), nil

	case []string:
		list := make([]starlark.Value, len(val))
		for i, s := range val {
			list[i] = starlark.String(s)
		}
		return starlark.NewList(list), nil

	case []any:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			sv, err := GoToStarlark(item)
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			list[i] = sv
		}
		return starlark.NewList(list), nil

	case map[string]any:
		dict := starlark.NewDict(len(val))
		for k, v := range val {
			sv, err := GoToStarlark(v)
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", k, err)
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, fmt.Errorf("dict setkey %q: %w", k, err)
			}
		}
		return dict, nil

	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// columnValue converts a catalog column value. Driver types without a
// Starlark counterpart are passed as their string form.
func columnValue(v any) starlark.Value {
	if !core.HasValue(v) {
		return starlark.None
	}
	sv, err := GoToStarlark(v)
	if err != nil {
		return starlark.String(core.ToString(v))
	}
	return sv
}

// ToGo converts a Starlark value back to a Go value.
// Returns: string, int64, float64, bool, []any, map[string]any, *core.Row or nil
func ToGo(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil

	case starlark.String:
		return string(val), nil

	case starlark.Int:
		i64, ok := val.Int64()
		if !ok {
			// Fallback for very large integers - convert to string
			return val.String(), nil
		}
		return i64, nil

	case starlark.Float:
		return float64(val), nil

	case starlark.Bool:
		return bool(val), nil

	case *Row:
		return val.row, nil

	case *starlark.List:
		return sequenceToGo(val, "list")

	case starlark.Tuple:
		return sequenceToGo(val, "tuple")

	case *starlark.Dict:
		result := make(map[string]any)
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key must be string, got %T", item[0])
			}
			gv, err := ToGo(item[1])
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", key, err)
			}
			result[string(key)] = gv
		}
		return result, nil

	default:
		// Try to get a string representation
		return val.String(), nil
	}
}

func sequenceToGo(seq starlark.Indexable, kind string) ([]any, error) {
	result := make([]any, seq.Len())
	for i := 0; i < seq.Len(); i++ {
		gv, err := ToGo(seq.Index(i))
		if err != nil {
			return nil, fmt.Errorf("%s index %d: %w", kind, i, err)
		}
		result[i] = gv
	}
	return result, nil
}

// Row exposes a catalog row to scripts. Column lookups are
// case-insensitive: row["NAME"], row.get("name", default) and row.has("name").
type Row struct {
	row *core.Row
}

var (
	_ starlark.Mapping  = (*Row)(nil)
	_ starlark.HasAttrs = (*Row)(nil)
)

func (r *Row) String() string {
	return "row(" + strings.Join(r.row.Columns(), ", ") + ")"
}

// Type implements starlark.Value.
func (r *Row) Type() string { return "row" }

// Freeze implements starlark.Value. Rows are read-only.
func (r *Row) Freeze() {}

// Truth implements starlark.Value.
func (r *Row) Truth() starlark.Bool { return r.row.Len() > 0 }

// Hash implements starlark.Value.
func (r *Row) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: row") }

func (r *Row) hasColumn(name string) bool {
	for _, col := range r.row.Columns() {
		if strings.EqualFold(col, name) {
			return true
		}
	}
	return false
}

// Get implements starlark.Mapping.
func (r *Row) Get(k starlark.Value) (starlark.Value, bool, error) {
	name, ok := starlark.AsString(k)
	if !ok {
		return nil, false, fmt.Errorf("row key must be string, got %s", k.Type())
	}
	if !r.hasColumn(name) {
		return nil, false, nil
	}
	return columnValue(r.row.Get(name)), true, nil
}

// Attr implements starlark.HasAttrs.
func (r *Row) Attr(name string) (starlark.Value, error) {
	switch name {
	case "get":
		return starlark.NewBuiltin("row.get", r.get), nil
	case "has":
		return starlark.NewBuiltin("row.has", r.has), nil
	case "columns":
		return starlark.NewBuiltin("row.columns", r.columns), nil
	}
	return nil, nil
}

// AttrNames implements starlark.HasAttrs.
func (r *Row) AttrNames() []string { return []string{"columns", "get", "has"} }

func (r *Row) get(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var dflt starlark.Value = starlark.None
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "default?", &dflt); err != nil {
		return nil, err
	}
	if !r.hasColumn(name) {
		return dflt, nil
	}
	return columnValue(r.row.Get(name)), nil
}

func (r *Row) has(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	return starlark.Bool(r.row.Has(name)), nil
}

func (r *Row) columns(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}
	return GoToStarlark(r.row.Columns())
}
