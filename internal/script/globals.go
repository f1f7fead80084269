package script

import (
	"context"
	"fmt"
	"log/slog"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/fp-wemove/ingrid-iplug-dsc/internal/mapper/index"
	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// Names of the predeclared globals of an index-mapping script.
const (
	GlobalRecordID = "record_id"
	GlobalSQL      = "SQL"
	GlobalIDX      = "IDX"
	GlobalTRANSF   = "TRANSF"
	GlobalLog      = "log"
	GlobalHasValue = "has_value"
)

var predeclaredNames = map[string]bool{
	GlobalRecordID: true,
	GlobalSQL:      true,
	GlobalIDX:      true,
	GlobalTRANSF:   true,
	GlobalLog:      true,
	GlobalHasValue: true,
}

func isPredeclared(name string) bool { return predeclaredNames[name] }

// call is the state of one script execution.
type call struct {
	ctx    context.Context
	rec    *core.DatabaseRecord
	sql    core.Querier
	doc    *index.Document
	tr     *index.Transformer
	logger *slog.Logger
}

// predeclared builds the globals of one execution.
func (c *call) predeclared() starlark.StringDict {
	return starlark.StringDict{
		GlobalRecordID: columnValue(c.rec.Key()),
		GlobalSQL: &starlarkstruct.Module{Name: GlobalSQL, Members: starlark.StringDict{
			"all":   starlark.NewBuiltin("SQL.all", c.sqlAll),
			"first": starlark.NewBuiltin("SQL.first", c.sqlFirst),
		}},
		GlobalIDX: &starlarkstruct.Module{Name: GlobalIDX, Members: starlark.StringDict{
			"add":    starlark.NewBuiltin("IDX.add", c.idxAdd),
			"remove": starlark.NewBuiltin("IDX.remove", c.idxRemove),
		}},
		GlobalTRANSF: &starlarkstruct.Module{Name: GlobalTRANSF, Members: starlark.StringDict{
			"add_syslist_entry_name": starlark.NewBuiltin("TRANSF.add_syslist_entry_name", c.addSyslistEntryName),
			"process_time_fields":    starlark.NewBuiltin("TRANSF.process_time_fields", c.processTimeFields),
		}},
		GlobalLog: &starlarkstruct.Module{Name: GlobalLog, Members: starlark.StringDict{
			"debug": starlark.NewBuiltin("log.debug", c.logAt(slog.LevelDebug)),
			"info":  starlark.NewBuiltin("log.info", c.logAt(slog.LevelInfo)),
			"warn":  starlark.NewBuiltin("log.warn", c.logAt(slog.LevelWarn)),
			"error": starlark.NewBuiltin("log.error", c.logAt(slog.LevelError)),
		}},
		GlobalHasValue: starlark.NewBuiltin(GlobalHasValue, hasValue),
	}
}

// queryArgs unpacks SQL.all/SQL.first arguments: a statement and an
// optional list or tuple of parameters.
func queryArgs(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (string, []any, error) {
	var query string
	var params starlark.Value = starlark.None
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "sql", &query, "params?", &params); err != nil {
		return "", nil, err
	}
	if params == starlark.None {
		return query, nil, nil
	}
	seq, ok := params.(starlark.Indexable)
	if !ok {
		return "", nil, fmt.Errorf("%s: params must be a list or tuple, got %s", b.Name(), params.Type())
	}
	out := make([]any, seq.Len())
	for i := 0; i < seq.Len(); i++ {
		v, err := ToGo(seq.Index(i))
		if err != nil {
			return "", nil, fmt.Errorf("%s: param %d: %w", b.Name(), i, err)
		}
		out[i] = v
	}
	return query, out, nil
}

func (c *call) sqlAll(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	query, params, err := queryArgs(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	rows, err := c.sql.All(c.ctx, query, params...)
	if err != nil {
		return nil, err
	}
	return GoToStarlark(rows)
}

func (c *call) sqlFirst(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	query, params, err := queryArgs(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	row, err := c.sql.First(c.ctx, query, params...)
	if err != nil {
		return nil, err
	}
	return GoToStarlark(row)
}

func (c *call) idxAdd(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var field string
	var value starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "field", &field, "value", &value); err != nil {
		return nil, err
	}
	v, err := ToGo(value)
	if err != nil {
		return nil, err
	}
	return starlark.Bool(c.doc.Add(field, v)), nil
}

func (c *call) idxRemove(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var field string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "field", &field); err != nil {
		return nil, err
	}
	c.doc.RemoveFields(field)
	return starlark.None, nil
}

func (c *call) addSyslistEntryName(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var listID int
	var entryID, fields starlark.Value
	var langField string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"list_id", &listID, "entry_id", &entryID, "fields", &fields, "lang_field?", &langField); err != nil {
		return nil, err
	}

	var names []string
	switch f := fields.(type) {
	case starlark.String:
		names = []string{string(f)}
	case starlark.Indexable:
		for i := 0; i < f.Len(); i++ {
			s, ok := starlark.AsString(f.Index(i))
			if !ok {
				return nil, fmt.Errorf("%s: field names must be strings, got %s", b.Name(), f.Index(i).Type())
			}
			names = append(names, s)
		}
	default:
		return nil, fmt.Errorf("%s: fields must be a string or a list, got %s", b.Name(), fields.Type())
	}

	entry, err := ToGo(entryID)
	if err != nil {
		return nil, err
	}
	if err := c.tr.AddSyslistEntryName(c.ctx, listID, entry, names, langField); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (c *call) processTimeFields(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var from, to, timeType starlark.Value = starlark.None, starlark.None, starlark.None
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "time_from", &from, "time_to", &to, "time_type", &timeType); err != nil {
		return nil, err
	}
	c.tr.ProcessTimeFields(stringOf(from), stringOf(to), stringOf(timeType))
	return starlark.None, nil
}

func (c *call) logAt(level slog.Level) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(t *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var msg string
		if err := starlark.UnpackPositionalArgs(b.Name(), args, nil, 1, &msg); err != nil {
			return nil, err
		}
		attrs := []slog.Attr{slog.String("script", t.Name), slog.String("record", c.rec.ID())}
		for _, kv := range kwargs {
			key, _ := starlark.AsString(kv[0])
			v, err := ToGo(kv[1])
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, slog.Any(key, v))
		}
		c.logger.LogAttrs(c.ctx, level, msg, attrs...)
		return starlark.None, nil
	}
}

func hasValue(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var value starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &value); err != nil {
		return nil, err
	}
	v, err := ToGo(value)
	if err != nil {
		return nil, err
	}
	return starlark.Bool(core.HasValue(v)), nil
}

// stringOf renders a script value the way catalog values render; None is "".
func stringOf(v starlark.Value) string {
	gv, err := ToGo(v)
	if err != nil {
		return v.String()
	}
	return core.ToString(gv)
}
