// Package script runs Starlark index-mapping scripts.
//
// A script receives the record id and helper modules as predeclared
// globals and writes index fields through IDX:
//
//	for row in SQL.all("SELECT * FROM organisation WHERE id=?", [record_id]):
//	    IDX.add("organisation.name", row.get("name"))
//
// Scripts are compiled once; every Map call executes the compiled program
// in a fresh module scope.
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/fp-wemove/ingrid-iplug-dsc/internal/mapper/index"
	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// PresetPrefix selects an embedded script instead of a file: "preset:<name>".
const PresetPrefix = "preset:"

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// Deps are the collaborators a script reads through.
type Deps struct {
	SQL      core.Querier
	Syslists index.SyslistNamer
	Logger   *slog.Logger
	// PoolSize bounds the number of idle threads kept for reuse.
	PoolSize int
}

// Mapper is an index.Mapper backed by a compiled Starlark script.
type Mapper struct {
	name     string
	program  *starlark.Program
	sql      core.Querier
	syslists index.SyslistNamer
	logger   *slog.Logger
	pool     *ThreadPool
}

// Compile parses and resolves src. name is used in error positions.
func Compile(name string, src []byte, deps Deps) (*Mapper, error) {
	_, prog, err := starlark.SourceProgramOptions(fileOptions, name, src, isPredeclared)
	if err != nil {
		return nil, &ScriptError{Script: name, Err: err}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Mapper{
		name:     name,
		program:  prog,
		sql:      deps.SQL,
		syslists: deps.Syslists,
		logger:   logger,
		pool:     NewThreadPool(deps.PoolSize, logger),
	}, nil
}

// Load compiles the script at location: either PresetPrefix followed by the
// name of an embedded preset, or a file path.
func Load(location string, deps Deps) (*Mapper, error) {
	if name, ok := strings.CutPrefix(location, PresetPrefix); ok {
		src, err := Preset(name)
		if err != nil {
			return nil, err
		}
		return Compile(name+".star", src, deps)
	}

	src, err := os.ReadFile(location) //nolint:gosec // script path comes from trusted configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read index script: %w", err)
	}
	return Compile(filepath.Base(location), src, deps)
}

// Name returns the script name.
func (m *Mapper) Name() string { return m.name }

// Map implements index.Mapper.
func (m *Mapper) Map(ctx context.Context, rec core.SourceRecord, doc *index.Document) error {
	dbRec, err := core.AsDatabaseRecord(rec)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.logger.Debug("mapping source record to index document",
		slog.String("script", m.name), slog.String("record", dbRec.String()))

	c := &call{
		ctx:    ctx,
		rec:    dbRec,
		sql:    m.sql,
		doc:    doc,
		tr:     index.NewTransformer(doc, m.syslists, m.logger),
		logger: m.logger,
	}

	thread := m.pool.Get(m.name)
	stop := context.AfterFunc(ctx, func() {
		thread.Cancel(context.Cause(ctx).Error())
	})

	_, err = m.program.Init(thread, c.predeclared())

	if stop() {
		m.pool.Put(thread)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &ScriptError{Script: m.name, Record: dbRec.ID(), Err: err}
	}
	return nil
}

// ScriptError reports a script that failed to compile or execute.
type ScriptError struct {
	Script string
	Record string
	Err    error
}

func (e *ScriptError) Error() string {
	msg := e.Err.Error()
	var evalErr *starlark.EvalError
	if errors.As(e.Err, &evalErr) {
		msg = evalErr.Backtrace()
	}
	if e.Record != "" {
		return fmt.Sprintf("index script %s failed for record %s: %s", e.Script, e.Record, msg)
	}
	return fmt.Sprintf("index script %s: %s", e.Script, msg)
}

func (e *ScriptError) Unwrap() error { return e.Err }

var _ index.Mapper = (*Mapper)(nil)
