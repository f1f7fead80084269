package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// QueryCall records one statement seen by a FakeQuerier.
type QueryCall struct {
	SQL  string
	Args []any
}

type scripted struct {
	match string
	args  []any
	rows  []*core.Row
	err   error
}

// FakeQuerier is a core.Querier answering from scripted responses.
//
// A response matches when its fragment is a substring of the statement and,
// if it was registered with arguments, the arguments render equal. Responses
// with arguments win over plain ones; otherwise registration order decides.
//
// Unmatched statements return no rows, so tests only script the tables they
// care about. A querier made with Strict fails them with
// ErrUnexpectedStatement instead; register empty answers with On(match).
type FakeQuerier struct {
	mu        sync.Mutex
	responses []scripted
	calls     []QueryCall
	strict    bool
}

// ErrUnexpectedStatement is returned by a strict FakeQuerier for statements
// no response matches.
var ErrUnexpectedStatement = errors.New("unexpected statement")

// NewFakeQuerier returns an empty FakeQuerier.
func NewFakeQuerier() *FakeQuerier {
	return &FakeQuerier{}
}

// Strict makes unmatched statements fail.
func (f *FakeQuerier) Strict() *FakeQuerier {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.strict = true
	return f
}

// On answers statements containing match with rows.
func (f *FakeQuerier) On(match string, rows ...*core.Row) *FakeQuerier {
	return f.add(scripted{match: match, rows: rows})
}

// OnArgs answers statements containing match and called with args.
func (f *FakeQuerier) OnArgs(match string, args []any, rows ...*core.Row) *FakeQuerier {
	if args == nil {
		args = []any{}
	}
	return f.add(scripted{match: match, args: args, rows: rows})
}

// Fail makes statements containing match return err.
func (f *FakeQuerier) Fail(match string, err error) *FakeQuerier {
	return f.add(scripted{match: match, err: err})
}

func (f *FakeQuerier) add(s scripted) *FakeQuerier {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, s)
	return f
}

// All implements core.Querier.
func (f *FakeQuerier) All(ctx context.Context, query string, args ...any) ([]*core.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, QueryCall{SQL: query, Args: args})

	if s, ok := f.lookup(query, args, true); ok {
		return s.rows, s.err
	}
	if s, ok := f.lookup(query, args, false); ok {
		return s.rows, s.err
	}
	if f.strict {
		return nil, fmt.Errorf("%w: %s %v", ErrUnexpectedStatement, query, args)
	}
	return []*core.Row{}, nil
}

// First implements core.Querier.
func (f *FakeQuerier) First(ctx context.Context, query string, args ...any) (*core.Row, error) {
	rows, err := f.All(ctx, query, args...)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (f *FakeQuerier) lookup(query string, args []any, withArgs bool) (scripted, bool) {
	for _, s := range f.responses {
		if (s.args != nil) != withArgs || !strings.Contains(query, s.match) {
			continue
		}
		if withArgs && !argsEqual(s.args, args) {
			continue
		}
		return s, true
	}
	return scripted{}, false
}

func argsEqual(want, got []any) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if core.ToString(want[i]) != core.ToString(got[i]) {
			return false
		}
	}
	return true
}

// Calls returns the statements seen so far.
func (f *FakeQuerier) Calls() []QueryCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]QueryCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsMatching returns the statements containing match.
func (f *FakeQuerier) CallsMatching(match string) []QueryCall {
	var out []QueryCall
	for _, c := range f.Calls() {
		if strings.Contains(c.SQL, match) {
			out = append(out, c)
		}
	}
	return out
}

var _ core.Querier = (*FakeQuerier)(nil)
