// Package testutil provides helpers for CLI tests: a throwaway project with
// a SQLite catalog, and renderers that capture their output.
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fp-wemove/ingrid-iplug-dsc/internal/cli/output"
	"github.com/fp-wemove/ingrid-iplug-dsc/internal/testutil"
)

// SetupTestProject creates a temporary project directory holding a SQLite
// catalog and an ingrid-dsc.yaml pointing at it. extraConfig is appended to
// the generated config file.
func SetupTestProject(t *testing.T, extraConfig string) string {
	t.Helper()

	dir := t.TempDir()
	catalog := testutil.NewSQLiteCatalog(t)

	cfg := fmt.Sprintf(`target:
  type: sqlite
  path: %q
state_path: %q
log_level: error
%s`, catalog, filepath.Join(dir, ".ingrid-dsc", "state.db"), extraConfig)

	if err := os.WriteFile(filepath.Join(dir, "ingrid-dsc.yaml"), []byte(cfg), 0o600); err != nil {
		t.Fatalf("failed to create ingrid-dsc.yaml: %v", err)
	}
	return dir
}

// TestRenderer is a Renderer whose output lands in buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a capturing renderer with the given mode and terminal state.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	tr := &TestRenderer{Out: &bytes.Buffer{}, ErrOut: &bytes.Buffer{}}
	tr.Renderer = output.NewRendererWithTTY(tr.Out, tr.ErrOut, isTTY, mode)
	return tr
}

// NewTestRendererAuto renders like a piped command: auto mode, no terminal.
func NewTestRendererAuto() *TestRenderer { return NewTestRenderer(output.ModeAuto, false) }

// NewTestRendererText renders styled text as on a terminal.
func NewTestRendererText() *TestRenderer { return NewTestRenderer(output.ModeText, true) }

// NewTestRendererMarkdown renders markdown.
func NewTestRendererMarkdown() *TestRenderer { return NewTestRenderer(output.ModeMarkdown, false) }

// Output returns what was written to standard output.
func (tr *TestRenderer) Output() string { return tr.Out.String() }

// ErrorOutput returns what was written to standard error.
func (tr *TestRenderer) ErrorOutput() string { return tr.ErrOut.String() }

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI fails when s carries terminal escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	assert.False(t, ansiPattern.MatchString(s), "unexpected ANSI escape codes in %q", s)
}

// AssertContains fails unless s contains want.
func AssertContains(t *testing.T, s, want string) {
	t.Helper()
	assert.Contains(t, s, want)
}

// AssertNotContains fails when s contains unwanted.
func AssertNotContains(t *testing.T, s, unwanted string) {
	t.Helper()
	assert.NotContains(t, s, unwanted)
}

// AssertValidMarkdown checks code fences are balanced, headers are not
// empty and every pipe table row has the column count of its header.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	assert.Zero(t, strings.Count(md, "```")%2, "unbalanced code fences")

	columns, inFence := 0, false
	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}

		if !strings.HasPrefix(trimmed, "|") {
			columns = 0
			continue
		}
		n := strings.Count(trimmed, "|") - 1
		if columns == 0 {
			columns = n
		} else if n != columns {
			t.Errorf("table row at line %d has %d columns, header has %d: %q", i+1, n, columns, line)
		}
	}
}

// AssertOutputMode checks the captured output fits mode. Only terminal text
// may carry escape codes.
func AssertOutputMode(t *testing.T, tr *TestRenderer, mode output.OutputMode) {
	t.Helper()
	if mode == output.ModeText && tr.IsTTY() {
		return
	}
	AssertNoANSI(t, tr.Output()+tr.ErrorOutput())
}
