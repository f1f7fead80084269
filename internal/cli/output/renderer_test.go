package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMode(t *testing.T) {
	tests := []struct {
		in   string
		want OutputMode
	}{
		{"", ModeAuto},
		{"auto", ModeAuto},
		{"text", ModeText},
		{"TEXT", ModeText},
		{"markdown", ModeMarkdown},
		{"md", ModeMarkdown},
		{"json", ModeJSON},
		{" yaml ", ModeYAML},
		{"yml", ModeYAML},
		{"xml", ModeAuto},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Mode(tt.in))
		})
	}
}

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  OutputMode
		isTTY bool
		want  OutputMode
	}{
		{"auto on tty", ModeAuto, true, ModeText},
		{"auto piped", ModeAuto, false, ModeMarkdown},
		{"empty piped", "", false, ModeMarkdown},
		{"explicit json", ModeJSON, true, ModeJSON},
		{"explicit text piped", ModeText, false, ModeText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, tt.isTTY, tt.mode)
			assert.Equal(t, tt.want, r.EffectiveMode())
			assert.Equal(t, tt.isTTY, r.IsTTY())
		})
	}
}

func TestRenderer_NoColorWhenPiped(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRendererWithTTY(&out, &errOut, false, ModeText)

	r.Header(1, "Records")
	r.Success("done")
	r.StatusLine("status", "completed", StatusOK)
	r.Error("boom")

	assert.NotContains(t, out.String(), "\x1b[")
	assert.NotContains(t, errOut.String(), "\x1b[")
	assert.Contains(t, out.String(), "Records")
	assert.Contains(t, out.String(), "✓ done")
	assert.Contains(t, out.String(), "status: completed")
	assert.Contains(t, errOut.String(), "✗ boom")
}

func TestRenderer_Markdown(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &bytes.Buffer{}, false, ModeAuto)

	r.Header(2, "Run")
	r.StatusLine("status", "failed", StatusFail)
	r.Table([]string{"ID", "File identifier"}, [][]string{{"1", "uuid-1"}, {"2", "uuid-2"}})

	s := out.String()
	assert.Contains(t, s, "## Run\n")
	assert.Contains(t, s, "- **status:** failed\n")
	assert.Contains(t, s, "| ID | File identifier |")
	assert.Contains(t, s, "| 1 | uuid-1 |")
}

func TestRenderer_TableText(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &bytes.Buffer{}, false, ModeText)

	r.Table([]string{"ID"}, [][]string{{"42"}})

	assert.Contains(t, out.String(), "42")
	assert.Contains(t, out.String(), "┌")
}

func TestRenderer_Data(t *testing.T) {
	type item struct {
		ID   string `json:"id" yaml:"id"`
		Name string `json:"name" yaml:"name"`
	}
	v := []item{{ID: "1", Name: "Objekt 1"}}

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRendererWithTTY(&out, &bytes.Buffer{}, false, ModeJSON)
		handled, err := r.Data(v)
		require.NoError(t, err)
		assert.True(t, handled)
		assert.JSONEq(t, `[{"id":"1","name":"Objekt 1"}]`, out.String())
	})

	t.Run("yaml", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRendererWithTTY(&out, &bytes.Buffer{}, false, ModeYAML)
		handled, err := r.Data(v)
		require.NoError(t, err)
		assert.True(t, handled)
		assert.Equal(t, "- id: \"1\"\n  name: Objekt 1\n", out.String())
	})

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRendererWithTTY(&out, &bytes.Buffer{}, false, ModeText)
		handled, err := r.Data(v)
		require.NoError(t, err)
		assert.False(t, handled)
		assert.Empty(t, out.String())
	})
}

func TestFormatHeader(t *testing.T) {
	assert.Equal(t, "# A", FormatHeader(0, "A"))
	assert.Equal(t, "### B", FormatHeader(3, "B"))
}
