package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/adapter"
	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  adapter.Config
		want string
	}{
		{"empty path", adapter.Config{}, ":memory:"},
		{"memory", adapter.Config{Path: ":memory:"}, ":memory:"},
		{"file", adapter.Config{Path: "/data/igc.sqlite"}, "/data/igc.sqlite"},
		{
			name: "pragmas",
			cfg: adapter.Config{
				Path:    "/data/igc.sqlite",
				Options: map[string]string{"foreign_keys": "1", "busy_timeout": "5000"},
			},
			want: "file:/data/igc.sqlite?_pragma=busy_timeout%285000%29&_pragma=foreign_keys%281%29",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildDSN(tt.cfg))
		})
	}
}

func TestAdapter_QueryCatalog(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, core.AdapterConfig{Path: filepath.Join(t.TempDir(), "igc.sqlite")}))
	defer func() { _ = adp.Close() }()

	require.NoError(t, adp.Exec(ctx, `CREATE TABLE t01_object (id INTEGER, obj_name TEXT, dataset_abstract TEXT)`))
	require.NoError(t, adp.Exec(ctx, `INSERT INTO t01_object VALUES (?, ?, ?)`, 1, "Bodenkarte", nil))

	rows, err := adp.Query(ctx, "SELECT * FROM t01_object WHERE id=?", 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bodenkarte", rows[0].String("obj_name"))
	assert.Equal(t, "1", rows[0].String("id"))
	assert.False(t, rows[0].Has("dataset_abstract"))
}

func TestAdapter_InMemory(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, core.AdapterConfig{}))
	defer func() { _ = adp.Close() }()

	// the table must survive across statements on the single connection
	require.NoError(t, adp.Exec(ctx, "CREATE TABLE x (id INTEGER)"))
	require.NoError(t, adp.Exec(ctx, "INSERT INTO x VALUES (1)"))
	rows, err := adp.Query(ctx, "SELECT id FROM x")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestAdapter_Registry(t *testing.T) {
	assert.True(t, adapter.IsRegistered("sqlite"))

	adp, err := adapter.NewAdapter(core.AdapterConfig{Type: "sqlite"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", adp.DialectName())
}
