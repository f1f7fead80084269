package script

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fp-wemove/ingrid-iplug-dsc/internal/codelist"
	"github.com/fp-wemove/ingrid-iplug-dsc/internal/mapper/index"
	"github.com/fp-wemove/ingrid-iplug-dsc/internal/testutil"
	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

func newDeps(t *testing.T, q *testutil.FakeQuerier) Deps {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	return Deps{SQL: q, Syslists: codelist.New(q, logger), Logger: logger}
}

func mapWith(t *testing.T, q *testutil.FakeQuerier, src, id string) (*index.Document, error) {
	t.Helper()
	m, err := Compile("test.star", []byte(src), newDeps(t, q))
	require.NoError(t, err)
	doc := index.NewDocument()
	return doc, m.Map(context.Background(), core.NewDatabaseRecord(id), doc)
}

type fileRecord struct{}

func (fileRecord) Kind() core.RecordKind { return "file" }
func (fileRecord) ID() string            { return "1" }

func TestGeobasOrganisationPreset(t *testing.T) {
	q := testutil.NewFakeQuerier()
	q.OnArgs("FROM organisation WHERE id=?", []any{5}, core.RowOf(
		"id", 5,
		"aktion", "neu",
		"historie", nil,
		"name", "WSA Kiel",
		"dienststellenid", "D-17",
		"strasse", "Hafenstraße 1",
		"plz", "24103",
		"bundesland", 1,
		"ort", "Kiel",
		"organisationparent", 2,
		"original", "",
	))
	q.OnArgs("FROM bundesland WHERE id=?", []any{1}, core.RowOf("id", 1, "name", "Schleswig-Holstein"))

	m, err := Load(PresetPrefix+"geobas_organisation", newDeps(t, q))
	require.NoError(t, err)
	assert.Equal(t, "geobas_organisation.star", m.Name())

	doc := index.NewDocument()
	require.NoError(t, m.Map(context.Background(), core.NewDatabaseRecord("5"), doc))

	assert.Equal(t, []core.IndexField{
		{Name: "organisation.id", Value: "5"},
		{Name: "organisation.aktion", Value: "neu"},
		{Name: "organisation.name", Value: "WSA Kiel"},
		{Name: "organisation.dienststellenid", Value: "D-17"},
		{Name: "organisation.strasse", Value: "Hafenstraße 1"},
		{Name: "organisation.plz", Value: "24103"},
		{Name: "organisation.bundesland", Value: "1"},
		{Name: "organisation.ort", Value: "Kiel"},
		{Name: "organisation.organisationparent", Value: "2"},
		{Name: "bundesland.id", Value: "1"},
		{Name: "bundesland.name", Value: "Schleswig-Holstein"},
		{Name: "title", Value: "Stammdaten ORGANISATION: WSA Kiel, D-17"},
		{Name: "summary", Value: "WSA Kiel, D-17, Hafenstraße 1, 24103 Kiel, Schleswig-Holstein"},
	}, doc.Fields())
}

func TestGeobasOrganisationPreset_UnknownRecord(t *testing.T) {
	q := testutil.NewFakeQuerier()
	m, err := Load(PresetPrefix+"geobas_organisation", newDeps(t, q))
	require.NoError(t, err)

	doc := index.NewDocument()
	require.NoError(t, m.Map(context.Background(), core.NewDatabaseRecord("99"), doc))
	assert.Zero(t, doc.Len())
	assert.Empty(t, q.CallsMatching("bundesland"))
}

func TestMapper_Helpers(t *testing.T) {
	q := testutil.NewFakeQuerier()
	q.OnArgs("FROM t01_object WHERE id=?", []any{3}, core.RowOf(
		"ID", 3, "OBJ_CLASS", 1, "TIME_FROM", "20200101000000000", "TIME_TYPE", "seit", "OBJ_DESCR", "",
	))
	q.OnArgs("FROM sys_list", []any{8000, 1},
		core.RowOf("name", "Karte", "lang_id", "de"),
		core.RowOf("name", "Map", "lang_id", "en"),
	)

	src := `
obj = SQL.first("SELECT * FROM t01_object WHERE id=?", (record_id,))
IDX.add("id", obj["id"])
IDX.add("class", obj.get("obj_class"))
IDX.add("descr", obj.get("obj_descr"))
IDX.add("missing", obj.get("nope", "fallback"))
IDX.add("has_descr", has_value(obj["obj_descr"]))
IDX.add("has_class", obj.has("obj_class"))
TRANSF.add_syslist_entry_name(8000, obj["obj_class"], ["class_name"], "class_lang")
TRANSF.process_time_fields(obj["time_from"], obj.get("time_to"), obj["time_type"])
IDX.add("tmp", "x")
IDX.remove("tmp")
none = SQL.first("SELECT * FROM t01_object WHERE id=?", [0])
IDX.add("none", none)
if SQL.all("SELECT * FROM empty") == []:
    IDX.add("empty", "yes")
`
	doc, err := mapWith(t, q, src, "3")
	require.NoError(t, err)

	assert.Equal(t, []core.IndexField{
		{Name: "id", Value: "3"},
		{Name: "class", Value: "1"},
		{Name: "missing", Value: "fallback"},
		{Name: "has_descr", Value: "false"},
		{Name: "has_class", Value: "true"},
		{Name: "class_name", Value: "Karte"},
		{Name: "class_lang", Value: "de"},
		{Name: "class_name", Value: "Map"},
		{Name: "class_lang", Value: "en"},
		{Name: "t1", Value: "20200101"},
		{Name: "t2", Value: index.InfiniteFuture},
		{Name: "empty", Value: "yes"},
	}, doc.Fields())
}

func TestMapper_RejectsNonDatabaseRecord(t *testing.T) {
	m, err := Compile("test.star", []byte(`IDX.add("a", "b")`), newDeps(t, testutil.NewFakeQuerier()))
	require.NoError(t, err)

	err = m.Map(context.Background(), fileRecord{}, index.NewDocument())
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "syntax", src: "for x in"},
		{name: "undefined global", src: `IDX.add("a", unknown_global)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile("broken.star", []byte(tt.src), Deps{})
			require.Error(t, err)
			var scriptErr *ScriptError
			require.ErrorAs(t, err, &scriptErr)
			assert.Equal(t, "broken.star", scriptErr.Script)
			assert.Contains(t, err.Error(), "index script broken.star")
		})
	}
}

func TestMapper_RuntimeErrors(t *testing.T) {
	q := testutil.NewFakeQuerier()
	q.Fail("FROM broken", assert.AnError)

	tests := []struct {
		name    string
		src     string
		wantErr error
		wantMsg string
	}{
		{name: "fail", src: `fail("no organisation")`, wantMsg: "no organisation"},
		{name: "query error", src: `SQL.all("SELECT * FROM broken")`, wantErr: assert.AnError},
		{name: "bad params", src: `SQL.all("SELECT 1", 5)`, wantMsg: "params must be a list or tuple"},
		{name: "bad fields", src: `TRANSF.add_syslist_entry_name(1, 2, 3)`, wantMsg: "fields must be a string or a list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mapWith(t, q, tt.src, "4")
			require.Error(t, err)

			var scriptErr *ScriptError
			require.ErrorAs(t, err, &scriptErr)
			assert.Equal(t, "4", scriptErr.Record)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestMapper_Canceled(t *testing.T) {
	m, err := Compile("loop.star", []byte("while True:\n    pass\n"), newDeps(t, testutil.NewFakeQuerier()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = m.Map(ctx, core.NewDatabaseRecord("1"), index.NewDocument())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMapper_Concurrent(t *testing.T) {
	q := testutil.NewFakeQuerier()
	m, err := Compile("concurrent.star", []byte(`IDX.add("id", record_id)`), newDeps(t, q))
	require.NoError(t, err)

	var wg sync.WaitGroup
	docs := make([]*index.Document, 20)
	for i := range docs {
		docs[i] = index.NewDocument()
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, m.Map(context.Background(), core.NewDatabaseRecord(string(rune('a'+i))), docs[i]))
		}(i)
	}
	wg.Wait()

	for i, doc := range docs {
		assert.Equal(t, string(rune('a'+i)), doc.Get("id"))
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.star")
	require.NoError(t, os.WriteFile(path, []byte(`IDX.add("source", "file")`), 0o600))

	m, err := Load(path, Deps{})
	require.NoError(t, err)
	assert.Equal(t, "custom.star", m.Name())

	doc := index.NewDocument()
	require.NoError(t, m.Map(context.Background(), core.NewDatabaseRecord("1"), doc))
	assert.Equal(t, "file", doc.Get("source"))

	_, err = Load(filepath.Join(dir, "missing.star"), Deps{})
	assert.ErrorContains(t, err, "failed to read index script")

	_, err = Load(PresetPrefix+"nope", Deps{})
	assert.ErrorContains(t, err, "geobas_organisation")
}

func TestPresets(t *testing.T) {
	assert.Contains(t, Presets(), "geobas_organisation")

	src, err := Preset("geobas_organisation")
	require.NoError(t, err)
	assert.Contains(t, string(src), "Stammdaten ORGANISATION")
}
