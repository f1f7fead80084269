package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fp-wemove/ingrid-iplug-dsc/internal/engine"
	"github.com/fp-wemove/ingrid-iplug-dsc/internal/testutil"
	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

func testCatalog() *testutil.FakeQuerier {
	q := testutil.NewFakeQuerier()
	q.OnArgs("publish_id=1", nil, core.RowOf("id", 1), core.RowOf("id", 2))
	for _, id := range []int{1, 2} {
		q.OnArgs("AND id=?", []any{id}, core.RowOf("id", id))
		q.OnArgs("FROM t01_object WHERE id=?", []any{id}, core.RowOf(
			"id", id,
			"obj_uuid", "uuid-"+core.ToString(id),
			"obj_class", "0",
			"obj_name", "Objekt "+core.ToString(id),
		))
	}
	return q
}

func setupTestServer(t *testing.T, cfg engine.Config) (*Server, *engine.Engine) {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	if cfg.Querier == nil {
		cfg.Querier = testCatalog()
	}
	cfg.StatePath = ":memory:"
	cfg.Logger = logger

	eng, err := engine.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	return NewServer(Config{Engine: eng, Logger: logger}), eng
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	srv, _ := setupTestServer(t, engine.Config{})
	rec := do(t, srv.Handler(), http.MethodGet, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_RecordIDF(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		wantStatus  int
		wantType    string
		wantBody    []string
		notWantBody []string
	}{
		{
			name:       "published record",
			path:       "/records/1/idf",
			wantStatus: http.StatusOK,
			wantType:   "application/xml",
			wantBody:   []string{"<idf:html", "<gco:CharacterString>uuid-1</gco:CharacterString>", "Objekt 1"},
		},
		{
			name:        "unpublished record",
			path:        "/records/99/idf",
			wantStatus:  http.StatusNotFound,
			wantType:    "application/json",
			wantBody:    []string{"record not found"},
			notWantBody: []string{"<idf:html"},
		},
		{
			name:       "not stored yet",
			path:       "/records/1/idf?stored=true",
			wantStatus: http.StatusNotFound,
			wantType:   "application/json",
		},
	}

	srv, _ := setupTestServer(t, engine.Config{})
	h := srv.Handler()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.path)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), tt.wantType), rec.Header().Get("Content-Type"))
			for _, want := range tt.wantBody {
				assert.Contains(t, rec.Body.String(), want)
			}
			for _, notWant := range tt.notWantBody {
				assert.NotContains(t, rec.Body.String(), notWant)
			}
		})
	}
}

func TestServer_RecordIndex(t *testing.T) {
	srv, _ := setupTestServer(t, engine.Config{})
	rec := do(t, srv.Handler(), http.MethodGet, "/records/2/index")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp indexResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2", resp.RecordID)
	assert.Contains(t, resp.Fields, core.IndexField{Name: "title", Value: "Objekt 2"})

	rec = do(t, srv.Handler(), http.MethodGet, "/records/3/index")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_RunLifecycle(t *testing.T) {
	srv, _ := setupTestServer(t, engine.Config{})
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/runs/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code, "no run yet")

	rec = do(t, h, http.MethodGet, "/records")
	require.Equal(t, http.StatusOK, rec.Code)
	var before []recordSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &before))
	assert.Equal(t, []recordSummary{{ID: "1"}, {ID: "2"}}, before)

	rec = do(t, h, http.MethodPost, "/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	var run core.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, core.RunStatusCompleted, run.Status)
	assert.Equal(t, 2, run.Stats.Mapped)

	rec = do(t, h, http.MethodGet, "/runs/latest")
	require.Equal(t, http.StatusOK, rec.Code)
	var latest core.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	assert.Equal(t, run.ID, latest.ID)

	rec = do(t, h, http.MethodGet, "/runs/"+run.ID)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/runs/"+run.ID+"/errors")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/runs/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/records")
	require.Equal(t, http.StatusOK, rec.Code)
	var after []recordSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	assert.Equal(t, []recordSummary{
		{ID: "1", FileIdentifier: "uuid-1", Mapped: true},
		{ID: "2", FileIdentifier: "uuid-2", Mapped: true},
	}, after)

	rec = do(t, h, http.MethodGet, "/records/1/idf?stored=true")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "uuid-1")

	rec = do(t, h, http.MethodGet, "/records/1/index?stored=true")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Objekt 1")
}

func TestServer_StoredIndexWithoutFields(t *testing.T) {
	script := filepath.Join(t.TempDir(), "empty.star")
	require.NoError(t, os.WriteFile(script, []byte("# adds no fields\n"), 0o600))
	srv, eng := setupTestServer(t, engine.Config{IndexScript: script})
	h := srv.Handler()

	_, err := eng.Run(context.Background())
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/records/1/index?stored=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"record_id":"1","fields":[]}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/records/7/index?stored=true")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_StoredIDFDamaged(t *testing.T) {
	srv, eng := setupTestServer(t, engine.Config{})
	require.NoError(t, eng.GetStateStore().SaveDocument(&core.Document{RecordID: "1", IDF: "<html><body/></html>"}))

	rec := do(t, srv.Handler(), http.MethodGet, "/records/1/idf?stored=true")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "root element is not idf:html")
}

func TestServer_CatalogError(t *testing.T) {
	q := testCatalog()
	q.Fail("FROM t01_object WHERE id=?", assert.AnError)
	srv, _ := setupTestServer(t, engine.Config{Querier: q})

	rec := do(t, srv.Handler(), http.MethodGet, "/records/1/idf")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), assert.AnError.Error())
}

func TestServer_WatchScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.star")
	require.NoError(t, os.WriteFile(path, []byte(`IDX.add("version", "1")`), 0o600))

	srv, eng := setupTestServer(t, engine.Config{IndexScript: path})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.watchScript(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	version := func() string {
		doc, err := eng.MapIndex(context.Background(), "1")
		if err != nil {
			return ""
		}
		return doc.Get("version")
	}
	require.Equal(t, "1", version())

	// give the watcher time to register before the write
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(`IDX.add("version", "2")`), 0o600)
		return version() == "2"
	}, 5*time.Second, 200*time.Millisecond)
}

func TestServer_Serve_Shutdown(t *testing.T) {
	srv, _ := setupTestServer(t, engine.Config{})
	srv.port = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
