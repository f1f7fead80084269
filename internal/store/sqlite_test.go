package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fp-wemove/ingrid-iplug-dsc/internal/testutil"
	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"), "failed to open store")
	require.NoError(t, store.InitSchema(), "failed to init schema")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "closing twice is a no-op")
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)

	_, err := store.CreateRun()
	assert.ErrorIs(t, err, errNotOpened)
	assert.ErrorIs(t, store.InitSchema(), errNotOpened)
	assert.ErrorIs(t, store.SaveDocument(&core.Document{RecordID: "1"}), errNotOpened)
	_, err = store.GetIndexFields("1")
	assert.ErrorIs(t, err, errNotOpened)
}

func TestSQLiteStore_InitSchema(t *testing.T) {
	store := setupTestStore(t)

	for _, table := range []string{"runs", "documents", "index_fields", "record_errors"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		if assert.NoError(t, err, "table %s does not exist", table) {
			_ = rows.Close()
		}
	}

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	require.NoError(t, store.InitSchema(), "migrating twice is a no-op")
}

func TestSQLiteStore_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(path))
	require.NoError(t, store.InitSchema())
	run, err := store.CreateRun()
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened := NewSQLiteStore(nil)
	require.NoError(t, reopened.Open(path))
	defer func() { _ = reopened.Close() }()
	require.NoError(t, reopened.InitSchema())

	got, err := reopened.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, path, reopened.Path())
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	tests := []struct {
		name   string
		status core.RunStatus
		stats  core.RunStats
		errMsg string
	}{
		{
			name:   "completed",
			status: core.RunStatusCompleted,
			stats:  core.RunStats{Total: 3, Mapped: 3},
		},
		{
			name:   "failed",
			status: core.RunStatusFailed,
			stats:  core.RunStats{Total: 3, Mapped: 1, Failed: 2},
			errMsg: "2 records failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestStore(t)

			run, err := store.CreateRun()
			require.NoError(t, err)
			assert.NotEmpty(t, run.ID)
			assert.Equal(t, core.RunStatusRunning, run.Status)
			assert.Nil(t, run.CompletedAt)

			require.NoError(t, store.CompleteRun(run.ID, tt.status, tt.stats, tt.errMsg))

			got, err := store.GetRun(run.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.stats, got.Stats)
			assert.Equal(t, tt.errMsg, got.Error)
			require.NotNil(t, got.CompletedAt)
			assert.WithinDuration(t, run.StartedAt, got.StartedAt, time.Second)
		})
	}
}

func TestSQLiteStore_RunNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetRun("missing")
	assert.ErrorContains(t, err, "run not found")
	assert.ErrorIs(t, err, core.ErrRecordNotFound)
	assert.ErrorContains(t, store.CompleteRun("missing", core.RunStatusCompleted, core.RunStats{}, ""), "run not found")
}

func TestSQLiteStore_GetLatestRun(t *testing.T) {
	store := setupTestStore(t)

	latest, err := store.GetLatestRun()
	require.NoError(t, err)
	assert.Nil(t, latest, "no runs yet")

	_, err = store.CreateRun()
	require.NoError(t, err)
	second, err := store.CreateRun()
	require.NoError(t, err)

	latest, err = store.GetLatestRun()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
}

func TestSQLiteStore_Documents(t *testing.T) {
	store := setupTestStore(t)
	run, err := store.CreateRun()
	require.NoError(t, err)

	require.NoError(t, store.SaveDocument(&core.Document{
		RecordID:       "2",
		RunID:          run.ID,
		FileIdentifier: "uuid-2",
		IDF:            "<idf:html/>",
	}))
	require.NoError(t, store.SaveDocument(&core.Document{
		RecordID:       "1",
		FileIdentifier: "uuid-1",
		IDF:            "<idf:html>old</idf:html>",
	}))
	require.NoError(t, store.SaveDocument(&core.Document{
		RecordID:       "1",
		FileIdentifier: "uuid-1",
		IDF:            "<idf:html>new</idf:html>",
	}))

	doc, err := store.GetDocument("1")
	require.NoError(t, err)
	assert.Equal(t, "<idf:html>new</idf:html>", doc.IDF, "saving again replaces the document")
	assert.Equal(t, "", doc.RunID)
	assert.False(t, doc.MappedAt.IsZero())

	doc, err = store.GetDocument("2")
	require.NoError(t, err)
	assert.Equal(t, run.ID, doc.RunID)

	docs, err := store.ListDocuments()
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "1", docs[0].RecordID)
	assert.Equal(t, "uuid-2", docs[1].FileIdentifier)
	assert.Empty(t, docs[0].IDF, "listing omits the document body")

	_, err = store.GetDocument("3")
	assert.ErrorIs(t, err, core.ErrRecordNotFound)

	assert.ErrorIs(t, store.SaveDocument(&core.Document{}), core.ErrInvalidArgument)
}

func TestSQLiteStore_IndexFields(t *testing.T) {
	store := setupTestStore(t)

	fields := []core.IndexField{
		{Name: "title", Value: "Bodenkarte"},
		{Name: "t1", Value: "20200101"},
		{Name: "title", Value: "Zweiter Titel"},
	}
	require.NoError(t, store.SaveIndexFields("1", fields))

	got, err := store.GetIndexFields("1")
	require.NoError(t, err)
	assert.Equal(t, fields, got)

	require.NoError(t, store.SaveIndexFields("1", fields[:1]))
	got, err = store.GetIndexFields("1")
	require.NoError(t, err)
	assert.Equal(t, fields[:1], got, "saving replaces previous fields")

	_, err = store.GetIndexFields("2")
	assert.ErrorIs(t, err, core.ErrRecordNotFound)
}

func TestSQLiteStore_IndexFieldsOfMappedRecordWithoutFields(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.SaveDocument(&core.Document{RecordID: "5", IDF: "<idf/>", MappedAt: time.Now()}))
	require.NoError(t, store.SaveIndexFields("5", nil))

	fields, err := store.GetIndexFields("5")
	require.NoError(t, err)
	assert.NotNil(t, fields)
	assert.Empty(t, fields)
}

func TestSQLiteStore_RecordErrors(t *testing.T) {
	store := setupTestStore(t)
	run, err := store.CreateRun()
	require.NoError(t, err)
	other, err := store.CreateRun()
	require.NoError(t, err)

	require.NoError(t, store.RecordError(run.ID, "4", "query failed"))
	require.NoError(t, store.RecordError(run.ID, "9", "script failed"))
	require.NoError(t, store.RecordError(other.ID, "4", "other run"))

	errs, err := store.ListErrors(run.ID)
	require.NoError(t, err)
	require.Len(t, errs, 2)
	assert.Equal(t, "4", errs[0].RecordID)
	assert.Equal(t, "query failed", errs[0].Error)
	assert.Equal(t, "9", errs[1].RecordID)
	assert.False(t, errs[1].CreatedAt.IsZero())

	assert.Error(t, store.RecordError("no-such-run", "1", "x"), "foreign keys are enforced")
}
