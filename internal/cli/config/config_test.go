package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fp-wemove/ingrid-iplug-dsc/internal/record"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/fp-wemove/ingrid-iplug-dsc/pkg/adapters/duckdb"
	_ "github.com/fp-wemove/ingrid-iplug-dsc/pkg/adapters/postgres"
	_ "github.com/fp-wemove/ingrid-iplug-dsc/pkg/adapters/sqlite"
)

// chdir switches into dir for the test so config discovery starts there.
func chdir(t *testing.T, dir string) {
	t.Helper()
	t.Chdir(dir)
	ResetConfig()
	t.Cleanup(ResetConfig)
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "ingrid-dsc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("target-type", "", "")
	fs.String("database", "", "")
	fs.String("state", "", "")
	fs.String("log-level", "", "")
	fs.String("output", "", "")
	fs.String("index-script", "", "")
	fs.Int("concurrency", 0, "")
	fs.BoolP("verbose", "v", false, "")
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Target.Type)
	assert.Equal(t, 5432, cfg.Target.Port)
	assert.Equal(t, "public", cfg.Target.Schema)
	assert.Equal(t, record.DefaultRecordSQL, cfg.Records.RecordSQL)
	assert.Equal(t, record.DefaultRecordByIDSQL, cfg.Records.RecordByIDSQL)
	assert.Equal(t, DefaultStateFile, cfg.StatePath)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "auto", cfg.OutputFormat)
	assert.Equal(t, ServerConfig{Port: 8080, Watch: true}, cfg.Server)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("CATALOG_PASSWORD", "geheim")

	writeConfig(t, dir, `
target:
  type: postgres
  host: db.example.org
  database: igc
  user: igc
  password: ${CATALOG_PASSWORD}
  options:
    sslmode: disable
records:
  record_sql: SELECT id FROM t01_object
index:
  script: preset:geobas_organisation
concurrency: 8
export_dir: out
server:
  port: 9090
  watch: false
`)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "ingrid-dsc.yaml", filepath.Base(GetConfigFileUsed()))
	assert.Equal(t, "db.example.org", cfg.Target.Host)
	assert.Equal(t, "geheim", cfg.Target.Password)
	assert.Equal(t, map[string]string{"sslmode": "disable"}, cfg.Target.Options)
	assert.Equal(t, "SELECT id FROM t01_object", cfg.Records.RecordSQL)
	assert.Equal(t, record.DefaultRecordByIDSQL, cfg.Records.RecordByIDSQL, "unset keys keep defaults")
	assert.Equal(t, "preset:geobas_organisation", cfg.Index.Script)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, "out", cfg.ExportDir)
	assert.Equal(t, ServerConfig{Port: 9090, Watch: false}, cfg.Server)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())
	other := t.TempDir()
	path := filepath.Join(other, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("target:\n  type: sqlite\n  database: catalog.db\n"), 0o600))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, GetConfigFileUsed())
	assert.Equal(t, "sqlite", cfg.Target.Type)
	assert.Equal(t, "catalog.db", cfg.Target.Path)
	assert.Equal(t, "main", cfg.Target.Schema)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeConfig(t, dir, `
target:
  type: sqlite
  database: from-file.db
concurrency: 2
log_level: warn
`)

	t.Setenv("INGRID_DSC_CONCURRENCY", "3")
	t.Setenv("INGRID_DSC_TARGET__DATABASE", "from-env.db")
	t.Setenv("INGRID_DSC_LOG_LEVEL", "error")

	t.Run("env over file", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfig("", testFlags())
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Concurrency)
		assert.Equal(t, "from-env.db", cfg.Target.Path)
		assert.Equal(t, "error", cfg.LogLevel)
	})

	t.Run("flags over env", func(t *testing.T) {
		ResetConfig()
		flags := testFlags()
		require.NoError(t, flags.Parse([]string{
			"--database", "from-flag.db",
			"--concurrency", "5",
			"--state", "state.db",
			"--index-script", "index.star",
			"-v",
		}))

		cfg, err := LoadConfig("", flags)
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.Concurrency)
		assert.Equal(t, "from-flag.db", cfg.Target.Path)
		assert.Equal(t, "state.db", cfg.StatePath)
		assert.Equal(t, "index.star", cfg.Index.Script)
		assert.True(t, cfg.Verbose)
		assert.Equal(t, "error", cfg.LogLevel, "unchanged flags do not override")
	})
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"unknown target", "target:\n  type: oracle\n", "unknown adapter type"},
		{"zero concurrency", "concurrency: 0\n", "concurrency must be at least 1"},
		{"empty record sql", "records:\n  record_sql: \"\"\n", "records.record_sql is required"},
		{"bad log level", "log_level: loud\n", "invalid log_level"},
		{"bad log format", "log_format: xml\n", "invalid log_format"},
		{"bad output", "output: html\n", "invalid output"},
		{"script and sql", "index:\n  script: preset:geobas_organisation\n  sql: SELECT * FROM t01_object WHERE id=?\n", "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			chdir(t, dir)
			writeConfig(t, dir, tt.content)

			_, err := LoadConfig("", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
			assert.Nil(t, GetCurrentConfig())
		})
	}
}

func TestLoadConfig_IndexSQL(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeConfig(t, dir, "index:\n  sql: SELECT obj_name AS title FROM t01_object WHERE id=?\n")
	t.Setenv("INGRID_DSC_CONCURRENCY", "2")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT obj_name AS title FROM t01_object WHERE id=?", cfg.Index.SQL)
	assert.Empty(t, cfg.Index.Script)
	assert.Equal(t, 2, cfg.Concurrency)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "concurrency", envKey("INGRID_DSC_CONCURRENCY"))
	assert.Equal(t, "target.host", envKey("INGRID_DSC_TARGET__HOST"))
	assert.Equal(t, "records.record_by_id_sql", envKey("INGRID_DSC_RECORDS__RECORD_BY_ID_SQL"))
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		format   string
		verbose  bool
		logDebug bool
		contains string
	}{
		{"info text", "info", "text", false, false, "level=INFO"},
		{"debug text", "debug", "text", false, true, "level=DEBUG"},
		{"verbose forces debug", "error", "text", true, true, "level=DEBUG"},
		{"json", "info", "json", false, false, `"level":"INFO"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, tt.level, tt.format, tt.verbose)

			logger.Debug("debug message")
			logger.Info("info message")

			assert.Equal(t, tt.logDebug, bytes.Contains(buf.Bytes(), []byte("debug message")))
			assert.Contains(t, buf.String(), tt.contains)
		})
	}
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}
