// Package engine hosts the catalog mappers.
// It resolves published records, maps them to IDF and index documents and
// persists the results of a run.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fp-wemove/ingrid-iplug-dsc/internal/codelist"
	"github.com/fp-wemove/ingrid-iplug-dsc/internal/mapper/idf"
	"github.com/fp-wemove/ingrid-iplug-dsc/internal/mapper/index"
	"github.com/fp-wemove/ingrid-iplug-dsc/internal/record"
	"github.com/fp-wemove/ingrid-iplug-dsc/internal/script"
	"github.com/fp-wemove/ingrid-iplug-dsc/internal/sqlutil"
	"github.com/fp-wemove/ingrid-iplug-dsc/internal/store"
	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/adapter"
	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// DefaultConcurrency is the number of records mapped in parallel when the
// configuration leaves it unset.
const DefaultConcurrency = 4

// Engine maps catalog records.
type Engine struct {
	// Database adapter (lazy initialized)
	db          adapter.Adapter
	dbConfig    adapter.Config
	dbConnected bool
	dbMu        sync.Mutex

	logger *slog.Logger
	store  core.Store

	records     core.RecordsConfig
	indexScript string
	indexSQL    string
	concurrency int
	exportDir   string

	// Services built on the catalog connection.
	sql       core.Querier
	codes     *codelist.Translator
	producer  *record.Producer
	projector *idf.Projector

	indexMu sync.RWMutex
	indexer index.Mapper
}

// Config holds engine configuration.
type Config struct {
	// Target is the catalog database.
	Target core.TargetConfig
	// Records holds the statements enumerating and resolving records.
	Records core.RecordsConfig
	// IndexScript selects a Starlark index script ("preset:<name>" or a file).
	// Empty uses IndexSQL or, without it, the built-in object mapper.
	IndexScript string
	// IndexSQL is a statement taking the record id; every column of its
	// first row becomes an index field.
	IndexSQL string
	// StatePath is the path to the SQLite state database (":memory:" for none).
	StatePath string
	// Concurrency bounds the records mapped in parallel during Run.
	Concurrency int
	// ExportDir receives one XML file per mapped record when set.
	ExportDir string
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger

	// Querier replaces the adapter connection, e.g. for embedding or tests.
	Querier core.Querier
}

// New creates a new engine with lazy database connection.
// The catalog is only connected when a record is mapped or listed.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	statePath := cfg.StatePath
	if statePath == "" {
		statePath = ":memory:"
	}

	logger.Debug("initializing engine", "target_type", cfg.Target.Type, "state_path", statePath)

	st := store.NewSQLiteStore(logger)
	if err := st.Open(statePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := st.InitSchema(); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	records := cfg.Records
	if records.RecordSQL == "" {
		records.RecordSQL = record.DefaultRecordSQL
	}
	if records.RecordByIDSQL == "" {
		records.RecordByIDSQL = record.DefaultRecordByIDSQL
	}

	dbConfig := cfg.Target.AdapterConfig()
	if dbConfig.Type == "" {
		dbConfig.Type = "postgres"
	}

	e := &Engine{
		dbConfig:    dbConfig,
		logger:      logger,
		store:       st,
		records:     records,
		indexScript: cfg.IndexScript,
		indexSQL:    cfg.IndexSQL,
		concurrency: concurrency,
		exportDir:   cfg.ExportDir,
	}

	if cfg.Querier != nil {
		if err := e.initServices(cfg.Querier); err != nil {
			_ = st.Close()
			return nil, err
		}
		e.dbConnected = true
	}
	return e, nil
}

// ensureDBConnected lazily connects to the catalog and builds the mappers.
func (e *Engine) ensureDBConnected(ctx context.Context) error {
	e.dbMu.Lock()
	defer e.dbMu.Unlock()

	if e.dbConnected {
		return nil
	}

	e.logger.Debug("connecting to catalog", "adapter_type", e.dbConfig.Type)

	db, err := adapter.NewAdapter(e.dbConfig, e.logger)
	if err != nil {
		return fmt.Errorf("failed to create database adapter: %w", err)
	}

	if err := db.Connect(ctx, e.dbConfig); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := e.initServices(sqlutil.New(db, e.logger)); err != nil {
		_ = db.Close()
		return err
	}

	e.db = db
	e.dbConnected = true

	e.logger.Debug("catalog connected", "dialect", db.DialectName())
	return nil
}

func (e *Engine) initServices(q core.Querier) error {
	e.sql = q
	e.codes = codelist.New(q, e.logger)
	e.producer = record.NewProducer(q, e.records, e.logger)
	e.projector = idf.NewProjector(idf.Deps{SQL: q, Translator: e.codes, Logger: e.logger})

	indexer, err := e.loadIndexMapper()
	if err != nil {
		return err
	}
	e.indexer = indexer
	return nil
}

// loadIndexMapper compiles the configured script. Without one it uses the
// configured index statement, and the built-in object mapper last.
func (e *Engine) loadIndexMapper() (index.Mapper, error) {
	if e.indexScript == "" {
		if e.indexSQL != "" {
			return index.NewSimpleMapper(e.sql, e.indexSQL), nil
		}
		return index.NewObjectMapper(index.ObjectDeps{SQL: e.sql, Syslists: e.codes, Logger: e.logger}), nil
	}
	m, err := script.Load(e.indexScript, script.Deps{
		SQL:      e.sql,
		Syslists: e.codes,
		Logger:   e.logger,
		PoolSize: e.concurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load index script %s: %w", e.indexScript, err)
	}
	return m, nil
}

// ReloadIndexScript recompiles the configured index script. On failure the
// previous mapper stays active. Before the catalog is connected this is a
// no-op; the script is loaded on connect.
func (e *Engine) ReloadIndexScript() error {
	e.dbMu.Lock()
	defer e.dbMu.Unlock()

	if !e.dbConnected || e.indexScript == "" {
		return nil
	}

	m, err := e.loadIndexMapper()
	if err != nil {
		return err
	}

	e.indexMu.Lock()
	e.indexer = m
	e.indexMu.Unlock()

	e.logger.Info("index script reloaded", "script", e.indexScript)
	return nil
}

// IndexScript returns the configured index script location.
func (e *Engine) IndexScript() string { return e.indexScript }

func (e *Engine) indexMapper() index.Mapper {
	e.indexMu.RLock()
	defer e.indexMu.RUnlock()
	return e.indexer
}

// Close releases all resources.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")

	var errs []error
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing engine: %v", errs)
	}
	return nil
}

// GetStateStore returns the state store.
func (e *Engine) GetStateStore() core.Store {
	return e.store
}
