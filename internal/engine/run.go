package engine

// run.go - Mapping every published record in one pass

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gosimple/slug"
	"golang.org/x/sync/errgroup"

	"github.com/fp-wemove/ingrid-iplug-dsc/internal/record"
	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// Run maps all published records to IDF and index documents and stores
// them. A failing record is recorded against the run and does not stop the
// others; the run completes as failed when any record failed. The returned
// error is reserved for failures of the run itself.
func (e *Engine) Run(ctx context.Context) (*core.Run, error) {
	e.logger.Info("starting run", "concurrency", e.concurrency)

	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}

	run, err := e.store.CreateRun()
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	e.logger.Debug("created run", "run_id", run.ID)

	ids, err := e.producer.IDs(ctx)
	if err != nil {
		_ = e.store.CompleteRun(run.ID, core.RunStatusFailed, core.RunStats{}, err.Error())
		run, _ = e.store.GetRun(run.ID)
		return run, err
	}

	if e.exportDir != "" {
		if err := os.MkdirAll(e.exportDir, 0o750); err != nil {
			err = fmt.Errorf("failed to create export directory: %w", err)
			_ = e.store.CompleteRun(run.ID, core.RunStatusFailed, core.RunStats{Total: len(ids)}, err.Error())
			run, _ = e.store.GetRun(run.ID)
			return run, err
		}
	}

	var mapped, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, id := range ids {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			err := e.processRecord(gctx, run.ID, id)
			if err == nil {
				mapped.Add(1)
				return nil
			}
			if gctx.Err() != nil {
				return gctx.Err()
			}

			failed.Add(1)
			e.logger.Warn("record failed", "run_id", run.ID, "record_id", id, "error", err.Error())
			if recErr := e.store.RecordError(run.ID, id, err.Error()); recErr != nil {
				e.logger.Error("failed to record error", "record_id", id, "error", recErr.Error())
			}
			return nil
		})
	}
	runErr := g.Wait()

	stats := core.RunStats{Total: len(ids), Mapped: int(mapped.Load()), Failed: int(failed.Load())}

	switch {
	case runErr != nil && errors.Is(runErr, context.Canceled):
		e.logger.Info("run cancelled", "run_id", run.ID)
		_ = e.store.CompleteRun(run.ID, core.RunStatusCancelled, stats, runErr.Error())
	case runErr != nil:
		e.logger.Info("run failed", "run_id", run.ID, "error", runErr.Error())
		_ = e.store.CompleteRun(run.ID, core.RunStatusFailed, stats, runErr.Error())
	case stats.Failed > 0:
		msg := fmt.Sprintf("%d of %d record(s) failed to map", stats.Failed, stats.Total)
		e.logger.Info("run failed", "run_id", run.ID, "failed", stats.Failed, "total", stats.Total)
		_ = e.store.CompleteRun(run.ID, core.RunStatusFailed, stats, msg)
	default:
		e.logger.Info("run completed", "run_id", run.ID, "mapped", stats.Mapped)
		_ = e.store.CompleteRun(run.ID, core.RunStatusCompleted, stats, "")
	}

	run, _ = e.store.GetRun(run.ID)
	return run, runErr
}

// processRecord maps one record and persists both documents.
func (e *Engine) processRecord(ctx context.Context, runID, id string) error {
	rec := core.NewDatabaseRecord(id)

	doc, err := e.mapIDF(ctx, rec)
	if err != nil {
		return &record.MappingError{RecordID: id, Err: fmt.Errorf("idf: %w", err)}
	}
	fields, err := e.mapIndex(ctx, rec)
	if err != nil {
		return &record.MappingError{RecordID: id, Err: fmt.Errorf("index: %w", err)}
	}

	data, err := doc.Bytes()
	if err != nil {
		return &record.MappingError{RecordID: id, Err: err}
	}

	fileID := FileIdentifier(doc)
	if err := e.store.SaveDocument(&core.Document{
		RecordID:       id,
		RunID:          runID,
		FileIdentifier: fileID,
		IDF:            string(data),
		MappedAt:       time.Now().UTC(),
	}); err != nil {
		return &record.MappingError{RecordID: id, Err: err}
	}
	if err := e.store.SaveIndexFields(id, fields.Fields()); err != nil {
		return &record.MappingError{RecordID: id, Err: err}
	}

	if e.exportDir != "" {
		if err := e.export(id, fileID, data); err != nil {
			return &record.MappingError{RecordID: id, Err: err}
		}
	}
	return nil
}

// ExportPath returns the export file of a record: the slug of its file
// identifier, or of the record id when the document has none.
func ExportPath(dir, recordID, fileID string) string {
	name := slug.Make(fileID)
	if name == "" {
		name = slug.Make("record-" + recordID)
	}
	return filepath.Join(dir, name+".xml")
}

func (e *Engine) export(id, fileID string, data []byte) error {
	path := ExportPath(e.exportDir, id, fileID)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to export %s: %w", path, err)
	}
	e.logger.Debug("exported record", "record_id", id, "path", path)
	return nil
}
