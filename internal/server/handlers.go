package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fp-wemove/ingrid-iplug-dsc/internal/engine"
	"github.com/fp-wemove/ingrid-iplug-dsc/internal/idf"
	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

type handlers struct {
	engine *engine.Engine
	store  core.Store
	logger *slog.Logger
}

// recordSummary is one entry of GET /records.
type recordSummary struct {
	ID             string `json:"id"`
	FileIdentifier string `json:"file_identifier,omitempty"`
	Mapped         bool   `json:"mapped"`
}

type indexResponse struct {
	RecordID string            `json:"record_id"`
	Fields   []core.IndexField `json:"fields"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listRecords lists the published record ids, joined with the documents
// stored by previous runs.
func (h *handlers) listRecords(w http.ResponseWriter, r *http.Request) {
	ids, err := h.engine.RecordIDs(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	docs, err := h.store.ListDocuments()
	if err != nil {
		h.fail(w, err)
		return
	}

	stored := make(map[string]*core.Document, len(docs))
	for _, d := range docs {
		stored[d.RecordID] = d
	}

	out := make([]recordSummary, 0, len(ids))
	for _, id := range ids {
		sum := recordSummary{ID: id}
		if d, ok := stored[id]; ok {
			sum.FileIdentifier = d.FileIdentifier
			sum.Mapped = true
		}
		out = append(out, sum)
	}
	writeJSON(w, http.StatusOK, out)
}

// recordIDF maps the record on request. ?stored=true serves the document of
// the last run instead; it is parsed first so damaged rows fail loudly.
func (h *handlers) recordIDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var doc *idf.Document
	var err error
	if r.URL.Query().Get("stored") == "true" {
		var stored *core.Document
		if stored, err = h.store.GetDocument(id); err == nil {
			doc, err = idf.ParseDocument([]byte(stored.IDF))
		}
	} else {
		doc, err = h.engine.MapIDF(r.Context(), id)
	}
	if err != nil {
		h.fail(w, err)
		return
	}

	body, err := doc.Bytes()
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *handlers) recordIndex(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fields []core.IndexField
	if r.URL.Query().Get("stored") == "true" {
		stored, err := h.store.GetIndexFields(id)
		if err != nil {
			h.fail(w, err)
			return
		}
		fields = stored
	} else {
		doc, err := h.engine.MapIndex(r.Context(), id)
		if err != nil {
			h.fail(w, err)
			return
		}
		fields = doc.Fields()
	}
	writeJSON(w, http.StatusOK, indexResponse{RecordID: id, Fields: fields})
}

// startRun maps all records synchronously and returns the finished run.
func (h *handlers) startRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.engine.Run(r.Context())
	if err != nil && run == nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *handlers) latestRun(w http.ResponseWriter, _ *http.Request) {
	run, err := h.store.GetLatestRun()
	if err != nil {
		h.fail(w, err)
		return
	}
	if run == nil {
		h.fail(w, core.ErrRecordNotFound)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *handlers) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.store.GetRun(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *handlers) runErrors(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.GetRun(id); err != nil {
		h.fail(w, err)
		return
	}
	errs, err := h.store.ListErrors(id)
	if err != nil {
		h.fail(w, err)
		return
	}
	if errs == nil {
		errs = []*core.RecordError{}
	}
	writeJSON(w, http.StatusOK, errs)
}

// fail maps err to a status code and writes it as JSON.
func (h *handlers) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrInvalidArgument):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
