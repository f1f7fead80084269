package engine

import (
	"context"
	"fmt"
	"strings"

	idfdoc "github.com/fp-wemove/ingrid-iplug-dsc/internal/idf"
	"github.com/fp-wemove/ingrid-iplug-dsc/internal/mapper/index"
	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

const fileIdentifierPath = "//gmd:MD_Metadata/gmd:fileIdentifier/gco:CharacterString"

// RecordIDs returns the ids of all published records.
func (e *Engine) RecordIDs(ctx context.Context) ([]string, error) {
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}
	return e.producer.IDs(ctx)
}

// MapIDF maps the published record id to an IDF document.
// Unpublished or unknown ids fail with core.ErrRecordNotFound.
func (e *Engine) MapIDF(ctx context.Context, id string) (*idfdoc.Document, error) {
	rec, err := e.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.mapIDF(ctx, rec)
}

// MapIndex maps the published record id to an index document.
// Unpublished or unknown ids fail with core.ErrRecordNotFound.
func (e *Engine) MapIndex(ctx context.Context, id string) (*index.Document, error) {
	rec, err := e.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.mapIndex(ctx, rec)
}

func (e *Engine) resolve(ctx context.Context, id string) (*core.DatabaseRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: empty record id", core.ErrInvalidArgument)
	}
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}
	return e.producer.ByID(ctx, id)
}

func (e *Engine) mapIDF(ctx context.Context, rec core.SourceRecord) (*idfdoc.Document, error) {
	doc := idfdoc.NewDocument()
	if err := e.projector.Map(ctx, rec, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (e *Engine) mapIndex(ctx context.Context, rec core.SourceRecord) (*index.Document, error) {
	doc := index.NewDocument()
	if err := e.indexMapper().Map(ctx, rec, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// FileIdentifier returns the gmd:fileIdentifier of a mapped document, or "".
func FileIdentifier(doc *idfdoc.Document) string {
	if el := doc.FindElement(fileIdentifierPath); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}
