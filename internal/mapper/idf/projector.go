// Package idf projects IGC catalog objects onto ISO 19139 metadata inside an
// IDF document.
//
// A Projector issues a fixed sequence of read-only lookups for one object and
// appends a gmd:MD_Metadata tree to the body of the supplied document.
// Fragments whose source value is absent are skipped. The projector holds
// only its collaborators and is safe for concurrent use.
package idf

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	idfdoc "github.com/fp-wemove/ingrid-iplug-dsc/internal/idf"
	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

const codeListBase = "http://www.tc211.org/ISO19139/resources/codeList.xml#"

// IGC syslists translated to ISO code lists.
const (
	listReferenceSystem      = 100
	listDateType             = 502
	listAddressRole          = 505
	listCharacterSet         = 510
	listGeometricObjectType  = 515
	listMaintenanceFrequency = 518
	listProgress             = 523
	listHierarchyLevel       = 525
	listTopologyLevel        = 528
	listLiteratureType       = 3385
)

// Values of t012_obj_adr.type selecting address roles. 7 is the metadata
// contact of syslist 505; 3360, 3400 and 3410 are entries of syslist 2010.
const (
	roleTypeMetadataContact    = 7
	roleTypeResourceProvider   = 3360
	roleTypeProjectManager     = 3400
	roleTypeProjectParticipant = 3410
)

const workStatePublished = "V"

const (
	sqlObject    = "SELECT * FROM t01_object WHERE id=?"
	sqlObjectGeo = "SELECT * FROM t011_obj_geo WHERE obj_id=?"
)

// Deps are the collaborators a Projector reads through.
type Deps struct {
	SQL        core.Querier
	Translator core.Translator
	Logger     *slog.Logger
}

// Projector maps catalog objects to ISO 19139 metadata.
type Projector struct {
	sql    core.Querier
	tr     core.Translator
	logger *slog.Logger
}

// NewProjector creates a projector. A nil logger discards output.
func NewProjector(deps Deps) *Projector {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Projector{sql: deps.SQL, tr: deps.Translator, logger: logger}
}

// Map appends the ISO 19139 representation of rec to the body of doc.
// Records that are not database records fail with core.ErrInvalidArgument.
func (p *Projector) Map(ctx context.Context, rec core.SourceRecord, doc *idfdoc.Document) error {
	dbRec, err := core.AsDatabaseRecord(rec)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("%w: nil idf document", core.ErrInvalidArgument)
	}

	p.logger.Debug("mapping source record to idf document", slog.String("record", dbRec.String()))

	md := doc.Body().AddElement("gmd:MD_Metadata")
	md.AddNS("gmd", idfdoc.NamespaceGMD).
		AddNS("gco", idfdoc.NamespaceGCO).
		AddNS("srv", idfdoc.NamespaceSRV).
		AddNS("gml", idfdoc.NamespaceGML).
		AddNS("gts", idfdoc.NamespaceGTS).
		AddNS("xlink", idfdoc.NamespaceXLink).
		AddNS("xsi", idfdoc.NamespaceXSI).
		AddAttribute("xsi:schemaLocation", idfdoc.NamespaceGMD+" http://schemas.opengis.net/iso/19139/20060504/gmd/gmd.xsd")

	objRows, err := p.sql.All(ctx, sqlObject, dbRec.Key())
	if err != nil {
		return fmt.Errorf("load object %s: %w", dbRec.ID(), err)
	}

	for _, objRow := range objRows {
		m := &objectMapping{
			Projector: p,
			ctx:       ctx,
			objID:     dbRec.Key(),
			obj:       objRow,
			class:     core.ObjectClass(strings.TrimSpace(objRow.String("obj_class"))),
			md:        md,
		}
		if err := m.run(); err != nil {
			return fmt.Errorf("map object %s: %w", dbRec.ID(), err)
		}
	}
	return nil
}

// objectMapping carries the state of mapping one t01_object row.
type objectMapping struct {
	*Projector
	ctx   context.Context
	objID any
	obj   *core.Row
	class core.ObjectClass
	md    *idfdoc.Element

	geo          *core.Row
	citationID   string
	identInfo    *idfdoc.Element
	citationNode *idfdoc.Element
}

func (m *objectMapping) run() error {
	steps := []func() error{
		m.mapFileIdentifier,
		m.mapLanguage,
		m.mapCharacterSet,
		m.mapParentIdentifier,
		m.mapHierarchyLevel,
		m.mapContacts,
		m.mapDateStamp,
		m.mapMetadataStandard,
		m.mapSpatialRepresentation,
		m.mapIdentification,
		m.mapCitation,
		m.mapClassCitation,
		m.mapAbstract,
		m.mapPurpose,
		m.mapStatus,
		m.mapPointsOfContact,
		m.mapMaintenance,
		m.mapResourceFormat,
	}
	for _, step := range steps {
		if err := m.ctx.Err(); err != nil {
			return err
		}
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// codeList translates code in syslist listID.
func (m *objectMapping) codeList(listID int, code any) (string, error) {
	return m.tr.CodeListEntry(m.ctx, listID, code)
}

// addCode appends a code-list element carrying both codeList and
// codeListValue.
func addCode(parent *idfdoc.Element, path, codeList, value string) *idfdoc.Element {
	return parent.AddElement(path).
		AddAttribute("codeList", codeListBase+codeList).
		AddAttribute("codeListValue", value)
}

// addText appends path with the value as text when the value is present.
func addText(parent *idfdoc.Element, path string, value any) *idfdoc.Element {
	if !core.HasValue(value) {
		return nil
	}
	return parent.AddElement(path).AddText(core.ToString(value))
}
