package idf

import (
	"crypto/md5" //nolint:gosec // name based UUIDs are MD5 by definition
	"strings"

	"github.com/google/uuid"

	idfdoc "github.com/fp-wemove/ingrid-iplug-dsc/internal/idf"
	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

const (
	sqlReferenceDates = "SELECT * FROM t0113_dataset_reference WHERE obj_id=?"
	sqlLiterature     = "SELECT * FROM t011_obj_literature WHERE obj_id=?"
	sqlProject        = "SELECT * FROM t011_obj_project WHERE obj_id=?"
)

// NameUUIDFromBytes returns the version 3 UUID of the MD5 digest of name,
// without a namespace.
func NameUUIDFromBytes(name []byte) uuid.UUID {
	sum := md5.Sum(name) //nolint:gosec // see import
	sum[6] = sum[6]&0x0f | 0x30
	sum[8] = sum[8]&0x3f | 0x80
	return uuid.UUID(sum)
}

// citationIdentifier is the datasource uuid of geo objects (':' replaced by
// '#'), else a name based UUID of the file identifier. It must differ from
// the file identifier.
func citationIdentifier(obj, geo *core.Row) string {
	if geo.Has("datasource_uuid") {
		return strings.ReplaceAll(geo.String("datasource_uuid"), ":", "#")
	}
	return NameUUIDFromBytes([]byte(fileIdentifier(obj))).String()
}

func (m *objectMapping) mapIdentification() error {
	m.citationID = citationIdentifier(m.obj, m.geo)

	info := m.md.AddElement("gmd:identificationInfo")
	if m.class.IsServiceLike() {
		m.identInfo = info.AddElement("srv:SV_ServiceIdentification")
	} else {
		m.identInfo = info.AddElement("gmd:MD_DataIdentification")
	}
	m.identInfo.AddAttribute("uuid", "ingrid#"+m.citationID)
	return nil
}

func (m *objectMapping) mapCitation() error {
	cit := m.identInfo.AddElement("gmd:citation/gmd:CI_Citation")
	m.citationNode = cit

	addText(cit, "gmd:title/gco:CharacterString", m.obj.Get("obj_name"))
	addText(cit, "gmd:alternateTitle/gco:CharacterString", m.obj.Get("dataset_alternate_name"))

	dates, err := m.sql.All(m.ctx, sqlReferenceDates, m.objID)
	if err != nil {
		return err
	}
	for _, row := range dates {
		ciDate := cit.AddElement("gmd:date/gmd:CI_Date")
		date := m.tr.ISODate(row.String("reference_date"))
		if strings.Contains(date, "T") {
			ciDate.AddElement("gmd:date/gco:DateTime").AddText(date)
		} else {
			ciDate.AddElement("gmd:date/gco:Date").AddText(date)
		}
		dateType, err := m.codeList(listDateType, row.Get("type"))
		if err != nil {
			return err
		}
		addCode(ciDate, "gmd:dateType/gmd:CI_DateTypeCode", "CI_DateTypeCode", dateType)
	}

	rs := cit.AddElement("gmd:identifier/gmd:RS_Identifier")
	rs.AddElement("gmd:code/gco:CharacterString").AddText(m.citationID)
	rs.AddElement("gmd:codeSpace/gco:CharacterString").AddText("ingrid")
	return nil
}

func (m *objectMapping) mapClassCitation() error {
	switch m.class {
	case core.ClassDocument:
		return m.mapLiterature()
	case core.ClassProject:
		return m.mapProject()
	}
	return nil
}

// citedParty appends a citedResponsibleParty with a single name element.
func citedParty(cit *idfdoc.Element, namePath, name string) *idfdoc.Element {
	party := cit.AddElement("gmd:citedResponsibleParty/gmd:CI_ResponsibleParty")
	party.AddElement(namePath).AddText(name)
	return party
}

func addRole(party *idfdoc.Element, role string) {
	addCode(party, "gmd:role/gmd:CI_RoleCode", "CI_RoleCode", role)
}

// appendAddressParties appends one citedResponsibleParty per address linked
// to the object with roleType.
func (m *objectMapping) appendAddressParties(roleType int, role string) error {
	rows, err := m.sql.All(m.ctx, sqlObjAddresses, workStatePublished, m.objID, roleType)
	if err != nil {
		return err
	}
	for _, row := range rows {
		party, err := m.responsibleParty(row, role)
		if err != nil {
			return err
		}
		m.citationNode.AddElement("gmd:citedResponsibleParty").AppendChild(party)
	}
	return nil
}

func (m *objectMapping) mapLiterature() error {
	lit, err := m.sql.First(m.ctx, sqlLiterature, m.objID)
	if err != nil || lit == nil {
		return err
	}
	cit := m.citationNode

	if lit.Has("publish_year") {
		cit.AddElement("gmd:editionDate/gco:Date").AddText(m.tr.ISODate(lit.String("publish_year")))
	}
	if lit.Has("author") {
		party := citedParty(cit, "gmd:individualName/gco:CharacterString", lit.String("author"))
		addRole(party, "originator")
	}
	if lit.Has("loc") {
		party := citedParty(cit, "gmd:organisationName/gco:CharacterString",
			"Contact intructions for the location of resource")
		party.AddElement("gmd:contactInfo/gmd:CI_Contact/gmd:contactInstructions/gco:CharacterString").
			AddText(lit.String("loc"))
		addRole(party, "resourceProvider")
	}
	if err := m.appendAddressParties(roleTypeResourceProvider, "resourceProvider"); err != nil {
		return err
	}
	if lit.Has("publish_loc") || lit.Has("publisher") {
		publisher := "Location of the editor"
		if lit.Has("publisher") {
			publisher = lit.String("publisher")
		}
		party := citedParty(cit, "gmd:individualName/gco:CharacterString", publisher)
		addText(party, "gmd:contactInfo/gmd:CI_Contact/gmd:address/gmd:CI_Address/gmd:city/gco:CharacterString",
			lit.Get("publish_loc"))
		addRole(party, "publisher")
	}
	if lit.Has("publishing") {
		party := citedParty(cit, "gmd:organisationName/gco:CharacterString", lit.String("publishing"))
		addRole(party, "distributor")
	}

	var series *idfdoc.Element
	seriesNode := func() *idfdoc.Element {
		if series == nil {
			series = cit.AddElement("gmd:series/gmd:CI_Series")
		}
		return series
	}
	if lit.Has("publish_in") {
		seriesNode().AddElement("gmd:name/gco:CharacterString").AddText(lit.String("publish_in"))
	}
	if lit.Has("volume") {
		seriesNode().AddElement("gmd:issueIdentification/gco:CharacterString").AddText(lit.String("volume"))
	}
	if lit.Has("sides") {
		seriesNode().AddElement("gmd:page/gco:CharacterString").AddText(lit.String("sides"))
	}
	addText(cit, "gmd:otherCitationDetails/gco:CharacterString", lit.Get("doc_info"))
	if lit.Has("isbn") {
		seriesNode()
		cit.AddElement("gmd:ISBN/gco:CharacterString").AddText(lit.String("isbn"))
	}
	return nil
}

func (m *objectMapping) mapProject() error {
	project, err := m.sql.First(m.ctx, sqlProject, m.objID)
	if err != nil || project == nil {
		return err
	}
	cit := m.citationNode

	if project.Has("leader") {
		party := citedParty(cit, "gmd:individualName/gco:CharacterString", project.String("leader"))
		addRole(party, "projectManager")
	}
	if err := m.appendAddressParties(roleTypeProjectManager, "projectManager"); err != nil {
		return err
	}
	if project.Has("member") {
		party := citedParty(cit, "gmd:individualName/gco:CharacterString", project.String("member"))
		addRole(party, "projectParticipant")
	}
	return m.appendAddressParties(roleTypeProjectParticipant, "projectParticipant")
}
