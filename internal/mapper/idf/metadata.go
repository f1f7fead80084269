package idf

import (
	"log/slog"
	"strings"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

const (
	sqlParentObject = "SELECT fk_obj_uuid FROM object_node WHERE obj_uuid=?"
	sqlGeoHierarchy = "SELECT hierarchy_level FROM t011_obj_geo WHERE obj_id=?"
	sqlObjAddresses = "SELECT t02_address.*, t012_obj_adr.type FROM t012_obj_adr, t02_address " +
		"WHERE t012_obj_adr.adr_uuid=t02_address.adr_uuid AND t02_address.work_state=? " +
		"AND t012_obj_adr.obj_id=? AND t012_obj_adr.type=? ORDER BY line"
)

// hierarchyLevelNames maps object classes to gmd:hierarchyLevelName.
var hierarchyLevelNames = map[core.ObjectClass]string{
	core.ClassJob:         "job",
	core.ClassGeodata:     "",
	core.ClassDocument:    "document",
	core.ClassService:     "service",
	core.ClassProject:     "project",
	core.ClassDatabase:    "database",
	core.ClassApplication: "application",
}

// fileIdentifier prefers org_obj_id over obj_uuid.
func fileIdentifier(obj *core.Row) string {
	if obj.Has("org_obj_id") {
		return obj.String("org_obj_id")
	}
	return obj.String("obj_uuid")
}

func (m *objectMapping) mapFileIdentifier() error {
	addText(m.md, "gmd:fileIdentifier/gco:CharacterString", fileIdentifier(m.obj))
	return nil
}

func (m *objectMapping) mapLanguage() error {
	lang, err := m.tr.LanguageISO639_2(m.ctx, m.obj.Get("metadata_language_key"))
	if err != nil {
		return err
	}
	if lang != "" {
		m.md.AddElement("gmd:language/gmd:LanguageCode").
			AddAttribute("codeList", "http://www.loc.gov/standards/iso639-2/").
			AddAttribute("codeListValue", lang).
			AddText(lang)
	}
	return nil
}

func (m *objectMapping) mapCharacterSet() error {
	charset, err := m.codeList(listCharacterSet, m.obj.Get("metadata_character_set"))
	if err != nil {
		return err
	}
	if charset != "" {
		addCode(m.md, "gmd:characterSet/gmd:MD_CharacterSetCode", "MD_CharacterSetCode", charset)
	}
	return nil
}

func (m *objectMapping) mapParentIdentifier() error {
	// object_node holds at most one published parent
	row, err := m.sql.First(m.ctx, sqlParentObject, m.obj.Get("obj_uuid"))
	if err != nil {
		return err
	}
	addText(m.md, "gmd:parentIdentifier/gco:CharacterString", row.Get("fk_obj_uuid"))
	return nil
}

// hierarchyLevel derives the MD_ScopeCode of the object class.
// Unknown classes are logged and yield no level.
func (m *objectMapping) hierarchyLevel() (string, error) {
	switch m.class {
	case core.ClassJob, core.ClassDocument, core.ClassProject, core.ClassDatabase:
		return "nonGeographicDataset", nil
	case core.ClassService:
		return "service", nil
	case core.ClassApplication:
		return "application", nil
	case core.ClassGeodata:
		rows, err := m.sql.All(m.ctx, sqlGeoHierarchy, m.objID)
		if err != nil {
			return "", err
		}
		level := ""
		for _, row := range rows {
			if level, err = m.codeList(listHierarchyLevel, row.Get("hierarchy_level")); err != nil {
				return "", err
			}
		}
		return level, nil
	}
	m.logger.Error("unsupported object class, only classes 0 to 6 are supported",
		slog.String("class", string(m.class)), slog.Any("object", m.objID))
	return "", nil
}

// hierarchyLevelName falls back to the raw class token for unknown classes.
func (m *objectMapping) hierarchyLevelName() string {
	name, ok := hierarchyLevelNames[m.class]
	if !ok {
		m.logger.Error("no hierarchy level name for object class",
			slog.String("class", string(m.class)), slog.Any("object", m.objID))
		return string(m.class)
	}
	return name
}

func (m *objectMapping) mapHierarchyLevel() error {
	level, err := m.hierarchyLevel()
	if err != nil {
		return err
	}
	if level != "" {
		addCode(m.md, "gmd:hierarchyLevel/gmd:MD_ScopeCode", "MD_ScopeCode", level).AddText(level)
	}
	addText(m.md, "gmd:hierarchyLevelName/gco:CharacterString", m.hierarchyLevelName())
	return nil
}

func (m *objectMapping) mapContacts() error {
	rows, err := m.sql.All(m.ctx, sqlObjAddresses, workStatePublished, m.objID, roleTypeMetadataContact)
	if err != nil {
		return err
	}
	for _, row := range rows {
		role, err := m.codeList(listAddressRole, row.Get("type"))
		if err != nil {
			return err
		}
		if role == "" {
			continue
		}
		party, err := m.responsibleParty(row, role)
		if err != nil {
			return err
		}
		m.md.AddElement("gmd:contact").AppendChild(party)
	}
	return nil
}

func (m *objectMapping) mapDateStamp() error {
	if !m.obj.Has("mod_time") {
		return nil
	}
	// date only, see CSW 2.0.2 AP ISO 1.0
	date := m.tr.ISODate(m.obj.String("mod_time"))
	if i := strings.IndexByte(date, 'T'); i >= 0 {
		date = date[:i]
	}
	addText(m.md, "gmd:dateStamp/gco:Date", date)
	return nil
}

func (m *objectMapping) mapMetadataStandard() error {
	name, version := "ISO19115", "2003/Cor.1:2006"
	if m.class.IsServiceLike() {
		name, version = "ISO19119", "2005/PDAM 1"
	}
	if m.obj.Has("metadata_standard_name") {
		name = m.obj.String("metadata_standard_name")
	}
	if m.obj.Has("metadata_standard_version") {
		version = m.obj.String("metadata_standard_version")
	}
	addText(m.md, "gmd:metadataStandardName/gco:CharacterString", name)
	addText(m.md, "gmd:metadataStandardVersion/gco:CharacterString", version)
	return nil
}
