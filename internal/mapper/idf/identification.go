package idf

import (
	"log/slog"
	"strings"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

const (
	sqlService      = "SELECT * FROM t011_obj_serv WHERE obj_id=?"
	sqlServiceScale = "SELECT * FROM t011_obj_serv_scale WHERE obj_serv_id=?"
	sqlLegist       = "SELECT legist_value from t015_legist WHERE obj_id=?"
	sqlLitFormat    = "SELECT type_key, type_value from t011_obj_literature WHERE obj_id=?"
	sqlObjContacts  = "SELECT t02_address.*, t012_obj_adr.type, t012_obj_adr.special_name " +
		"FROM t012_obj_adr, t02_address WHERE t012_obj_adr.adr_uuid=t02_address.adr_uuid " +
		"AND t02_address.work_state=? AND t012_obj_adr.obj_id=? " +
		"AND (t012_obj_adr.type IS NULL OR t012_obj_adr.type!=?) " +
		"AND (t012_obj_adr.special_ref IS NULL OR t012_obj_adr.special_ref=?) ORDER BY line"
)

const (
	serviceAbstractIntro = "\n\n\nWeitere Daten des Dienstes, die nicht standard-konform (ISO 19119) hinterlegt werden können, " +
		"zum Teil gemäß INSPIRE-Direktive aber bereit zu stellen sind*:\n\n\n"
	serviceAbstractOutro = "\n\n---\n* Nähere Informationen zur INSPIRE-Direktive: http://inspire.jrc.ec.europa.eu/implementingRulesDocs_md.cfm"
)

func (m *objectMapping) mapAbstract() error {
	abstract := m.obj.String("obj_descr")
	if m.class == core.ClassService {
		postfix, err := m.serviceAbstractPostfix()
		if err != nil {
			return err
		}
		abstract += postfix
	}
	addText(m.identInfo, "gmd:abstract/gco:CharacterString", abstract)
	return nil
}

// serviceAbstractPostfix lists service properties that ISO 19119 cannot
// carry but INSPIRE requires, each followed by the path it would map to.
func (m *objectMapping) serviceAbstractPostfix() (string, error) {
	var sb strings.Builder
	sb.WriteString(serviceAbstractIntro)

	serv, err := m.sql.First(m.ctx, sqlService, m.objID)
	if err != nil {
		return "", err
	}
	if serv != nil {
		if serv.Has("environment") {
			env := serv.String("environment")
			sb.WriteString("Systemumgebung: " + env + "\n")
			sb.WriteString("(environmentDescription/gco:CharacterString= " + env + ")\n\n")
		}
		if serv.Has("description") {
			desc := serv.String("description")
			sb.WriteString("Erläuterung zum Fachbezug: " + desc + "\n")
			sb.WriteString("(supplementalInformation/gco:CharacterString= " + desc + ")\n\n")
		}

		scales, err := m.sql.All(m.ctx, sqlServiceScale, serv.Get("id"))
		if err != nil {
			return "", err
		}
		for _, row := range scales {
			if row.Has("scale") {
				v := row.String("scale")
				sb.WriteString("Erstellungsmaßstab: " + v + "\n")
				sb.WriteString("(spatialResolution/MD_Resolution/equivalentScale/MD_RepresentativeFraction/denominator/gco:Integer= " + v + ")\n")
			}
		}
		for _, row := range scales {
			if row.Has("resolution_ground") {
				v := row.String("resolution_ground")
				sb.WriteString("Bodenauflösung (Meter): " + v + "\n")
				sb.WriteString(`(spatialResolution/MD_Resolution/distance/gco:Distance[@uom="meter"]= ` + v + ")\n")
			}
		}
		for _, row := range scales {
			if row.Has("resolution_scan") {
				v := row.String("resolution_scan")
				sb.WriteString("Scanauflösung (DPI): " + v + "\n")
				sb.WriteString(`(spatialResolution/MD_Resolution/distance/gco:Distance[@uom="dpi"]= ` + v + ")\n")
			}
		}
	}

	sb.WriteString(serviceAbstractOutro)
	return sb.String(), nil
}

// mapPurpose combines info_note with all legal bases, one per line.
func (m *objectMapping) mapPurpose() error {
	var parts []string
	if m.obj.Has("info_note") {
		parts = append(parts, m.obj.String("info_note"))
	}
	rows, err := m.sql.All(m.ctx, sqlLegist, m.objID)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row.Has("legist_value") {
			parts = append(parts, row.String("legist_value"))
		}
	}
	addText(m.identInfo, "gmd:purpose/gco:CharacterString", strings.Join(parts, "\n"))
	return nil
}

func (m *objectMapping) mapStatus() error {
	status, err := m.codeList(listProgress, m.obj.Get("time_status"))
	if err != nil {
		return err
	}
	if status != "" {
		addCode(m.identInfo, "gmd:status/gmd:MD_ProgressCode", "MD_ProgressCode", status)
	}
	return nil
}

// mapPointsOfContact maps role entries of syslist 505 other than the
// metadata contact plus free entries. Syslist 2010 roles are part of the
// citation.
func (m *objectMapping) mapPointsOfContact() error {
	rows, err := m.sql.All(m.ctx, sqlObjContacts, workStatePublished, m.objID, roleTypeMetadataContact, listAddressRole)
	if err != nil {
		return err
	}
	for _, row := range rows {
		role, err := m.codeList(listAddressRole, row.Get("type"))
		if err != nil {
			return err
		}
		if role == "" {
			role = row.String("special_name")
		}
		if role == "" {
			continue
		}
		party, err := m.responsibleParty(row, role)
		if err != nil {
			return err
		}
		m.identInfo.AddElement("gmd:pointOfContact").AppendChild(party)
	}
	return nil
}

// PeriodDuration renders an IGC update interval as an ISO 8601 duration.
// The unit is one of the German IGC interval names; ok is false for any
// other unit.
func PeriodDuration(unit, count string) (string, bool) {
	switch {
	case strings.EqualFold(unit, "Tage"):
		return "P" + count + "D", true
	case strings.EqualFold(unit, "Jahre"):
		return "P" + count + "Y", true
	case strings.EqualFold(unit, "Monate"):
		return "P" + count + "M", true
	case strings.EqualFold(unit, "Stunden"):
		return "PT" + count + "H", true
	case strings.EqualFold(unit, "Minuten"):
		return "PT" + count + "M", true
	case strings.EqualFold(unit, "Sekunden"):
		return "PT" + count + "S", true
	}
	return "", false
}

func (m *objectMapping) mapMaintenance() error {
	freq, err := m.codeList(listMaintenanceFrequency, m.obj.Get("time_period"))
	if err != nil {
		return err
	}
	if freq == "" {
		return nil
	}

	info := m.identInfo.AddElement("gmd:resourceMaintenance/gmd:MD_MaintenanceInformation")
	addCode(info, "gmd:maintenanceAndUpdateFrequency/gmd:MD_MaintenanceFrequencyCode", "MD_MaintenanceFrequencyCode", freq)

	if m.obj.Has("time_interval") && m.obj.Has("time_alle") {
		unit := strings.TrimSpace(m.obj.String("time_interval"))
		if period, ok := PeriodDuration(unit, strings.TrimSpace(m.obj.String("time_alle"))); ok {
			info.AddElement("gmd:userDefinedMaintenanceFrequency/gts:TM_PeriodDuration").AddText(period)
		} else {
			m.logger.Warn("unknown maintenance interval unit",
				slog.String("unit", unit), slog.Any("object", m.objID))
		}
	}
	addText(info, "gmd:maintenanceNote/gco:CharacterString", m.obj.Get("time_descr"))
	return nil
}

func (m *objectMapping) mapResourceFormat() error {
	if m.class != core.ClassDocument {
		return nil
	}
	row, err := m.sql.First(m.ctx, sqlLitFormat, m.objID)
	if err != nil || row == nil {
		return err
	}
	format, err := m.codeList(listLiteratureType, row.Get("type_key"))
	if err != nil {
		return err
	}
	if format == "" {
		format = row.String("type_value")
	}
	if format == "" {
		return nil
	}
	mdFormat := m.identInfo.AddElement("gmd:resourceFormat/gmd:MD_Format")
	mdFormat.AddElement("gmd:name/gco:CharacterString").AddText(format)
	mdFormat.AddElement("gmd:version/gco:CharacterString").AddAttribute("gco:nilReason", "inapplicable")
	return nil
}
