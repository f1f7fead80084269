package idf

import (
	"strings"

	idfdoc "github.com/fp-wemove/ingrid-iplug-dsc/internal/idf"
)

const sqlGeoVector = "SELECT * FROM t011_obj_geo_vector WHERE obj_geo_id=?"

// mapSpatialRepresentation emits the vector representation and reference
// system of geo objects. Objects without a t011_obj_geo row get neither.
func (m *objectMapping) mapSpatialRepresentation() error {
	geo, err := m.sql.First(m.ctx, sqlObjectGeo, m.objID)
	if err != nil {
		return err
	}
	m.geo = geo
	if geo == nil {
		return nil
	}

	var vector *idfdoc.Element
	vectorNode := func() *idfdoc.Element {
		if vector == nil {
			vector = m.md.AddElement("gmd:spatialRepresentationInfo/gmd:MD_VectorSpatialRepresentation")
		}
		return vector
	}

	topology, err := m.codeList(listTopologyLevel, geo.Get("vector_topology_level"))
	if err != nil {
		return err
	}
	if topology != "" {
		addCode(vectorNode(), "gmd:topologyLevel/gmd:MD_TopologyLevelCode", "MD_TopologyLevelCode", topology)
	}

	vectorRows, err := m.sql.All(m.ctx, sqlGeoVector, geo.Get("id"))
	if err != nil {
		return err
	}
	for _, row := range vectorRows {
		objects := vectorNode().AddElement("gmd:geometricObjects/gmd:MD_GeometricObjects")
		objType, err := m.codeList(listGeometricObjectType, row.Get("geometric_object_type"))
		if err != nil {
			return err
		}
		addCode(objects, "gmd:geometricObjectType/gmd:MD_GeometricObjectTypeCode", "MD_GeometricObjectTypeCode", objType)
		addText(objects, "gmd:geometricObjectCount/gco:Integer", row.Get("geometric_object_count"))
	}

	refSys, err := m.codeList(listReferenceSystem, geo.Get("referencesystem_key"))
	if err != nil {
		return err
	}
	if refSys == "" {
		refSys = geo.String("referencesystem_value")
	}
	if refSys != "" {
		rs := m.md.AddElement("gmd:referenceSystemInfo/gmd:MD_ReferenceSystem/gmd:referenceSystemIdentifier/gmd:RS_Identifier")
		rs.AddElement("gmd:code/gco:CharacterString").AddText(refSys)
		if strings.HasPrefix(refSys, "EPSG") {
			rs.AddElement("gmd:codeSpace/gco:CharacterString").AddText("EPSG")
		}
	}
	return nil
}
