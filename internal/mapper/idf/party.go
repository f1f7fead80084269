package idf

import (
	"log/slog"
	"strings"

	idfdoc "github.com/fp-wemove/ingrid-iplug-dsc/internal/idf"
	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

const (
	sqlCommunication = "SELECT t021_communication.* FROM t021_communication WHERE t021_communication.adr_id=?"
	sqlParentAddress = "SELECT t02_address.* FROM t02_address, address_node " +
		"WHERE address_node.addr_id_published=? AND address_node.fk_addr_uuid=t02_address.adr_uuid " +
		"AND t02_address.work_state=?"
)

// t021_communication.commtype_key values.
const (
	commPhone = "1"
	commFax   = "2"
	commEmail = "3"
	commURL   = "4"
)

// IndividualName renders last name, first name and the title/addressing
// pair of an address, separated by ", ".
func IndividualName(addr *core.Row) string {
	var parts []string
	if addr.Has("lastname") {
		parts = append(parts, addr.String("lastname"))
	}
	if addr.Has("firstname") {
		parts = append(parts, addr.String("firstname"))
	}

	title, addressing := addr.String("title_value"), addr.String("address_value")
	switch {
	case title != "" && addressing != "":
		parts = append(parts, title+" "+addressing)
	case title != "":
		parts = append(parts, title)
	case addressing != "":
		parts = append(parts, addressing)
	}
	return strings.Join(parts, ", ")
}

// Institution joins the institutions of an address path (the address
// first, its farthest ancestor last) starting with the farthest ancestor.
func Institution(path []*core.Row) string {
	var parts []string
	// reversed walk: farthest ancestor first, the address's own institution last
	for i := len(path) - 1; i >= 0; i-- {
		if path[i].Has("institution") {
			parts = append(parts, path[i].String("institution"))
		}
	}
	return strings.Join(parts, ", ")
}

// addressPath returns the address followed by its published ancestors.
// The address hierarchy is assumed to be acyclic.
func (m *objectMapping) addressPath(addr *core.Row) ([]*core.Row, error) {
	path := []*core.Row{addr}
	m.logger.Debug("add address to address path", slog.String("adr_uuid", addr.String("adr_uuid")))

	id := addr.Get("id")
	for {
		if err := m.ctx.Err(); err != nil {
			return nil, err
		}
		parent, err := m.sql.First(m.ctx, sqlParentAddress, id, workStatePublished)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return path, nil
		}
		m.logger.Debug("add address to address path", slog.String("adr_uuid", parent.String("adr_uuid")))
		path = append(path, parent)
		id = parent.Get("id")
	}
}

// responsibleParty builds a detached gmd:CI_ResponsibleParty for an address
// row with the given role.
func (m *objectMapping) responsibleParty(addr *core.Row, role string) (*idfdoc.Element, error) {
	path, err := m.addressPath(addr)
	if err != nil {
		return nil, err
	}

	party := idfdoc.NewElement("gmd:CI_ResponsibleParty")
	addText(party, "gmd:individualName/gco:CharacterString", IndividualName(addr))
	addText(party, "gmd:organisationName/gco:CharacterString", Institution(path))
	addText(party, "gmd:positionName/gco:CharacterString", addr.Get("job"))

	contact := party.AddElement("gmd:contactInfo/gmd:CI_Contact")
	if err := m.contactInfo(contact, addr); err != nil {
		return nil, err
	}

	addCode(party, "gmd:role/gmd:CI_RoleCode", "CI_RoleCode", role)
	return party, nil
}

func (m *objectMapping) contactInfo(contact *idfdoc.Element, addr *core.Row) error {
	comms, err := m.sql.All(m.ctx, sqlCommunication, addr.Get("id"))
	if err != nil {
		return err
	}

	var phone *idfdoc.Element
	var emails, urls []string
	for _, row := range comms {
		if !row.Has("comm_value") {
			continue
		}
		value := row.String("comm_value")
		kind := strings.TrimSpace(row.String("commtype_key"))
		switch kind {
		case commPhone, commFax:
			// the IGC mapper always created CI_Telephone; it is only
			// emitted here when a phone or fax row exists
			if phone == nil {
				phone = contact.AddElement("gmd:phone/gmd:CI_Telephone")
			}
			if kind == commPhone {
				phone.AddElement("gmd:voice/gco:CharacterString").AddText(value)
			} else {
				phone.AddElement("gmd:facsimile/gco:CharacterString").AddText(value)
			}
		case commEmail:
			emails = append(emails, value)
		case commURL:
			urls = append(urls, value)
		}
	}

	var address *idfdoc.Element
	addressNode := func() *idfdoc.Element {
		if address == nil {
			address = contact.AddElement("gmd:address/gmd:CI_Address")
		}
		return address
	}

	if addr.Has("postbox") || addr.Has("postbox_pc") || addr.Has("city") || addr.Has("street") {
		a := addressNode()
		// a complete postbox pair wins over street and postcode
		if addr.Has("postbox") && addr.Has("postbox_pc") {
			addText(a, "gmd:deliveryPoint/gco:CharacterString", addr.Get("postbox"))
			addText(a, "gmd:city/gco:CharacterString", addr.Get("city"))
			addText(a, "gmd:postalCode/gco:CharacterString", addr.Get("postbox_pc"))
		} else {
			addText(a, "gmd:deliveryPoint/gco:CharacterString", addr.Get("street"))
			addText(a, "gmd:city/gco:CharacterString", addr.Get("city"))
			addText(a, "gmd:postalCode/gco:CharacterString", addr.Get("postcode"))
		}
	}
	if addr.Has("country_key") {
		if country := m.tr.CountryAlpha3(addr.Get("country_key")); country != "" {
			addressNode().AddElement("gmd:country/gco:CharacterString").AddText(country)
		}
	}
	for _, email := range emails {
		addressNode().AddElement("gmd:electronicMailAddress/gco:CharacterString").AddText(email)
	}

	// The IGC mapper wrote the URL into CI_Address; ISO 19139 places it in
	// CI_Contact/onlineResource, and allows only one.
	if len(urls) > 0 {
		contact.AddElement("gmd:onlineResource/gmd:CI_OnlineResource/gmd:linkage/gmd:URL").AddText(urls[0])
	}
	return nil
}
