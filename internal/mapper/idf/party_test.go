package idf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

func TestIndividualName(t *testing.T) {
	tests := []struct {
		name string
		addr *core.Row
		want string
	}{
		{
			name: "full name with title",
			addr: core.RowOf("lastname", "Doe", "firstname", "Jane", "title_value", "Dr."),
			want: "Doe, Jane, Dr.",
		},
		{
			name: "title and addressing",
			addr: core.RowOf("lastname", "Doe", "title_value", "Prof.", "address_value", "Frau"),
			want: "Doe, Prof. Frau",
		},
		{
			name: "addressing only",
			addr: core.RowOf("firstname", "Jane", "address_value", "c/o Smith"),
			want: "Jane, c/o Smith",
		},
		{
			name: "institution only",
			addr: core.RowOf("institution", "Landesamt", "lastname", ""),
			want: "",
		},
		{
			name: "nil row",
			addr: nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IndividualName(tt.addr))
		})
	}
}

func TestInstitution(t *testing.T) {
	tests := []struct {
		name string
		path []*core.Row
		want string
	}{
		{
			name: "farthest ancestor first",
			path: []*core.Row{
				core.RowOf("institution", "Referat 3"),
				core.RowOf("institution", "Abteilung B"),
				core.RowOf("institution", "Ministerium"),
			},
			want: "Ministerium, Abteilung B, Referat 3",
		},
		{
			name: "persons in between are skipped",
			path: []*core.Row{
				core.RowOf("lastname", "Doe"),
				core.RowOf("institution", "Amt"),
			},
			want: "Amt",
		},
		{
			name: "empty path",
			path: nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Institution(tt.path))
		})
	}
}

func TestPeriodDuration(t *testing.T) {
	tests := []struct {
		unit  string
		count string
		want  string
		ok    bool
	}{
		{"Jahre", "5", "P5Y", true},
		{"jahre", "1", "P1Y", true},
		{"Monate", "6", "P6M", true},
		{"Tage", "14", "P14D", true},
		{"Stunden", "2", "PT2H", true},
		{"Minuten", "30", "PT30M", true},
		{"SEKUNDEN", "10", "PT10S", true},
		{"Wochen", "2", "", false},
		{"", "2", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			got, ok := PeriodDuration(tt.unit, tt.count)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNameUUIDFromBytes(t *testing.T) {
	assert.Equal(t, "6351623c-8cef-36fe-babf-a7da046fc619", NameUUIDFromBytes([]byte("abc-123")).String())
	assert.Equal(t, "954f592e-3c4c-371c-831a-7ffc92d4c6fd", NameUUIDFromBytes([]byte("uuid-geo-1")).String())

	id := NameUUIDFromBytes([]byte("anything"))
	assert.EqualValues(t, 3, id.Version())
	assert.Equal(t, "RFC4122", id.Variant().String())
}

func TestCitationIdentifier(t *testing.T) {
	obj := core.RowOf("obj_uuid", "uuid-geo-1")

	assert.Equal(t, "x#y#z", citationIdentifier(obj, core.RowOf("datasource_uuid", "x:y:z")))
	assert.Equal(t, "954f592e-3c4c-371c-831a-7ffc92d4c6fd", citationIdentifier(obj, nil))
	assert.Equal(t, "954f592e-3c4c-371c-831a-7ffc92d4c6fd", citationIdentifier(obj, core.RowOf("datasource_uuid", "")))
}

func TestProjector_PostalAddress(t *testing.T) {
	tests := []struct {
		name          string
		address       []any
		wantDelivery  string
		wantPostal    string
		wantNoAddress bool
	}{
		{
			name: "postbox pair wins over street",
			address: []any{
				"postbox", "Postfach 10 20 30", "postbox_pc", "20001",
				"street", "Hauptstr. 1", "postcode", "20095", "city", "Hamburg",
			},
			wantDelivery: "Postfach 10 20 30",
			wantPostal:   "20001",
		},
		{
			name: "postbox without postbox_pc falls back to street",
			address: []any{
				"postbox", "Postfach 10 20 30", "postbox_pc", "",
				"street", "Hauptstr. 1", "postcode", "20095", "city", "Hamburg",
			},
			wantDelivery: "Hauptstr. 1",
			wantPostal:   "20095",
		},
		{
			name:          "no address fields",
			address:       []any{"postbox", "", "street", nil, "city", ""},
			wantNoAddress: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCatalog()
			c.object(core.RowOf("id", 6, "obj_uuid", "uuid-6", "obj_class", "0"))
			c.syslist(505, 7, "pointOfContact")
			fields := append([]any{"id", 60, "adr_uuid", "a-60", "lastname", "Doe", "type", 7}, tt.address...)
			c.OnArgs("t012_obj_adr.type=?", []any{"V", 6, 7}, core.RowOf(fields...))

			md := metadata(t, mapRecord(t, c, "6"))
			contact := md.FindElement("gmd:contact/gmd:CI_ResponsibleParty/gmd:contactInfo/gmd:CI_Contact")
			require.NotNil(t, contact)

			address := contact.FindElement("gmd:address/gmd:CI_Address")
			if tt.wantNoAddress {
				assert.Nil(t, address)
				return
			}
			require.NotNil(t, address)
			assert.Equal(t, tt.wantDelivery, textAt(t, address, "gmd:deliveryPoint/gco:CharacterString"))
			assert.Equal(t, tt.wantPostal, textAt(t, address, "gmd:postalCode/gco:CharacterString"))
			assert.Equal(t, "Hamburg", textAt(t, address, "gmd:city/gco:CharacterString"))
		})
	}
}
