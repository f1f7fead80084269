package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite" // sqlite driver
)

// CatalogSchema is the subset of the IGC catalog schema read by the mappers.
var CatalogSchema = []string{
	`CREATE TABLE t01_object (
		id INTEGER PRIMARY KEY, obj_uuid TEXT, org_obj_id TEXT, obj_class TEXT,
		obj_name TEXT, obj_descr TEXT, work_state TEXT, publish_id INTEGER,
		metadata_language_key TEXT, mod_time TEXT, time_type TEXT, time_from TEXT, time_to TEXT)`,
	`CREATE TABLE object_node (obj_uuid TEXT, fk_obj_uuid TEXT)`,
	`CREATE TABLE sys_list (lst_id INTEGER, entry_id TEXT, lang_id TEXT, name TEXT)`,
	`CREATE TABLE t011_obj_geo (id INTEGER PRIMARY KEY, obj_id INTEGER, hierarchy_level TEXT, datasource_uuid TEXT)`,
	`CREATE TABLE t011_obj_geo_vector (obj_geo_id INTEGER, geometric_object_type TEXT, geometric_object_count TEXT)`,
	`CREATE TABLE t0113_dataset_reference (obj_id INTEGER, reference_date TEXT, type TEXT)`,
	`CREATE TABLE t011_obj_literature (obj_id INTEGER, type_key TEXT, type_value TEXT)`,
	`CREATE TABLE t011_obj_project (obj_id INTEGER, leader TEXT, member TEXT)`,
	`CREATE TABLE t011_obj_serv (id INTEGER PRIMARY KEY, obj_id INTEGER, environment TEXT, history TEXT)`,
	`CREATE TABLE t011_obj_serv_scale (obj_serv_id INTEGER, scale TEXT)`,
	`CREATE TABLE t015_legist (obj_id INTEGER, legist_value TEXT)`,
	`CREATE TABLE t02_address (
		id INTEGER PRIMARY KEY, adr_uuid TEXT, work_state TEXT, institution TEXT,
		lastname TEXT, firstname TEXT, street TEXT, postcode TEXT, city TEXT)`,
	`CREATE TABLE t012_obj_adr (obj_id INTEGER, adr_uuid TEXT, type INTEGER, special_name TEXT, special_ref INTEGER, line INTEGER)`,
	`CREATE TABLE address_node (addr_id_published INTEGER, fk_addr_uuid TEXT)`,
	`CREATE TABLE t021_communication (adr_id INTEGER, commtype_key TEXT, comm_value TEXT)`,
}

// CatalogData publishes objects 1 (geo dataset with a metadata contact)
// and 2 (organisational unit); object 3 is a draft.
var CatalogData = []string{
	`INSERT INTO t01_object VALUES
		(1, 'uuid-1', NULL, '1', 'Bodenkarte', 'Karte der Böden', 'V', 1, '150', '20200501101500000', 'seit', '20190101000000000', NULL),
		(2, 'uuid-2', 'ORG-2', '0', 'Messprogramm', NULL, 'V', 1, '123', NULL, NULL, NULL, NULL),
		(3, 'uuid-3', NULL, '1', 'Entwurf', NULL, 'B', 1, NULL, NULL, NULL, NULL, NULL)`,
	`INSERT INTO object_node VALUES ('uuid-1', 'uuid-root')`,
	`INSERT INTO sys_list VALUES
		(505, '7', 'iso', 'pointOfContact'),
		(8000, '1', 'de', 'Geoinformation/Karte'),
		(8000, '1', 'en', 'Map')`,
	`INSERT INTO t02_address VALUES
		(10, 'adr-10', 'V', 'Referat Boden', 'Müller', 'Anna', 'Hauptstraße 1', '24103', 'Kiel'),
		(11, 'adr-11', 'V', 'Landesamt', NULL, NULL, NULL, NULL, NULL)`,
	`INSERT INTO t012_obj_adr VALUES (1, 'adr-10', 7, NULL, NULL, 1)`,
	`INSERT INTO address_node VALUES (10, 'adr-11')`,
	`INSERT INTO t021_communication VALUES (10, '3', 'anna.mueller@example.org')`,
}

// NewSQLiteCatalog creates a catalog database file filled with CatalogData
// and returns its path.
func NewSQLiteCatalog(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}
	defer func() { _ = db.Close() }()

	for _, stmt := range append(append([]string{}, CatalogSchema...), CatalogData...) {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to create catalog: %v\n%s", err, stmt)
		}
	}
	return path
}
