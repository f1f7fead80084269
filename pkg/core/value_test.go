package core

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stringerStub string

func (s stringerStub) String() string { return string(s) }

func TestHasValue(t *testing.T) {
	var nilRow *Row
	var nilString *string
	empty := ""

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, false},
		{"empty string", "", false},
		{"non-empty string", "x", true},
		{"whitespace string", " ", true},
		{"zero int", 0, true},
		{"zero int64", int64(0), true},
		{"zero float", 0.0, true},
		{"false bool", false, true},
		{"empty bytes", []byte{}, false},
		{"bytes", []byte("abc"), true},
		{"invalid null string", sql.NullString{}, false},
		{"valid empty null string", sql.NullString{Valid: true}, false},
		{"valid null string", sql.NullString{String: "v", Valid: true}, true},
		{"valid null int zero", sql.NullInt64{Valid: true}, true},
		{"empty stringer", stringerStub(""), false},
		{"stringer", stringerStub("abc"), true},
		{"nil row", nilRow, false},
		{"row", RowOf("id", 1), true},
		{"nil string pointer", nilString, false},
		{"pointer to empty string", &empty, true},
		{"time", time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasValue(tt.value))
		})
	}
}

func TestToString(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, ""},
		{"string", "abc", "abc"},
		{"bytes", []byte("abc"), "abc"},
		{"int", 7, "7"},
		{"int64", int64(505), "505"},
		{"float without fraction", float64(3), "3"},
		{"float", 2.5, "2.5"},
		{"bool", true, "true"},
		{"time", time.Date(2020, 5, 1, 10, 15, 0, 0, time.UTC), "2020-05-01T10:15:00"},
		{"null string", sql.NullString{String: "x", Valid: true}, "x"},
		{"invalid null string", sql.NullString{String: "x"}, ""},
		{"stringer", stringerStub("s"), "s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToString(tt.value))
		})
	}
}

func TestSQLKey(t *testing.T) {
	assert.Equal(t, int64(42), SQLKey("42"))
	assert.Equal(t, int64(42), SQLKey(" 42 "))
	assert.Equal(t, int64(7), SQLKey(7))
	assert.Equal(t, "abc", SQLKey("abc"))
	assert.Equal(t, "", SQLKey(nil))
	assert.Equal(t, int64(42), NewDatabaseRecord("42").Key())
}
