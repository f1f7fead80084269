// Package codelist translates IGC syslist codes into ISO code-list tokens,
// language and country codes, and ISO 8601 dates.
package codelist

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// Syslist ids used by the translator.
const (
	// LanguageList holds the IGC language keys.
	LanguageList = 99999999

	isoLang = "iso"
)

const (
	sqlEntryName = "SELECT name FROM sys_list WHERE lst_id=? AND entry_id=? AND lang_id=?"
	sqlEntryAll  = "SELECT * FROM sys_list WHERE lst_id=? AND entry_id=?"
)

// IGC language keys with a fixed ISO 639-2/B code.
var builtinLanguages = map[string]string{
	"150": "ger",
	"123": "eng",
}

// Translator is a sys_list backed core.Translator.
type Translator struct {
	sql    core.Querier
	logger *slog.Logger
}

// New creates a translator reading code lists through q.
func New(q core.Querier, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Translator{sql: q, logger: logger}
}

// CodeListEntry returns the ISO token of entry code in syslist listID, or ""
// when the code is absent or not part of the list.
func (t *Translator) CodeListEntry(ctx context.Context, listID int, code any) (string, error) {
	if !core.HasValue(code) {
		return "", nil
	}
	row, err := t.sql.First(ctx, sqlEntryName, listID, core.SQLKey(code), isoLang)
	if err != nil {
		return "", fmt.Errorf("code list %d entry %v: %w", listID, code, err)
	}
	if row == nil {
		t.logger.Debug("code list entry not found", slog.Int("list", listID), slog.String("code", core.ToString(code)))
		return "", nil
	}
	return row.String("name"), nil
}

// LanguageISO639_2 maps an IGC language key to an ISO 639-2/B code.
func (t *Translator) LanguageISO639_2(ctx context.Context, code any) (string, error) {
	if !core.HasValue(code) {
		return "", nil
	}
	if iso, ok := builtinLanguages[strings.TrimSpace(core.ToString(code))]; ok {
		return iso, nil
	}
	return t.CodeListEntry(ctx, LanguageList, code)
}

// CountryAlpha3 maps a numeric ISO 3166-1 country code to its alpha-3 code,
// "" for absent, malformed or non-country codes.
func (t *Translator) CountryAlpha3(code any) string {
	n, err := strconv.Atoi(strings.TrimSpace(core.ToString(code)))
	if err != nil {
		return ""
	}
	region, err := language.EncodeM49(n)
	if err != nil || !region.IsCountry() {
		t.logger.Debug("unknown country code", slog.Int("code", n))
		return ""
	}
	iso3 := region.ISO3()
	if len(iso3) != 3 || iso3 == "ZZZ" {
		return ""
	}
	return iso3
}

// ISODate converts an IGC timestamp (yyyyMMddHHmmssSSS or a prefix of it)
// to ISO 8601. Values that are not IGC timestamps are returned unchanged.
func (t *Translator) ISODate(raw string) string {
	return ISODate(raw)
}

// ISODate is the translator-independent form of Translator.ISODate.
func ISODate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || !isDigits(s) {
		return s
	}

	year := s[:min(4, len(s))]
	if len(s) < 6 || s[4:6] == "00" {
		return year
	}
	month := s[4:6]
	if len(s) < 8 || s[6:8] == "00" {
		return year + "-" + month
	}
	date := year + "-" + month + "-" + s[6:8]

	switch {
	case len(s) >= 14:
		if s[8:14] == "000000" {
			return date
		}
		return date + "T" + s[8:10] + ":" + s[10:12] + ":" + s[12:14]
	case len(s) >= 12:
		if s[8:12] == "0000" {
			return date
		}
		return date + "T" + s[8:10] + ":" + s[10:12]
	}
	return date
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// SyslistName is the name of a syslist entry in one language.
type SyslistName struct {
	Name string
	Lang string
}

// SyslistNames returns the names of an entry in every language present.
func (t *Translator) SyslistNames(ctx context.Context, listID int, entryID any) ([]SyslistName, error) {
	if !core.HasValue(entryID) {
		return nil, nil
	}
	rows, err := t.sql.All(ctx, sqlEntryAll, listID, core.SQLKey(entryID))
	if err != nil {
		return nil, fmt.Errorf("syslist %d entry %v: %w", listID, entryID, err)
	}
	names := make([]SyslistName, 0, len(rows))
	for _, row := range rows {
		names = append(names, SyslistName{Name: row.String("name"), Lang: row.String("lang_id")})
	}
	return names, nil
}

var _ core.Translator = (*Translator)(nil)
