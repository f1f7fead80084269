package core

import "context"

// Querier executes read-only, parameterized catalog queries.
// Placeholders are written as "?" regardless of the backing database.
type Querier interface {
	// All returns every row in result order.
	All(ctx context.Context, query string, args ...any) ([]*Row, error)

	// First returns the first row, or nil when the query yields no rows.
	First(ctx context.Context, query string, args ...any) (*Row, error)
}

// Translator maps proprietary IGC codes to ISO tokens.
// An empty result means "no value"; errors are reserved for lookup failures.
type Translator interface {
	// CodeListEntry translates an entry of an IGC syslist to its ISO code list token.
	CodeListEntry(ctx context.Context, listID int, code any) (string, error)

	// LanguageISO639_2 translates an IGC language key to an ISO 639-2/B code.
	LanguageISO639_2(ctx context.Context, code any) (string, error)

	// CountryAlpha3 translates a numeric ISO 3166-1 country code to alpha-3.
	CountryAlpha3(code any) string

	// ISODate normalizes an IGC timestamp to ISO 8601.
	ISODate(raw string) string
}
