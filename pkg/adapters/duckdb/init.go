package duckdb

import (
	"log/slog"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/adapter"
)

func init() {
	adapter.Register("duckdb", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
