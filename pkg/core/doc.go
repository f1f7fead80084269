// Package core defines the shared language of the ingrid-dsc system.
//
// This package contains:
//   - Source records and catalog rows (SourceRecord, DatabaseRecord, Row)
//   - The "has value" predicate that gates every mapped field
//   - IGC object classes and their fixed enumerations
//   - Service contracts consumed by the mappers (Querier, Translator)
//   - Persistence contracts and entities (Store, Run, Document, IndexField)
//   - Configuration types shared by the CLI and the engine (TargetConfig)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
