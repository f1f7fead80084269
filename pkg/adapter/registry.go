package adapter

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// Factory builds an unconnected adapter.
type Factory func(*slog.Logger) Adapter

// catalogs maps a normalized target type to its factory. Aliases point at
// the factory of their canonical name but are not listed.
var catalogs = struct {
	sync.RWMutex
	factories map[string]Factory
	canonical map[string]string
}{
	factories: make(map[string]Factory),
	canonical: make(map[string]string),
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds an adapter factory under name and any aliases, e.g.
// "postgres" with "postgresql". Adapter packages call it from init().
func Register(name string, factory Factory, aliases ...string) {
	name = normalize(name)

	catalogs.Lock()
	defer catalogs.Unlock()
	catalogs.factories[name] = factory
	catalogs.canonical[name] = name
	for _, alias := range aliases {
		alias = normalize(alias)
		catalogs.factories[alias] = factory
		catalogs.canonical[alias] = name
	}
}

// Get retrieves an adapter factory by type name or alias, ignoring case.
func Get(name string) (Factory, bool) {
	catalogs.RLock()
	defer catalogs.RUnlock()
	f, ok := catalogs.factories[normalize(name)]
	return f, ok
}

// Canonical returns the registered name behind an alias.
func Canonical(name string) (string, bool) {
	catalogs.RLock()
	defer catalogs.RUnlock()
	c, ok := catalogs.canonical[normalize(name)]
	return c, ok
}

// NewAdapter creates the adapter for cfg.Type. A nil logger discards.
func NewAdapter(cfg core.AdapterConfig, logger *slog.Logger) (Adapter, error) {
	if normalize(cfg.Type) == "" {
		return nil, fmt.Errorf("adapter type not specified: %w", core.ErrInvalidArgument)
	}

	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownAdapterError{Type: cfg.Type, Available: ListAdapters()}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return factory(logger), nil
}

// ListAdapters returns the canonical adapter names, sorted.
func ListAdapters() []string {
	catalogs.RLock()
	defer catalogs.RUnlock()
	names := make([]string, 0, len(catalogs.factories))
	for alias, name := range catalogs.canonical {
		if alias == name {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// IsRegistered reports whether name or an alias of it is registered.
func IsRegistered(name string) bool {
	_, ok := Get(name)
	return ok
}

// UnknownAdapterError is returned for a target type no adapter handles.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown adapter type %q\nAvailable adapters: %s\nHint: Check your target.type in ingrid-dsc.yaml",
		e.Type, strings.Join(e.Available, ", "))
}
