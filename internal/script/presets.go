package script

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed presets/*.star
var presets embed.FS

// Preset returns the source of an embedded preset script.
func Preset(name string) ([]byte, error) {
	src, err := presets.ReadFile("presets/" + name + ".star")
	if err != nil {
		return nil, fmt.Errorf("unknown index script preset %q (available: %s)", name, strings.Join(Presets(), ", "))
	}
	return src, nil
}

// Presets lists the names of the embedded preset scripts.
func Presets() []string {
	entries, _ := fs.ReadDir(presets, "presets")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".star"))
	}
	sort.Strings(names)
	return names
}
