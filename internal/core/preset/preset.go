// Package preset maps named resource presets to concrete limits.
// This is part of the Functional Core - resolution is a pure lookup.
package preset

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rabenherz112/compose-manager/internal/core/spec"
)

// ErrUnknownPreset is returned when a preset name has no table entry. It is
// never defaulted away: the caller decides whether to surface or recover.
var ErrUnknownPreset = errors.New("unknown resource preset")

// Table maps preset names to concrete limits. A resolved preset is always a
// concrete spec.ResourceLimits value; the document never carries the name.
type Table map[string]spec.ResourceLimits

// Default returns the built-in preset table.
//
// Small resolves to 0.2 CPUs / 64MiB, Medium to 0.5 CPUs / 128MiB and
// Big to 1 CPU / 512MiB.
func Default() Table {
	return Table{
		"Small":  {CPULimit: 0.2, MemoryLimit: 64 * 1024 * 1024},
		"Medium": {CPULimit: 0.5, MemoryLimit: 128 * 1024 * 1024},
		"Big":    {CPULimit: 1, MemoryLimit: 512 * 1024 * 1024},
	}
}

// Resolve looks up name in the table. Misses return ErrUnknownPreset wrapped
// with the offending name; nothing else in an in-flight merge is affected.
func Resolve(t Table, name string) (spec.ResourceLimits, error) {
	limits, ok := t[name]
	if !ok {
		return spec.ResourceLimits{}, fmt.Errorf("preset %q: %w", name, ErrUnknownPreset)
	}
	return limits, nil
}

// Names returns the preset names in sorted order, for display.
func Names(t Table) []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
