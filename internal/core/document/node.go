package document

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/rabenherz112/compose-manager/internal/core/ordering"
)

// =============================================================================
// Node Construction
// =============================================================================

func strNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// quotedNode forces double quotes; used for values that must stay strings
// even when they look like another type (ports, cpus, the managed label).
func quotedNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v, Style: yaml.DoubleQuotedStyle}
}

func boolNode(v bool) *yaml.Node {
	value := "false"
	if v {
		value = "true"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: value}
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func sequenceNode(items []*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: items}
}

func strSequenceNode(values []string) *yaml.Node {
	items := make([]*yaml.Node, len(values))
	for i, v := range values {
		items[i] = strNode(v)
	}
	return sequenceNode(items)
}

// =============================================================================
// Mapping Access
// =============================================================================

// mapGet returns the value node for key, or nil.
func mapGet(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// mapKeys returns the mapping's keys in document order.
func mapKeys(m *yaml.Node) []string {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		keys = append(keys, m.Content[i].Value)
	}
	return keys
}

// mapSet replaces the value node for key, keeping the existing key node and
// any comments attached to it. A missing key is appended; canonical position
// is the re-sort's concern, not mapSet's.
func mapSet(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content, strNode(key), value)
}

// mapInsertSorted inserts a new key at its name-sorted position among the
// existing keys without moving any of them. Existing entries keep their
// order even when they are not sorted themselves.
func mapInsertSorted(m *yaml.Node, key string, value *yaml.Node) {
	at := len(m.Content)
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value > key {
			at = i
			break
		}
	}
	m.Content = append(m.Content[:at], append([]*yaml.Node{strNode(key), value}, m.Content[at:]...)...)
}

// mapDelete removes key and its value; reports whether the key was present.
func mapDelete(m *yaml.Node, key string) bool {
	if m == nil || m.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
			return true
		}
	}
	return false
}

// =============================================================================
// Comparison and Sorting
// =============================================================================

// nodeEqual compares two nodes by semantic content: kind, resolved tag and
// value, recursively. Styles and comments are ignored, so a no-op update of
// a block that only differs in quoting stays clean.
func nodeEqual(a, b *yaml.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind == yaml.AliasNode || b.Kind == yaml.AliasNode {
		return a.Kind == b.Kind && nodeEqual(a.Alias, b.Alias)
	}
	if a.Kind != b.Kind || a.Tag != b.Tag || a.Value != b.Value {
		return false
	}
	if len(a.Content) != len(b.Content) {
		return false
	}
	for i := range a.Content {
		if !nodeEqual(a.Content[i], b.Content[i]) {
			return false
		}
	}
	return true
}

// sortMapping re-orders a mapping's keys under the canonical policy for the
// given scope. The sort is stable, so unrecognized keys keep their original
// relative order after all recognized keys.
func sortMapping(m *yaml.Node, scope ordering.Scope) {
	if m == nil || m.Kind != yaml.MappingNode {
		return
	}
	n := len(m.Content) / 2
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra := ordering.Rank(scope, m.Content[idx[a]*2].Value)
		rb := ordering.Rank(scope, m.Content[idx[b]*2].Value)
		return ra < rb
	})
	sorted := make([]*yaml.Node, 0, len(m.Content))
	for _, i := range idx {
		sorted = append(sorted, m.Content[i*2], m.Content[i*2+1])
	}
	m.Content = sorted
}
