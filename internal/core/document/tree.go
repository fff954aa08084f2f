package document

import (
	"bytes"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/rabenherz112/compose-manager/internal/core/ordering"
)

// =============================================================================
// Tree
// =============================================================================

// Tree is the editable in-memory form of a compose file. It is a superset of
// the spec model: every node keeps the formatting metadata yaml.v3 attaches
// (comments, key order, scalar styles), so untouched blocks round-trip
// unchanged. Blocks the merge engine modifies are tracked as dirty and
// re-emitted under the canonical key order.
type Tree struct {
	doc      *yaml.Node // document node; keeps top-of-file comments
	root     *yaml.Node // mapping node at the document root
	dirty    map[string]dirtyBlock
	topDirty bool
}

type dirtyBlock struct {
	node  *yaml.Node
	scope ordering.Scope
}

// NewTree returns an empty tree, the starting point when no file exists yet.
func NewTree() *Tree {
	root := mappingNode()
	return &Tree{
		doc:   &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}},
		root:  root,
		dirty: make(map[string]dirtyBlock),
	}
}

// Parse reads YAML text into a tree. Empty input yields an empty tree; input
// that is not well-formed YAML, or whose root is not a mapping, is a
// ParseError.
func Parse(data []byte) (*Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, NewParseError(err.Error(), ErrInvalidYAML)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return NewTree(), nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return NewTree(), nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, NewParseError("top level is not a mapping", ErrNotMapping)
	}
	// an empty document parses as a flow mapping ({}); keep the root block
	// styled so new sections emit in block form. A root that already holds
	// content keeps its author's style.
	if len(root.Content) == 0 {
		root.Style = 0
	}
	return &Tree{doc: &doc, root: root, dirty: make(map[string]dirtyBlock)}, nil
}

// Encode serializes the tree with two-space indentation. Dirty blocks were
// re-sorted when the merge applied, so encoding is a pure dump: a tree with
// no changes reproduces its input's structure exactly.
func (t *Tree) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	err := enc.Encode(t.doc)
	if cerr := enc.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EnsureSkeleton makes sure the services and networks sections exist, the
// shape an initialized infra file starts with.
func (t *Tree) EnsureSkeleton() {
	t.ensureSection("services")
	t.ensureSection("networks")
}

// Changed returns the dirty block paths in sorted order, for logging.
func (t *Tree) Changed() []string {
	paths := make([]string, 0, len(t.dirty))
	for p := range t.dirty {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// =============================================================================
// Section Access
// =============================================================================

func (t *Tree) section(name string) *yaml.Node {
	return mapGet(t.root, name)
}

// ensureSection returns the named top-level mapping, creating it (and
// dirtying the top level, so recognized sections land in canonical order)
// when missing. A null or empty-flow section ("services:" with no entries,
// "services: {}") becomes a block mapping ready to hold entries.
func (t *Tree) ensureSection(name string) *yaml.Node {
	if s := mapGet(t.root, name); s != nil {
		if s.Kind == yaml.MappingNode {
			if len(s.Content) == 0 {
				s.Style = 0
			}
			return s
		}
		// null scalar, or a shape we cannot merge into: start fresh
		repl := mappingNode()
		mapSet(t.root, name, repl)
		return repl
	}
	s := mappingNode()
	mapSet(t.root, name, s)
	t.topDirty = true
	return s
}

// HasService reports whether a service block with this exact name exists.
func (t *Tree) HasService(name string) bool {
	return mapGet(t.section("services"), name) != nil
}

// HasNetwork reports whether a network block with this exact name exists.
func (t *Tree) HasNetwork(name string) bool {
	return mapGet(t.section("networks"), name) != nil
}

// ServiceNames returns the service names in document order.
func (t *Tree) ServiceNames() []string {
	return mapKeys(t.section("services"))
}

// NetworkNames returns the network names in document order.
func (t *Tree) NetworkNames() []string {
	return mapKeys(t.section("networks"))
}

// =============================================================================
// Dirty Tracking
// =============================================================================

func (t *Tree) markDirty(path string, node *yaml.Node, scope ordering.Scope) {
	t.dirty[path] = dirtyBlock{node: node, scope: scope}
}

// resort re-emits every dirty block under the canonical key order. Clean
// blocks are never touched.
func (t *Tree) resort() {
	for _, b := range t.dirty {
		sortMapping(b.node, b.scope)
	}
	if t.topDirty {
		sortMapping(t.root, ordering.ScopeTopLevel)
	}
}
