// Package ordering defines the canonical key order for compose documents.
// This is part of the Functional Core - all functions are pure with no I/O.
package ordering

// Scope identifies which block a key belongs to.
type Scope int

const (
	// ScopeTopLevel covers the document root (services, networks, ...).
	ScopeTopLevel Scope = iota
	// ScopeService covers the keys of a single service block.
	ScopeService
	// ScopeNetwork covers the keys of a single network block.
	ScopeNetwork
)

// unrankedBase is the rank assigned to the first unrecognized key in a
// scope. Unrecognized keys sort after every recognized key and keep their
// first-encountered order relative to each other (the caller uses a stable
// sort), so unknown or future fields survive a rewrite in place.
const unrankedBase = 1000

var ranks = map[Scope]map[string]int{
	ScopeTopLevel: {
		"services": 0,
		"networks": 1,
	},
	ScopeService: {
		"container_name": 0,
		"image":          1,
		"restart":        2,
		"networks":       3,
		"ports":          4,
		"environment":    5,
		"volumes":        6,
		"depends_on":     7,
		"labels":         8,
		"deploy":         9,
	},
	ScopeNetwork: {
		"name":        0,
		"driver":      1,
		"internal":    2,
		"external":    3,
		"enable_ipv6": 4,
	},
}

// Rank returns the sort rank of key within scope. Recognized keys get their
// canonical position; unrecognized keys all get the same rank past the
// recognized range, leaving their relative order to the stable sort.
//
// The policy is identical for brand-new blocks and for rewrites of dirty
// blocks, which is what makes a second pass over an already-canonical
// document a no-op.
func Rank(scope Scope, key string) int {
	if r, ok := ranks[scope][key]; ok {
		return r
	}
	return unrankedBase
}

// Recognized reports whether key has a canonical position within scope.
func Recognized(scope Scope, key string) bool {
	_, ok := ranks[scope][key]
	return ok
}
