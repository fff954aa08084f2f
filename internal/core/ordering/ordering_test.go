package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRank_TopLevel(t *testing.T) {
	assert.Less(t, Rank(ScopeTopLevel, "services"), Rank(ScopeTopLevel, "networks"))
	assert.Less(t, Rank(ScopeTopLevel, "networks"), Rank(ScopeTopLevel, "volumes"))
}

func TestRank_ServiceScope(t *testing.T) {
	canonical := []string{
		"container_name", "image", "restart", "networks", "ports",
		"environment", "volumes", "depends_on", "labels", "deploy",
	}
	for i := 1; i < len(canonical); i++ {
		assert.Less(t, Rank(ScopeService, canonical[i-1]), Rank(ScopeService, canonical[i]),
			"%s must rank before %s", canonical[i-1], canonical[i])
	}
}

func TestRank_NetworkScope(t *testing.T) {
	canonical := []string{"name", "driver", "internal", "external", "enable_ipv6"}
	for i := 1; i < len(canonical); i++ {
		assert.Less(t, Rank(ScopeNetwork, canonical[i-1]), Rank(ScopeNetwork, canonical[i]))
	}
}

func TestRank_UnrecognizedSortsLast(t *testing.T) {
	assert.Greater(t, Rank(ScopeService, "user"), Rank(ScopeService, "deploy"))
	// unrecognized keys share a rank; the stable sort keeps their order
	assert.Equal(t, Rank(ScopeService, "user"), Rank(ScopeService, "healthcheck"))
}

func TestRank_ScopesAreIndependent(t *testing.T) {
	// "networks" is ranked in two scopes with different positions
	assert.Equal(t, 1, Rank(ScopeTopLevel, "networks"))
	assert.Equal(t, 3, Rank(ScopeService, "networks"))
	// "driver" only means something inside a network block
	assert.True(t, Recognized(ScopeNetwork, "driver"))
	assert.False(t, Recognized(ScopeService, "driver"))
}
