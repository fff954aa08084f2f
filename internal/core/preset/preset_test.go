package preset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabenherz112/compose-manager/internal/core/spec"
)

func TestDefaultTable(t *testing.T) {
	table := Default()

	small, err := Resolve(table, "Small")
	require.NoError(t, err)
	assert.Equal(t, spec.ResourceLimits{CPULimit: 0.2, MemoryLimit: 64 * 1024 * 1024}, small)

	medium, err := Resolve(table, "Medium")
	require.NoError(t, err)
	assert.Equal(t, spec.ResourceLimits{CPULimit: 0.5, MemoryLimit: 128 * 1024 * 1024}, medium)

	big, err := Resolve(table, "Big")
	require.NoError(t, err)
	assert.Equal(t, spec.ResourceLimits{CPULimit: 1, MemoryLimit: 512 * 1024 * 1024}, big)
}

func TestResolve_UnknownName(t *testing.T) {
	_, err := Resolve(Default(), "Gigantic")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownPreset)
	assert.Contains(t, err.Error(), "Gigantic")

	// names are case sensitive
	_, err = Resolve(Default(), "small")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestNames_Sorted(t *testing.T) {
	assert.Equal(t, []string{"Big", "Medium", "Small"}, Names(Default()))
}
