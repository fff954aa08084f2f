package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabenherz112/compose-manager/internal/core/preset"
	"github.com/rabenherz112/compose-manager/internal/core/spec"
)

// execute runs the CLI in-process with a config path that does not exist,
// so every invocation starts from default settings.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	a := newApp()
	a.root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yml")}, args...))
	return a.root.Execute()
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestSplitService(t *testing.T) {
	name, image, err := splitService("web:nginx:latest")
	require.NoError(t, err)
	assert.Equal(t, "web", name)
	assert.Equal(t, "nginx:latest", image)

	name, image, err = splitService("db:postgres")
	require.NoError(t, err)
	assert.Equal(t, "db", name)
	assert.Equal(t, "postgres", image)

	for _, bad := range []string{"web", ":image", "web:", ""} {
		_, _, err := splitService(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestResolveResources(t *testing.T) {
	a := &app{presets: preset.Default()}

	t.Run("preset", func(t *testing.T) {
		limits, err := a.resolveResources(buildFlags{presetName: "Small"})
		require.NoError(t, err)
		assert.Equal(t, &spec.ResourceLimits{CPULimit: 0.2, MemoryLimit: 64 * 1024 * 1024}, limits)
	})

	t.Run("unknown preset fails", func(t *testing.T) {
		_, err := a.resolveResources(buildFlags{presetName: "Gigantic"})
		assert.ErrorIs(t, err, preset.ErrUnknownPreset)
	})

	t.Run("explicit quantities", func(t *testing.T) {
		limits, err := a.resolveResources(buildFlags{cpus: "0.5", memory: "128M", reserveCPUs: "0.2"})
		require.NoError(t, err)
		assert.Equal(t, &spec.ResourceLimits{
			CPULimit:       0.5,
			MemoryLimit:    128 * 1024 * 1024,
			CPUReservation: 0.2,
		}, limits)
	})

	t.Run("nothing requested", func(t *testing.T) {
		limits, err := a.resolveResources(buildFlags{})
		require.NoError(t, err)
		assert.Nil(t, limits)
	})
}

// =============================================================================
// Command Tests
// =============================================================================

func TestInitCommand(t *testing.T) {
	infra := filepath.Join(t.TempDir(), "infra.yml")
	require.NoError(t, execute(t, "--infra-file", infra, "init"))

	out := readFile(t, infra)
	assert.Contains(t, out, "services:")
	assert.Contains(t, out, "networks:")
}

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	appDir := filepath.Join(dir, "web")

	err := execute(t,
		"--infra-file", filepath.Join(dir, "infra.yml"),
		"build",
		"--app", appDir,
		"-s", "web:nginx:latest",
		"-n", "backend",
		"-p", "80:80",
		"-e", "TZ=UTC",
		"--preset", "Small",
		"--auto-update",
	)
	require.NoError(t, err)

	out := readFile(t, filepath.Join(appDir, "compose.yml"))
	assert.Contains(t, out, "container_name: web")
	assert.Contains(t, out, "image: nginx:latest")
	assert.Contains(t, out, "restart: unless-stopped")
	assert.Contains(t, out, `- "80:80"`)
	assert.Contains(t, out, "TZ: UTC")
	assert.Contains(t, out, spec.WatchtowerLabel+`: "true"`)
	assert.Contains(t, out, `cpus: "0.2"`)
	assert.Contains(t, out, "memory: 64MiB")
	// no infra file: the network is created app-locally
	assert.Contains(t, out, "driver: bridge")
}

func TestBuildCommand_InfraNetworkAttachesAsExternal(t *testing.T) {
	dir := t.TempDir()
	infra := filepath.Join(dir, "infra.yml")
	require.NoError(t, os.WriteFile(infra, []byte("networks:\n  backend:\n    driver: bridge\n"), 0o644))

	appDir := filepath.Join(dir, "web")
	err := execute(t,
		"--infra-file", infra,
		"build",
		"--app", appDir,
		"-s", "web:nginx:latest",
		"-n", "backend",
	)
	require.NoError(t, err)

	out := readFile(t, filepath.Join(appDir, "compose.yml"))
	assert.Contains(t, out, "external: true")
	assert.NotContains(t, out, "networks:\n  backend:\n    driver: bridge")
}

func TestBuildCommand_UpdateKeepsManualEdits(t *testing.T) {
	dir := t.TempDir()
	appDir := filepath.Join(dir, "web")
	require.NoError(t, os.MkdirAll(appDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "compose.yml"), []byte(`services:
  web:
    # managed by the platform team
    image: nginx:1.24
    user: nobody
`), 0o644))

	err := execute(t,
		"--infra-file", filepath.Join(dir, "infra.yml"),
		"build",
		"--app", appDir,
		"-s", "web:nginx:1.25",
	)
	require.NoError(t, err)

	out := readFile(t, filepath.Join(appDir, "compose.yml"))
	assert.Contains(t, out, "image: nginx:1.25")
	assert.Contains(t, out, "# managed by the platform team")
	assert.Contains(t, out, "user: nobody")
}

func TestBuildCommand_InvalidPort(t *testing.T) {
	dir := t.TempDir()
	err := execute(t,
		"--infra-file", filepath.Join(dir, "infra.yml"),
		"build",
		"--app", filepath.Join(dir, "web"),
		"-s", "web:nginx:latest",
		"-p", "not-a-port",
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, spec.ErrInvalidPort)
	// the compose file was never created
	_, statErr := os.Stat(filepath.Join(dir, "web", "compose.yml"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRemoveCommand(t *testing.T) {
	dir := t.TempDir()
	appDir := filepath.Join(dir, "web")
	infra := filepath.Join(dir, "infra.yml")

	require.NoError(t, execute(t, "--infra-file", infra, "build",
		"--app", appDir, "-s", "web:nginx:latest", "-n", "backend"))

	// the network is still referenced by the service
	err := execute(t, "--infra-file", infra, "remove", "--app", appDir, "--network", "backend")
	require.Error(t, err)

	require.NoError(t, execute(t, "--infra-file", infra, "remove", "--app", appDir, "web"))
	out := readFile(t, filepath.Join(appDir, "compose.yml"))
	assert.NotContains(t, out, "nginx:latest")

	// with the service gone the network can go too
	require.NoError(t, execute(t, "--infra-file", infra, "remove", "--app", appDir, "--network", "backend"))
}

func TestListCommand_MissingFile(t *testing.T) {
	err := execute(t, "list", "--app", filepath.Join(t.TempDir(), "web"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no compose file found")
}
