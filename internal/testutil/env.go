// Package testutil provides helpers for testing the installer in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
)

// Env is an isolated set of directories for one test.
type Env struct {
	// Root is the temp directory holding everything below.
	Root string
	// DataDir is the cache root (NEO4J_MCP_DATA_DIR).
	DataDir string
	// ConfigHome is XDG_CONFIG_HOME.
	ConfigHome string
	// InstallDir is a suggested --install-dir.
	InstallDir string
}

// installerEnv lists every variable the installer reads, so a developer's
// own settings never leak into a test.
var installerEnv = []string{
	"NEO4J_MCP_REPO",
	"NEO4J_MCP_BASE_URL",
	"NEO4J_MCP_VERSION",
	"NEO4J_MCP_SKIP_VERIFY",
	"NEO4J_MCP_API_URL",
	"NEO4J_MCP_INSTALLER_CONFIG",
	"NEO4J_MCP_GITHUB_TOKEN",
	"GITHUB_TOKEN",
}

// SetupTestEnv points the installer's data and config locations at a
// fresh temp directory and clears NEO4J_MCP_* overrides. Cleanup is
// handled by t.TempDir and t.Setenv.
func SetupTestEnv(t *testing.T) *Env {
	t.Helper()

	tmpDir := t.TempDir()
	env := &Env{
		Root:       tmpDir,
		DataDir:    filepath.Join(tmpDir, "data"),
		ConfigHome: filepath.Join(tmpDir, "config"),
		InstallDir: filepath.Join(tmpDir, "bin"),
	}

	for _, key := range installerEnv {
		t.Setenv(key, "")
	}

	t.Setenv("NEO4J_MCP_DATA_DIR", env.DataDir)
	t.Setenv("XDG_CONFIG_HOME", env.ConfigHome)
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "xdg-data"))
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	for _, dir := range []string{env.DataDir, env.ConfigHome} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return env
}
