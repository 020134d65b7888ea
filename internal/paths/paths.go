// Package paths computes the filesystem locations used by the installer:
// the persistent cache root, the per-version archive and binary paths
// beneath it, and the install directory that holds the active binary.
//
// Every path is a pure function of its inputs. Nothing in this package
// creates directories; callers create them right before writing.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"

	"github.com/mjfwebb/neo4j-mcp-installer/internal/platform"
)

const (
	// VersionsDirName is the cache subdirectory holding one directory per version.
	VersionsDirName = "versions"

	// LockFileName is the advisory lock file at the cache root.
	LockFileName = ".lock"

	// EnvLocalAppData is required on Windows to compute the default install dir.
	EnvLocalAppData = "LOCALAPPDATA"
)

// ConfigurationError is returned when a required setting is missing or invalid.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

// Locator computes version-scoped cache paths beneath a root directory.
type Locator struct {
	root string
}

// New creates a Locator rooted at root.
func New(root string) *Locator {
	return &Locator{root: root}
}

// NewDefault creates a Locator rooted at DefaultCacheRoot.
func NewDefault() (*Locator, error) {
	root, err := DefaultCacheRoot()
	if err != nil {
		return nil, err
	}
	return New(root), nil
}

// DefaultCacheRoot returns the per-user persistent data directory for the
// product. A data directory is used rather than a cache directory because
// the OS may reclaim caches, and the extracted binaries must survive.
//
//	Linux:   $XDG_DATA_HOME/neo4j-mcp (~/.local/share/neo4j-mcp)
//	macOS:   ~/Library/Application Support/neo4j-mcp
//	Windows: %LOCALAPPDATA%\neo4j-mcp
func DefaultCacheRoot() (string, error) {
	if xdg.DataHome == "" {
		return "", &ConfigurationError{Key: "cache root", Reason: "could not determine user data directory"}
	}
	return filepath.Join(xdg.DataHome, platform.ProductName), nil
}

// Root returns the cache root.
func (l *Locator) Root() string {
	return l.root
}

// VersionsDir returns root/versions.
func (l *Locator) VersionsDir() string {
	return filepath.Join(l.root, VersionsDirName)
}

// VersionDir returns root/versions/<version>.
func (l *Locator) VersionDir(version string) string {
	return filepath.Join(l.VersionsDir(), version)
}

// ArchivePath returns root/versions/<version>/<asset-name>.
func (l *Locator) ArchivePath(version string, target platform.Target) string {
	return filepath.Join(l.VersionDir(version), target.AssetName())
}

// BinaryPath returns root/versions/<version>/<binary-name>.
func (l *Locator) BinaryPath(version string, target platform.Target) string {
	return filepath.Join(l.VersionDir(version), target.BinaryName())
}

// LockPath returns the advisory lock file for the cache root.
func (l *Locator) LockPath() string {
	return filepath.Join(l.root, LockFileName)
}

// ValidateVersion rejects version strings that cannot be used as a single
// path component. Versions are otherwise opaque.
func ValidateVersion(version string) error {
	if strings.TrimSpace(version) == "" {
		return &ConfigurationError{Key: "version", Reason: "must not be empty"}
	}
	if version == "." || version == ".." || strings.ContainsAny(version, `/\`) {
		return &ConfigurationError{Key: "version", Reason: fmt.Sprintf("%q is not a valid release tag", version)}
	}
	return nil
}

// InstallDir returns override if set, otherwise DefaultInstallDir.
func InstallDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	return DefaultInstallDir()
}

// DefaultInstallDir returns the platform default install directory:
// ~/.local/bin on POSIX and %LOCALAPPDATA%\neo4j-mcp\bin on Windows.
func DefaultInstallDir() (string, error) {
	return defaultInstallDir(runtime.GOOS, os.Getenv, os.UserHomeDir)
}

func defaultInstallDir(goos string, getenv func(string) string, home func() (string, error)) (string, error) {
	if goos == "windows" {
		local := getenv(EnvLocalAppData)
		if local == "" {
			return "", &ConfigurationError{
				Key:    EnvLocalAppData,
				Reason: "not set; cannot determine install dir on Windows",
			}
		}
		return filepath.Join(local, platform.ProductName, "bin"), nil
	}

	homeDir, err := home()
	if err != nil {
		return "", &ConfigurationError{Key: "HOME", Reason: err.Error()}
	}
	return filepath.Join(homeDir, ".local", "bin"), nil
}
