package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mjfwebb/neo4j-mcp-installer/internal/lock"
	"github.com/mjfwebb/neo4j-mcp-installer/internal/platform"
)

// UninstallFlags holds command-line flags for uninstall
type UninstallFlags struct {
	commonFlags
	cleanCache bool
}

func runUninstall(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := &UninstallFlags{}
	flagSet := newFlagSet("uninstall", "Remove the installed neo4j-mcp binary.", stderr)
	flags.register(flagSet)
	flagSet.BoolVar(&flags.cleanCache, "clean-cache", false, "also remove every cached version")
	if err := parseArgs(flagSet, args); err != nil {
		return err
	}

	cfg, _, err := loadConfig(ctx, flagSet, &flags.commonFlags, platform.NewDetector(), stderr)
	if err != nil {
		return err
	}
	binaryPath, err := installedBinaryPath(cfg)
	if err != nil {
		return err
	}

	switch err := os.Remove(binaryPath); {
	case err == nil:
		fmt.Fprintf(stdout, "Removed: %s\n", binaryPath)
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintf(stdout, "Not found: %s\n", binaryPath)
	default:
		return fmt.Errorf("remove binary: %w", err)
	}

	if !flags.cleanCache {
		return nil
	}

	locator, err := cfg.Locator()
	if err != nil {
		return err
	}

	root := locator.Root()
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stdout, "Cache not found: %s\n", root)
		return nil
	}
	if err := validateCacheRootForRemoval(root); err != nil {
		return err
	}

	// Refuse while an install holds the cache. Cached versions go while the
	// lock is held; the lock file goes with the rest of the root after.
	cacheLock, err := lock.TryAcquire(locator.LockPath())
	if err != nil {
		return err
	}
	if err := os.RemoveAll(locator.VersionsDir()); err != nil {
		_ = cacheLock.Release()
		return fmt.Errorf("remove cached versions: %w", err)
	}
	if err := cacheLock.Release(); err != nil {
		return err
	}

	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf("remove cache: %w", err)
	}
	fmt.Fprintf(stdout, "Removed cache: %s\n", root)
	return nil
}

// validateCacheRootForRemoval checks that root is safe to remove recursively.
func validateCacheRootForRemoval(root string) error {
	absPath, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return fmt.Errorf("invalid cache root: cannot resolve absolute path: %w", err)
	}

	if filepath.Dir(absPath) == absPath {
		return fmt.Errorf("invalid cache root: refusing to remove %s", absPath)
	}

	systemDirs := []string{"/usr", "/bin", "/sbin", "/etc", "/var", "/lib", "/boot", "/home", "/tmp"}
	for _, sysDir := range systemDirs {
		if absPath == sysDir {
			return fmt.Errorf("invalid cache root: cannot remove system directory %s", absPath)
		}
	}

	if home, err := os.UserHomeDir(); err == nil && absPath == filepath.Clean(home) {
		return fmt.Errorf("invalid cache root: cannot remove home directory %s", absPath)
	}

	return nil
}
