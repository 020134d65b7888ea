package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"

	"github.com/mjfwebb/neo4j-mcp-installer/internal/config"
	"github.com/mjfwebb/neo4j-mcp-installer/internal/paths"
	"github.com/mjfwebb/neo4j-mcp-installer/internal/platform"
)

func runWhere(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var flags commonFlags
	fs := newFlagSet("where", "Print the path the neo4j-mcp binary is installed to.", stderr)
	flags.register(fs)
	if err := parseArgs(fs, args); err != nil {
		return err
	}

	cfg, _, err := loadConfig(ctx, fs, &flags, platform.NewDetector(), stderr)
	if err != nil {
		return err
	}
	binaryPath, err := installedBinaryPath(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, binaryPath)
	return nil
}

// installedBinaryPath returns <install-dir>/<binary-name> for this host.
// Nothing is checked on disk.
func installedBinaryPath(cfg *config.Config) (string, error) {
	dir, err := paths.InstallDir(cfg.InstallDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, hostBinaryName()), nil
}

func hostBinaryName() string {
	if runtime.GOOS == "windows" {
		return platform.BinaryNameFor(platform.OSWindows)
	}
	return platform.ProductName
}
