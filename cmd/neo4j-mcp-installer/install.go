package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/go-logr/logr"
	"github.com/spf13/pflag"

	"github.com/mjfwebb/neo4j-mcp-installer/internal/binary"
	"github.com/mjfwebb/neo4j-mcp-installer/internal/config"
	"github.com/mjfwebb/neo4j-mcp-installer/internal/platform"
	"github.com/mjfwebb/neo4j-mcp-installer/internal/shell"
)

// InstallFlags holds command-line flags for install and upgrade
type InstallFlags struct {
	commonFlags
	version         string
	noVerify        bool
	requireChecksum bool
	force           bool
}

// parseInstallFlags parses install or upgrade flags. upgrade has no
// --force because it always re-downloads.
func parseInstallFlags(args []string, upgrade bool, stderr io.Writer) (*InstallFlags, *pflag.FlagSet, error) {
	flags := &InstallFlags{}

	name, usage := "install", "Download neo4j-mcp and place it in the install directory.\nA version already in the cache is reused unless --force is given."
	if upgrade {
		name, usage = "upgrade", "Re-download neo4j-mcp and replace the installed binary."
	}

	fs := newFlagSet(name, usage, stderr)
	flags.register(fs)
	fs.StringVar(&flags.version, "version", "", "release tag to install (default latest; NEO4J_MCP_VERSION wins)")
	fs.BoolVar(&flags.noVerify, "no-verify", false, "skip checksum verification")
	fs.BoolVar(&flags.requireChecksum, "require-checksum", false, "fail when no checksum is published for the archive")
	if !upgrade {
		fs.BoolVarP(&flags.force, "force", "f", false, "re-download even if the version is cached")
	}

	if err := parseArgs(fs, args); err != nil {
		return nil, nil, err
	}
	return flags, fs, nil
}

func runInstall(ctx context.Context, args []string, stdout, stderr io.Writer, upgrade bool) error {
	flags, fs, err := parseInstallFlags(args, upgrade, stderr)
	if err != nil {
		return err
	}

	detector := platform.NewDetector()
	cfg, logger, err := loadConfig(ctx, fs, &flags.commonFlags, detector, stderr)
	if err != nil {
		return err
	}

	if fs.Changed("version") {
		cfg.Version = flags.version
	}
	if flags.noVerify {
		cfg.Verify = false
	}
	if flags.requireChecksum {
		cfg.RequireChecksum = true
	}
	if flags.force || upgrade {
		cfg.Force = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	installer, err := newInstaller(cfg, detector, logger)
	if err != nil {
		return err
	}

	result, err := installer.Install(ctx, cfg.InstallOptions())
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Installed: %s\n", result.InstalledPath)
	fmt.Fprintf(stdout, "Version:   %s\n", result.Version)
	fmt.Fprintln(stdout)
	printPathHelp(ctx, stdout, filepath.Dir(result.InstalledPath))
	return nil
}

// newInstaller wires the pipeline collaborators from cfg.
func newInstaller(cfg *config.Config, detector platform.Detector, logger logr.Logger) (*binary.Installer, error) {
	locator, err := cfg.Locator()
	if err != nil {
		return nil, err
	}

	var keyring openpgp.EntityList
	if cfg.SignatureKeyFile != "" {
		keyring, err = binary.LoadKeyring(cfg.SignatureKeyFile)
		if err != nil {
			return nil, err
		}
	}

	return binary.NewInstaller(binary.Config{
		Detector:    detector,
		Locator:     locator,
		Fetcher:     binary.NewFetcherWithClient(binary.NewHTTPClient(cfg.Timeout), cfg.UserAgent),
		APIBaseURL:  cfg.APIBaseURL,
		GitHubToken: cfg.GitHubToken,
		Keyring:     keyring,
		Logger:      logger,
	})
}

// printPathHelp tells the user how to run the binary, or how to get dir
// onto PATH first.
func printPathHelp(ctx context.Context, w io.Writer, dir string) {
	if shell.InPath(dir, os.Getenv("PATH")) {
		fmt.Fprintln(w, "You can now run:")
		fmt.Fprintf(w, "  %s --help\n", platform.ProductName)
		return
	}

	detected := shell.DetectShell(ctx)
	fmt.Fprint(w, shell.UserPathHint(dir, detected.Shell, runtime.GOOS))
}
