package main

import (
	"context"
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"

	"github.com/mjfwebb/neo4j-mcp-installer/internal/config"
	"github.com/mjfwebb/neo4j-mcp-installer/internal/platform"
)

// commonFlags are accepted by every subcommand.
type commonFlags struct {
	installDir string
	configPath string
	verbose    bool
}

func (c *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&c.installDir, "install-dir", "", "directory to place the neo4j-mcp binary in")
	fs.StringVar(&c.configPath, "config", "", "Lua config file (default $XDG_CONFIG_HOME/neo4j-mcp/installer.lua)")
	fs.BoolVarP(&c.verbose, "verbose", "v", false, "show detailed progress")
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func newFlagSet(name, usage string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: neo4j-mcp-installer %s [OPTIONS]\n\n%s\n\nOptions:\n", name, usage)
		fs.PrintDefaults()
	}
	return fs
}

// parseArgs parses args and rejects positional arguments.
func parseArgs(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	return nil
}

// loadConfig builds the run configuration and logger. The caller applies
// its own flags on top and then validates.
func loadConfig(ctx context.Context, fs *pflag.FlagSet, common *commonFlags, detector platform.Detector, stderr io.Writer) (*config.Config, logr.Logger, error) {
	logger := config.NewLogger(stderr, common.verbose)

	cfg, err := config.Load(ctx, config.LoadOptions{
		Path:     common.configPath,
		Detector: detector,
		Logger:   logger.WithName("config"),
	})
	if err != nil {
		return nil, logger, err
	}

	if fs.Changed("install-dir") {
		cfg.InstallDir = common.installDir
	}
	return cfg, logger, nil
}
