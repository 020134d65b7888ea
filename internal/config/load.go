package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/go-logr/logr"

	"github.com/mjfwebb/neo4j-mcp-installer/internal/platform"
)

// ConfigFileName is the config file looked up under the XDG config home.
const ConfigFileName = "installer.lua"

// DefaultConfigPath returns $XDG_CONFIG_HOME/neo4j-mcp/installer.lua.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, platform.ProductName, ConfigFileName)
}

// LoadOptions control where Load looks for its inputs.
type LoadOptions struct {
	// Path is an explicit config file (the --config flag). It must exist.
	Path string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// Detector feeds the Lua platform table. Nil leaves it out.
	Detector platform.Detector
	Logger   logr.Logger
}

// Load builds a Config from defaults, then the config file, then the
// environment. CLI flags are applied by the caller afterwards.
//
// The config file is opts.Path, else NEO4J_MCP_INSTALLER_CONFIG, else
// DefaultConfigPath. Only the default location may be absent.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	logger := opts.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}

	cfg := Default()

	path, required := opts.Path, true
	if path == "" {
		path = getenv(EnvConfigFile)
	}
	if path == "" {
		path, required = DefaultConfigPath(), false
	}

	exists, err := fileExists(path)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	switch {
	case exists:
		fileCfg, err := NewParser(opts.Detector, logger).ParseFile(ctx, path)
		if err != nil {
			return nil, err
		}
		fileCfg.Apply(cfg)
		logger.V(1).Info("loaded config file", "path", path)
	case required:
		return nil, fmt.Errorf("config file %s does not exist", path)
	}

	cfg.ApplyEnv(getenv)

	return cfg, nil
}
