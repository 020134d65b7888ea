// Package config builds the installer configuration from built-in
// defaults, an optional Lua file and the NEO4J_MCP_* environment.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mjfwebb/neo4j-mcp-installer/internal/binary"
	"github.com/mjfwebb/neo4j-mcp-installer/internal/paths"
	"github.com/mjfwebb/neo4j-mcp-installer/internal/release"
)

// Config carries every knob of an install run. Nothing downstream reads
// the process environment.
type Config struct {
	// Repo is the GitHub owner/name that publishes releases.
	Repo string
	// BaseURL is the release asset root. Empty derives it from Repo.
	BaseURL string
	// APIBaseURL is the GitHub REST API root.
	APIBaseURL string

	// Version is the tag requested by a flag or the config file.
	Version string
	// EnvVersion comes from NEO4J_MCP_VERSION and overrides Version.
	EnvVersion string

	Verify          bool
	RequireChecksum bool
	Force           bool

	// InstallDir overrides the platform default install directory.
	InstallDir string
	// CacheRoot overrides the per-user data directory.
	CacheRoot string

	Timeout   time.Duration
	UserAgent string

	// SignatureKeyFile is an OpenPGP key ring. When set, the checksums
	// manifest must carry a valid detached signature.
	SignatureKeyFile string
	// GitHubToken authenticates latest-release lookups.
	GitHubToken string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Repo:       release.DefaultRepo,
		APIBaseURL: release.DefaultAPIBaseURL,
		Verify:     true,
		Timeout:    binary.DefaultTimeout,
		UserAgent:  binary.DefaultUserAgent,
	}
}

// DownloadBaseURL returns BaseURL, or the GitHub download root for Repo.
func (c *Config) DownloadBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return release.DownloadBaseURL(c.Repo)
}

// Locator returns the cache locator for CacheRoot, or the default root.
func (c *Config) Locator() (*paths.Locator, error) {
	if c.CacheRoot != "" {
		return paths.New(c.CacheRoot), nil
	}
	return paths.NewDefault()
}

// InstallOptions converts the configuration into pipeline options.
func (c *Config) InstallOptions() binary.Options {
	return binary.Options{
		Version:         c.Version,
		EnvVersion:      c.EnvVersion,
		Repo:            c.Repo,
		BaseURL:         c.DownloadBaseURL(),
		Verify:          c.Verify,
		RequireChecksum: c.RequireChecksum,
		Force:           c.Force,
		InstallDir:      c.InstallDir,
	}
}

// Validate performs basic validation on a Config.
func (c *Config) Validate() error {
	if err := validateRepo(c.Repo); err != nil {
		return err
	}

	for _, u := range []struct{ field, value string }{
		{"base_url", c.BaseURL},
		{"api_url", c.APIBaseURL},
	} {
		if u.value == "" {
			continue
		}
		if err := validateHTTPURL(u.value); err != nil {
			return &ValidationError{Field: u.field, Value: u.value, Message: err.Error()}
		}
	}

	if c.Version != "" {
		if err := paths.ValidateVersion(c.Version); err != nil {
			return &ValidationError{Field: "version", Value: c.Version, Message: "must be a single release tag"}
		}
	}

	if c.Timeout <= 0 {
		return &ValidationError{Field: "timeout", Value: c.Timeout.String(), Message: "must be positive"}
	}

	return nil
}

// ValidationError describes an invalid configuration value.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
}

func validateRepo(repo string) error {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return &ValidationError{Field: "repo", Value: repo, Message: "must be owner/name"}
	}
	if strings.ContainsAny(repo, " \t\n?#") {
		return &ValidationError{Field: "repo", Value: repo, Message: "contains invalid characters"}
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("not a valid URL")
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
