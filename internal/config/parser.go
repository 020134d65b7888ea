package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"
	lua "github.com/yuin/gopher-lua"

	"github.com/mjfwebb/neo4j-mcp-installer/internal/platform"
)

// FileConfig holds the values set in an installer.lua file. Nil fields
// were not set and leave the underlying Config alone.
type FileConfig struct {
	Repo            *string
	BaseURL         *string
	APIBaseURL      *string
	Version         *string
	Verify          *bool
	RequireChecksum *bool
	InstallDir      *string
	CacheRoot       *string
	Timeout         *time.Duration
	UserAgent       *string
	SignatureKey    *string
	GitHubToken     *string
}

// Apply copies every set field onto c.
func (f *FileConfig) Apply(c *Config) {
	setString(&c.Repo, f.Repo)
	setString(&c.BaseURL, f.BaseURL)
	setString(&c.APIBaseURL, f.APIBaseURL)
	setString(&c.Version, f.Version)
	setString(&c.InstallDir, f.InstallDir)
	setString(&c.CacheRoot, f.CacheRoot)
	setString(&c.UserAgent, f.UserAgent)
	setString(&c.SignatureKeyFile, f.SignatureKey)
	setString(&c.GitHubToken, f.GitHubToken)
	if f.Verify != nil {
		c.Verify = *f.Verify
	}
	if f.RequireChecksum != nil {
		c.RequireChecksum = *f.RequireChecksum
	}
	if f.Timeout != nil {
		c.Timeout = *f.Timeout
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Parser evaluates installer.lua files with a read-only platform table.
type Parser struct {
	detector platform.Detector
	logger   logr.Logger
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table out.
func NewParser(detector platform.Detector, logger logr.Logger) *Parser {
	return &Parser{detector: detector, logger: logger}
}

// ParseFile reads and evaluates the config file at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*FileConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	for _, finding := range DetectSensitiveData(string(content)) {
		p.logger.Info("config file contains a hardcoded secret; prefer the "+EnvToken+" environment variable",
			"file", path, "line", finding.Line, "kind", finding.PatternName)
	}

	cfg, err := p.ParseString(ctx, string(content))
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.File = path
		}
		return nil, err
	}
	return cfg, nil
}

// ParseString parses a Lua config from a string.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*FileConfig, error) {
	L := newSandboxedVM(ctx)
	defer L.Close()

	if p.detector != nil {
		target, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, target); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		return nil, &ParseError{
			Message: "Lua error",
			Detail:  err.Error(),
		}
	}

	return p.extractConfig(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	File    string
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig reads the global "installer" table.
func (p *Parser) extractConfig(L *lua.LState) (*FileConfig, error) {
	value := L.GetGlobal(luaGlobalInstaller)
	table, ok := value.(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: "missing or invalid 'installer' table",
			Detail:  fmt.Sprintf("expected table, got %s", value.Type()),
		}
	}

	r := tableReader{table: table}
	cfg := &FileConfig{
		Repo:            r.str(luaFieldRepo),
		BaseURL:         r.str(luaFieldBaseURL),
		APIBaseURL:      r.str(luaFieldAPIURL),
		Version:         r.str(luaFieldVersion),
		Verify:          r.boolean(luaFieldVerify),
		RequireChecksum: r.boolean(luaFieldRequireSum),
		InstallDir:      r.path(luaFieldInstallDir),
		CacheRoot:       r.path(luaFieldCacheDir),
		Timeout:         r.seconds(luaFieldTimeout),
		UserAgent:       r.str(luaFieldUserAgent),
		SignatureKey:    r.path(luaFieldSignatureKey),
		GitHubToken:     r.str(luaFieldGitHubTokenKey),
	}
	if r.err != nil {
		return nil, r.err
	}

	table.ForEach(func(key, _ lua.LValue) {
		if name, ok := key.(lua.LString); ok && !knownFields[string(name)] {
			p.logger.V(1).Info("ignoring unknown config key", "key", string(name))
		}
	})

	return cfg, nil
}

var knownFields = map[string]bool{
	luaFieldRepo: true, luaFieldBaseURL: true, luaFieldAPIURL: true,
	luaFieldVersion: true, luaFieldVerify: true, luaFieldRequireSum: true,
	luaFieldInstallDir: true, luaFieldCacheDir: true, luaFieldTimeout: true,
	luaFieldUserAgent: true, luaFieldSignatureKey: true, luaFieldGitHubTokenKey: true,
}

// tableReader extracts typed fields and keeps the first type error.
// nil values (from platform.when) count as unset.
type tableReader struct {
	table *lua.LTable
	err   error
}

func (r *tableReader) get(field string, want lua.LValueType) (lua.LValue, bool) {
	value := r.table.RawGetString(field)
	if value.Type() == lua.LTNil {
		return nil, false
	}
	if value.Type() != want {
		if r.err == nil {
			r.err = &ParseError{
				Message: "invalid installer config",
				Detail:  fmt.Sprintf("field %q: expected %s, got %s", field, want, value.Type()),
			}
		}
		return nil, false
	}
	return value, true
}

func (r *tableReader) str(field string) *string {
	value, ok := r.get(field, lua.LTString)
	if !ok {
		return nil
	}
	s := strings.TrimSpace(value.String())
	return &s
}

func (r *tableReader) path(field string) *string {
	s := r.str(field)
	if s == nil {
		return nil
	}
	expanded, err := expandHome(*s)
	if err != nil {
		if r.err == nil {
			r.err = &ParseError{Message: "invalid installer config", Detail: fmt.Sprintf("field %q: %v", field, err)}
		}
		return nil
	}
	return &expanded
}

func (r *tableReader) boolean(field string) *bool {
	value, ok := r.get(field, lua.LTBool)
	if !ok {
		return nil
	}
	b := bool(value.(lua.LBool))
	return &b
}

func (r *tableReader) seconds(field string) *time.Duration {
	value, ok := r.get(field, lua.LTNumber)
	if !ok {
		return nil
	}
	d := time.Duration(float64(value.(lua.LNumber)) * float64(time.Second))
	return &d
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand ~: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return err.Error()
	}

	prefix := parseErr.Message
	if parseErr.File != "" {
		prefix = parseErr.File + ": " + prefix
	}
	if verbose {
		return fmt.Sprintf("%s\n\nDetails:\n%s", prefix, parseErr.Detail)
	}

	detail := parseErr.Detail
	if idx := strings.Index(detail, "stack traceback"); idx > 0 {
		detail = strings.TrimSpace(detail[:idx])
	}
	return fmt.Sprintf("%s: %s", prefix, detail)
}

// fileExists reports whether path names an existing file.
func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
