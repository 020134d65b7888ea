// Package release decides which neo4j-mcp release tag to install.
package release

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
)

const (
	// DefaultRepo is the GitHub repository that publishes neo4j-mcp releases.
	DefaultRepo = "neo4j/mcp"
	// DefaultAPIBaseURL is the GitHub REST API root.
	DefaultAPIBaseURL = "https://api.github.com"
)

// BytesFetcher performs a single buffered GET.
type BytesFetcher interface {
	FetchBytes(ctx context.Context, url string, headers map[string]string) ([]byte, error)
}

// LookupError is returned when the latest release cannot be determined.
type LookupError struct {
	Repo string
	URL  string
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("could not determine latest release tag for %s from %s: %v", e.Repo, e.URL, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Source records which input a resolved version came from.
type Source string

const (
	SourceEnv      Source = "environment"
	SourceExplicit Source = "explicit"
	SourceLatest   Source = "latest"
)

// Resolver resolves release versions against the GitHub API.
type Resolver struct {
	fetcher    BytesFetcher
	apiBaseURL string
	token      string
	logger     logr.Logger
}

// NewResolver creates a Resolver. An empty apiBaseURL means DefaultAPIBaseURL.
func NewResolver(fetcher BytesFetcher, apiBaseURL string, logger logr.Logger) *Resolver {
	if apiBaseURL == "" {
		apiBaseURL = DefaultAPIBaseURL
	}
	return &Resolver{
		fetcher:    fetcher,
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		logger:     logger,
	}
}

// WithToken makes latest-release lookups authenticate with token, which
// lifts the anonymous API rate limit.
func (r *Resolver) WithToken(token string) *Resolver {
	r.token = token
	return r
}

// LatestURL returns the "latest release" endpoint for repo.
func (r *Resolver) LatestURL(repo string) string {
	return fmt.Sprintf("%s/repos/%s/releases/latest", r.apiBaseURL, repo)
}

// Resolve picks the version to install.
//
// A non-empty env value wins even over an explicit version; the
// environment is how CI pins a release regardless of what a wrapper
// script passes. Otherwise explicit is used, and only when both are empty
// is the latest release queried.
func (r *Resolver) Resolve(ctx context.Context, explicit, env, repo string) (string, Source, error) {
	if env != "" {
		if explicit != "" && explicit != env {
			r.logger.V(1).Info("environment version overrides requested version", "env", env, "requested", explicit)
		}
		return env, SourceEnv, nil
	}
	if explicit != "" {
		return explicit, SourceExplicit, nil
	}

	tag, err := r.Latest(ctx, repo)
	if err != nil {
		return "", "", err
	}
	return tag, SourceLatest, nil
}

type latestRelease struct {
	TagName string `json:"tag_name"`
}

// Latest asks the API for the newest published release of repo and
// returns its tag_name.
func (r *Resolver) Latest(ctx context.Context, repo string) (string, error) {
	if repo == "" {
		repo = DefaultRepo
	}
	url := r.LatestURL(repo)
	r.logger.V(1).Info("querying latest release", "url", url)

	headers := map[string]string{"Accept": "application/vnd.github+json"}
	if r.token != "" {
		headers["Authorization"] = "Bearer " + r.token
	}

	body, err := r.fetcher.FetchBytes(ctx, url, headers)
	if err != nil {
		return "", fmt.Errorf("query latest release: %w", err)
	}

	var rel latestRelease
	if err := json.Unmarshal(body, &rel); err != nil {
		return "", &LookupError{Repo: repo, URL: url, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	tag := strings.TrimSpace(rel.TagName)
	if tag == "" {
		return "", &LookupError{Repo: repo, URL: url, Err: fmt.Errorf("response has no tag_name")}
	}

	return tag, nil
}

// DownloadBaseURL returns the release asset root for repo,
// https://github.com/<repo>/releases/download.
func DownloadBaseURL(repo string) string {
	if repo == "" {
		repo = DefaultRepo
	}
	return fmt.Sprintf("https://github.com/%s/releases/download", repo)
}

// AssetURL returns <baseURL>/<version>/<asset>.
func AssetURL(baseURL, version, asset string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(baseURL, "/"), version, asset)
}
