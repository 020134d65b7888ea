package config

import "strings"

// ApplyEnv overlays the NEO4J_MCP_* environment onto c.
//
// NEO4J_MCP_VERSION is kept in EnvVersion so that it can win over a
// --version flag applied later. Any non-empty NEO4J_MCP_SKIP_VERIFY turns
// verification off. A NEO4J_MCP_REPO without NEO4J_MCP_BASE_URL clears any
// base URL from the config file so downloads follow the new repo.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if repo := strings.TrimSpace(getenv(EnvRepo)); repo != "" {
		c.Repo = repo
		c.BaseURL = ""
	}
	if base := strings.TrimSpace(getenv(EnvBaseURL)); base != "" {
		c.BaseURL = base
	}
	if api := strings.TrimSpace(getenv(EnvAPIURL)); api != "" {
		c.APIBaseURL = api
	}
	if v := strings.TrimSpace(getenv(EnvVersion)); v != "" {
		c.EnvVersion = v
	}
	if getenv(EnvSkipVerify) != "" {
		c.Verify = false
	}
	if dir := strings.TrimSpace(getenv(EnvDataDir)); dir != "" {
		c.CacheRoot = dir
	}

	if token := getenv(EnvToken); token != "" {
		c.GitHubToken = token
	} else if token := getenv(EnvGitHubAuth); token != "" && c.GitHubToken == "" {
		c.GitHubToken = token
	}
}
