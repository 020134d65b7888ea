package config

// Environment variables read by ApplyEnv.
const (
	EnvRepo       = "NEO4J_MCP_REPO"
	EnvBaseURL    = "NEO4J_MCP_BASE_URL"
	EnvVersion    = "NEO4J_MCP_VERSION"
	EnvSkipVerify = "NEO4J_MCP_SKIP_VERIFY"
	EnvAPIURL     = "NEO4J_MCP_API_URL"
	EnvDataDir    = "NEO4J_MCP_DATA_DIR"
	EnvConfigFile = "NEO4J_MCP_INSTALLER_CONFIG"
	EnvToken      = "NEO4J_MCP_GITHUB_TOKEN"
	EnvGitHubAuth = "GITHUB_TOKEN"
)

// Lua schema field names and globals
const (
	luaGlobalInstaller     = "installer"
	luaFieldRepo           = "repo"
	luaFieldBaseURL        = "base_url"
	luaFieldAPIURL         = "api_url"
	luaFieldVersion        = "version"
	luaFieldVerify         = "verify"
	luaFieldRequireSum     = "require_checksum"
	luaFieldInstallDir     = "install_dir"
	luaFieldCacheDir       = "cache_dir"
	luaFieldTimeout        = "timeout"
	luaFieldUserAgent      = "user_agent"
	luaFieldSignatureKey   = "signature_key"
	luaFieldGitHubTokenKey = "github_token"
)
