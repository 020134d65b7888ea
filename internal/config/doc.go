// # Layering
//
// Values are applied lowest to highest:
//
//  1. Default()
//  2. installer.lua ($XDG_CONFIG_HOME/neo4j-mcp/installer.lua, or the file
//     named by --config or NEO4J_MCP_INSTALLER_CONFIG)
//  3. NEO4J_MCP_* environment variables (ApplyEnv)
//  4. command-line flags, applied by the CLI
//
// NEO4J_MCP_VERSION is the exception: it is stored in EnvVersion and beats
// a --version flag when the release is resolved.
//
// # Config File
//
// installer.lua must assign a global "installer" table. It runs in a
// sandboxed gopher-lua VM without os, io, require, load, debug or the
// metatable functions, and sees a read-only "platform" table:
//
//	installer = {
//	    repo = "neo4j/mcp",
//	    verify = true,
//	    install_dir = platform.is_windows and "C:/tools/bin" or "~/bin",
//	    timeout = 120, -- seconds
//	    signature_key = platform.when(platform.is_linux, "~/.config/neo4j-mcp/release.asc"),
//	}
//
// Unknown keys are ignored. A key with the wrong type is a ParseError.
// Paths starting with "~" are expanded.
package config
