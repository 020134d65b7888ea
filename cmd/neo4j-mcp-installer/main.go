package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
)

// Version will be set at build time via -ldflags
var Version = "v0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run dispatches a subcommand and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printHelp(stdout)
		return 0
	}

	var err error
	switch args[0] {
	case "--version", "version":
		fmt.Fprintf(stdout, "neo4j-mcp-installer %s\n", Version)
		return 0
	case "install":
		err = runInstall(ctx, args[1:], stdout, stderr, false)
	case "upgrade":
		// upgrade always re-downloads
		err = runInstall(ctx, args[1:], stdout, stderr, true)
	case "where":
		err = runWhere(ctx, args[1:], stdout, stderr)
	case "uninstall":
		err = runUninstall(ctx, args[1:], stdout, stderr)
	case "help", "--help", "-h":
		printHelp(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Error: unknown command: %s\n", args[0])
		printHelp(stderr)
		return 1
	}

	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "neo4j-mcp-installer - install the neo4j-mcp server binary")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  neo4j-mcp-installer install [options]    Install neo4j-mcp (cached versions are reused)")
	fmt.Fprintln(w, "  neo4j-mcp-installer upgrade [options]    Re-download and install neo4j-mcp")
	fmt.Fprintln(w, "  neo4j-mcp-installer where [options]      Print where neo4j-mcp is installed")
	fmt.Fprintln(w, "  neo4j-mcp-installer uninstall [options]  Remove the installed binary")
	fmt.Fprintln(w, "  neo4j-mcp-installer --version            Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'neo4j-mcp-installer <command> --help' for command options.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  NEO4J_MCP_REPO          GitHub owner/name to install from")
	fmt.Fprintln(w, "  NEO4J_MCP_BASE_URL      Release download root")
	fmt.Fprintln(w, "  NEO4J_MCP_VERSION       Release tag; overrides --version")
	fmt.Fprintln(w, "  NEO4J_MCP_SKIP_VERIFY   Any value disables checksum verification")
}
