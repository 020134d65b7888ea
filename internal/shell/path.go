package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InPath reports whether dir is one of the entries of pathList, a
// PATH-style list. Entries are compared after making them absolute and
// clean; entries that cannot be made absolute are compared verbatim.
func InPath(dir, pathList string) bool {
	want, wantErr := filepath.Abs(dir)

	for _, entry := range filepath.SplitList(pathList) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if entry == dir {
			return true
		}
		if wantErr != nil {
			continue
		}
		if abs, err := filepath.Abs(entry); err == nil && samePath(abs, want) {
			return true
		}
	}
	return false
}

// PathHint tells the user how to put dir on PATH.
//
// On Windows it names the folder to add. Elsewhere it prints an export
// line aimed at the detected shell's rc file; fish gets fish_add_path.
// Paths under home are written with $HOME.
func PathHint(dir string, shell ShellType, goos, home string) string {
	if goos == "windows" {
		return fmt.Sprintf("To add to PATH on Windows:\n  Add this folder to your PATH environment variable:\n  %s\n", dir)
	}

	shown := dir
	if home != "" {
		if rel, err := filepath.Rel(home, dir); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			shown = "$HOME/" + filepath.ToSlash(rel)
		}
	}

	if shell == ShellFish {
		return fmt.Sprintf("If `neo4j-mcp` is not found, run:\n  fish_add_path %s\n", shown)
	}

	target := "your shell config (~/.zshrc / ~/.bashrc)"
	if rc, err := RCFilePath(shell, home); err == nil && home != "" {
		target = strings.Replace(rc, home, "~", 1)
	}
	return fmt.Sprintf("If `neo4j-mcp` is not found, add this to %s:\n  export PATH=\"%s:$PATH\"\n", target, shown)
}

// UserPathHint builds PathHint for the current process.
func UserPathHint(dir string, shell ShellType, goos string) string {
	home, _ := os.UserHomeDir()
	return PathHint(dir, shell, goos, home)
}
