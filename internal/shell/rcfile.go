package shell

import (
	"fmt"
	"path/filepath"
)

// UnsupportedShellError is returned for shells without a known rc file.
type UnsupportedShellError struct {
	Shell string
}

func (e *UnsupportedShellError) Error() string {
	return fmt.Sprintf("unsupported shell: %s", e.Shell)
}

// RCFilePath returns the shell's startup file under home.
func RCFilePath(shell ShellType, home string) (string, error) {
	switch shell {
	case ShellBash:
		return filepath.Join(home, ".bashrc"), nil
	case ShellZsh:
		return filepath.Join(home, ".zshrc"), nil
	case ShellFish:
		return filepath.Join(home, ".config", "fish", "config.fish"), nil
	default:
		return "", &UnsupportedShellError{Shell: shell.String()}
	}
}
