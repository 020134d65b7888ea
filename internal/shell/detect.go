package shell

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// Detector finds the user's login shell.
type Detector struct {
	getenv      func(string) string
	parentShell func(ctx context.Context) string
}

// NewDetector returns a Detector that reads $SHELL and falls back to the
// parent process name.
func NewDetector() *Detector {
	return &Detector{getenv: os.Getenv, parentShell: parentProcessName}
}

// DetectShell detects the user's shell using the default detector.
func DetectShell(ctx context.Context) *DetectionResult {
	return NewDetector().Detect(ctx)
}

// Detect tries $SHELL first, then the parent process.
func (d *Detector) Detect(ctx context.Context) *DetectionResult {
	if shell := d.getenv("SHELL"); shell != "" {
		if shellType := parseShellFromPath(shell); shellType.IsValid() {
			return &DetectionResult{
				Shell:      shellType,
				Method:     "$SHELL environment variable",
				ShellPath:  shell,
				Confidence: "high",
			}
		}
	}

	if name := d.parentShell(ctx); name != "" {
		if shellType := parseShellFromPath(name); shellType.IsValid() {
			return &DetectionResult{
				Shell:      shellType,
				Method:     "parent process",
				ShellPath:  name,
				Confidence: "medium",
			}
		}
	}

	return &DetectionResult{
		Shell:      ShellUnknown,
		Method:     "detection failed",
		Confidence: "none",
	}
}

// parseShellFromPath extracts the shell type from a shell binary path
// Examples:
//   - /bin/bash -> bash
//   - /usr/bin/zsh -> zsh
//   - -zsh (login shell process name) -> zsh
func parseShellFromPath(shellPath string) ShellType {
	baseName := strings.ToLower(filepath.Base(shellPath))
	baseName = strings.TrimPrefix(baseName, "-")
	baseName = strings.TrimSuffix(baseName, ".exe")

	switch baseName {
	case "bash":
		return ShellBash
	case "zsh":
		return ShellZsh
	case "fish":
		return ShellFish
	default:
		return ShellUnknown
	}
}

// parentProcessName returns the name of the process that started the
// installer, or "" if it cannot be read.
func parentProcessName(ctx context.Context) string {
	parent, err := process.NewProcessWithContext(ctx, int32(os.Getppid()))
	if err != nil {
		return ""
	}
	name, err := parent.NameWithContext(ctx)
	if err != nil {
		return ""
	}
	return name
}
