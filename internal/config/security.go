package config

import (
	"regexp"
	"strings"
)

// SensitivePattern represents a pattern that might indicate sensitive data
type SensitivePattern struct {
	Name    string
	Pattern *regexp.Regexp
}

var sensitivePatterns = []SensitivePattern{
	{
		Name:    "GitHub Token",
		Pattern: regexp.MustCompile(`\b(gh[pousr]_[A-Za-z0-9]{36,}|github_pat_[A-Za-z0-9_]{22,})`),
	},
	{
		Name:    "Token",
		Pattern: regexp.MustCompile(`(?i)(token|auth[_-]?token|access[_-]?token|bearer)\s*=\s*['"][A-Za-z0-9_-]{15,}['"]`),
	},
	{
		Name:    "Password",
		Pattern: regexp.MustCompile(`(?i)(password|passwd|pwd)\s*=\s*['"].+['"]`),
	},
}

// SensitiveDataFinding represents a detected sensitive data instance
type SensitiveDataFinding struct {
	PatternName string
	Line        int
	Preview     string // Redacted preview of the match
}

// DetectSensitiveData reports lines of a config file that look like
// hardcoded credentials. Lua comments are skipped. One finding per line.
func DetectSensitiveData(content string) []SensitiveDataFinding {
	var findings []SensitiveDataFinding

	for lineNum, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		for _, pattern := range sensitivePatterns {
			if pattern.Pattern.MatchString(line) {
				findings = append(findings, SensitiveDataFinding{
					PatternName: pattern.Name,
					Line:        lineNum + 1,
					Preview:     redactSensitiveValue(line),
				})
				break
			}
		}
	}

	return findings
}

// redactSensitiveValue keeps the key of an assignment and hides the value.
func redactSensitiveValue(line string) string {
	eqIdx := strings.Index(line, "=")
	if eqIdx == -1 {
		if len(line) > 12 {
			return strings.TrimSpace(line[:12]) + "... [REDACTED]"
		}
		return "[REDACTED]"
	}
	return strings.TrimSpace(line[:eqIdx]) + " = [REDACTED]"
}
