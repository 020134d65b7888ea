package platform

import (
	"strings"
)

// archGroups maps lower-cased machine strings to canonical architecture tags.
var archGroups = map[string]string{
	"arm64":   ArchARM64,
	"aarch64": ArchARM64,
	"x86_64":  ArchX8664,
	"amd64":   ArchX8664,
	"i386":    ArchI386,
	"i686":    ArchI386,
	"x86":     ArchI386,
}

// goarchMachines translates runtime.GOARCH values into the machine strings
// archGroups knows.
var goarchMachines = map[string]string{
	"amd64": "x86_64",
	"arm64": "arm64",
	"386":   "i386",
}

// osNames maps GOOS values and canonical names to canonical OS names.
var osNames = map[string]string{
	"darwin":  OSDarwin,
	"linux":   OSLinux,
	"windows": OSWindows,
}

// familyMap maps distribution family strings to canonical names.
// Only used for diagnostics; it never affects the Target.
var familyMap = map[string]string{
	"debian":   "debian",
	"ubuntu":   "debian",
	"rhel":     "rhel",
	"centos":   "rhel",
	"rocky":    "rhel",
	"fedora":   "fedora",
	"suse":     "suse",
	"opensuse": "suse",
	"arch":     "arch",
	"manjaro":  "arch",
	"alpine":   "alpine",
	"gentoo":   "gentoo",
}

// Resolve maps an OS name and a machine string onto a Target.
// osName accepts either a GOOS value ("linux") or a canonical name ("Linux").
func Resolve(osName, machine string) (Target, error) {
	canonicalOS, ok := normalizeOS(osName)
	if !ok {
		return Target{}, &UnsupportedPlatformError{OS: osName}
	}

	arch, ok := normalizeArch(machine)
	if !ok {
		return Target{}, &UnsupportedPlatformError{OS: canonicalOS, Machine: machine}
	}

	ext := ExtTarGz
	if canonicalOS == OSWindows {
		ext = ExtZip
	}

	return Target{OS: canonicalOS, Arch: arch, ArchiveExt: ext}, nil
}

// normalizeOS converts a GOOS value or canonical OS name to the canonical name.
func normalizeOS(name string) (string, bool) {
	canonical, ok := osNames[strings.ToLower(strings.TrimSpace(name))]
	return canonical, ok
}

// goarchMachine returns the machine string for a GOARCH value. Unknown
// values are returned unchanged.
func goarchMachine(goarch string) string {
	if machine, ok := goarchMachines[goarch]; ok {
		return machine
	}
	return goarch
}

// normalizeArch converts a machine string to a canonical architecture tag.
func normalizeArch(machine string) (string, bool) {
	arch, ok := archGroups[strings.ToLower(strings.TrimSpace(machine))]
	return arch, ok
}

// mapFamily maps distribution family strings to canonical family names.
func mapFamily(family string) string {
	normalized := strings.ToLower(strings.TrimSpace(family))
	if canonical, ok := familyMap[normalized]; ok {
		return canonical
	}
	return "unknown"
}
