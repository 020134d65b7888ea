// Package platform resolves the release artifact naming for the running host.
//
// A Target is the (OS, architecture, archive format) triple that selects
// which neo4j-mcp release asset to download and which binary name to look
// for inside it. Detection reads the host OS from the Go runtime and the
// machine string from the kernel via gopsutil, then maps both onto the
// naming scheme used by the published release assets.
package platform

import (
	"context"
	"fmt"
)

// ProductName is the name of the managed binary and the prefix of every
// release asset.
const ProductName = "neo4j-mcp"

// Canonical OS names as they appear in release asset filenames.
const (
	OSDarwin  = "Darwin"
	OSLinux   = "Linux"
	OSWindows = "Windows"
)

// Canonical architecture tags as they appear in release asset filenames.
const (
	ArchARM64 = "arm64"
	ArchX8664 = "x86_64"
	ArchI386  = "i386"
)

// Archive extensions.
const (
	ExtTarGz = ".tar.gz"
	ExtZip   = ".zip"
)

// Target identifies the release artifact for a host.
// It is a value type; compute it once per run with a Detector.
type Target struct {
	OS         string // "Darwin", "Linux", "Windows"
	Arch       string // "arm64", "x86_64", "i386"
	ArchiveExt string // ".tar.gz" or ".zip" (Windows only)
}

// AssetName returns the release asset filename, e.g. "neo4j-mcp_Linux_x86_64.tar.gz".
func (t Target) AssetName() string {
	return fmt.Sprintf("%s_%s_%s%s", ProductName, t.OS, t.Arch, t.ArchiveExt)
}

// BinaryName returns the name of the executable inside the archive.
func (t Target) BinaryName() string {
	return BinaryNameFor(t.OS)
}

// IsWindows returns true if the target is Windows.
func (t Target) IsWindows() bool {
	return t.OS == OSWindows
}

// IsMacOS returns true if the target is macOS.
func (t Target) IsMacOS() bool {
	return t.OS == OSDarwin
}

// IsLinux returns true if the target is Linux.
func (t Target) IsLinux() bool {
	return t.OS == OSLinux
}

// IsARM64 returns true if the architecture is arm64.
func (t Target) IsARM64() bool {
	return t.Arch == ArchARM64
}

// IsAppleSilicon returns true for macOS on arm64.
func (t Target) IsAppleSilicon() bool {
	return t.IsMacOS() && t.IsARM64()
}

func (t Target) String() string {
	return fmt.Sprintf("%s/%s (%s)", t.OS, t.Arch, t.ArchiveExt)
}

// BinaryNameFor returns the executable name for a canonical OS name.
func BinaryNameFor(osName string) string {
	if osName == OSWindows {
		return ProductName + ".exe"
	}
	return ProductName
}

// UnsupportedPlatformError is returned when the host OS or machine string
// has no published release asset.
type UnsupportedPlatformError struct {
	OS      string
	Machine string
}

func (e *UnsupportedPlatformError) Error() string {
	if e.Machine == "" {
		return fmt.Sprintf("unsupported OS: %s", e.OS)
	}
	return fmt.Sprintf("unsupported architecture: %s (OS %s)", e.Machine, e.OS)
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (Target, error)
}
