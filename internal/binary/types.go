package binary

import (
	"time"
)

// VerificationMethod indicates how an archive was verified
type VerificationMethod int

const (
	// VerificationNone indicates the archive was not verified
	VerificationNone VerificationMethod = iota
	// VerificationSHA256 indicates the archive digest matched the manifest
	VerificationSHA256
	// VerificationSignedSHA256 indicates the digest matched a manifest whose
	// detached OpenPGP signature also verified
	VerificationSignedSHA256
)

// String returns the string representation of the verification method
func (v VerificationMethod) String() string {
	switch v {
	case VerificationSHA256:
		return "SHA256"
	case VerificationSignedSHA256:
		return "SHA256 (signed manifest)"
	case VerificationNone:
		return "None"
	default:
		return "Unknown"
	}
}

// SkipReason explains why an archive was not verified.
type SkipReason string

const (
	// SkipNone means verification ran.
	SkipNone SkipReason = ""
	// SkipDisabled means the caller turned verification off.
	SkipDisabled SkipReason = "verification disabled"
	// SkipCacheHit means nothing was downloaded.
	SkipCacheHit SkipReason = "cached binary reused"
	// SkipNoManifest means the release host answered 404/403 for the manifest.
	SkipNoManifest SkipReason = "no checksums manifest published"
	// SkipManifestUnreachable means the manifest request failed below HTTP.
	SkipManifestUnreachable SkipReason = "checksums manifest unreachable"
	// SkipNoEntry means the manifest holds no digest for the asset.
	SkipNoEntry SkipReason = "asset not listed in checksums manifest"
)

// VerificationResult contains the outcome of verifying one archive
type VerificationResult struct {
	Method      VerificationMethod
	Skipped     SkipReason
	ManifestURL string
	Expected    string
	Actual      string
}

// Verified reports whether a digest comparison actually took place.
func (r *VerificationResult) Verified() bool {
	return r != nil && r.Method != VerificationNone
}

// Result describes a completed install.
type Result struct {
	// InstalledPath is the active binary in the install directory.
	InstalledPath string
	// Version is the resolved release tag.
	Version string
	// CachedBinaryPath is the versioned extracted binary in the cache.
	CachedBinaryPath string
	// CacheHit is true when download and extraction were skipped.
	CacheHit     bool
	Verification *VerificationResult
	Duration     time.Duration
}
