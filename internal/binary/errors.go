package binary

import (
	"fmt"
	"net/http"
)

// HTTPStatusError is returned when the release host answers with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// ChecksumMismatchError is returned when a downloaded archive does not match
// the digest published in the release checksums manifest.
type ChecksumMismatchError struct {
	Asset    string
	URL      string
	Expected string
	Actual   string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum verification failed for %s\nexpected: %s\nactual:   %s\nurl:      %s",
		e.Asset, e.Expected, e.Actual, e.URL)
}

// ChecksumUnavailableError is returned when a checksum is required but the
// release publishes none for the asset, or the manifest could not be reached.
type ChecksumUnavailableError struct {
	Asset  string
	Reason SkipReason
}

func (e *ChecksumUnavailableError) Error() string {
	return fmt.Sprintf("cannot verify %s: %s", e.Asset, e.Reason)
}

// SignatureError is returned when the checksums manifest signature is
// missing or does not verify against the configured key ring.
type SignatureError struct {
	Manifest string
	Err      error
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("manifest signature verification failed for %s: %v", e.Manifest, e.Err)
}

func (e *SignatureError) Unwrap() error {
	return e.Err
}

// BinaryNotFoundError is returned when an archive holds no entry named like
// the neo4j-mcp executable.
type BinaryNotFoundError struct {
	Archive string
	Wanted  string
}

func (e *BinaryNotFoundError) Error() string {
	return fmt.Sprintf("could not find %s binary inside %s", e.Wanted, e.Archive)
}

// UnsupportedArchiveFormatError is returned for archive extensions other
// than .tar.gz and .zip.
type UnsupportedArchiveFormatError struct {
	Archive   string
	Extension string
}

func (e *UnsupportedArchiveFormatError) Error() string {
	return fmt.Sprintf("unsupported archive type %q for %s", e.Extension, e.Archive)
}
