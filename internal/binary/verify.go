package binary

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/go-logr/logr"

	"github.com/mjfwebb/neo4j-mcp-installer/internal/platform"
)

const digestPrefix = "sha256:"

var hexDigest = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// signatureSuffixes are tried in order next to the manifest URL.
var signatureSuffixes = []string{".asc", ".sig"}

// Verifier checks downloaded archives against the release checksums manifest.
type Verifier struct {
	fetcher *Fetcher
	keyring openpgp.EntityList
	logger  logr.Logger
}

// NewVerifier creates a new verifier. A nil keyring disables manifest
// signature checks.
func NewVerifier(fetcher *Fetcher, keyring openpgp.EntityList, logger logr.Logger) *Verifier {
	return &Verifier{
		fetcher: fetcher,
		keyring: keyring,
		logger:  logger,
	}
}

// NormalizeVersion strips a leading "v" for use in manifest filenames.
func NormalizeVersion(version string) string {
	return strings.TrimPrefix(version, "v")
}

// ManifestURL returns <baseURL>/<version>/neo4j-mcp_<version-no-v>_checksums.txt.
func ManifestURL(baseURL, version string) string {
	return fmt.Sprintf("%s/%s/%s_%s_checksums.txt",
		strings.TrimRight(baseURL, "/"), version, platform.ProductName, NormalizeVersion(version))
}

// FetchManifest downloads the checksums manifest for version.
//
// A missing manifest is not an error: 404 and 403 return SkipNoManifest,
// and failures below the HTTP layer (DNS, refused connection, timeout)
// return SkipManifestUnreachable. Any other HTTP status is returned as an
// error. On success the reason is SkipNone.
func (v *Verifier) FetchManifest(ctx context.Context, version, baseURL string) (string, SkipReason, error) {
	manifestURL := ManifestURL(baseURL, version)

	body, err := v.fetcher.FetchBytes(ctx, manifestURL, nil)
	if err != nil {
		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) {
			if statusErr.StatusCode == http.StatusNotFound || statusErr.StatusCode == http.StatusForbidden {
				v.logger.V(1).Info("checksums manifest not published", "url", manifestURL, "status", statusErr.StatusCode)
				return "", SkipNoManifest, nil
			}
			return "", SkipNone, fmt.Errorf("fetch checksums manifest: %w", err)
		}

		if ctx.Err() != nil {
			return "", SkipNone, ctx.Err()
		}

		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			v.logger.Info("checksums manifest unreachable, skipping verification", "url", manifestURL, "error", err.Error())
			return "", SkipManifestUnreachable, nil
		}
		return "", SkipNone, fmt.Errorf("fetch checksums manifest: %w", err)
	}

	if v.keyring != nil {
		if err := v.verifyManifestSignature(ctx, manifestURL, body); err != nil {
			return "", SkipNone, err
		}
	}

	return strings.ToValidUTF8(string(body), "�"), SkipNone, nil
}

// verifyManifestSignature checks a detached signature published next to
// the manifest. Armored signatures are tried first, then binary ones.
func (v *Verifier) verifyManifestSignature(ctx context.Context, manifestURL string, manifest []byte) error {
	var sig []byte
	var sigURL string
	for _, suffix := range signatureSuffixes {
		sigURL = manifestURL + suffix
		body, err := v.fetcher.FetchBytes(ctx, sigURL, nil)
		if err == nil {
			sig = body
			break
		}
		var statusErr *HTTPStatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
			return &SignatureError{Manifest: manifestURL, Err: err}
		}
	}
	if sig == nil {
		return &SignatureError{Manifest: manifestURL, Err: fmt.Errorf("no signature published")}
	}

	_, err := openpgp.CheckArmoredDetachedSignature(v.keyring, bytes.NewReader(manifest), bytes.NewReader(sig), nil)
	if err != nil {
		_, err = openpgp.CheckDetachedSignature(v.keyring, bytes.NewReader(manifest), bytes.NewReader(sig), nil)
	}
	if err != nil {
		return &SignatureError{Manifest: manifestURL, Err: err}
	}

	v.logger.V(1).Info("checksums manifest signature verified", "signature", sigURL)
	return nil
}

// ExtractDigest finds the expected SHA-256 for filename in a manifest.
//
// The primary format is a filename line followed by a "sha256:<hex>" line,
// blank lines ignored. The legacy "<64-hex> <filename>" line format is
// accepted as a fallback. The digest is returned lower-cased; ok is false
// if neither format names filename.
func ExtractDigest(manifest, filename string) (digest string, ok bool) {
	var lines []string
	for _, line := range strings.Split(manifest, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	for i := 0; i < len(lines)-1; i++ {
		if lines[i] == filename && strings.HasPrefix(lines[i+1], digestPrefix) {
			digest := strings.TrimSpace(strings.TrimPrefix(lines[i+1], digestPrefix))
			if hexDigest.MatchString(digest) {
				return strings.ToLower(digest), true
			}
		}
	}

	for _, line := range lines {
		parts := strings.Fields(line)
		if len(parts) >= 2 && parts[len(parts)-1] == filename && hexDigest.MatchString(parts[0]) {
			return strings.ToLower(parts[0]), true
		}
	}

	return "", false
}

// DigestOf returns the hex SHA-256 of a file, read in ChunkSize pieces.
func DigestOf(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if err := copyChunked(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// VerifyArchive compares archivePath against the manifest entry for
// assetName. Nothing to verify is reported through Skipped, not an error;
// a digest mismatch returns *ChecksumMismatchError. With a keyring there is
// no skip: a missing manifest or entry is a *SignatureError.
func (v *Verifier) VerifyArchive(ctx context.Context, archivePath, version, baseURL, assetName, assetURL string) (*VerificationResult, error) {
	result := &VerificationResult{
		Method:      VerificationNone,
		ManifestURL: ManifestURL(baseURL, version),
	}

	manifest, reason, err := v.FetchManifest(ctx, version, baseURL)
	if err != nil {
		return nil, err
	}
	if reason != SkipNone {
		if v.keyring != nil {
			return nil, &SignatureError{Manifest: result.ManifestURL, Err: errors.New(string(reason))}
		}
		result.Skipped = reason
		return result, nil
	}

	expected, ok := ExtractDigest(manifest, assetName)
	if !ok {
		v.logger.V(1).Info("asset not listed in checksums manifest", "asset", assetName)
		if v.keyring != nil {
			return nil, &SignatureError{Manifest: result.ManifestURL, Err: errors.New(string(SkipNoEntry))}
		}
		result.Skipped = SkipNoEntry
		return result, nil
	}

	actual, err := DigestOf(archivePath)
	if err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	result.Expected = expected
	result.Actual = actual

	if !strings.EqualFold(actual, expected) {
		return result, &ChecksumMismatchError{
			Asset:    assetName,
			URL:      assetURL,
			Expected: expected,
			Actual:   actual,
		}
	}

	result.Method = VerificationSHA256
	if v.keyring != nil {
		result.Method = VerificationSignedSHA256
	}
	return result, nil
}
