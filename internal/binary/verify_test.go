package binary

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/go-logr/logr"
)

const (
	testAsset    = "neo4j-mcp_Darwin_arm64.tar.gz"
	testDigest   = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"
	testVersion  = "v1.2.0"
	manifestPath = "/v1.2.0/neo4j-mcp_1.2.0_checksums.txt"
)

func TestManifestURL(t *testing.T) {
	tests := []struct {
		base    string
		version string
		want    string
	}{
		{"https://github.com/neo4j/mcp/releases/download", "v1.2.0", "https://github.com/neo4j/mcp/releases/download/v1.2.0/neo4j-mcp_1.2.0_checksums.txt"},
		{"https://example.test/dl/", "1.2.0", "https://example.test/dl/1.2.0/neo4j-mcp_1.2.0_checksums.txt"},
	}

	for _, tt := range tests {
		if got := ManifestURL(tt.base, tt.version); got != tt.want {
			t.Errorf("ManifestURL(%q, %q) = %q, want %q", tt.base, tt.version, got, tt.want)
		}
	}
}

func TestExtractDigest(t *testing.T) {
	upper := strings.ToUpper(testDigest)

	tests := []struct {
		name     string
		manifest string
		filename string
		want     string
		wantOK   bool
	}{
		{
			name:     "block format",
			manifest: testAsset + "\nsha256:" + testDigest + "\n",
			filename: testAsset,
			want:     testDigest,
			wantOK:   true,
		},
		{
			name:     "block format among others with blank lines",
			manifest: "neo4j-mcp_Linux_x86_64.tar.gz\nsha256:" + strings.Repeat("a", 64) + "\n\n\n" + testAsset + "\n\n  sha256:" + upper + "  \n",
			filename: testAsset,
			want:     testDigest,
			wantOK:   true,
		},
		{
			name:     "crlf line endings",
			manifest: testAsset + "\r\nsha256:" + testDigest + "\r\n",
			filename: testAsset,
			want:     testDigest,
			wantOK:   true,
		},
		{
			name:     "legacy format",
			manifest: testDigest + "  " + testAsset + "\n",
			filename: testAsset,
			want:     testDigest,
			wantOK:   true,
		},
		{
			name:     "legacy format upper case",
			manifest: upper + " " + testAsset,
			filename: testAsset,
			want:     testDigest,
			wantOK:   true,
		},
		{
			name:     "legacy hash with wrong length",
			manifest: testDigest[:60] + "  " + testAsset,
			filename: testAsset,
			wantOK:   false,
		},
		{
			name:     "filename not listed",
			manifest: "neo4j-mcp_Linux_x86_64.tar.gz\nsha256:" + testDigest + "\n",
			filename: testAsset,
			wantOK:   false,
		},
		{
			name:     "filename line without digest line",
			manifest: testAsset + "\nsomething-else\n",
			filename: testAsset,
			wantOK:   false,
		},
		{
			name:     "block format with empty digest",
			manifest: testAsset + "\nsha256:\n",
			filename: testAsset,
			wantOK:   false,
		},
		{
			name:     "block format with short digest",
			manifest: testAsset + "\nsha256:" + testDigest[:60] + "\n",
			filename: testAsset,
			wantOK:   false,
		},
		{
			name:     "filename prefix is not a match",
			manifest: testAsset + ".sig\nsha256:" + testDigest + "\n",
			filename: testAsset,
			wantOK:   false,
		},
		{
			name:     "empty manifest",
			filename: testAsset,
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractDigest(tt.manifest, tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("ExtractDigest() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ExtractDigest() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDigestOf(t *testing.T) {
	sizes := []struct {
		name string
		size int
	}{
		{"empty", 0},
		{"small", 4},
		{"exactly one chunk", ChunkSize},
		{"crosses chunk boundaries", 3*ChunkSize + 12345},
	}

	for _, tt := range sizes {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]byte, tt.size)
			if _, err := rand.Read(data); err != nil {
				t.Fatal(err)
			}

			path := filepath.Join(t.TempDir(), "blob")
			if err := os.WriteFile(path, data, 0644); err != nil {
				t.Fatal(err)
			}

			got, err := DigestOf(path)
			if err != nil {
				t.Fatalf("DigestOf() error = %v", err)
			}
			if want := sha256Hex(data); got != want {
				t.Errorf("DigestOf() = %s, want %s", got, want)
			}
		})
	}

	t.Run("known vector", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test")
		if err := os.WriteFile(path, []byte("test"), 0644); err != nil {
			t.Fatal(err)
		}
		got, err := DigestOf(path)
		if err != nil {
			t.Fatal(err)
		}
		if got != testDigest {
			t.Errorf("DigestOf() = %s, want %s", got, testDigest)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := DigestOf(filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Error("expected error")
		}
	})
}

func TestFetchManifest(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		rs := newReleaseServer(t)
		rs.serve(manifestPath, []byte("manifest body"))

		v := NewVerifier(rs.fetcher(), nil, logr.Discard())
		body, reason, err := v.FetchManifest(context.Background(), testVersion, rs.URL)
		if err != nil {
			t.Fatalf("FetchManifest() error = %v", err)
		}
		if reason != SkipNone {
			t.Errorf("reason = %q, want none", reason)
		}
		if body != "manifest body" {
			t.Errorf("body = %q", body)
		}
	})

	for _, status := range []int{http.StatusNotFound, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			rs := newReleaseServer(t)
			rs.fail(manifestPath, status)

			v := NewVerifier(rs.fetcher(), nil, logr.Discard())
			_, reason, err := v.FetchManifest(context.Background(), testVersion, rs.URL)
			if err != nil {
				t.Fatalf("FetchManifest() error = %v", err)
			}
			if reason != SkipNoManifest {
				t.Errorf("reason = %q, want %q", reason, SkipNoManifest)
			}
		})
	}

	t.Run("server error is fatal", func(t *testing.T) {
		rs := newReleaseServer(t)
		rs.fail(manifestPath, http.StatusInternalServerError)

		v := NewVerifier(rs.fetcher(), nil, logr.Discard())
		_, _, err := v.FetchManifest(context.Background(), testVersion, rs.URL)

		var statusErr *HTTPStatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusInternalServerError {
			t.Errorf("error = %v, want HTTP 500", err)
		}
	})

	t.Run("unreachable host degrades to skip", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		baseURL := server.URL
		server.Close()

		v := NewVerifier(NewFetcher(), nil, logr.Discard())
		_, reason, err := v.FetchManifest(context.Background(), testVersion, baseURL)
		if err != nil {
			t.Fatalf("FetchManifest() error = %v", err)
		}
		if reason != SkipManifestUnreachable {
			t.Errorf("reason = %q, want %q", reason, SkipManifestUnreachable)
		}
	})

	t.Run("cancelled context is returned", func(t *testing.T) {
		rs := newReleaseServer(t)
		rs.serve(manifestPath, []byte("x"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		v := NewVerifier(rs.fetcher(), nil, logr.Discard())
		_, _, err := v.FetchManifest(ctx, testVersion, rs.URL)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func writeArchive(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), testAsset+".tmp")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVerifyArchive(t *testing.T) {
	content := []byte("archive bytes")
	digest := sha256Hex(content)
	assetURL := "https://example.test/" + testAsset

	t.Run("match", func(t *testing.T) {
		rs := newReleaseServer(t)
		rs.serve(manifestPath, []byte(blockManifest(map[string]string{testAsset: strings.ToUpper(digest)})))

		v := NewVerifier(rs.fetcher(), nil, logr.Discard())
		result, err := v.VerifyArchive(context.Background(), writeArchive(t, content), testVersion, rs.URL, testAsset, assetURL)
		if err != nil {
			t.Fatalf("VerifyArchive() error = %v", err)
		}
		if !result.Verified() || result.Method != VerificationSHA256 {
			t.Errorf("result = %+v, want SHA256 verified", result)
		}
		if result.Actual != digest {
			t.Errorf("Actual = %s, want %s", result.Actual, digest)
		}
	})

	t.Run("mismatch", func(t *testing.T) {
		rs := newReleaseServer(t)
		rs.serve(manifestPath, []byte(blockManifest(map[string]string{testAsset: testDigest})))

		v := NewVerifier(rs.fetcher(), nil, logr.Discard())
		_, err := v.VerifyArchive(context.Background(), writeArchive(t, content), testVersion, rs.URL, testAsset, assetURL)

		var mismatch *ChecksumMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("error = %v, want *ChecksumMismatchError", err)
		}
		if mismatch.Expected != testDigest || mismatch.Actual != digest {
			t.Errorf("digests = (%s, %s), want (%s, %s)", mismatch.Expected, mismatch.Actual, testDigest, digest)
		}
		if mismatch.Asset != testAsset || mismatch.URL != assetURL {
			t.Errorf("asset/url = (%s, %s)", mismatch.Asset, mismatch.URL)
		}
		for _, want := range []string{testDigest, digest, testAsset, assetURL} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error message missing %q", want)
			}
		}
	})

	t.Run("no entry for asset", func(t *testing.T) {
		rs := newReleaseServer(t)
		rs.serve(manifestPath, []byte(blockManifest(map[string]string{"other.zip": digest})))

		v := NewVerifier(rs.fetcher(), nil, logr.Discard())
		result, err := v.VerifyArchive(context.Background(), writeArchive(t, content), testVersion, rs.URL, testAsset, assetURL)
		if err != nil {
			t.Fatalf("VerifyArchive() error = %v", err)
		}
		if result.Verified() || result.Skipped != SkipNoEntry {
			t.Errorf("result = %+v, want skipped with %q", result, SkipNoEntry)
		}
	})

	t.Run("no manifest", func(t *testing.T) {
		rs := newReleaseServer(t)

		v := NewVerifier(rs.fetcher(), nil, logr.Discard())
		result, err := v.VerifyArchive(context.Background(), writeArchive(t, content), testVersion, rs.URL, testAsset, assetURL)
		if err != nil {
			t.Fatalf("VerifyArchive() error = %v", err)
		}
		if result.Skipped != SkipNoManifest {
			t.Errorf("Skipped = %q, want %q", result.Skipped, SkipNoManifest)
		}
	})
}

func TestVerifyArchiveSignedManifest(t *testing.T) {
	content := []byte("archive bytes")
	manifest := []byte(blockManifest(map[string]string{testAsset: sha256Hex(content)}))

	signer := newTestEntity(t, "Release Signer")
	stranger := newTestEntity(t, "Someone Else")

	armoredSig := func(e *openpgp.Entity) []byte {
		var buf bytes.Buffer
		if err := openpgp.ArmoredDetachSign(&buf, e, bytes.NewReader(manifest), nil); err != nil {
			t.Fatalf("sign manifest: %v", err)
		}
		return buf.Bytes()
	}

	t.Run("armored signature", func(t *testing.T) {
		rs := newReleaseServer(t)
		rs.serve(manifestPath, manifest)
		rs.serve(manifestPath+".asc", armoredSig(signer))

		v := NewVerifier(rs.fetcher(), openpgp.EntityList{signer}, logr.Discard())
		result, err := v.VerifyArchive(context.Background(), writeArchive(t, content), testVersion, rs.URL, testAsset, "")
		if err != nil {
			t.Fatalf("VerifyArchive() error = %v", err)
		}
		if result.Method != VerificationSignedSHA256 {
			t.Errorf("Method = %v, want %v", result.Method, VerificationSignedSHA256)
		}
	})

	t.Run("binary signature fallback", func(t *testing.T) {
		var sig bytes.Buffer
		if err := openpgp.DetachSign(&sig, signer, bytes.NewReader(manifest), nil); err != nil {
			t.Fatalf("sign manifest: %v", err)
		}

		rs := newReleaseServer(t)
		rs.serve(manifestPath, manifest)
		rs.serve(manifestPath+".sig", sig.Bytes())

		v := NewVerifier(rs.fetcher(), openpgp.EntityList{signer}, logr.Discard())
		if _, err := v.VerifyArchive(context.Background(), writeArchive(t, content), testVersion, rs.URL, testAsset, ""); err != nil {
			t.Fatalf("VerifyArchive() error = %v", err)
		}
	})

	t.Run("unknown signer", func(t *testing.T) {
		rs := newReleaseServer(t)
		rs.serve(manifestPath, manifest)
		rs.serve(manifestPath+".asc", armoredSig(stranger))

		v := NewVerifier(rs.fetcher(), openpgp.EntityList{signer}, logr.Discard())
		_, err := v.VerifyArchive(context.Background(), writeArchive(t, content), testVersion, rs.URL, testAsset, "")

		var sigErr *SignatureError
		if !errors.As(err, &sigErr) {
			t.Fatalf("error = %v, want *SignatureError", err)
		}
	})

	t.Run("missing signature", func(t *testing.T) {
		rs := newReleaseServer(t)
		rs.serve(manifestPath, manifest)

		v := NewVerifier(rs.fetcher(), openpgp.EntityList{signer}, logr.Discard())
		_, err := v.VerifyArchive(context.Background(), writeArchive(t, content), testVersion, rs.URL, testAsset, "")

		var sigErr *SignatureError
		if !errors.As(err, &sigErr) {
			t.Fatalf("error = %v, want *SignatureError", err)
		}
	})

	t.Run("tampered manifest", func(t *testing.T) {
		rs := newReleaseServer(t)
		rs.serve(manifestPath, append([]byte("extra line\n"), manifest...))
		rs.serve(manifestPath+".asc", armoredSig(signer))

		v := NewVerifier(rs.fetcher(), openpgp.EntityList{signer}, logr.Discard())
		_, err := v.VerifyArchive(context.Background(), writeArchive(t, content), testVersion, rs.URL, testAsset, "")

		var sigErr *SignatureError
		if !errors.As(err, &sigErr) {
			t.Fatalf("error = %v, want *SignatureError", err)
		}
	})

	t.Run("manifest missing with keyring", func(t *testing.T) {
		rs := newReleaseServer(t)

		v := NewVerifier(rs.fetcher(), openpgp.EntityList{signer}, logr.Discard())
		result, err := v.VerifyArchive(context.Background(), writeArchive(t, content), testVersion, rs.URL, testAsset, "")

		var sigErr *SignatureError
		if !errors.As(err, &sigErr) {
			t.Fatalf("VerifyArchive() = %+v, %v; want *SignatureError", result, err)
		}
	})

	t.Run("asset not listed with keyring", func(t *testing.T) {
		other := []byte(blockManifest(map[string]string{"other.zip": sha256Hex(content)}))
		var sig bytes.Buffer
		if err := openpgp.ArmoredDetachSign(&sig, signer, bytes.NewReader(other), nil); err != nil {
			t.Fatalf("sign manifest: %v", err)
		}

		rs := newReleaseServer(t)
		rs.serve(manifestPath, other)
		rs.serve(manifestPath+".asc", sig.Bytes())

		v := NewVerifier(rs.fetcher(), openpgp.EntityList{signer}, logr.Discard())
		_, err := v.VerifyArchive(context.Background(), writeArchive(t, content), testVersion, rs.URL, testAsset, "")

		var sigErr *SignatureError
		if !errors.As(err, &sigErr) {
			t.Fatalf("error = %v, want *SignatureError", err)
		}
	})
}

func TestVerificationMethodString(t *testing.T) {
	tests := []struct {
		method VerificationMethod
		want   string
	}{
		{VerificationNone, "None"},
		{VerificationSHA256, "SHA256"},
		{VerificationSignedSHA256, "SHA256 (signed manifest)"},
		{VerificationMethod(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.method.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
