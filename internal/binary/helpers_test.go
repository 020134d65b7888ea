package binary

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/mjfwebb/neo4j-mcp-installer/internal/platform"
)

// archiveEntry is one file in a test archive. Dir entries have no content.
type archiveEntry struct {
	Name    string
	Content string
	Dir     bool
}

// Helper function to create a test tar.gz archive
func createTestTarGz(t *testing.T, entries []archiveEntry) string {
	t.Helper()

	archivePath := filepath.Join(t.TempDir(), "test.tar.gz")

	archiveFile, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer func() { _ = archiveFile.Close() }()

	gzipWriter := gzip.NewWriter(archiveFile)
	defer func() { _ = gzipWriter.Close() }()

	tarWriter := tar.NewWriter(gzipWriter)
	defer func() { _ = tarWriter.Close() }()

	for _, entry := range entries {
		header := &tar.Header{
			Name:     entry.Name,
			Mode:     0644,
			Size:     int64(len(entry.Content)),
			Typeflag: tar.TypeReg,
		}
		if entry.Dir {
			header.Typeflag = tar.TypeDir
			header.Mode = 0755
			header.Size = 0
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			t.Fatalf("failed to write header for %s: %v", entry.Name, err)
		}
		if entry.Dir {
			continue
		}
		if _, err := tarWriter.Write([]byte(entry.Content)); err != nil {
			t.Fatalf("failed to write content for %s: %v", entry.Name, err)
		}
	}

	return archivePath
}

// Helper function to create a test zip archive
func createTestZip(t *testing.T, entries []archiveEntry) string {
	t.Helper()

	archivePath := filepath.Join(t.TempDir(), "test.zip")

	archiveFile, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer func() { _ = archiveFile.Close() }()

	zipWriter := zip.NewWriter(archiveFile)
	defer func() { _ = zipWriter.Close() }()

	for _, entry := range entries {
		name := entry.Name
		if entry.Dir {
			name += "/"
		}
		w, err := zipWriter.Create(name)
		if err != nil {
			t.Fatalf("failed to create entry %s: %v", name, err)
		}
		if entry.Dir {
			continue
		}
		if _, err := w.Write([]byte(entry.Content)); err != nil {
			t.Fatalf("failed to write content for %s: %v", name, err)
		}
	}

	return archivePath
}

func readArchive(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return data
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// fixedDetector always reports the same target.
type fixedDetector struct {
	target platform.Target
}

func (d fixedDetector) Detect(ctx context.Context) (platform.Target, error) {
	return d.target, ctx.Err()
}

var (
	linuxAMD64 = platform.Target{OS: platform.OSLinux, Arch: platform.ArchX8664, ArchiveExt: platform.ExtTarGz}
	windowsAMD = platform.Target{OS: platform.OSWindows, Arch: platform.ArchX8664, ArchiveExt: platform.ExtZip}
)

// releaseServer serves fixed paths and counts every request it sees.
type releaseServer struct {
	*httptest.Server

	mu       sync.Mutex
	files    map[string][]byte
	status   map[string]int
	requests []string
}

func newReleaseServer(t *testing.T) *releaseServer {
	t.Helper()

	rs := &releaseServer{
		files:  make(map[string][]byte),
		status: make(map[string]int),
	}
	rs.Server = httptest.NewServer(http.HandlerFunc(rs.handle))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *releaseServer) handle(w http.ResponseWriter, r *http.Request) {
	rs.mu.Lock()
	rs.requests = append(rs.requests, r.URL.Path)
	body, ok := rs.files[r.URL.Path]
	status, hasStatus := rs.status[r.URL.Path]
	rs.mu.Unlock()

	if hasStatus {
		w.WriteHeader(status)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write(body)
}

func (rs *releaseServer) serve(path string, body []byte) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.files[path] = body
}

func (rs *releaseServer) fail(path string, status int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.status[path] = status
}

func (rs *releaseServer) requestCount() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.requests)
}

func (rs *releaseServer) requested(path string) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for _, p := range rs.requests {
		if p == path {
			return true
		}
	}
	return false
}

func (rs *releaseServer) fetcher() *Fetcher {
	return NewFetcherWithClient(rs.Client(), "")
}

// blockManifest renders the filename/sha256 block manifest format.
func blockManifest(digests map[string]string) string {
	var sb strings.Builder
	for name, digest := range digests {
		sb.WriteString(name + "\n" + digestPrefix + digest + "\n\n")
	}
	return sb.String()
}
