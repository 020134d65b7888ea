package binary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultTimeout is the per-request timeout for every call to the release host.
	DefaultTimeout = 60 * time.Second
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "neo4j-mcp-installer"
	// ChunkSize bounds the memory used while streaming downloads and hashing.
	ChunkSize = 1 << 20
)

// Fetcher performs HTTP GETs against the release host.
//
// It never retries: an error is returned to the caller as-is, and retry
// policy belongs to whoever runs the pipeline.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a Fetcher with the default timeout and User-Agent.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client:    NewHTTPClient(DefaultTimeout),
		userAgent: DefaultUserAgent,
	}
}

// NewFetcherWithClient creates a Fetcher around an existing client.
// An empty userAgent keeps DefaultUserAgent.
func NewFetcherWithClient(client *http.Client, userAgent string) *Fetcher {
	if client == nil {
		client = NewHTTPClient(DefaultTimeout)
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Fetcher{client: client, userAgent: userAgent}
}

// NewHTTPClient returns a client with a fixed per-request timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// release downloads redirect to object storage; 10 hops is plenty
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
}

// FetchBytes GETs url and returns the whole body.
func (f *Fetcher) FetchBytes(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	resp, err := f.get(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

// FetchToFile streams url into destPath in ChunkSize pieces, creating
// missing parent directories. The write is not atomic; pass a temporary
// path and rename it yourself. A partially written file is removed on error.
func (f *Fetcher) FetchToFile(ctx context.Context, url, destPath string, headers map[string]string) error {
	resp, err := f.get(ctx, url, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		out.Close()
		if cleanupNeeded {
			os.Remove(destPath)
		}
	}()

	if err := copyChunked(out, resp.Body); err != nil {
		return fmt.Errorf("copy response body: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}

	cleanupNeeded = false
	return nil
}

// get issues a GET and returns the response when the status is 2xx.
func (f *Fetcher) get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &HTTPStatusError{URL: url, StatusCode: resp.StatusCode}
	}

	return resp, nil
}

// copyChunked copies src to dst through a single ChunkSize buffer.
// The wrappers hide ReaderFrom/WriterTo so the buffer is always used.
func copyChunked(dst io.Writer, src io.Reader) error {
	buf := make([]byte, ChunkSize)
	_, err := io.CopyBuffer(struct{ io.Writer }{dst}, struct{ io.Reader }{src}, buf)
	return err
}
