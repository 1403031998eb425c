package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

// FileSystem reads assets from a directory.
type FileSystem struct {
	Root string
}

// Fetch implements Fetcher. Paths cannot escape Root.
func (f FileSystem) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full := filepath.Join(f.Root, filepath.FromSlash(path.Clean("/"+name)))
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// HTTP fetches assets relative to a base URL.
type HTTP struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTP creates an HTTP fetcher. A zero timeout leaves requests bounded
// only by the caller's context.
func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	return &HTTP{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

// Fetch implements Fetcher.
func (h *HTTP) Fetch(ctx context.Context, name string) ([]byte, error) {
	u, err := url.JoinPath(h.BaseURL, name)
	if err != nil {
		return nil, fmt.Errorf("building url for %s: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", name, err)
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("fetching %s: unexpected status %s", u, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", u, err)
	}
	return data, nil
}

// NewFetcher picks the HTTP fetcher when baseURL is set and the file system
// otherwise. The result is cached.
func NewFetcher(root, baseURL string, timeout time.Duration) *CachedFetcher {
	if baseURL != "" {
		return NewCachedFetcher(NewHTTP(baseURL, timeout))
	}
	return NewCachedFetcher(FileSystem{Root: root})
}
