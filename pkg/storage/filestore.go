// Package storage resolves stored-file references to their bytes. Documents
// live in an external blob store; repositories only hold opaque keys.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// FileStore fetches stored file contents by key.
type FileStore interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// HTTPFileStore fetches files from a blob store over HTTP. Keys are resolved
// relative to the store's base URL.
type HTTPFileStore struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPFileStore creates a FileStore backed by an HTTP blob store.
func NewHTTPFileStore(baseURL string, logger *zap.Logger) *HTTPFileStore {
	return &HTTPFileStore{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger.Named("filestore"),
	}
}

var _ FileStore = (*HTTPFileStore)(nil)

// Fetch downloads the file stored under key.
func (s *HTTPFileStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	fileURL, err := url.JoinPath(s.baseURL, key)
	if err != nil {
		return nil, fmt.Errorf("invalid storage key %q: %w", key, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build storage request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch stored file %q: %w", key, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("blob store returned non-200",
			zap.String("key", key),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("fetch stored file %q: HTTP %d", key, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read stored file %q: %w", key, err)
	}
	return data, nil
}

// MockFileStore is a configurable mock for tests.
type MockFileStore struct {
	FetchFunc  func(ctx context.Context, key string) ([]byte, error)
	FetchCalls int
}

var _ FileStore = (*MockFileStore)(nil)

func (m *MockFileStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	m.FetchCalls++
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, key)
	}
	return nil, nil
}
