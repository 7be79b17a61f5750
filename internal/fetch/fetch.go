// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

// Package fetch reads schema and context documents from a filesystem or over
// HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// MaxDocumentSize bounds the size of any fetched document.
const MaxDocumentSize = 16 << 20

// DefaultTimeout is the timeout of the client returned by NewClient.
const DefaultTimeout = 30 * time.Second

// FileScheme prefixes locations inside a loader's filesystem.
const FileScheme = "file:///"

// ErrRemoteDisabled is returned for http(s) URIs when no client is configured.
var ErrRemoteDisabled = errors.New("remote loading is disabled")

// NewClient returns the HTTP client used for remote documents.
func NewClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// IsRemote reports whether uri uses http or https.
func IsRemote(uri string) bool {
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}

// Location normalizes a reference given by a user into a URI. Absolute URIs
// are returned as-is (minus an empty fragment); anything else is treated as a
// slash-separated path inside the loader filesystem.
func Location(ref string) string {
	if u, err := url.Parse(ref); err == nil && len(u.Scheme) > 1 {
		return strings.TrimSuffix(u.String(), "#")
	}
	p := path.Clean(strings.TrimPrefix(filepath.ToSlash(ref), "/"))
	return FileScheme + p
}

// FSPath returns the filesystem path of a file:/// location.
func FSPath(uri string) (string, bool) {
	p, ok := strings.CutPrefix(uri, FileScheme)
	return p, ok
}

// Get fetches uri with client. A nil client disables remote loading.
func Get(ctx context.Context, client *http.Client, uri, accept string) ([]byte, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: %s", ErrRemoteDisabled, uri)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", uri, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("GET %s: document exceeds %d bytes", uri, MaxDocumentSize)
	}
	return data, nil
}
