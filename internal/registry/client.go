// Package registry talks to the Hugging Face-style model repository API:
// listing the files in a repository revision and opening a file's content
// as a stream. Grounded on the teacher's internal/torrent/downloader.go
// request-building style (context-scoped http.NewRequest, header setting,
// status-code check, defer resp.Body.Close()).
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// FileEntry is one entry returned by the tree endpoint.
type FileEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// Client fetches repository listings and file bodies from a Hugging
// Face-style registry.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a registry client against baseURL (e.g.
// "https://huggingface.co") using httpClient for requests.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{BaseURL: baseURL, HTTPClient: httpClient}
}

// List returns the ordered sequence of file paths in repo at rev, as given
// by the registry's tree endpoint. Only entries whose type is "file" are
// returned; directory order is preserved so the archive is reproducible for
// a fixed remote state.
func (c *Client) List(ctx context.Context, repo, rev string) ([]string, error) {
	url := fmt.Sprintf("%s/api/models/%s/tree/%s", c.BaseURL, repo, rev)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &ListFailure{Cause: err}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &ListFailure{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ListFailure{Cause: fmt.Errorf("registry returned status %d", resp.StatusCode)}
	}

	var entries []FileEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, &ListFailure{Cause: fmt.Errorf("decode tree response: %w", err)}
	}

	var paths []string
	for _, e := range entries {
		if e.Type == "file" {
			paths = append(paths, e.Path)
		}
	}
	return paths, nil
}

// Open fetches the raw body of path in repo at rev. The caller must close
// the returned stream. A non-2xx status or missing body is a FetchFailure,
// which the orchestrator treats as a per-file skip rather than a fatal
// error (spec §7).
func (c *Client) Open(ctx context.Context, repo, rev, path string) (*Stream, error) {
	url := fmt.Sprintf("%s/%s/resolve/%s/%s", c.BaseURL, repo, rev, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchFailure{Path: path, Cause: err}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &FetchFailure{Path: path, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &FetchFailure{Path: path, Cause: fmt.Errorf("registry returned status %d", resp.StatusCode)}
	}
	if resp.Body == nil {
		return nil, &FetchFailure{Path: path, Cause: fmt.Errorf("empty response body")}
	}

	return &Stream{ReadCloser: resp.Body, ContentLength: resp.ContentLength}, nil
}
