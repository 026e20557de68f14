// Package httpjson reads document counts from an Elasticsearch-compatible _count API.
package httpjson

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vshulcz/ingestmon/internal/domain"
	"github.com/vshulcz/ingestmon/internal/ports"
)

const defaultTimeout = 5 * time.Second

// Client fetches the document count of one resource.
type Client struct {
	hc       *http.Client
	countURL string
	apiKey   string
}

var _ ports.DocumentCounter = (*Client)(nil)

// StatusError reports a non-OK answer from the count endpoint.
type StatusError struct {
	Status string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("count status: %s", e.Status)
}

type countResponse struct {
	Count *int64 `json:"count"`
}

// New normalizes the base address and builds the count URL for resource.
// A nil hc gets a client with the default 5s timeout.
func New(endpoint, resource string, hc *http.Client, apiKey string) (*Client, error) {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	resource = strings.Trim(strings.TrimSpace(resource), "/")
	if resource == "" {
		return nil, errors.New("resource name is empty")
	}
	u, err := url.Parse(normalizeBase(endpoint))
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("endpoint %q has no host", endpoint)
	}
	u.RawPath = strings.TrimRight(u.EscapedPath(), "/") + "/" + url.PathEscape(resource) + "/_count"
	u.Path = strings.TrimRight(u.Path, "/") + "/" + resource + "/_count"
	return &Client{hc: hc, countURL: u.String(), apiKey: strings.TrimSpace(apiKey)}, nil
}

func normalizeBase(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return strings.TrimRight(s, "/")
	}
	return "http://" + strings.TrimRight(s, "/")
}

// URL returns the full count URL the client polls.
func (c *Client) URL() string {
	return c.countURL
}

// Count issues one GET against the count URL and returns the reported count.
func (c *Client) Count(ctx context.Context) (n int64, retErr error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.countURL, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http do: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("close response body: %w", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, closeBody, err := decodedBody(resp)
	if err != nil {
		return 0, err
	}
	defer closeBody()

	var cr countResponse
	if err := json.NewDecoder(body).Decode(&cr); err != nil {
		return 0, fmt.Errorf("decode count: %w", err)
	}
	switch {
	case cr.Count == nil:
		return 0, domain.ErrNoCount
	case *cr.Count < 0:
		return 0, fmt.Errorf("%w: %d", domain.ErrNegativeCount, *cr.Count)
	}
	return *cr.Count, nil
}

func decodedBody(resp *http.Response) (io.Reader, func(), error) {
	if !strings.Contains(strings.ToLower(resp.Header.Get("Content-Encoding")), "gzip") {
		return resp.Body, func() {}, nil
	}
	gr, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("bad gzip: %w", err)
	}
	return gr, func() { _ = gr.Close() }, nil
}
