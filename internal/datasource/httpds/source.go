package httpds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Source opens extracts as baseURL + name.
type Source struct {
	client  *Client
	baseURL string
}

// NewSource returns a Source. An empty baseURL means DefaultBaseURL.
func NewSource(c *Client, baseURL string) *Source {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Source{client: c, baseURL: baseURL}
}

// Open downloads name. Any status other than 200 is an error.
func (s *Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	u := s.baseURL + url.PathEscape(name)
	resp, err := s.client.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", u, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("download %s: unexpected status %s", u, resp.Status)
	}
	return resp.Body, nil
}
