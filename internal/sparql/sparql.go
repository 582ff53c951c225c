// Package sparql looks up existing resource URIs in the triple store behind
// the API under test.
package sparql

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Client queries a SPARQL endpoint for instance URIs.
type Client struct {
	endpoint string
	httpc    *http.Client
	logger   *zap.Logger
}

// NewClient builds a query client. The http client carries the per-request
// timeout for the whole run.
func NewClient(endpoint string, httpc *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{endpoint: endpoint, httpc: httpc, logger: logger}
}

// InstanceURIs returns every URI typed as typeURI. A failed query is an
// error for the caller to surface; the affected entity is skipped, the run
// continues.
func (c *Client) InstanceURIs(ctx context.Context, typeURI string) ([]string, error) {
	query := fmt.Sprintf("SELECT ?uri WHERE { ?uri a <%s> }", typeURI)
	form := url.Values{"query": {query}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query <%s>: %w", typeURI, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query <%s>: status %d", typeURI, resp.StatusCode)
	}

	var result struct {
		Results struct {
			Bindings []struct {
				URI struct {
					Value string `json:"value"`
				} `json:"uri"`
			} `json:"bindings"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode query results: %w", err)
	}

	uris := make([]string, 0, len(result.Results.Bindings))
	for _, b := range result.Results.Bindings {
		if b.URI.Value != "" {
			uris = append(uris, b.URI.Value)
		}
	}
	c.logger.Debug("fetched instance URIs", zap.String("type", typeURI), zap.Int("count", len(uris)))
	return uris, nil
}
