// Package discovery derives the CRUD API shape from its OpenAPI document.
package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Endpoint describes one discovered resource type. Immutable after discovery.
type Endpoint struct {
	// Entity is the first path segment, e.g. "person".
	Entity string
	// Attributes are the names found in /{entity}/{uri}/{attribute} paths,
	// in first-appearance order.
	Attributes []string
	// SchemaProperties maps attribute names to their creation-body schema,
	// merged from the POST request bodies of paths without an id segment.
	SchemaProperties map[string]json.RawMessage
}

// HasAttribute reports whether attr was discovered for this entity.
func (e *Endpoint) HasAttribute(attr string) bool {
	for _, a := range e.Attributes {
		if a == attr {
			return true
		}
	}
	return false
}

type pathItem struct {
	Post *struct {
		RequestBody struct {
			Content map[string]struct {
				Schema struct {
					Properties map[string]json.RawMessage `json:"properties"`
				} `json:"schema"`
			} `json:"content"`
		} `json:"requestBody"`
	} `json:"post"`
}

// Discover fetches {baseURL}/openapi.json and builds an Endpoint per entity
// path found, including entities this run never benchmarks. Any failure here
// is fatal for the run.
func Discover(ctx context.Context, client *http.Client, baseURL string) (map[string]*Endpoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/openapi.json", nil)
	if err != nil {
		return nil, fmt.Errorf("build discovery request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch API description: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch API description: status %d (is the server running?)", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read API description: %w", err)
	}
	return parse(data)
}

// parse walks the document's paths in document order so attribute lists keep
// their first-appearance order.
func parse(data []byte) (map[string]*Endpoint, error) {
	var doc struct {
		Paths json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode API description: %w", err)
	}
	endpoints := make(map[string]*Endpoint)
	if len(doc.Paths) == 0 {
		return endpoints, nil
	}

	dec := json.NewDecoder(bytes.NewReader(doc.Paths))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode paths: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("decode paths: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode paths: %w", err)
		}
		path, _ := tok.(string)
		var item pathItem
		if err := dec.Decode(&item); err != nil {
			return nil, fmt.Errorf("decode path %q: %w", path, err)
		}
		addPath(endpoints, path, &item)
	}
	return endpoints, nil
}

func addPath(endpoints map[string]*Endpoint, path string, item *pathItem) {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	entity := segments[0]
	if entity == "" {
		return
	}

	ep, ok := endpoints[entity]
	if !ok {
		ep = &Endpoint{Entity: entity, SchemaProperties: make(map[string]json.RawMessage)}
		endpoints[entity] = ep
	}

	// Attribute names come from /{entity}/{uri}/{attribute}.
	if len(segments) == 3 && segments[1] == "{uri}" {
		if attr := segments[2]; attr != "" && !ep.HasAttribute(attr) {
			ep.Attributes = append(ep.Attributes, attr)
		}
	}

	// Creation schema comes from POST bodies on paths without an id segment.
	if strings.Contains(path, "{uri}") || item.Post == nil {
		return
	}
	media, ok := item.Post.RequestBody.Content["application/json"]
	if !ok {
		return
	}
	for name, schema := range media.Schema.Properties {
		ep.SchemaProperties[name] = schema
	}
}
