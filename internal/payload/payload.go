// Package payload synthesizes request bodies from discovered schema shapes.
// Values are syntactically valid but semantically arbitrary: enough to
// exercise write paths without domain-accurate content.
package payload

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shexpose/shbench/internal/discovery"
)

// Kind classifies what sort of value an attribute expects.
type Kind int

const (
	// KindOpaque is the fallback when no usable schema info exists.
	KindOpaque Kind = iota
	KindNumeric
	KindBoolean
	KindTimestamp
	KindText
)

// UpdateMarker prefixes textual update values so updates are
// distinguishable from creates on the backend.
const UpdateMarker = "upd-"

type property struct {
	Type       string                     `json:"type"`
	AnyOf      []property                 `json:"anyOf"`
	OneOf      []property                 `json:"oneOf"`
	Properties map[string]json.RawMessage `json:"properties"`
}

func (p *property) resolveType() string {
	if p == nil {
		return ""
	}
	if p.Type != "" {
		return p.Type
	}
	for _, group := range [][]property{p.AnyOf, p.OneOf} {
		for _, entry := range group {
			if entry.Type != "" {
				return entry.Type
			}
		}
	}
	return ""
}

// shape is the resolved value model for one attribute.
type shape struct {
	kind        Kind
	hasLanguage bool
}

// resolveShape inspects an attribute's schema definition (possibly nil) and
// its name to pick a value kind.
func resolveShape(attr string, schema json.RawMessage) shape {
	var def property
	if len(schema) > 0 {
		if err := json.Unmarshal(schema, &def); err != nil {
			return shape{kind: KindOpaque}
		}
	}

	props := def.Properties
	if len(def.AnyOf) > 0 && len(def.AnyOf[0].Properties) > 0 {
		props = def.AnyOf[0].Properties
	}
	valueRaw, ok := props["value"]
	if !ok {
		return shape{kind: KindOpaque}
	}
	_, hasLanguage := props["language"]

	var valueDef property
	_ = json.Unmarshal(valueRaw, &valueDef)

	switch valueDef.resolveType() {
	case "number", "integer":
		return shape{kind: KindNumeric}
	case "boolean":
		return shape{kind: KindBoolean}
	}

	lower := strings.ToLower(attr)
	if strings.Contains(lower, "date") || strings.Contains(lower, "time") || strings.Contains(lower, "duration") {
		return shape{kind: KindTimestamp}
	}
	return shape{kind: KindText, hasLanguage: hasLanguage}
}

// value synthesizes one attribute value object for the resolved shape.
func value(attr string, s shape) map[string]any {
	switch s.kind {
	case KindNumeric:
		return map[string]any{"value": rand.Intn(10000)}
	case KindBoolean:
		return map[string]any{"value": rand.Intn(2) == 0}
	case KindTimestamp:
		return map[string]any{"value": time.Now().UTC().Format(time.RFC3339)}
	case KindText:
		v := fmt.Sprintf("eval-%s-%d-%08x", attr, time.Now().UnixMilli(), rand.Uint32())
		if s.hasLanguage {
			return map[string]any{"value": v, "language": "en"}
		}
		return map[string]any{"value": v}
	default:
		return map[string]any{"value": fmt.Sprintf("eval-%d-%04x", time.Now().UnixMilli(), rand.Intn(1<<16))}
	}
}

// Body builds a full creation body: one value per declared schema property,
// or one language-tagged string per discovered attribute when the entity has
// no schema properties at all.
func Body(ep *discovery.Endpoint) map[string]any {
	if len(ep.SchemaProperties) > 0 {
		body := make(map[string]any, len(ep.SchemaProperties))
		for attr, schema := range ep.SchemaProperties {
			body[attr] = value(attr, resolveShape(attr, schema))
		}
		return body
	}

	body := make(map[string]any, len(ep.Attributes))
	for _, attr := range ep.Attributes {
		body[attr] = value(attr, shape{kind: KindText, hasLanguage: true})
	}
	return body
}

// AttributeBody builds a single-attribute update body. Textual values carry
// the update marker; numeric and boolean values never do.
func AttributeBody(ep *discovery.Endpoint, attr string) map[string]any {
	body := value(attr, resolveShape(attr, ep.SchemaProperties[attr]))
	if s, ok := body["value"].(string); ok {
		body["value"] = UpdateMarker + s
	}
	return body
}
