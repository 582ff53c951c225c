package payload

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/shexpose/shbench/internal/discovery"
)

// Validate checks a synthesized body against the entity's declared creation
// schema. Entities without schema properties validate trivially. A validation
// failure is advisory: callers log it and send the body anyway.
func Validate(ep *discovery.Endpoint, body map[string]any) error {
	if len(ep.SchemaProperties) == 0 {
		return nil
	}

	doc, err := json.Marshal(map[string]any{
		"type":       "object",
		"properties": ep.SchemaProperties,
	})
	if err != nil {
		return fmt.Errorf("build schema for %s: %w", ep.Entity, err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(doc), gojsonschema.NewGoLoader(body))
	if err != nil {
		return fmt.Errorf("validate %s payload: %w", ep.Entity, err)
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("payload does not match %s schema: %s", ep.Entity, strings.Join(details, "; "))
}
