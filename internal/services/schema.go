package services

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// AnalysisResultSchema is the minimum shape the legacy analysis endpoint accepts.
func AnalysisResultSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"insight", "recommendations"},
		"properties": map[string]any{
			"recommendations": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"id", "name", "short_description", "reason"},
				},
			},
		},
	}
}

// SchemaValidator checks parsed model output against a compiled JSON Schema.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

func NewSchemaValidator(schemaMap map[string]any) (*SchemaValidator, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &SchemaValidator{schema: schema}, nil
}

// Validate accepts the decoded form (map[string]any) produced by encoding/json.
func (v *SchemaValidator) Validate(doc map[string]any) error {
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
