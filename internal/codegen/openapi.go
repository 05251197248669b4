package codegen

import (
	"github.com/goccy/go-yaml"

	"github.com/GriffinCanCode/APIForge/backend/internal/schema"
)

// GenerateOpenAPI renders an OpenAPI 3.0 JSON document describing the
// endpoint: one GET path, a field-by-field response schema, and a 404
// response for absent or expired data.
func GenerateOpenAPI(fields []schema.Field, meta Meta) ([]byte, error) {
	return marshalJSON(openAPIDocument(fields, meta))
}

// GenerateOpenAPIYAML renders the same document as YAML for the bundle.
func GenerateOpenAPIYAML(fields []schema.Field, meta Meta) ([]byte, error) {
	return yaml.Marshal(openAPIDocument(fields, meta))
}

func openAPIDocument(fields []schema.Field, meta Meta) map[string]any {
	properties := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))
	for _, f := range fields {
		properties[f.Name] = fieldSchema(f)
		if f.Required {
			required = append(required, f.Name)
		}
	}

	dataSchema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		dataSchema["required"] = required
	}

	return map[string]any{
		"openapi": "3.0.0",
		"info": map[string]any{
			"title":       meta.DisplayTitle() + " API",
			"description": "Auto-generated API serving data extracted from " + meta.URL,
			"version":     "1.0.0",
		},
		"servers": []any{
			map[string]any{"url": meta.BaseURL},
		},
		"paths": map[string]any{
			meta.DataPath(): map[string]any{
				"get": map[string]any{
					"summary":     "Fetch the extracted data record",
					"operationId": "getData",
					"responses": map[string]any{
						"200": map[string]any{
							"description": "Extracted data with cache metadata",
							"content": map[string]any{
								"application/json": map[string]any{
									"schema": map[string]any{
										"type": "object",
										"properties": map[string]any{
											"data": dataSchema,
											"meta": metaSchema(),
										},
										"required": []string{"data", "meta"},
									},
								},
							},
						},
						"404": map[string]any{
							"description": "Data not found or expired",
							"content": map[string]any{
								"application/json": map[string]any{
									"schema": errorSchema(),
								},
							},
						},
					},
				},
			},
		},
	}
}

func fieldSchema(f schema.Field) map[string]any {
	var s map[string]any
	switch f.Type {
	case schema.TypeArray:
		s = map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		}
	case schema.TypeNumber:
		s = map[string]any{"type": "number"}
	case schema.TypeBoolean:
		s = map[string]any{"type": "boolean"}
	default:
		s = map[string]any{"type": "string"}
	}
	if f.Format != "" {
		s["format"] = f.Format
	}
	if !f.Required {
		s["nullable"] = true
	}
	if f.Example != nil {
		s["example"] = f.Example
	}
	return s
}

func metaSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url":         map[string]any{"type": "string", "format": "uri"},
			"lastUpdated": map[string]any{"type": "string", "format": "date-time"},
			"slug":        map[string]any{"type": "string"},
			"cacheAge":    map[string]any{"type": "number"},
			"generatedAt": map[string]any{"type": "string", "format": "date-time"},
		},
	}
}

func errorSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"error":   map[string]any{"type": "string"},
			"message": map[string]any{"type": "string"},
		},
	}
}
