package codegen

import (
	"fmt"

	"github.com/GriffinCanCode/APIForge/backend/internal/extract"
	"github.com/GriffinCanCode/APIForge/backend/internal/schema"
)

// Generate renders all artifacts from one canonical schema. The three
// outputs always describe the same field set because they share fields.
func Generate(fields []schema.Field, meta Meta, sample extract.Record) (*Artifacts, error) {
	openapi, err := GenerateOpenAPI(fields, meta)
	if err != nil {
		return nil, fmt.Errorf("openapi generation failed: %w", err)
	}

	openapiYAML, err := GenerateOpenAPIYAML(fields, meta)
	if err != nil {
		return nil, fmt.Errorf("openapi yaml generation failed: %w", err)
	}

	postman, err := GeneratePostman(fields, meta, sample)
	if err != nil {
		return nil, fmt.Errorf("postman generation failed: %w", err)
	}

	return &Artifacts{
		OpenAPI:     openapi,
		OpenAPIYAML: openapiYAML,
		SDK:         GenerateSDK(fields, meta),
		Postman:     postman,
	}, nil
}
