package codegen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/GriffinCanCode/APIForge/backend/internal/schema"
)

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// GenerateSDK renders a TypeScript SDK: a data interface mirroring the
// field schema and a minimal client with one typed fetch method.
func GenerateSDK(fields []schema.Field, meta Meta) []byte {
	typeName := meta.TypeName()

	var b strings.Builder
	fmt.Fprintf(&b, "// Generated client for %s\n", meta.URL)
	fmt.Fprintf(&b, "// Endpoint: %s%s\n\n", meta.BaseURL, meta.DataPath())

	fmt.Fprintf(&b, "export interface %s {\n", typeName)
	for _, f := range fields {
		fmt.Fprintf(&b, "  %s%s: %s;\n", tsProperty(f.Name), optionalMarker(f), tsType(f))
	}
	b.WriteString("}\n\n")

	b.WriteString("export interface ResponseMeta {\n")
	b.WriteString("  url: string;\n")
	b.WriteString("  lastUpdated: string;\n")
	b.WriteString("  slug: string;\n")
	b.WriteString("  cacheAge: number;\n")
	b.WriteString("  generatedAt: string;\n")
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "export interface %sResponse {\n", typeName)
	fmt.Fprintf(&b, "  data: %s;\n", typeName)
	b.WriteString("  meta: ResponseMeta;\n")
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "export class %sClient {\n", typeName)
	fmt.Fprintf(&b, "  constructor(private baseUrl: string = %q) {}\n\n", meta.BaseURL)
	fmt.Fprintf(&b, "  async fetchData(): Promise<%sResponse> {\n", typeName)
	fmt.Fprintf(&b, "    const response = await fetch(`${this.baseUrl}%s`);\n", meta.DataPath())
	b.WriteString("    if (!response.ok) {\n")
	b.WriteString("      throw new Error(`Request failed with status ${response.status}`);\n")
	b.WriteString("    }\n")
	b.WriteString("    return response.json();\n")
	b.WriteString("  }\n")
	b.WriteString("}\n")

	return []byte(b.String())
}

func tsProperty(name string) string {
	if identRe.MatchString(name) {
		return name
	}
	return fmt.Sprintf("%q", name)
}

func optionalMarker(f schema.Field) string {
	if f.Required {
		return ""
	}
	return "?"
}

func tsType(f schema.Field) string {
	var base string
	switch f.Type {
	case schema.TypeArray:
		base = "string[]"
	case schema.TypeNumber:
		base = "number"
	case schema.TypeBoolean:
		base = "boolean"
	default:
		base = "string"
	}
	if !f.Required {
		base += " | null"
	}
	return base
}
