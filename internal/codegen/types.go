// Package codegen renders the generated API artifacts: an OpenAPI 3.0
// document, a typed TypeScript SDK, and a Postman collection.
//
// All three renderers are pure functions over the same canonical field
// schema plus endpoint metadata. They must agree on the field-name set
// and required flags; none of them looks at selector rules.
package codegen

import (
	"strings"
	"unicode"

	"github.com/bytedance/sonic"
)

// Meta carries the endpoint identity shared by every artifact.
type Meta struct {
	Slug    string
	URL     string
	Title   string
	BaseURL string
}

// Artifacts bundles the rendered outputs of one generation run.
type Artifacts struct {
	OpenAPI     []byte
	OpenAPIYAML []byte
	SDK         []byte
	Postman     []byte
}

// DataPath returns the API path serving this endpoint's record.
func (m Meta) DataPath() string {
	return "/api/data/" + m.Slug
}

// DisplayTitle returns the page title or a fallback for untitled pages.
func (m Meta) DisplayTitle() string {
	if strings.TrimSpace(m.Title) == "" {
		return "Scraped Data"
	}
	return strings.TrimSpace(m.Title)
}

// TypeName derives a PascalCase TypeScript identifier from the title.
func (m Meta) TypeName() string {
	var b strings.Builder
	upper := true
	for _, r := range m.DisplayTitle() {
		switch {
		case unicode.IsLetter(r):
			if upper {
				b.WriteRune(unicode.ToUpper(r))
				upper = false
			} else {
				b.WriteRune(r)
			}
		case unicode.IsDigit(r) && b.Len() > 0:
			b.WriteRune(r)
			upper = true
		default:
			upper = true
		}
	}
	if b.Len() == 0 {
		return "ScrapedData"
	}
	return b.String()
}

// marshalJSON renders a document as stable, indented JSON. ConfigStd
// sorts map keys so repeated runs produce identical bytes.
func marshalJSON(v any) ([]byte, error) {
	return sonic.ConfigStd.MarshalIndent(v, "", "  ")
}
