package codegen

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/APIForge/backend/internal/extract"
	"github.com/GriffinCanCode/APIForge/backend/internal/schema"
)

var testMeta = Meta{
	Slug:    "example-com-page-abc123-x9k2",
	URL:     "https://example.com/page",
	Title:   "Example Page",
	BaseURL: "http://localhost:8000",
}

func testFields() []schema.Field {
	return []schema.Field{
		{Name: "title", Type: schema.TypeString, Required: true, Example: "Hello"},
		{Name: "price", Type: schema.TypeNumber, Required: true, Example: "19.99"},
		{Name: "items", Type: schema.TypeArray, Required: true, Example: []string{"a", "b"}},
		{Name: "subtitle", Type: schema.TypeString, Required: false},
		{Name: "link", Type: schema.TypeString, Required: true, Format: schema.FormatURI, Example: "https://example.com"},
	}
}

func testSample() extract.Record {
	return extract.Record{
		"title":    "Hello",
		"price":    "19.99",
		"items":    []string{"a", "b"},
		"subtitle": nil,
		"link":     "https://example.com",
	}
}

// openapiFields pulls the field-name set and required flags out of the
// rendered OpenAPI document.
func openapiFields(t *testing.T, doc []byte) map[string]bool {
	t.Helper()

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(doc, &parsed))

	paths := parsed["paths"].(map[string]any)
	require.Len(t, paths, 1)

	var dataSchema map[string]any
	for _, p := range paths {
		get := p.(map[string]any)["get"].(map[string]any)
		resp := get["responses"].(map[string]any)["200"].(map[string]any)
		content := resp["content"].(map[string]any)["application/json"].(map[string]any)
		root := content["schema"].(map[string]any)["properties"].(map[string]any)
		dataSchema = root["data"].(map[string]any)
	}

	required := make(map[string]bool)
	if list, ok := dataSchema["required"].([]any); ok {
		for _, name := range list {
			required[name.(string)] = true
		}
	}

	fields := make(map[string]bool)
	for name := range dataSchema["properties"].(map[string]any) {
		fields[name] = required[name]
	}
	return fields
}

// sdkFields pulls the property set and required flags out of the
// generated data interface.
func sdkFields(t *testing.T, src []byte) map[string]bool {
	t.Helper()

	re := regexp.MustCompile(`(?m)^  ("?[\w$]+"?)(\??): .+;$`)
	body := string(src)
	start := strings.Index(body, "export interface ")
	end := strings.Index(body, "}")
	require.Greater(t, end, start)

	fields := make(map[string]bool)
	for _, m := range re.FindAllStringSubmatch(body[start:end], -1) {
		name := strings.Trim(m[1], `"`)
		fields[name] = m[2] == ""
	}
	return fields
}

// postmanFields pulls the field set from the sample body and required
// flags from the presence assertions in the test script.
func postmanFields(t *testing.T, doc []byte) map[string]bool {
	t.Helper()

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(doc, &parsed))

	item := parsed["item"].([]any)[0].(map[string]any)

	sampleBody := item["response"].([]any)[0].(map[string]any)["body"].(string)
	var sample map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(sampleBody), &sample))

	script := postmanScript(t, parsed)
	propRe := regexp.MustCompile(`to\.have\.property\("([^"]+)"\)`)
	required := make(map[string]bool)
	for _, m := range propRe.FindAllStringSubmatch(script, -1) {
		required[m[1]] = true
	}

	fields := make(map[string]bool)
	for name := range sample["data"] {
		fields[name] = required[name]
	}
	return fields
}

func postmanScript(t *testing.T, parsed map[string]any) string {
	t.Helper()

	item := parsed["item"].([]any)[0].(map[string]any)
	event := item["event"].([]any)[0].(map[string]any)
	exec := event["script"].(map[string]any)["exec"].([]any)

	lines := make([]string, 0, len(exec))
	for _, line := range exec {
		lines = append(lines, line.(string))
	}
	return strings.Join(lines, "\n")
}

func TestCrossArtifactConsistency(t *testing.T) {
	artifacts, err := Generate(testFields(), testMeta, testSample())
	require.NoError(t, err)

	fromOpenAPI := openapiFields(t, artifacts.OpenAPI)
	fromSDK := sdkFields(t, artifacts.SDK)
	fromPostman := postmanFields(t, artifacts.Postman)

	assert.Equal(t, fromOpenAPI, fromSDK, "openapi and sdk disagree")
	assert.Equal(t, fromOpenAPI, fromPostman, "openapi and postman disagree")
}

func TestOpenAPIDocumentShape(t *testing.T) {
	doc, err := GenerateOpenAPI(testFields(), testMeta)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(doc, &parsed))

	assert.Equal(t, "3.0.0", parsed["openapi"])
	paths := parsed["paths"].(map[string]any)
	require.Contains(t, paths, "/api/data/"+testMeta.Slug)

	get := paths["/api/data/"+testMeta.Slug].(map[string]any)["get"].(map[string]any)
	responses := get["responses"].(map[string]any)
	assert.Contains(t, responses, "200")
	assert.Contains(t, responses, "404")

	servers := parsed["servers"].([]any)
	assert.Equal(t, testMeta.BaseURL, servers[0].(map[string]any)["url"])
}

func TestOpenAPIFieldTypes(t *testing.T) {
	doc, err := GenerateOpenAPI(testFields(), testMeta)
	require.NoError(t, err)

	body := string(doc)
	assert.Contains(t, body, `"format": "uri"`)
	assert.Contains(t, body, `"type": "number"`)
	assert.Contains(t, body, `"items"`)
}

func TestOpenAPIDeterministic(t *testing.T) {
	first, err := GenerateOpenAPI(testFields(), testMeta)
	require.NoError(t, err)
	second, err := GenerateOpenAPI(testFields(), testMeta)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateOpenAPIYAML(t *testing.T) {
	doc, err := GenerateOpenAPIYAML(testFields(), testMeta)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "openapi: 3.0.0")
}

func TestSDKOutput(t *testing.T) {
	src := string(GenerateSDK(testFields(), testMeta))

	assert.Contains(t, src, "export interface ExamplePage {")
	assert.Contains(t, src, "export class ExamplePageClient {")
	assert.Contains(t, src, "items: string[];")
	assert.Contains(t, src, "price: number;")
	assert.Contains(t, src, "subtitle?: string | null;")
	assert.Contains(t, src, "/api/data/"+testMeta.Slug)
	assert.Contains(t, src, testMeta.BaseURL)
}

func TestSDKFallbackTypeName(t *testing.T) {
	meta := testMeta
	meta.Title = "   "
	src := string(GenerateSDK(testFields(), meta))
	assert.Contains(t, src, "export interface ScrapedData {")
}

func TestPostmanTestScriptIsValidJavaScript(t *testing.T) {
	doc, err := GeneratePostman(testFields(), testMeta, testSample())
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(doc, &parsed))

	script := postmanScript(t, parsed)
	assert.Contains(t, script, "pm.response.to.have.status(200)")
	assert.Contains(t, script, "responseTime")

	// The embedded assertions must be real JavaScript.
	_, err = goja.Compile("postman_test.js", script, false)
	require.NoError(t, err)
}

func TestPostmanStableCollectionID(t *testing.T) {
	first, err := GeneratePostman(testFields(), testMeta, testSample())
	require.NoError(t, err)
	second, err := GeneratePostman(testFields(), testMeta, testSample())
	require.NoError(t, err)

	var a, b map[string]any
	require.NoError(t, json.Unmarshal(first, &a))
	require.NoError(t, json.Unmarshal(second, &b))
	assert.Equal(t,
		a["info"].(map[string]any)["_postman_id"],
		b["info"].(map[string]any)["_postman_id"])
}
