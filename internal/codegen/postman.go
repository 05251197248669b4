package codegen

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/GriffinCanCode/APIForge/backend/internal/extract"
	"github.com/GriffinCanCode/APIForge/backend/internal/schema"
)

// postmanSchema is the Postman Collection v2.1 schema URL.
const postmanSchema = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"

// GeneratePostman renders a Postman Collection v2.1 with one request
// against the endpoint, status-code and response-time assertions, one
// presence assertion per required field, and a sample response body
// taken from the extracted record.
func GeneratePostman(fields []schema.Field, meta Meta, sample extract.Record) ([]byte, error) {
	sampleBody, err := marshalJSON(map[string]any{"data": sample})
	if err != nil {
		return nil, fmt.Errorf("failed to render sample body: %w", err)
	}

	requestURL := meta.BaseURL + meta.DataPath()

	doc := map[string]any{
		"info": map[string]any{
			"_postman_id": collectionID(meta),
			"name":        meta.DisplayTitle() + " API",
			"description": "Auto-generated collection for data extracted from " + meta.URL,
			"schema":      postmanSchema,
		},
		"item": []any{
			map[string]any{
				"name": "Get " + meta.DisplayTitle() + " data",
				"request": map[string]any{
					"method": "GET",
					"header": []any{},
					"url":    postmanURL(requestURL, meta),
				},
				"event": []any{
					map[string]any{
						"listen": "test",
						"script": map[string]any{
							"type": "text/javascript",
							"exec": testScript(fields),
						},
					},
				},
				"response": []any{
					map[string]any{
						"name":   "Sample response",
						"status": "OK",
						"code":   200,
						"header": []any{
							map[string]any{"key": "Content-Type", "value": "application/json"},
						},
						"body": string(sampleBody),
					},
				},
			},
		},
	}

	return marshalJSON(doc)
}

// collectionID derives a stable collection id from the endpoint, so
// regenerating the same slug yields the same collection identity.
func collectionID(meta Meta) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(meta.BaseURL+meta.DataPath())).String()
}

func postmanURL(raw string, meta Meta) map[string]any {
	u := map[string]any{
		"raw":  raw,
		"path": strings.Split(strings.TrimPrefix(meta.DataPath(), "/"), "/"),
	}
	if parsed, err := url.Parse(raw); err == nil && parsed.Host != "" {
		u["protocol"] = parsed.Scheme
		u["host"] = strings.Split(parsed.Host, ".")
	}
	return u
}

func testScript(fields []schema.Field) []string {
	lines := []string{
		`pm.test("Status code is 200", function () {`,
		`  pm.response.to.have.status(200);`,
		`});`,
		``,
		`pm.test("Response time is below 1000ms", function () {`,
		`  pm.expect(pm.response.responseTime).to.be.below(1000);`,
		`});`,
		``,
		`pm.test("Response has required fields", function () {`,
		`  var json = pm.response.json();`,
		`  pm.expect(json.data).to.be.an("object");`,
	}
	for _, f := range fields {
		if f.Required {
			lines = append(lines, fmt.Sprintf(`  pm.expect(json.data).to.have.property(%q);`, f.Name))
		}
	}
	lines = append(lines, `});`)
	return lines
}
