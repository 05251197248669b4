package bundle

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/APIForge/backend/internal/codegen"
)

func testArtifacts() *codegen.Artifacts {
	return &codegen.Artifacts{
		OpenAPI:     []byte(`{"openapi":"3.0.0"}`),
		OpenAPIYAML: []byte("openapi: 3.0.0\n"),
		SDK:         []byte("export interface X {}\n"),
		Postman:     []byte(`{"info":{}}`),
	}
}

func archiveContents(t *testing.T, data []byte) map[string]string {
	t.Helper()

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	contents := make(map[string]string, len(r.File))
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		contents[f.Name] = string(body)
	}
	return contents
}

func TestBundleContainsAllArtifacts(t *testing.T) {
	data, err := Bundle("test-slug", "Test Page",
		"<html><body><h1>Hello</h1></body></html>",
		testArtifacts(), []byte(`{"title":"Hello"}`))
	require.NoError(t, err)

	contents := archiveContents(t, data)
	assert.Contains(t, contents, FileSnapshot)
	assert.Contains(t, contents, FileOpenAPI)
	assert.Contains(t, contents, FileOpenAPIYML)
	assert.Contains(t, contents, FileSDK)
	assert.Contains(t, contents, FilePostman)
	assert.Contains(t, contents, FileSample)
	assert.Contains(t, contents, FileReadme)

	assert.Equal(t, `{"title":"Hello"}`, contents[FileSample])
	assert.Contains(t, contents[FileReadme], "test-slug")
}

func TestBundleOmitsMissingSnapshot(t *testing.T) {
	data, err := Bundle("test-slug", "Test Page", "", testArtifacts(), []byte(`{}`))
	require.NoError(t, err)

	contents := archiveContents(t, data)
	assert.NotContains(t, contents, FileSnapshot)
	assert.Contains(t, contents, FileOpenAPI)
}

func TestBundleSanitizesSnapshot(t *testing.T) {
	data, err := Bundle("test-slug", "Test Page",
		`<html><body><h1 class="big">Hi</h1><script>alert(1)</script></body></html>`,
		testArtifacts(), []byte(`{}`))
	require.NoError(t, err)

	snapshot := archiveContents(t, data)[FileSnapshot]
	assert.Contains(t, snapshot, "Hi")
	assert.NotContains(t, snapshot, "<script>")
}

func TestBundleSnapshotKeepsStructuralMarkup(t *testing.T) {
	data, err := Bundle("test-slug", "Test Page",
		`<div class="grid" id="main"><img src="https://example.com/a.png" alt="a"><ul><li>x</li></ul></div>`,
		testArtifacts(), []byte(`{}`))
	require.NoError(t, err)

	snapshot := archiveContents(t, data)[FileSnapshot]
	assert.Contains(t, snapshot, `class="grid"`)
	assert.Contains(t, snapshot, `id="main"`)
	assert.Contains(t, snapshot, "<img")
	assert.Contains(t, snapshot, "<li>x</li>")
}

func TestBundlePureFunction(t *testing.T) {
	first, err := Bundle("slug", "T", "", testArtifacts(), []byte(`{}`))
	require.NoError(t, err)
	second, err := Bundle("slug", "T", "", testArtifacts(), []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
