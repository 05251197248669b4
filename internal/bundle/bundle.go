// Package bundle packs the generated artifacts and sample data into a
// single downloadable zip archive. Bundling is a pure function of its
// inputs; it never touches the network or the cache.
package bundle

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/microcosm-cc/bluemonday"

	"github.com/GriffinCanCode/APIForge/backend/internal/codegen"
)

// Archive file names.
const (
	FileSnapshot   = "index.html"
	FileOpenAPI    = "openapi.json"
	FileOpenAPIYML = "openapi.yaml"
	FileSDK        = "sdk.ts"
	FilePostman    = "postman_collection.json"
	FileSample     = "sample-data.json"
	FileReadme     = "README.md"
)

var snapshotPolicy = newSnapshotPolicy()

func newSnapshotPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "id").Globally()
	p.AllowImages()
	p.AllowLists()
	p.AllowTables()
	return p
}

// Bundle builds the downloadable archive for one generated endpoint.
// The page snapshot is optional; when present it is sanitized before
// being included.
func Bundle(slug, title string, snapshotHTML string, artifacts *codegen.Artifacts, sampleData []byte) ([]byte, error) {
	var buf bytes.Buffer

	w := zip.NewWriter(&buf)
	w.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	files := []struct {
		name string
		data []byte
	}{
		{FileOpenAPI, artifacts.OpenAPI},
		{FileOpenAPIYML, artifacts.OpenAPIYAML},
		{FileSDK, artifacts.SDK},
		{FilePostman, artifacts.Postman},
		{FileSample, sampleData},
		{FileReadme, readme(slug, title)},
	}
	if snapshotHTML != "" {
		files = append(files, struct {
			name string
			data []byte
		}{FileSnapshot, []byte(snapshotPolicy.Sanitize(snapshotHTML))})
	}

	for _, f := range files {
		entry, err := w.Create(f.name)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s to archive: %w", f.name, err)
		}
		if _, err := entry.Write(f.data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

func readme(slug, title string) []byte {
	if title == "" {
		title = slug
	}
	return []byte(fmt.Sprintf(`# %s

Generated API bundle.

- %s: OpenAPI 3.0 document (also available as %s)
- %s: TypeScript client SDK
- %s: Postman collection with basic assertions
- %s: sample of the extracted data

The live endpoint serves the cached record at /api/data/%s.
`, title, FileOpenAPI, FileOpenAPIYML, FileSDK, FilePostman, FileSample, slug))
}
