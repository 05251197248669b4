// Package pipeline orchestrates a full generation run: render the
// page, extract the record, infer the schema, generate artifacts,
// persist the record, and write the downloadable bundle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/APIForge/backend/internal/bundle"
	"github.com/GriffinCanCode/APIForge/backend/internal/codegen"
	"github.com/GriffinCanCode/APIForge/backend/internal/extract"
	"github.com/GriffinCanCode/APIForge/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/APIForge/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/APIForge/backend/internal/refresh"
	"github.com/GriffinCanCode/APIForge/backend/internal/renderer"
	"github.com/GriffinCanCode/APIForge/backend/internal/schema"
	"github.com/GriffinCanCode/APIForge/backend/internal/store"
)

// ErrNoSelectors marks a request without extraction rules.
var ErrNoSelectors = errors.New("no selectors provided")

// defaultChunkSize is the preview HTML chunk size.
const defaultChunkSize = 64 * 1024

// ModePreview streams the rendered page in chunks and stops; no
// extraction, artifacts, or caching.
const ModePreview = "preview"

// Request is one generation request. RefreshRate is accepted for
// compatibility but unused: entries cannot be re-extracted after
// generation, so there is no schedule to attach it to.
type Request struct {
	URL         string                 `json:"url"`
	Selectors   []extract.SelectorRule `json:"selectors"`
	RefreshRate int                    `json:"refreshRate,omitempty"`
	Mode        string                 `json:"mode,omitempty"`
}

// Config carries the pipeline's environment.
type Config struct {
	BaseURL          string
	RefreshSecret    string
	ArtifactsDir     string
	PreviewChunkSize int
}

// Pipeline runs generation requests.
type Pipeline struct {
	renderer renderer.Renderer
	engine   *extract.Engine
	store    store.Store
	metrics  *monitoring.Metrics
	logger   *logging.Logger
	cfg      Config
}

// New creates a pipeline.
func New(r renderer.Renderer, st store.Store, metrics *monitoring.Metrics, logger *logging.Logger, cfg Config) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.PreviewChunkSize <= 0 {
		cfg.PreviewChunkSize = defaultChunkSize
	}
	return &Pipeline{
		renderer: r,
		engine:   extract.NewEngine(logger),
		store:    st,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// Run executes one generation request, emitting progress events as it
// goes. Preview runs end after the page chunks; full runs always end
// with exactly one success or error event, and the returned error
// mirrors the terminal error event.
func (p *Pipeline) Run(ctx context.Context, req Request, emit Emitter) error {
	if req.Mode == ModePreview {
		return p.runPreview(ctx, req, emit)
	}

	res, err := p.run(ctx, req, emit)
	if err != nil {
		p.recordGeneration("error")
		p.logger.Warn("generation failed", zap.String("url", req.URL), zap.Error(err))
		emit(errorEvent(err.Error()))
		return err
	}

	p.recordGeneration("success")
	p.logger.Info("generation complete",
		zap.String("url", req.URL),
		zap.String("slug", res.Slug),
	)
	emit(successEvent(res))
	return nil
}

func (p *Pipeline) run(ctx context.Context, req Request, emit Emitter) (*Result, error) {
	emit(progressEvent("validate", "Validating request", 5))
	if err := renderer.ValidateURL(req.URL); err != nil {
		return nil, err
	}
	if len(req.Selectors) == 0 {
		return nil, ErrNoSelectors
	}

	emit(progressEvent("render", "Fetching page", 15))
	page, err := p.render(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	emit(progressEvent("extract", "Extracting data", 45))
	var record extract.Record
	_ = p.stage("extract", func() error {
		record = p.engine.Extract(page.HTML, req.Selectors)
		return nil
	})
	if record.IsEmpty() {
		emit(progressEvent("extract", "No data matched the provided selectors", 50))
	}

	emit(progressEvent("schema", "Inferring schema", 60))
	fields := schema.Infer(req.Selectors, record)

	slug := store.GenerateSlug(req.URL)
	meta := codegen.Meta{
		Slug:    slug,
		URL:     page.FinalURL,
		Title:   page.Title,
		BaseURL: p.cfg.BaseURL,
	}

	emit(progressEvent("codegen", "Generating artifacts", 75))
	var artifacts *codegen.Artifacts
	err = p.stage("codegen", func() error {
		var err error
		artifacts, err = codegen.Generate(fields, meta, record)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("artifact generation failed: %w", err)
	}

	emit(progressEvent("store", "Caching data", 85))
	if err := p.store.Set(slug, record, req.URL); err != nil {
		return nil, fmt.Errorf("cache write failed: %w", err)
	}
	if p.metrics != nil {
		p.metrics.SetCacheEntries(p.store.Len())
	}

	emit(progressEvent("bundle", "Packaging download", 95))
	sampleJSON, err := sonic.ConfigStd.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode sample data: %w", err)
	}
	err = p.stage("bundle", func() error {
		archive, err := bundle.Bundle(slug, page.Title, page.HTML, artifacts, sampleJSON)
		if err != nil {
			return err
		}
		return p.writeArchive(slug, archive)
	})
	if err != nil {
		return nil, fmt.Errorf("bundling failed: %w", err)
	}

	return &Result{
		Slug:        slug,
		EndpointURL: p.cfg.BaseURL + meta.DataPath(),
		SampleData:  record,
		DownloadURL: p.cfg.BaseURL + "/api/download/" + slug,
		RefreshURL:  p.cfg.BaseURL + "/api/refresh?slug=" + slug + "&token=" + refresh.Token(slug, p.cfg.RefreshSecret),
		Files: Files{
			OpenAPI: string(artifacts.OpenAPI),
			SDK:     string(artifacts.SDK),
			Postman: string(artifacts.Postman),
		},
	}, nil
}

// runPreview fetches the page and streams its content in bounded
// chunks. No selectors are required and nothing is persisted; the
// stream ends after html_end.
func (p *Pipeline) runPreview(ctx context.Context, req Request, emit Emitter) error {
	if err := renderer.ValidateURL(req.URL); err != nil {
		p.recordGeneration("error")
		emit(errorEvent(err.Error()))
		return err
	}

	page, err := p.render(ctx, req.URL)
	if err != nil {
		p.recordGeneration("error")
		p.logger.Warn("preview failed", zap.String("url", req.URL), zap.Error(err))
		emit(errorEvent(err.Error()))
		return err
	}

	p.recordGeneration(ModePreview)
	p.streamHTML(page, emit)
	return nil
}

func (p *Pipeline) render(ctx context.Context, pageURL string) (*renderer.Page, error) {
	var page *renderer.Page
	err := p.stage("render", func() error {
		var err error
		page, err = p.renderer.Render(ctx, pageURL)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("render failed: %w", err)
	}
	return page, nil
}

// streamHTML emits the rendered page in bounded chunks so large pages
// do not produce one oversized frame.
func (p *Pipeline) streamHTML(page *renderer.Page, emit Emitter) {
	size := p.cfg.PreviewChunkSize
	total := (len(page.HTML) + size - 1) / size

	emit(htmlStartEvent(total))
	for i := 0; i < total; i++ {
		start := i * size
		end := start + size
		if end > len(page.HTML) {
			end = len(page.HTML)
		}
		emit(htmlChunkEvent(page.HTML[start:end], i))
	}
	emit(htmlEndEvent(page.Title))
}

// ArchivePath returns where a slug's bundle lives on disk.
func (p *Pipeline) ArchivePath(slug string) string {
	return filepath.Join(p.cfg.ArtifactsDir, slug+".zip")
}

func (p *Pipeline) writeArchive(slug string, archive []byte) error {
	if err := os.MkdirAll(p.cfg.ArtifactsDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.ArchivePath(slug), archive, 0o644)
}

func (p *Pipeline) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	if p.metrics != nil {
		p.metrics.RecordStage(name, time.Since(start))
	}
	return err
}

func (p *Pipeline) recordGeneration(outcome string) {
	if p.metrics != nil {
		p.metrics.RecordGeneration(outcome)
	}
}
