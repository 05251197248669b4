// Package http contains the REST handlers for generation, data
// serving, refresh, and bundle download.
package http

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/APIForge/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/APIForge/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/APIForge/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/APIForge/backend/internal/pipeline"
	"github.com/GriffinCanCode/APIForge/backend/internal/refresh"
	"github.com/GriffinCanCode/APIForge/backend/internal/store"
)

// Handlers bundles the REST endpoints and their dependencies.
type Handlers struct {
	pipeline *pipeline.Pipeline
	store    store.Store
	metrics  *monitoring.Metrics
	logger   *logging.Logger
	refresh  config.RefreshConfig
}

// NewHandlers creates the REST handlers.
func NewHandlers(p *pipeline.Pipeline, st store.Store, metrics *monitoring.Metrics, logger *logging.Logger, refreshCfg config.RefreshConfig) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		pipeline: p,
		store:    st,
		metrics:  metrics,
		logger:   logger,
		refresh:  refreshCfg,
	}
}

// Health reports service liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "apiforge",
		"entries": h.store.Len(),
	})
}

// Generate runs the generation pipeline, streaming newline-delimited
// JSON events. The run is detached from the request context so a
// client that disconnects mid-stream still gets a cached endpoint.
func (h *Handlers) Generate(c *gin.Context) {
	var req pipeline.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": "The body must be JSON with a url and a selectors array.",
		})
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")
	c.Writer.WriteHeader(http.StatusOK)

	ctx := context.WithoutCancel(c.Request.Context())
	_ = h.pipeline.Run(ctx, req, func(e pipeline.Event) {
		line, err := sonic.ConfigStd.Marshal(e)
		if err != nil {
			h.logger.Error("failed to encode event", zap.Error(err))
			return
		}
		if _, err := c.Writer.Write(append(line, '\n')); err != nil {
			// Client gone; keep running so the endpoint still materializes.
			return
		}
		c.Writer.Flush()
	})
}

// Data serves the cached record for a slug.
func (h *Handlers) Data(c *gin.Context) {
	slug := c.Param("slug")

	entry := h.store.Get(slug)
	if h.metrics != nil {
		h.metrics.RecordCacheRead(entry != nil)
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Data not found",
			"message": "No cached data exists for this slug; it may have expired. Generate the endpoint again.",
		})
		return
	}

	now := time.Now()
	c.Header("Cache-Control", "public, max-age=60")
	c.JSON(http.StatusOK, gin.H{
		"data": entry.Data,
		"meta": gin.H{
			"slug":        entry.Slug,
			"url":         entry.URL,
			"lastUpdated": entry.LastUpdated.UTC().Format(time.RFC3339),
			"cacheAge":    int(entry.Age(now).Seconds()),
			"generatedAt": now.UTC().Format(time.RFC3339),
		},
	})
}

// Refresh gates re-scrape requests. Token first: a bad token is 401
// even for a slug that does not exist.
func (h *Handlers) Refresh(c *gin.Context) {
	slug := c.Query("slug")
	token := c.Query("token")

	if slug == "" || !refresh.Verify(slug, h.refresh.Secret, token) {
		h.recordRefresh("unauthorized")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Invalid refresh token",
			"message": "The token does not match this slug. Use the refreshUrl returned when the endpoint was generated.",
		})
		return
	}

	entry := h.store.Get(slug)
	if entry == nil {
		h.recordRefresh("not_found")
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Data not found",
			"message": "No cached data exists for this slug; it may have expired. Generate the endpoint again.",
		})
		return
	}

	lastUpdated := entry.LastUpdated.UTC().Format(time.RFC3339)
	if entry.Age(time.Now()) < h.refresh.MinInterval {
		h.recordRefresh("fresh")
		c.JSON(http.StatusOK, gin.H{
			"status":      "fresh",
			"lastUpdated": lastUpdated,
			"data":        entry.Data,
		})
		return
	}

	// Extraction rules are not retained after generation, so the page
	// cannot be re-scraped. Serve what we have and say so.
	h.recordRefresh("unsupported")
	c.JSON(http.StatusNotImplemented, gin.H{
		"error":       "Refresh is not supported: extraction rules are not retained",
		"message":     "Re-extraction is impossible for an existing slug. Regenerate the endpoint from scratch to get fresh data.",
		"lastUpdated": lastUpdated,
		"data":        entry.Data,
	})
}

// Download serves the generated bundle archive.
func (h *Handlers) Download(c *gin.Context) {
	slug := c.Param("slug")

	if h.store.Get(slug) == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Data not found",
			"message": "No cached data exists for this slug; it may have expired. Generate the endpoint again.",
		})
		return
	}

	path := h.pipeline.ArchivePath(slug)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Bundle not found",
			"message": "The archive for this slug is missing on disk. Generate the endpoint again.",
		})
		return
	}
	c.FileAttachment(path, slug+".zip")
}

func (h *Handlers) recordRefresh(outcome string) {
	if h.metrics != nil {
		h.metrics.RecordRefresh(outcome)
	}
}
