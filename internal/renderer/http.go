package renderer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/APIForge/backend/internal/extract"
	"github.com/GriffinCanCode/APIForge/backend/internal/infrastructure/logging"
)

// Config defines HTTP renderer behavior.
type Config struct {
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	UserAgent  string
}

// DefaultConfig returns the standard renderer configuration: a bounded
// number of retries with a short fixed delay.
func DefaultConfig() Config {
	return Config{
		Timeout:    30 * time.Second,
		Retries:    2,
		RetryDelay: 2 * time.Second,
		UserAgent:  "APIForge/1.0",
	}
}

// HTTP fetches pages over plain HTTP with bounded retries. Navigation
// failures are retried; everything after the response body arrives is
// not.
type HTTP struct {
	client *resty.Client
	logger *logging.Logger
}

// NewHTTP creates an HTTP renderer.
func NewHTTP(cfg Config, logger *logging.Logger) *HTTP {
	if logger == nil {
		logger = logging.NewNop()
	}

	// Retryable transport handles connection-level flakiness; resty
	// adds the fixed-delay navigation retries on top.
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.Retries
	retryClient.RetryWaitMin = cfg.RetryDelay
	retryClient.RetryWaitMax = cfg.RetryDelay
	retryClient.Logger = nil

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(cfg.RetryDelay).
		SetRetryMaxWaitTime(cfg.RetryDelay).
		SetHeader("User-Agent", cfg.UserAgent).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() >= 500
		})
	client.SetTransport(retryClient.HTTPClient.Transport)

	return &HTTP{client: client, logger: logger}
}

// Render fetches the URL and returns decoded HTML plus the page title.
func (r *HTTP) Render(ctx context.Context, pageURL string) (*Page, error) {
	if err := ValidateURL(pageURL); err != nil {
		return nil, err
	}

	resp, err := r.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("navigation failed: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("navigation failed: status %d", resp.StatusCode())
	}

	body := resp.Body()
	if mtype := mimetype.Detect(body); !isHTML(mtype) {
		return nil, fmt.Errorf("unsupported content type %q", mtype.String())
	}

	htmlStr := string(body)
	title := extractTitle(htmlStr)

	r.logger.Debug("rendered page",
		zap.String("url", pageURL),
		zap.Int("bytes", len(body)),
		zap.String("title", title),
	)

	return &Page{
		HTML:     htmlStr,
		Title:    title,
		FinalURL: resp.RawResponse.Request.URL.String(),
	}, nil
}

func isHTML(mtype *mimetype.MIME) bool {
	return mtype.Is("text/html") ||
		mtype.Is("application/xhtml+xml") ||
		mtype.Is("text/plain") // small fixtures without doctype sniff as text
}

// extractTitle pulls the document title, falling back to og:title.
func extractTitle(htmlStr string) string {
	doc, err := extract.LoadHTML(htmlStr)
	if err != nil {
		return ""
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = doc.Find("meta[property='og:title']").AttrOr("content", "")
	}
	return title
}
