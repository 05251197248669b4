// Package renderer fetches a URL and returns fully-resolved HTML plus
// the page title. The rest of the pipeline treats it as an opaque
// boundary: swapping in a headless-browser implementation changes
// nothing downstream.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// ErrInvalidURL marks client input rejected before any network call.
var ErrInvalidURL = errors.New("invalid url")

// Page is a rendered page.
type Page struct {
	HTML     string
	Title    string
	FinalURL string
}

// Renderer resolves a URL into a rendered page.
type Renderer interface {
	Render(ctx context.Context, pageURL string) (*Page, error)
}

// Func adapts a function to the Renderer interface.
type Func func(ctx context.Context, pageURL string) (*Page, error)

// Render implements Renderer.
func (f Func) Render(ctx context.Context, pageURL string) (*Page, error) {
	return f(ctx, pageURL)
}

// ValidateURL rejects anything that is not an absolute http(s) URL.
func ValidateURL(pageURL string) error {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}
