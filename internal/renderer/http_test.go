package renderer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Timeout:    5 * time.Second,
		Retries:    2,
		RetryDelay: 10 * time.Millisecond,
		UserAgent:  "test-agent",
	}
}

func TestRenderReturnsHTMLAndTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<!DOCTYPE html><html><head><title>My Page</title></head><body><h1>Hi</h1></body></html>"))
	}))
	defer srv.Close()

	page, err := NewHTTP(testConfig(), nil).Render(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "My Page", page.Title)
	assert.Contains(t, page.HTML, "<h1>Hi</h1>")
}

func TestRenderTitleFallsBackToOpenGraph(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<!DOCTYPE html><html><head><meta property="og:title" content="OG Title"></head><body></body></html>`))
	}))
	defer srv.Close()

	page, err := NewHTTP(testConfig(), nil).Render(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "OG Title", page.Title)
}

func TestRenderRetriesNavigationFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("<!DOCTYPE html><html><head><title>Recovered</title></head><body></body></html>"))
	}))
	defer srv.Close()

	page, err := NewHTTP(testConfig(), nil).Render(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Recovered", page.Title)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRenderSurfacesFatalAfterRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTP(testConfig(), nil).Render(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestRenderRejectsInvalidURL(t *testing.T) {
	r := NewHTTP(testConfig(), nil)

	for _, bad := range []string{"", "not a url", "ftp://example.com", "/relative/path"} {
		_, err := r.Render(context.Background(), bad)
		assert.ErrorIs(t, err, ErrInvalidURL, "url %q", bad)
	}
}

func TestRenderRejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 binary content here"))
	}))
	defer srv.Close()

	_, err := NewHTTP(testConfig(), nil).Render(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://example.com/page"))
	assert.NoError(t, ValidateURL("http://localhost:8080"))
	assert.Error(t, ValidateURL("javascript:alert(1)"))
}
