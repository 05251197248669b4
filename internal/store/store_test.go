package store

import (
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/APIForge/backend/internal/extract"
)

func newTestStore(t *testing.T, opts ...Option) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "cache.json"), nil, opts...)
	require.NoError(t, err)
	return s
}

func TestSetAndGet(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Set("slug-a", extract.Record{"title": "Hello"}, "https://example.com"))

	entry := s.Get("slug-a")
	require.NotNil(t, entry)
	assert.Equal(t, "slug-a", entry.Slug)
	assert.Equal(t, "https://example.com", entry.URL)
	assert.Equal(t, "Hello", entry.Data["title"])
	assert.False(t, entry.LastUpdated.IsZero())
}

func TestGetAbsent(t *testing.T) {
	s := newTestStore(t)
	assert.Nil(t, s.Get("nope"))
}

func TestGetIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Set("slug-a", extract.Record{}, "https://example.com"))

	first := s.Get("slug-a")
	time.Sleep(5 * time.Millisecond)
	second := s.Get("slug-a")

	assert.True(t, first.LastUpdated.Equal(second.LastUpdated))
}

func TestLastUpdatedStrictlyIncreases(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Set("slug-a", extract.Record{}, "https://example.com"))
	first := s.Get("slug-a").LastUpdated

	require.NoError(t, s.Set("slug-a", extract.Record{}, "https://example.com"))
	second := s.Get("slug-a").LastUpdated

	assert.True(t, second.After(first))
}

func TestTTLExpirationOnRead(t *testing.T) {
	current := time.Now()
	s := newTestStore(t, WithClock(func() time.Time { return current }))

	require.NoError(t, s.Set("slug-a", extract.Record{"k": "v"}, "https://example.com"))

	// Just under the TTL: still retrievable.
	current = current.Add(DefaultTTL - time.Second)
	require.NotNil(t, s.Get("slug-a"))

	// At the TTL boundary: expired, removed on read.
	current = current.Add(time.Second)
	assert.Nil(t, s.Get("slug-a"))
	assert.Equal(t, 0, s.Len())
}

func TestCleanup(t *testing.T) {
	current := time.Now()
	evicted := 0
	s := newTestStore(t,
		WithClock(func() time.Time { return current }),
		WithTTL(time.Hour),
		WithEvictionHook(func(n int) { evicted += n }),
	)

	require.NoError(t, s.Set("old-1", extract.Record{}, "https://a.example"))
	require.NoError(t, s.Set("old-2", extract.Record{}, "https://b.example"))

	current = current.Add(2 * time.Hour)
	require.NoError(t, s.Set("fresh", extract.Record{}, "https://c.example"))

	assert.Equal(t, 2, s.Cleanup())
	assert.Equal(t, 2, evicted)
	assert.Equal(t, 1, s.Len())
	assert.NotNil(t, s.Get("fresh"))
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Set("slug-a", extract.Record{}, "https://example.com"))

	assert.True(t, s.Delete("slug-a"))
	assert.False(t, s.Delete("slug-a"))
	assert.Nil(t, s.Get("slug-a"))
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	s1, err := NewFileStore(path, nil)
	require.NoError(t, err)
	require.NoError(t, s1.Set("slug-a", extract.Record{"title": "Hello", "items": []string{"a"}}, "https://example.com"))
	require.NoError(t, s1.Close())

	s2, err := NewFileStore(path, nil)
	require.NoError(t, err)

	entry := s2.Get("slug-a")
	require.NotNil(t, entry)
	assert.Equal(t, "https://example.com", entry.URL)
	assert.Equal(t, "Hello", entry.Data["title"])
}

func TestGenerateSlugShape(t *testing.T) {
	slug := GenerateSlug("https://example.com/page")

	re := regexp.MustCompile(`^example-com-page-[0-9a-z]+-[0-9a-z]{4}$`)
	assert.Regexp(t, re, slug)
	assert.LessOrEqual(t, len(slug), 50)
}

func TestGenerateSlugTruncatesLongURLs(t *testing.T) {
	slug := GenerateSlug("https://really-long-host.example.com/deeply/nested/path/segments/everywhere")
	parts := len(slug)
	assert.LessOrEqual(t, parts, 30+1+13+1+4)
}

func TestGenerateSlugUnique(t *testing.T) {
	url := "https://example.com/page"
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		slug := GenerateSlug(url)
		assert.False(t, seen[slug], "duplicate slug %q", slug)
		seen[slug] = true
	}
}

func TestGenerateSlugEmptyStem(t *testing.T) {
	slug := GenerateSlug("!!!")
	assert.Regexp(t, `^page-[0-9a-z]+-[0-9a-z]{4}$`, slug)
}
