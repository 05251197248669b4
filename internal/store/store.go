// Package store provides the slug-addressed cache of extraction
// records: TTL-based expiration enforced lazily on read, an explicitly
// owned background sweep, and write-through file persistence.
package store

import (
	"context"
	"time"

	"github.com/GriffinCanCode/APIForge/backend/internal/extract"
)

// DefaultTTL is how long an entry stays servable after its last update.
const DefaultTTL = 7 * 24 * time.Hour

// Entry is one cached extraction result. Entries are replaced whole on
// Set; the slug never changes for the entry's lifetime.
type Entry struct {
	Slug        string         `json:"slug"`
	Data        extract.Record `json:"json"`
	URL         string         `json:"url"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

// Age returns how long ago the entry was last updated.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.LastUpdated)
}

// Store is the cache contract used by the serving layer and pipeline.
type Store interface {
	// Set creates or replaces the entry for slug.
	Set(slug string, data extract.Record, url string) error

	// Get returns the live entry for slug, or nil if it is absent or
	// expired. Expired entries are deleted on read. Get never mutates
	// LastUpdated.
	Get(slug string) *Entry

	// Delete removes the entry and reports whether it existed.
	Delete(slug string) bool

	// Cleanup removes all expired entries and returns how many.
	Cleanup() int

	// Len returns the number of entries, expired ones included.
	Len() int

	// StartSweeper runs periodic Cleanup until ctx is canceled.
	StartSweeper(ctx context.Context, interval time.Duration)

	// Close flushes and releases the store.
	Close() error
}
