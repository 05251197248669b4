package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/APIForge/backend/internal/extract"
	"github.com/GriffinCanCode/APIForge/backend/internal/infrastructure/logging"
)

// FileStore is a file-durable Store. All entries live in memory; every
// mutation rewrites the whole file (write-through), trading throughput
// for crash-safety. It assumes a single writer process.
type FileStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry

	path   string
	ttl    time.Duration
	logger *logging.Logger

	// now is swappable for tests.
	now func() time.Time

	// onEvict is notified with the number of expired entries removed.
	onEvict func(count int)
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithTTL overrides the default 7-day TTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *FileStore) { s.ttl = ttl }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *FileStore) { s.now = now }
}

// WithEvictionHook registers a callback invoked when expired entries
// are removed, used to feed cache metrics.
func WithEvictionHook(fn func(count int)) Option {
	return func(s *FileStore) { s.onEvict = fn }
}

// NewFileStore opens (or creates) a file-backed store at path.
func NewFileStore(path string, logger *logging.Logger, opts ...Option) (*FileStore, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &FileStore{
		entries: make(map[string]*Entry),
		path:    path,
		ttl:     DefaultTTL,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Set creates or replaces the entry for slug and persists immediately.
// LastUpdated strictly increases across successive sets of one slug.
func (s *FileStore) Set(slug string, data extract.Record, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if prev, ok := s.entries[slug]; ok && !now.After(prev.LastUpdated) {
		now = prev.LastUpdated.Add(time.Millisecond)
	}

	s.entries[slug] = &Entry{
		Slug:        slug,
		Data:        data,
		URL:         url,
		LastUpdated: now,
	}
	return s.persistLocked()
}

// Get returns the live entry for slug. Expiration is enforced here, on
// read: a stale entry is deleted and nil is returned.
func (s *FileStore) Get(slug string) *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[slug]
	if !ok {
		return nil
	}

	if entry.Age(s.now()) >= s.ttl {
		delete(s.entries, slug)
		if err := s.persistLocked(); err != nil {
			s.logger.Error("failed to persist after expiration", zap.Error(err))
		}
		if s.onEvict != nil {
			s.onEvict(1)
		}
		return nil
	}

	copied := *entry
	return &copied
}

// Delete removes the entry for slug.
func (s *FileStore) Delete(slug string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[slug]; !ok {
		return false
	}
	delete(s.entries, slug)
	if err := s.persistLocked(); err != nil {
		s.logger.Error("failed to persist after delete", zap.Error(err))
	}
	return true
}

// Cleanup removes every expired entry and returns how many were removed.
func (s *FileStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for slug, entry := range s.entries {
		if entry.Age(now) >= s.ttl {
			delete(s.entries, slug)
			removed++
		}
	}

	if removed > 0 {
		if err := s.persistLocked(); err != nil {
			s.logger.Error("failed to persist after cleanup", zap.Error(err))
		}
		if s.onEvict != nil {
			s.onEvict(removed)
		}
	}
	return removed
}

// Len returns the number of entries currently held, expired included.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// StartSweeper runs Cleanup on a fixed interval until ctx is canceled.
// The sweep complements the lazy check in Get; it is owned and started
// explicitly rather than as a package side effect.
func (s *FileStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := s.Cleanup(); removed > 0 {
					s.logger.Info("sweep removed expired entries", zap.Int("count", removed))
				}
			}
		}
	}()
}

// Close persists any state and releases the store.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// load reads the persisted entries at startup. A missing file is a
// fresh store, not an error.
func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read store file: %w", err)
	}

	entries := make(map[string]*Entry)
	if err := sonic.ConfigStd.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse store file: %w", err)
	}

	s.entries = entries
	s.logger.Info("loaded cache entries", zap.Int("count", len(entries)))
	return nil
}

// persistLocked serializes the full store to disk. Callers must hold
// the write lock. The write goes through a temp file and rename so a
// crash mid-write cannot corrupt the durable copy.
func (s *FileStore) persistLocked() error {
	data, err := sonic.ConfigStd.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize store: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
