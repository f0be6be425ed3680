package checksum

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mvp-joe/codescope/internal/extract"
)

// FormatVersion is the schema version written to the cache file.
const FormatVersion = "1.0.0"

// ErrUnusable is returned by Load when an existing cache file could not be
// used. The cache is empty afterwards and the run continues cold.
var ErrUnusable = errors.New("checksum cache unusable")

// Entry is the stored state of one processed file.
type Entry struct {
	ModTime     time.Time       `json:"mod_time"`
	Fingerprint string          `json:"fingerprint"`
	Summary     *extract.Record `json:"summary,omitempty"`
}

// cacheFile is the on-disk layout.
// Stored at <project>/.file_checksums.json by default.
type cacheFile struct {
	Version     string            `json:"version"`
	RunID       string            `json:"run_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Algorithm   Algorithm         `json:"algorithm"`
	Files       map[string]*Entry `json:"files"`
}

// Options configures a Cache.
type Options struct {
	Path           string    // Cache file location
	Algorithm      Algorithm // Fingerprint function
	Strict         bool      // Skip only on fingerprint equality
	RequireSummary bool      // Entries without a stored summary never skip
	RunID          string    // Stamped on the file by Save
}

// Cache maps relative paths to their last processed state.
// All methods are safe for concurrent use; callers must not dispatch the
// same path to two workers at once.
type Cache struct {
	mu      sync.Mutex
	opts    Options
	entries map[string]*Entry
}

// New creates an empty cache. Call Load to read the persisted state.
func New(opts Options) *Cache {
	if opts.Algorithm == "" {
		opts.Algorithm = SHA256
	}
	return &Cache{
		opts:    opts,
		entries: make(map[string]*Entry),
	}
}

// Path returns the cache file location.
func (c *Cache) Path() string {
	return c.opts.Path
}

// Strict reports whether skip decisions require a fingerprint match.
func (c *Cache) Strict() bool {
	return c.opts.Strict
}

// Load reads the cache file. A missing file is a normal cold start and
// returns nil. An unreadable or corrupt file, or one written with another
// algorithm, leaves the cache empty and returns an error wrapping
// ErrUnusable that callers report as a warning.
func (c *Cache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Entry)

	data, err := os.ReadFile(c.opts.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: failed to read %s: %v", ErrUnusable, c.opts.Path, err)
	}

	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w: failed to parse %s: %v", ErrUnusable, c.opts.Path, err)
	}

	if f.Algorithm != "" && f.Algorithm != c.opts.Algorithm {
		return fmt.Errorf("%w: %s was written with %s, configured %s", ErrUnusable, c.opts.Path, f.Algorithm, c.opts.Algorithm)
	}

	for path, entry := range f.Files {
		if entry != nil {
			c.entries[path] = entry
		}
	}
	return nil
}

// Save writes the cache file using atomic write (temp + rename).
func (c *Cache) Save() error {
	c.mu.Lock()
	f := cacheFile{
		Version:     FormatVersion,
		RunID:       c.opts.RunID,
		GeneratedAt: time.Now().UTC(),
		Algorithm:   c.opts.Algorithm,
		Files:       c.entries,
	}
	data, err := json.MarshalIndent(f, "", "  ")
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal checksum cache: %w", err)
	}

	if dir := filepath.Dir(c.opts.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	tmpPath := c.opts.Path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp checksum cache: %w", err)
	}
	if err := os.Rename(tmpPath, c.opts.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename checksum cache: %w", err)
	}
	return nil
}

// ShouldSkip is the timestamp-only check: it reports whether an entry for
// path exists with exactly modTime. Strict caches never skip here, since
// only a fingerprint comparison licenses skipping in strict mode.
func (c *Cache) ShouldSkip(path string, modTime time.Time) bool {
	if c.opts.Strict {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[path]
	if !ok || !c.usable(entry) {
		return false
	}
	return entry.ModTime.Equal(modTime)
}

// ShouldSkipContent fingerprints content and reports whether it matches the
// stored fingerprint. On a match with a drifted modTime the stored time is
// refreshed. The computed fingerprint is returned for RecordProcessed.
// Timestamp-mode caches fall back to ShouldSkip semantics.
func (c *Cache) ShouldSkipContent(path string, modTime time.Time, content []byte) (bool, string) {
	fingerprint := c.opts.Algorithm.Sum(content)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[path]
	if !ok || !c.usable(entry) {
		return false, fingerprint
	}
	if !c.opts.Strict {
		return entry.ModTime.Equal(modTime), fingerprint
	}
	if entry.Fingerprint != fingerprint {
		return false, fingerprint
	}
	if !entry.ModTime.Equal(modTime) {
		entry.ModTime = modTime
	}
	return true, fingerprint
}

// Fingerprint computes the configured fingerprint of content.
func (c *Cache) Fingerprint(content []byte) string {
	return c.opts.Algorithm.Sum(content)
}

// Lookup returns a copy of the entry for path.
func (c *Cache) Lookup(path string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[path]
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// RecordProcessed stores the state of a successfully processed file.
func (c *Cache) RecordProcessed(path string, modTime time.Time, fingerprint string, summary *extract.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = &Entry{
		ModTime:     modTime,
		Fingerprint: fingerprint,
		Summary:     summary,
	}
}

// Prune removes every entry whose path is not in keep and returns how many
// were removed.
func (c *Cache) Prune(keep map[string]struct{}) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for path := range c.entries {
		if _, ok := keep[path]; !ok {
			delete(c.entries, path)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) usable(entry *Entry) bool {
	return !c.opts.RequireSummary || entry.Summary != nil
}

// Remove deletes the cache file at path. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove checksum cache: %w", err)
	}
	return nil
}
