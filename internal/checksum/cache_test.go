package checksum

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mvp-joe/codescope/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Cache:
// - Missing file loads as empty without error
// - Save then Load round-trips entries, summaries and algorithm
// - Corrupt file and algorithm mismatch load as empty with ErrUnusable
// - Timestamp mode: skip iff stored mtime equals current mtime
// - Timestamp mode misses a content change with unchanged mtime (accepted)
// - Strict mode: mtime drift with same content skips and refreshes mtime
// - Strict mode: changed content with unchanged mtime is never skipped
// - RequireSummary: entries without a stored summary never skip
// - Prune removes entries outside the keep set
// - Concurrent record/skip calls on distinct paths are race-free
// - Fingerprint algorithms produce stable, distinct encodings
// - Stat reports file metadata without loading; missing and corrupt files error

func newTestCache(t *testing.T, strict bool) *Cache {
	t.Helper()
	return New(Options{
		Path:   filepath.Join(t.TempDir(), ".file_checksums.json"),
		Strict: strict,
		RunID:  "run-1",
	})
}

func TestCache_LoadMissingFile(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, true)
	require.NoError(t, c.Load())
	assert.Equal(t, 0, c.Len())
}

func TestCache_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "cache.json")
	mod := time.Date(2024, 5, 1, 12, 30, 0, 123456789, time.UTC)
	rec := extract.Extract("a.js", []byte("function a() {}\n"), extract.ScriptFamily{})

	c := New(Options{Path: path, Strict: true, Algorithm: XXH3, RunID: "abc"})
	c.RecordProcessed("src/a.js", mod, c.Fingerprint([]byte("x")), &rec)
	c.RecordProcessed("src/b.js", mod, c.Fingerprint([]byte("y")), nil)
	require.NoError(t, c.Save())

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	loaded := New(Options{Path: path, Strict: true, Algorithm: XXH3})
	require.NoError(t, loaded.Load())
	assert.Equal(t, 2, loaded.Len())

	entry, ok := loaded.Lookup("src/a.js")
	require.True(t, ok)
	assert.True(t, entry.ModTime.Equal(mod))
	assert.Equal(t, XXH3.Sum([]byte("x")), entry.Fingerprint)
	require.NotNil(t, entry.Summary)
	assert.Equal(t, []string{"a"}, entry.Summary.Functions)
}

func TestCache_CorruptFile(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, true)
	require.NoError(t, os.WriteFile(c.Path(), []byte("{not json"), 0644))

	err := c.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnusable)
	assert.Equal(t, 0, c.Len())

	// Cache remains usable after a failed load
	c.RecordProcessed("a.js", time.Now(), "fp", nil)
	require.NoError(t, c.Save())
}

func TestCache_AlgorithmMismatch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.json")
	c := New(Options{Path: path, Algorithm: SHA256})
	c.RecordProcessed("a.js", time.Now(), "fp", nil)
	require.NoError(t, c.Save())

	other := New(Options{Path: path, Algorithm: XXH3})
	err := other.Load()
	assert.ErrorIs(t, err, ErrUnusable)
	assert.Equal(t, 0, other.Len())
}

func TestCache_TimestampMode(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, false)
	mod := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	content := []byte("const a = 1;\n")

	assert.False(t, c.ShouldSkip("a.js", mod), "unknown path is never skipped")

	c.RecordProcessed("a.js", mod, c.Fingerprint(content), nil)
	assert.True(t, c.ShouldSkip("a.js", mod))
	assert.False(t, c.ShouldSkip("a.js", mod.Add(time.Second)))

	// Content changed without the filesystem reporting a new mtime:
	// timestamp mode is allowed to miss it.
	skip, _ := c.ShouldSkipContent("a.js", mod, []byte("const a = 2;\n"))
	assert.True(t, skip)
}

func TestCache_StrictMode(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, true)
	mod := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	content := []byte("const a = 1;\n")
	c.RecordProcessed("a.js", mod, c.Fingerprint(content), nil)

	// The timestamp-only path never licenses a skip in strict mode
	assert.False(t, c.ShouldSkip("a.js", mod))

	// Same content, same mtime
	skip, fp := c.ShouldSkipContent("a.js", mod, content)
	assert.True(t, skip)
	assert.Equal(t, c.Fingerprint(content), fp)

	// Same content, drifted mtime: skipped and mtime refreshed
	drifted := mod.Add(time.Hour)
	skip, _ = c.ShouldSkipContent("a.js", drifted, content)
	assert.True(t, skip)
	entry, ok := c.Lookup("a.js")
	require.True(t, ok)
	assert.True(t, entry.ModTime.Equal(drifted))

	// Changed content, unchanged mtime: must not be skipped
	skip, fp = c.ShouldSkipContent("a.js", drifted, []byte("const a = 2;\n"))
	assert.False(t, skip)
	assert.Equal(t, c.Fingerprint([]byte("const a = 2;\n")), fp)
}

func TestCache_RequireSummary(t *testing.T) {
	t.Parallel()

	c := New(Options{Path: filepath.Join(t.TempDir(), "c.json"), Strict: true, RequireSummary: true})
	mod := time.Now()
	content := []byte("x")
	c.RecordProcessed("a.js", mod, c.Fingerprint(content), nil)

	skip, _ := c.ShouldSkipContent("a.js", mod, content)
	assert.False(t, skip)

	rec := extract.Extract("a.js", content, nil)
	c.RecordProcessed("a.js", mod, c.Fingerprint(content), &rec)
	skip, _ = c.ShouldSkipContent("a.js", mod, content)
	assert.True(t, skip)
}

func TestCache_Prune(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, true)
	for _, p := range []string{"a.js", "b.js", "c.js"} {
		c.RecordProcessed(p, time.Now(), "fp", nil)
	}

	removed := c.Prune(map[string]struct{}{"b.js": {}})
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())
	_, ok := c.Lookup("b.js")
	assert.True(t, ok)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, true)
	mod := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("file%d.js", i)
			content := []byte(path)
			skip, fp := c.ShouldSkipContent(path, mod, content)
			assert.False(t, skip)
			c.RecordProcessed(path, mod, fp, nil)
			skip, _ = c.ShouldSkipContent(path, mod, content)
			assert.True(t, skip)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, c.Len())
	require.NoError(t, c.Save())
}

func TestRemove(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "c.json")
	require.NoError(t, Remove(path), "missing file is not an error")

	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
	require.NoError(t, Remove(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAlgorithm(t *testing.T) {
	t.Parallel()

	alg, err := ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, SHA256, alg)

	alg, err = ParseAlgorithm("XXH3")
	require.NoError(t, err)
	assert.Equal(t, XXH3, alg)

	_, err = ParseAlgorithm("md5")
	assert.Error(t, err)

	content := []byte("hello")
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", SHA256.Sum(content))
	assert.Len(t, XXH3.Sum(content), 16)
	assert.Equal(t, XXH3.Sum(content), XXH3.Sum([]byte("hello")))
	assert.NotEqual(t, XXH3.Sum(content), XXH3.Sum([]byte("hellp")))
}

func TestStat(t *testing.T) {
	t.Parallel()

	c := New(Options{
		Path:      filepath.Join(t.TempDir(), ".file_checksums.json"),
		Algorithm: XXH3,
		RunID:     "run-9",
	})
	now := time.Now()
	rec := extract.Extract("a.js", []byte("function a() {}\n"), extract.ScriptFamily{})
	c.RecordProcessed("a.js", now, "f1", &rec)
	c.RecordProcessed("b.txt", now, "f2", nil)
	require.NoError(t, c.Save())

	info, err := Stat(c.Path())
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, info.Version)
	assert.Equal(t, "run-9", info.RunID)
	assert.Equal(t, XXH3, info.Algorithm)
	assert.Equal(t, 2, info.Entries)
	assert.Equal(t, 1, info.Summaries)
	assert.Greater(t, info.SizeBytes, int64(0))
	assert.False(t, info.GeneratedAt.IsZero())

	_, err = Stat(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))

	corrupt := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{"), 0644))
	_, err = Stat(corrupt)
	assert.ErrorIs(t, err, ErrUnusable)
}
