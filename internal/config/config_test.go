package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/mvp-joe/codescope/internal/checksum"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() reads codescope.yaml from the project root
// - Load() reads an explicit JSON config file; a missing explicit file is an error
// - Environment variables override config file values (including lists)
// - Changed flags override environment; unchanged flags do not mask the file
// - Extra ignore patterns are appended, not substituted
// - Load() returns error for malformed YAML and invalid values
// - Validate() rejects negative threads, bad sizes, bad dates, bad regexes,
//   unknown algorithms and empty output names, and joins multiple errors
// - ParseDate() accepts YYYY-MM-DD and RFC 3339
// - Paths() applies project-name naming and absolute overrides
// - FilterConfig()/ChecksumOptions() carry settings through

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Contains(t, cfg.FileExtensions, ".js")
	assert.Contains(t, cfg.FileExtensions, ".py")
	assert.Equal(t, []string{"__pycache__", ".git", "venv", "env", "node_modules"}, cfg.IgnoreDirectories)
	assert.Contains(t, cfg.IgnoreExtensions, ".png")
	assert.Equal(t, []string{`.*secret.*`, `.*\.log`}, cfg.IgnorePatterns)
	assert.Equal(t, int64(2*1024*1024), cfg.MaxFileSize)
	assert.Equal(t, runtime.NumCPU(), cfg.Threads)
	assert.Equal(t, DefaultChecksumCache, cfg.ChecksumCache)
	assert.True(t, cfg.ChecksumStrict)
	assert.False(t, cfg.UseChecksumCache)
	assert.Equal(t, DefaultOutputFilename, cfg.OutputFilename)

	assert.NoError(t, Validate(cfg))
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.FileExtensions, cfg.FileExtensions)
	assert.Equal(t, d.IgnorePatterns, cfg.IgnorePatterns)
	assert.Equal(t, d.OutputFolder, cfg.OutputFolder)
	assert.Equal(t, ".", cfg.ProjectPath)
}

func TestLoadConfig_LoadsYAMLFromRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "codescope.yaml", `
project_name: shop
file_extensions: [".go", ".md"]
ignore_patterns: ["vendor/.*"]
max_file_size: 4096
use_checksum_cache: true
checksum_algorithm: xxh3
`)

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "shop", cfg.ProjectName)
	assert.Equal(t, []string{".go", ".md"}, cfg.FileExtensions)
	assert.Equal(t, []string{"vendor/.*"}, cfg.IgnorePatterns)
	assert.Equal(t, int64(4096), cfg.MaxFileSize)
	assert.True(t, cfg.UseChecksumCache)
	assert.Equal(t, "xxh3", cfg.ChecksumAlgorithm)

	// Unset keys keep defaults
	assert.Equal(t, Default().IgnoreDirectories, cfg.IgnoreDirectories)
	assert.True(t, cfg.ChecksumStrict)
}

func TestLoadConfig_ExplicitJSONFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfig(t, dir, "settings.json", `{
  "explicit_files": ["src/a.js", "src/b.js"],
  "modified_after": "2024-03-01",
  "gather_js_summary": "summary.json"
}`)

	cfg, err := NewLoader(t.TempDir(), WithConfigFile(path)).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"src/a.js", "src/b.js"}, cfg.ExplicitFiles)
	assert.Equal(t, "2024-03-01", cfg.ModifiedAfter)
	assert.True(t, cfg.Summarize())
}

func TestLoadConfig_MissingExplicitFileIsError(t *testing.T) {
	t.Parallel()

	_, err := NewLoader(t.TempDir(), WithConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	dir := t.TempDir()
	writeConfig(t, dir, "codescope.yaml", "threads: 2\noutput_filename: file.txt\n")

	t.Setenv("CODESCOPE_THREADS", "5")
	t.Setenv("CODESCOPE_IGNORE_PATTERNS", `.*\.tmp,build/.*`)

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Threads)
	assert.Equal(t, "file.txt", cfg.OutputFilename)
	assert.Equal(t, []string{`.*\.tmp`, "build/.*"}, cfg.IgnorePatterns)
}

func TestLoadConfig_FlagsOverrideEnvironment(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	dir := t.TempDir()
	writeConfig(t, dir, "codescope.yaml", "output_filename: from-file.txt\n")
	t.Setenv("CODESCOPE_THREADS", "5")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("threads", 0, "")
	flags.String("output", DefaultOutputFilename, "")
	flags.Bool("compress", false, "")
	require.NoError(t, flags.Parse([]string{"--threads=3", "--compress"}))

	cfg, err := NewLoader(dir, WithFlags(flags)).Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Threads)
	assert.True(t, cfg.CompressOutput)
	assert.Equal(t, "from-file.txt", cfg.OutputFilename, "unchanged flag must not mask the file")
}

func TestLoadConfig_ExtraIgnorePatternsAppend(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir(), WithExtraIgnorePatterns([]string{`^dist/`})).Load()
	require.NoError(t, err)

	assert.Equal(t, append(Default().IgnorePatterns, `^dist/`), cfg.IgnorePatterns)
}

func TestLoadConfig_ReturnsErrorForMalformedYaml(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "codescope.yaml", "threads: [unclosed\n")

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_ReturnsErrorForInvalidValues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "codescope.yaml", "threads: -1\n")

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidThreads)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidate_RejectsInvalidFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"negative threads", func(c *Config) { c.Threads = -2 }, ErrInvalidThreads},
		{"negative max size", func(c *Config) { c.MaxFileSize = -1 }, ErrInvalidSize},
		{"negative min size", func(c *Config) { c.MinFileSize = -1 }, ErrInvalidSize},
		{"min above max", func(c *Config) { c.MinFileSize = 10; c.MaxFileSize = 5 }, ErrInvalidSize},
		{"bad date", func(c *Config) { c.ModifiedAfter = "01/02/2024" }, ErrInvalidDate},
		{"bad regex", func(c *Config) { c.IgnorePatterns = []string{"(unclosed"} }, ErrInvalidPattern},
		{"unknown algorithm", func(c *Config) { c.ChecksumAlgorithm = "md5" }, ErrInvalidAlgorithm},
		{"empty output filename", func(c *Config) { c.OutputFilename = " " }, ErrEmptyOutput},
		{"empty output folder", func(c *Config) { c.OutputFolder = "" }, ErrEmptyOutput},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, Validate(cfg), tt.want)
		})
	}
}

func TestValidate_AcceptsZeroMaxWithMin(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.MaxFileSize = 0
	cfg.MinFileSize = 100
	assert.NoError(t, Validate(cfg))
}

func TestValidate_ReturnsMultipleErrorsForMultipleInvalidFields(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Threads = -1
	cfg.ChecksumAlgorithm = "crc"
	cfg.ModifiedAfter = "yesterday"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, err.Error(), "invalid threads")
	assert.Contains(t, err.Error(), "invalid checksum algorithm")
	assert.Contains(t, err.Error(), "invalid modified_after date")
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	zero, err := ParseDate("")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	d, err := ParseDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), d)

	ts, err := ParseDate("2024-03-01T12:30:00Z")
	require.NoError(t, err)
	assert.True(t, ts.Equal(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)))

	_, err = ParseDate("March 1")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestPaths(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	out := t.TempDir()

	cfg := Default()
	cfg.OutputFolder = out
	p, err := cfg.Paths(root)
	require.NoError(t, err)
	assert.Equal(t, out, p.OutputDir)
	assert.Equal(t, filepath.Join(out, "context.txt"), p.TextOutput)
	assert.Equal(t, filepath.Join(root, DefaultChecksumCache), p.ChecksumCache)
	assert.Empty(t, p.SummaryOutput)

	cfg.ProjectName = "shop"
	cfg.GatherJSSummary = "summary.json"
	p, err = cfg.Paths(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "shop"), p.OutputDir)
	assert.Equal(t, filepath.Join(out, "shop", "context_shop.txt"), p.TextOutput)
	assert.Equal(t, filepath.Join(out, "shop", "summary.json"), p.SummaryOutput)

	// Custom and absolute names are kept as given
	abs := filepath.Join(t.TempDir(), "elsewhere.json")
	cfg.OutputFilename = "bundle.txt"
	cfg.GatherJSSummary = abs
	p, err = cfg.Paths(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "shop", "bundle.txt"), p.TextOutput)
	assert.Equal(t, abs, p.SummaryOutput)
}

func TestResolveRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := Default()
	cfg.ProjectPath = dir

	got, err := cfg.ResolveRoot("")
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	other := t.TempDir()
	got, err = cfg.ResolveRoot(other)
	require.NoError(t, err)
	assert.Equal(t, other, got)
}

func TestConversions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfg := Default()
	cfg.OutputFolder = t.TempDir()
	cfg.ModifiedAfter = "2024-01-15"
	cfg.RespectGitignore = true
	cfg.ChecksumAlgorithm = "xxh3"
	cfg.GatherJSSummary = "s.json"

	fc, err := cfg.FilterConfig(root)
	require.NoError(t, err)
	assert.Equal(t, root, fc.Root)
	assert.True(t, fc.RespectGitignore)
	assert.Equal(t, 2024, fc.ModifiedAfter.Year())
	assert.Equal(t, cfg.IgnorePatterns, fc.IgnorePatterns)

	p, err := cfg.Paths(root)
	require.NoError(t, err)

	co, err := cfg.ChecksumOptions(p, "run-1")
	require.NoError(t, err)
	assert.Equal(t, checksum.XXH3, co.Algorithm)
	assert.True(t, co.Strict)
	assert.True(t, co.RequireSummary)
	assert.Equal(t, "run-1", co.RunID)

	opts := cfg.ConsolidateOptions(p, "run-1", true)
	assert.Equal(t, cfg.Threads, opts.Workers)
	assert.True(t, opts.Summarize)
	assert.Contains(t, opts.Exclude, p.OutputDir)
	assert.True(t, opts.Verbose)
}
