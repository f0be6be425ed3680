// Package config provides configuration loading for codescope.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Command-line flags
//  2. Environment variables (CODESCOPE_*)
//  3. Config file (--config-file, or codescope.{yaml,yml,json} in the project root)
//  4. Built-in defaults
//
// Environment Variable Convention:
//   - Prefix: CODESCOPE_
//   - Key names upper-cased (CODESCOPE_MAX_FILE_SIZE, CODESCOPE_IGNORE_PATTERNS)
//   - List values are comma separated
//
// The loaded Config is immutable: it is converted once into the option
// values of each component and never read globally.
package config

import (
	"runtime"
)

const (
	// DefaultOutputFilename names the text artifact when none is configured.
	DefaultOutputFilename = "context.txt"

	// DefaultChecksumCache names the checksum cache file.
	DefaultChecksumCache = ".file_checksums.json"

	// DefaultOutputFolder is where artifacts are written.
	DefaultOutputFolder = "output"
)

// Config represents the complete codescope configuration.
type Config struct {
	ProjectPath string `yaml:"project_path" mapstructure:"project_path"` // Scan root (positional argument wins)
	ProjectName string `yaml:"project_name" mapstructure:"project_name"` // Names the output subfolder and file

	FileExtensions    []string `yaml:"file_extensions" mapstructure:"file_extensions"`       // Allowed extensions (empty = any)
	IgnoreDirectories []string `yaml:"ignore_directories" mapstructure:"ignore_directories"` // Directory names or globs pruned from the walk
	IgnoreExtensions  []string `yaml:"ignore_extensions" mapstructure:"ignore_extensions"`   // Extensions always rejected
	IgnorePatterns    []string `yaml:"ignore_patterns" mapstructure:"ignore_patterns"`       // Regexes matched against the relative path
	ExplicitFiles     []string `yaml:"explicit_files" mapstructure:"explicit_files"`         // When set, the only files considered
	RespectGitignore  bool     `yaml:"respect_gitignore" mapstructure:"respect_gitignore"`   // Apply the root .gitignore

	ModifiedAfter string `yaml:"modified_after" mapstructure:"modified_after"` // YYYY-MM-DD or RFC 3339
	MaxFileSize   int64  `yaml:"max_file_size" mapstructure:"max_file_size"`   // Bytes, 0 = unbounded
	MinFileSize   int64  `yaml:"min_file_size" mapstructure:"min_file_size"`   // Bytes, 0 = none

	Threads int `yaml:"threads" mapstructure:"threads"` // Worker count

	UseChecksumCache  bool   `yaml:"use_checksum_cache" mapstructure:"use_checksum_cache"` // Skip unchanged files
	ChecksumCache     string `yaml:"checksum_cache" mapstructure:"checksum_cache"`         // Cache file, relative to the project root
	ChecksumStrict    bool   `yaml:"checksum_strict" mapstructure:"checksum_strict"`       // Skip only on fingerprint equality
	ChecksumAlgorithm string `yaml:"checksum_algorithm" mapstructure:"checksum_algorithm"` // sha256 or xxh3

	OutputFolder       string `yaml:"output_folder" mapstructure:"output_folder"`               // Artifact directory
	OutputFilename     string `yaml:"output_filename" mapstructure:"output_filename"`           // Text artifact name
	GatherJSSummary    string `yaml:"gather_js_summary" mapstructure:"gather_js_summary"`       // JSON summary path (empty = none)
	CompressOutput     bool   `yaml:"compress_output" mapstructure:"compress_output"`           // gzip every artifact
	CollapseBlankLines bool   `yaml:"collapse_blank_lines" mapstructure:"collapse_blank_lines"` // Collapse blank-line runs in text output
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		ProjectPath: ".",
		FileExtensions: []string{
			".py", ".html", ".js", ".ts", ".jsx", ".tsx", ".tf",
			".css", ".yaml", ".json", ".toml", ".md",
		},
		IgnoreDirectories: []string{"__pycache__", ".git", "venv", "env", "node_modules"},
		IgnoreExtensions:  []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".hcl", ".txt"},
		IgnorePatterns:    []string{`.*secret.*`, `.*\.log`},
		ExplicitFiles:     []string{},
		MaxFileSize:       2 * 1024 * 1024,
		Threads:           runtime.NumCPU(),
		ChecksumCache:     DefaultChecksumCache,
		ChecksumStrict:    true,
		ChecksumAlgorithm: "sha256",
		OutputFolder:      DefaultOutputFolder,
		OutputFilename:    DefaultOutputFilename,
	}
}
