package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from defaults, file, environment and flags.
	Load() (*Config, error)
}

// Option customizes a Loader.
type Option func(*loader)

// WithConfigFile reads the given file instead of searching the root.
// The format follows the extension (.json, .yaml, .yml, .toml).
func WithConfigFile(path string) Option {
	return func(l *loader) { l.configFile = path }
}

// WithFlags binds changed command-line flags over every other source.
func WithFlags(flags *pflag.FlagSet) Option {
	return func(l *loader) { l.flags = flags }
}

// WithExtraIgnorePatterns appends patterns to the configured ignore list.
func WithExtraIgnorePatterns(patterns []string) Option {
	return func(l *loader) { l.extraIgnore = patterns }
}

type loader struct {
	rootDir     string
	configFile  string
	flags       *pflag.FlagSet
	extraIgnore []string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string, opts ...Option) Loader {
	l := &loader{rootDir: rootDir}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"output":            "output_filename",
	"output-folder":     "output_folder",
	"compress":          "compress_output",
	"modified-after":    "modified_after",
	"threads":           "threads",
	"use-checksum":      "use_checksum_cache",
	"gather-js-summary": "gather_js_summary",
	"project-name":      "project_name",
	"respect-gitignore": "respect_gitignore",
	"collapse-blank":    "collapse_blank_lines",
	"checksum-strict":   "checksum_strict",
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Changed command-line flags
// 2. Environment variables (CODESCOPE_*)
// 3. Config file
// 4. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("codescope")
		v.AddConfigPath(l.rootDir)
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("CODESCOPE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	for _, key := range configKeys {
		v.BindEnv(key)
	}

	setDefaults(v)

	if l.flags != nil {
		for name, key := range flagKeys {
			if f := l.flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable when searching - use defaults + env vars
		var notFound viper.ConfigFileNotFoundError
		if l.configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.IgnorePatterns = append(cfg.IgnorePatterns, l.extraIgnore...)
	if cfg.ProjectPath == "" {
		cfg.ProjectPath = "."
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// configKeys lists every recognized key. Unrecognized keys in a config file
// are ignored.
var configKeys = []string{
	"project_path",
	"project_name",
	"file_extensions",
	"ignore_directories",
	"ignore_extensions",
	"ignore_patterns",
	"explicit_files",
	"respect_gitignore",
	"modified_after",
	"max_file_size",
	"min_file_size",
	"threads",
	"use_checksum_cache",
	"checksum_cache",
	"checksum_strict",
	"checksum_algorithm",
	"output_folder",
	"output_filename",
	"gather_js_summary",
	"compress_output",
	"collapse_blank_lines",
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("project_path", d.ProjectPath)
	v.SetDefault("project_name", d.ProjectName)

	// Filter defaults
	v.SetDefault("file_extensions", d.FileExtensions)
	v.SetDefault("ignore_directories", d.IgnoreDirectories)
	v.SetDefault("ignore_extensions", d.IgnoreExtensions)
	v.SetDefault("ignore_patterns", d.IgnorePatterns)
	v.SetDefault("explicit_files", d.ExplicitFiles)
	v.SetDefault("respect_gitignore", d.RespectGitignore)
	v.SetDefault("modified_after", d.ModifiedAfter)
	v.SetDefault("max_file_size", d.MaxFileSize)
	v.SetDefault("min_file_size", d.MinFileSize)

	v.SetDefault("threads", d.Threads)

	// Checksum cache defaults
	v.SetDefault("use_checksum_cache", d.UseChecksumCache)
	v.SetDefault("checksum_cache", d.ChecksumCache)
	v.SetDefault("checksum_strict", d.ChecksumStrict)
	v.SetDefault("checksum_algorithm", d.ChecksumAlgorithm)

	// Output defaults
	v.SetDefault("output_folder", d.OutputFolder)
	v.SetDefault("output_filename", d.OutputFilename)
	v.SetDefault("gather_js_summary", d.GatherJSSummary)
	v.SetDefault("compress_output", d.CompressOutput)
	v.SetDefault("collapse_blank_lines", d.CollapseBlankLines)
}
