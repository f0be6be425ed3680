package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/codescope/internal/checksum"
	"github.com/mvp-joe/codescope/internal/consolidate"
	"github.com/mvp-joe/codescope/internal/filter"
	"github.com/mvp-joe/codescope/internal/output"
)

// Paths are the resolved filesystem locations of one run.
type Paths struct {
	Root          string // Absolute scan root
	OutputDir     string // Directory receiving artifacts
	TextOutput    string // Text artifact (before any .gz suffix)
	SummaryOutput string // JSON summary artifact, empty when disabled
	ChecksumCache string // Checksum cache file
}

// ResolveRoot returns the scan root: arg when given, otherwise project_path.
func (c *Config) ResolveRoot(arg string) (string, error) {
	root := arg
	if root == "" {
		root = c.ProjectPath
	}
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project path: %w", err)
	}
	return abs, nil
}

// Paths resolves artifact and cache locations for root.
//
// With a project name, artifacts go to <output_folder>/<name>/ and the
// default text artifact is renamed context_<name>.txt. A relative
// checksum_cache lives under root; relative output paths are resolved
// against the working directory.
func (c *Config) Paths(root string) (Paths, error) {
	outputDir := c.OutputFolder
	if c.ProjectName != "" {
		outputDir = filepath.Join(outputDir, c.ProjectName)
	}
	outputDir, err := filepath.Abs(outputDir)
	if err != nil {
		return Paths{}, fmt.Errorf("failed to resolve output folder: %w", err)
	}

	filename := c.OutputFilename
	if filename == DefaultOutputFilename && c.ProjectName != "" {
		filename = fmt.Sprintf("context_%s.txt", c.ProjectName)
	}

	p := Paths{
		Root:          root,
		OutputDir:     outputDir,
		TextOutput:    joinUnlessAbs(outputDir, filename),
		ChecksumCache: joinUnlessAbs(root, c.ChecksumCache),
	}
	if strings.TrimSpace(c.GatherJSSummary) != "" {
		p.SummaryOutput = joinUnlessAbs(outputDir, c.GatherJSSummary)
	}
	return p, nil
}

// FilterConfig converts the configuration into filter engine settings.
func (c *Config) FilterConfig(root string) (filter.Config, error) {
	after, err := ParseDate(c.ModifiedAfter)
	if err != nil {
		return filter.Config{}, err
	}
	return filter.Config{
		Root:              root,
		Extensions:        c.FileExtensions,
		IgnoreDirectories: c.IgnoreDirectories,
		IgnoreExtensions:  c.IgnoreExtensions,
		IgnorePatterns:    c.IgnorePatterns,
		ExplicitFiles:     c.ExplicitFiles,
		MinFileSize:       c.MinFileSize,
		MaxFileSize:       c.MaxFileSize,
		ModifiedAfter:     after,
		RespectGitignore:  c.RespectGitignore,
	}, nil
}

// Summarize reports whether a JSON summary is requested.
func (c *Config) Summarize() bool {
	return strings.TrimSpace(c.GatherJSSummary) != ""
}

// ChecksumOptions converts the configuration into checksum cache settings.
func (c *Config) ChecksumOptions(p Paths, runID string) (checksum.Options, error) {
	algo, err := checksum.ParseAlgorithm(c.ChecksumAlgorithm)
	if err != nil {
		return checksum.Options{}, err
	}
	return checksum.Options{
		Path:           p.ChecksumCache,
		Algorithm:      algo,
		Strict:         c.ChecksumStrict,
		RequireSummary: c.Summarize(),
		RunID:          runID,
	}, nil
}

// ConsolidateOptions converts the configuration into coordinator settings.
// The output directory is excluded from the walk.
func (c *Config) ConsolidateOptions(p Paths, runID string, verbose bool) consolidate.Options {
	return consolidate.Options{
		Workers:     c.Threads,
		CaptureText: true,
		Summarize:   c.Summarize(),
		Exclude:     []string{p.OutputDir},
		RunID:       runID,
		Verbose:     verbose,
	}
}

// OutputOptions converts the configuration into serializer settings.
func (c *Config) OutputOptions() output.Options {
	return output.Options{
		Compress:           c.CompressOutput,
		CollapseBlankLines: c.CollapseBlankLines,
	}
}

func joinUnlessAbs(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
