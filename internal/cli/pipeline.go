package cli

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mvp-joe/codescope/internal/checksum"
	"github.com/mvp-joe/codescope/internal/config"
	"github.com/mvp-joe/codescope/internal/consolidate"
	"github.com/mvp-joe/codescope/internal/filter"
	"github.com/mvp-joe/codescope/internal/output"
	"github.com/mvp-joe/codescope/internal/watcher"
)

// pipeline wires configuration to one gather run: filter, cache,
// coordinator and output writer.
type pipeline struct {
	cfg     *config.Config
	paths   config.Paths
	engine  *filter.Engine
	verbose bool
	quiet   bool
}

// Artifacts lists the files written by a run.
type Artifacts struct {
	Text    string
	Summary string
}

func newPipeline(cfg *config.Config, root string, verbose, quiet bool) (*pipeline, error) {
	paths, err := cfg.Paths(root)
	if err != nil {
		return nil, err
	}

	fc, err := cfg.FilterConfig(root)
	if err != nil {
		return nil, err
	}
	engine, err := filter.NewEngine(fc)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &pipeline{
		cfg:     cfg,
		paths:   paths,
		engine:  engine,
		verbose: verbose,
		quiet:   quiet,
	}, nil
}

// gather runs the pipeline once and writes its artifacts.
// On cancellation the checksum cache is still saved so completed files are
// not reprocessed; no artifact is written.
func (p *pipeline) gather(ctx context.Context) (*consolidate.Result, Artifacts, error) {
	runID := uuid.New().String()

	cache, err := p.openCache(runID)
	if err != nil {
		return nil, Artifacts{}, err
	}

	coord := consolidate.New(
		p.cfg.ConsolidateOptions(p.paths, runID, p.verbose),
		p.engine,
		cache,
		NewCLIProgressReporter(p.quiet),
	)
	if p.verbose {
		log.Printf("Run %s: gathering %s", coord.RunID(), p.paths.Root)
	}

	result, err := coord.Run(ctx)
	if err != nil {
		if cache != nil && ctx.Err() != nil {
			if saveErr := cache.Save(); saveErr != nil {
				log.Printf("Warning: failed to save checksum cache: %v", saveErr)
			}
		}
		return nil, Artifacts{}, err
	}

	artifacts, err := p.write(result)
	if err != nil {
		return result, artifacts, err
	}

	if cache != nil {
		if err := cache.Save(); err != nil {
			return result, artifacts, err
		}
	}

	return result, artifacts, nil
}

// openCache loads the checksum cache when enabled. An unusable cache file
// is reported and the run continues cold.
func (p *pipeline) openCache(runID string) (*checksum.Cache, error) {
	if !p.cfg.UseChecksumCache {
		return nil, nil
	}

	opts, err := p.cfg.ChecksumOptions(p.paths, runID)
	if err != nil {
		return nil, err
	}
	cache := checksum.New(opts)
	if err := cache.Load(); err != nil {
		log.Printf("Warning: %v (processing all files)", err)
	}
	return cache, nil
}

func (p *pipeline) write(result *consolidate.Result) (Artifacts, error) {
	var artifacts Artifacts
	opts := p.cfg.OutputOptions()

	path, err := output.Write(result, output.ModeText, p.paths.TextOutput, opts)
	if err != nil {
		return artifacts, err
	}
	artifacts.Text = path

	if p.paths.SummaryOutput != "" {
		path, err := output.Write(result, output.ModeJSON, p.paths.SummaryOutput, opts)
		if err != nil {
			return artifacts, err
		}
		artifacts.Summary = path
	}

	return artifacts, nil
}

// Run implements watcher.Runner.
func (p *pipeline) Run(ctx context.Context, changed []string) error {
	if p.verbose {
		for _, f := range changed {
			log.Printf("Changed: %s", f)
		}
	}
	result, artifacts, err := p.gather(ctx)
	if err != nil {
		return err
	}
	p.announce(artifacts)
	return result.Err()
}

func (p *pipeline) announce(a Artifacts) {
	if p.quiet {
		return
	}
	fmt.Printf("✓ Wrote %s\n", a.Text)
	if a.Summary != "" {
		fmt.Printf("✓ Wrote %s\n", a.Summary)
	}
}

// watch re-runs the pipeline on every debounced change under the root.
// Blocks until ctx is cancelled.
func (p *pipeline) watch(ctx context.Context) error {
	root := p.engine.Root()

	fw, err := watcher.NewFileWatcher([]string{root}, p.cfg.FileExtensions,
		watcher.WithSkipDir(func(path string) bool {
			return p.engine.SkipDir(relSlash(root, path)) || p.generated(path)
		}),
		watcher.WithIgnore(p.generated),
	)
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	return watcher.NewWatchCoordinator(fw, p).Start(ctx)
}

// generated reports whether path is an artifact or cache file written by
// the pipeline itself.
func (p *pipeline) generated(path string) bool {
	if within(p.paths.OutputDir, path) {
		return true
	}
	cache := p.paths.ChecksumCache
	return path == cache || path == cache+".tmp"
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
