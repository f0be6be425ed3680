package consolidate

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mvp-joe/codescope/internal/checksum"
	"github.com/mvp-joe/codescope/internal/extract"
	"github.com/mvp-joe/codescope/internal/filter"
	"golang.org/x/sync/errgroup"
)

// sniffLen is how many leading bytes are checked for NUL.
const sniffLen = 512

// Options configures a Coordinator.
type Options struct {
	Workers     int               // Concurrent file workers (<= 0 uses runtime.NumCPU)
	CaptureText bool              // Keep file content for the text artifact
	Summarize   bool              // Build extraction records
	Exclude     []string          // Paths never scanned (cache file, output folder)
	Registry    *extract.Registry // Families used for summaries (nil = built-ins)
	RunID       string            // Run identifier (empty = new UUID)
	Verbose     bool              // Log per-phase timings
}

// Coordinator runs the walk → filter → cache → extract → merge pipeline.
type Coordinator struct {
	opts     Options
	engine   *filter.Engine
	cache    *checksum.Cache
	progress ProgressReporter
	registry *extract.Registry
	exclude  []string
}

// New creates a Coordinator. A nil cache disables incremental skipping and
// a nil progress reporter is replaced by a no-op one.
func New(opts Options, engine *filter.Engine, cache *checksum.Cache, progress ProgressReporter) *Coordinator {
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.RunID == "" {
		opts.RunID = uuid.New().String()
	}
	registry := opts.Registry
	if registry == nil {
		registry = extract.DefaultRegistry()
	}

	exclude := make([]string, 0, len(opts.Exclude)+1)
	for _, p := range opts.Exclude {
		if abs, err := filepath.Abs(p); err == nil {
			exclude = append(exclude, abs)
		}
	}
	if cache != nil && cache.Path() != "" {
		if abs, err := filepath.Abs(cache.Path()); err == nil {
			exclude = append(exclude, abs, abs+".tmp")
		}
	}

	return &Coordinator{
		opts:     opts,
		engine:   engine,
		cache:    cache,
		progress: progress,
		registry: registry,
		exclude:  exclude,
	}
}

// RunID returns the identifier stamped on this coordinator's reports.
func (c *Coordinator) RunID() string {
	return c.opts.RunID
}

// Run executes one gather. Per-file failures are recorded in the result;
// only an unreadable root or cancellation returns an error. On
// cancellation, records of files completed so far remain in the cache.
func (c *Coordinator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	report := newReport(c.opts.RunID)

	c.progress.OnDiscoveryStart()
	phaseStart := time.Now()
	candidates, err := c.discover(ctx, &report)
	if err != nil {
		return nil, err
	}
	c.progress.OnDiscoveryComplete(report.Admitted, report.Rejected)
	c.logTiming("Discovery", phaseStart, len(candidates))

	phaseStart = time.Now()
	outcomes, err := c.dispatch(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("gather cancelled: %w", err)
	}
	c.logTiming("Processing", phaseStart, len(outcomes))

	if c.cache != nil && !c.engine.Explicit() {
		keep := make(map[string]struct{}, len(candidates))
		for _, cand := range candidates {
			keep[cand.RelPath] = struct{}{}
		}
		report.Pruned = c.cache.Prune(keep)
	}

	result := merge(outcomes, report)
	result.Report.Duration = time.Since(start)
	c.progress.OnComplete(&result.Report)
	return result, nil
}

// dispatch processes candidates on a bounded pool. Outcomes arrive in
// completion order; a single collector goroutine owns the slice and the
// progress reporter.
func (c *Coordinator) dispatch(ctx context.Context, candidates []filter.Candidate) ([]Outcome, error) {
	c.progress.OnFileProcessingStart(len(candidates))

	results := make(chan Outcome, c.opts.Workers)
	collected := make(chan []Outcome, 1)
	go func() {
		outcomes := make([]Outcome, 0, len(candidates))
		for o := range results {
			outcomes = append(outcomes, o)
			c.progress.OnFileProcessed(o.Path, o.Kind)
		}
		collected <- outcomes
	}()

	var g errgroup.Group
	g.SetLimit(c.opts.Workers)
	for _, cand := range candidates {
		cand := cand
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results <- c.process(cand)
			return nil
		})
	}
	g.Wait()
	close(results)
	outcomes := <-collected

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// process handles one file end to end.
func (c *Coordinator) process(cand filter.Candidate) Outcome {
	rel := cand.RelPath

	if c.cache != nil && c.cache.ShouldSkip(rel, cand.ModTime) {
		return c.skipped(rel)
	}

	content, err := os.ReadFile(cand.Path)
	if err != nil {
		return Outcome{Kind: Failed, Path: rel, Err: fmt.Errorf("failed to read file: %w", err)}
	}
	if bytes.IndexByte(content[:min(len(content), sniffLen)], 0) >= 0 {
		return Outcome{Kind: Failed, Path: rel, Err: ErrBinaryContent}
	}

	var fingerprint string
	if c.cache != nil {
		var skip bool
		skip, fingerprint = c.cache.ShouldSkipContent(rel, cand.ModTime, content)
		if skip && c.cache.Strict() {
			return c.skipped(rel)
		}
	}

	text := string(content)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, string(utf8.RuneError))
	}

	out := Outcome{Kind: Processed, Path: rel}
	if c.opts.CaptureText {
		out.Entry = &Entry{Path: rel, Content: text}
	}
	if c.opts.Summarize {
		rec := extract.Extract(rel, []byte(text), c.registry.Detect(rel))
		out.Record = &rec
	}

	if c.cache != nil {
		c.cache.RecordProcessed(rel, cand.ModTime, fingerprint, out.Record)
	}
	return out
}

func (c *Coordinator) skipped(rel string) Outcome {
	out := Outcome{Kind: Skipped, Path: rel}
	if c.opts.Summarize {
		if entry, ok := c.cache.Lookup(rel); ok && entry.Summary != nil {
			rec := *entry.Summary
			out.Record = &rec
		}
	}
	return out
}

func (c *Coordinator) logTiming(phase string, start time.Time, n int) {
	if c.opts.Verbose {
		log.Printf("[TIMING] %s: %v (%d files)\n", phase, time.Since(start), n)
	}
}
