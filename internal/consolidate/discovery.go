package consolidate

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/codescope/internal/filter"
)

// discover produces the admitted candidates in path order, either by
// walking the root or by statting the explicit list.
func (c *Coordinator) discover(ctx context.Context, report *Report) ([]filter.Candidate, error) {
	if c.engine.Explicit() {
		return c.discoverExplicit(ctx, report)
	}
	return c.walk(ctx, report)
}

func (c *Coordinator) walk(ctx context.Context, report *Report) ([]filter.Candidate, error) {
	root := c.engine.Root()
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	var admitted []filter.Candidate
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return fmt.Errorf("failed to read root %s: %w", root, err)
			}
			report.warn("skipping %s: %v", relativeTo(root, path), err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if path == root {
			return nil
		}
		if c.excluded(path) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel := relativeTo(root, path)
		if d.IsDir() {
			if c.engine.SkipDir(rel) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			report.warn("failed to stat %s: %v", rel, err)
			fi = nil
		}
		if cand, ok := c.admit(filter.NewCandidate(root, path, fi), report); ok {
			admitted = append(admitted, cand)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return admitted, nil
}

func (c *Coordinator) discoverExplicit(ctx context.Context, report *Report) ([]filter.Candidate, error) {
	root := c.engine.Root()
	var admitted []filter.Candidate
	for _, rel := range c.engine.ExplicitFiles() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(root, filepath.FromSlash(rel))
		fi, err := os.Stat(path)
		if err != nil {
			report.warn("explicit file %s: %v", rel, err)
			fi = nil
		} else if !fi.Mode().IsRegular() {
			report.warn("explicit file %s is not a regular file", rel)
			fi = nil
		}
		if cand, ok := c.admit(filter.NewCandidate(root, path, fi), report); ok {
			admitted = append(admitted, cand)
		}
	}
	return admitted, nil
}

func (c *Coordinator) admit(cand filter.Candidate, report *Report) (filter.Candidate, bool) {
	report.Discovered++
	decision := c.engine.Admit(cand)
	if !decision.Admitted {
		report.Rejected++
		report.Rejections[decision.Reason]++
		return cand, false
	}
	report.Admitted++
	return cand, true
}

// excluded reports whether path is one of the run's own artifacts.
func (c *Coordinator) excluded(path string) bool {
	for _, ex := range c.exclude {
		if path == ex || strings.HasPrefix(path, ex+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func relativeTo(root, path string) string {
	return filter.NormalizePath(root, path)
}
