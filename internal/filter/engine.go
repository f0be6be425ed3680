package filter

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
	gitignore "github.com/monochromegane/go-gitignore"
)

// ErrInvalidPattern is returned by NewEngine when an ignore pattern or an
// ignored-directory glob does not compile.
var ErrInvalidPattern = errors.New("invalid ignore pattern")

// Engine decides which candidates become part of a run.
// It is safe for concurrent use once constructed.
type Engine struct {
	root       string
	extensions []string
	ignoreExts []string
	dirGlobs   []glob.Glob
	patterns   []*regexp.Regexp
	explicit   map[string]struct{}
	minSize    int64
	maxSize    int64
	cfg        Config
	gitignore  gitignore.IgnoreMatcher
}

// NewEngine compiles the rules in cfg. Every pattern is validated up front so
// that a bad configuration fails before any traversal starts.
func NewEngine(cfg Config) (*Engine, error) {
	root := cfg.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	e := &Engine{
		root:       absRoot,
		extensions: normalizeExtensions(cfg.Extensions),
		ignoreExts: normalizeExtensions(cfg.IgnoreExtensions),
		minSize:    cfg.MinFileSize,
		maxSize:    cfg.MaxFileSize,
		cfg:        cfg,
	}

	for _, name := range cfg.IgnoreDirectories {
		name = strings.Trim(filepath.ToSlash(name), "/")
		if name == "" {
			continue
		}
		g, err := glob.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("%w: directory %q: %v", ErrInvalidPattern, name, err)
		}
		e.dirGlobs = append(e.dirGlobs, g)
	}

	for _, p := range cfg.IgnorePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, p, err)
		}
		e.patterns = append(e.patterns, re)
	}

	if len(cfg.ExplicitFiles) > 0 {
		e.explicit = make(map[string]struct{}, len(cfg.ExplicitFiles))
		for _, f := range cfg.ExplicitFiles {
			e.explicit[NormalizePath(absRoot, f)] = struct{}{}
		}
	}

	if cfg.RespectGitignore {
		gitIgnorePath := filepath.Join(absRoot, ".gitignore")
		if _, err := os.Stat(gitIgnorePath); err == nil {
			matcher, err := gitignore.NewGitIgnore(gitIgnorePath, absRoot)
			if err != nil {
				log.Printf("Warning: could not parse %s: %v", gitIgnorePath, err)
			} else {
				e.gitignore = matcher
			}
		}
	}

	return e, nil
}

// Root returns the absolute scan root.
func (e *Engine) Root() string {
	return e.root
}

// Explicit reports whether the run is restricted to an explicit file list.
func (e *Engine) Explicit() bool {
	return e.explicit != nil
}

// ExplicitFiles returns the normalized explicit list in configured order,
// without duplicates.
func (e *Engine) ExplicitFiles() []string {
	if e.explicit == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(e.explicit))
	files := make([]string, 0, len(e.explicit))
	for _, f := range e.cfg.ExplicitFiles {
		rel := NormalizePath(e.root, f)
		if _, ok := seen[rel]; ok {
			continue
		}
		seen[rel] = struct{}{}
		files = append(files, rel)
	}
	return files
}

// Admit applies the rules to c. Rules run in a fixed order and the first
// rejecting rule decides the reason.
func (e *Engine) Admit(c Candidate) Decision {
	rel := c.RelPath
	if rel == "" {
		rel = NormalizePath(e.root, c.Path)
	}

	if e.explicit != nil {
		if _, ok := e.explicit[rel]; !ok {
			return Reject(ReasonNotListed)
		}
	} else {
		if e.inIgnoredDirectory(rel) {
			return Reject(ReasonIgnoredDirectory)
		}
		name := strings.ToLower(filepath.Base(rel))
		if len(e.extensions) > 0 && !hasAnySuffix(name, e.extensions) {
			return Reject(ReasonExtensionNotAllowed)
		}
		if hasAnySuffix(name, e.ignoreExts) {
			return Reject(ReasonExtensionIgnored)
		}
	}

	if c.Size < 0 {
		return Reject(ReasonSizeUnknown)
	}
	if e.minSize > 0 && c.Size < e.minSize {
		return Reject(ReasonTooSmall)
	}
	if e.maxSize > 0 && c.Size > e.maxSize {
		return Reject(ReasonTooLarge)
	}

	if !e.cfg.ModifiedAfter.IsZero() && c.ModTime.Before(e.cfg.ModifiedAfter) {
		return Reject(ReasonTooOld)
	}

	for _, re := range e.patterns {
		if re.MatchString(rel) {
			return Reject(ReasonIgnoredPattern)
		}
	}

	if e.explicit == nil && e.gitignore != nil {
		if e.gitignore.Match(filepath.Join(e.root, filepath.FromSlash(rel)), false) {
			return Reject(ReasonGitIgnored)
		}
	}

	return Admit()
}

// SkipDir reports whether the walk should prune the directory at rel.
// Explicit runs never walk, so this only applies to directory scans.
func (e *Engine) SkipDir(rel string) bool {
	rel = strings.Trim(filepath.ToSlash(rel), "/")
	if rel == "" || rel == "." {
		return false
	}
	for _, g := range e.dirGlobs {
		if g.Match(filepath.Base(rel)) {
			return true
		}
	}
	if e.gitignore != nil && e.gitignore.Match(filepath.Join(e.root, filepath.FromSlash(rel)), true) {
		return true
	}
	return false
}

// inIgnoredDirectory checks every directory segment of rel.
func (e *Engine) inIgnoredDirectory(rel string) bool {
	if len(e.dirGlobs) == 0 {
		return false
	}
	segments := strings.Split(rel, "/")
	for _, seg := range segments[:len(segments)-1] {
		for _, g := range e.dirGlobs {
			if g.Match(seg) {
				return true
			}
		}
	}
	return false
}

func normalizeExtensions(exts []string) []string {
	if len(exts) == 0 {
		return nil
	}
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
