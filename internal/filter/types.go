package filter

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the file-selection rules for a run.
// It is built once from the loaded configuration and never mutated.
type Config struct {
	Root              string    // Scan root; explicit files and the .gitignore are resolved against it
	Extensions        []string  // Allowed extensions (empty = any)
	IgnoreDirectories []string  // Directory names (glob syntax) pruned from the walk
	IgnoreExtensions  []string  // Extensions that always reject
	IgnorePatterns    []string  // Regexes matched against the relative path
	ExplicitFiles     []string  // When non-empty, the only candidates of the run
	MinFileSize       int64     // Inclusive lower bound in bytes (0 = none)
	MaxFileSize       int64     // Inclusive upper bound in bytes (0 = none)
	ModifiedAfter     time.Time // Lower bound on modification time (zero = none)
	RespectGitignore  bool      // Apply the root .gitignore during directory scans
}

// Candidate is a file discovered by the walk (or listed explicitly).
type Candidate struct {
	Path    string    // Absolute path
	RelPath string    // Slash-separated path relative to the root
	Size    int64     // Size in bytes, -1 when it could not be determined
	ModTime time.Time // Last modification time
	Ext     string    // Lower-cased extension including the dot
}

// SizeUnknown marks a candidate whose size could not be read.
const SizeUnknown int64 = -1

// NewCandidate builds a candidate from stat metadata. A nil info yields a
// candidate with unknown size, which the engine always rejects.
func NewCandidate(root, path string, info fs.FileInfo) Candidate {
	c := Candidate{
		Path:    path,
		RelPath: NormalizePath(root, path),
		Size:    SizeUnknown,
		Ext:     strings.ToLower(filepath.Ext(path)),
	}
	if info != nil {
		c.Size = info.Size()
		c.ModTime = info.ModTime()
	}
	return c
}

// NormalizePath converts path to the slash-separated form relative to root
// used for explicit-list lookups, pattern matching and cache keys.
func NormalizePath(root, path string) string {
	if filepath.IsAbs(path) && root != "" {
		if rel, err := filepath.Rel(root, path); err == nil {
			path = rel
		}
	}
	path = filepath.ToSlash(filepath.Clean(path))
	return strings.TrimPrefix(path, "./")
}

// Reason explains why a candidate was rejected.
type Reason string

const (
	ReasonNotListed           Reason = "not_listed"
	ReasonIgnoredDirectory    Reason = "ignored_directory"
	ReasonExtensionNotAllowed Reason = "extension_not_allowed"
	ReasonExtensionIgnored    Reason = "extension_ignored"
	ReasonSizeUnknown         Reason = "size_unknown"
	ReasonTooSmall            Reason = "too_small"
	ReasonTooLarge            Reason = "too_large"
	ReasonTooOld              Reason = "modified_before_bound"
	ReasonIgnoredPattern      Reason = "ignored_pattern"
	ReasonGitIgnored          Reason = "gitignored"
)

// Decision is the outcome of Admit: admitted, or rejected with a reason.
type Decision struct {
	Admitted bool
	Reason   Reason
}

// Admit returns an admitting decision.
func Admit() Decision {
	return Decision{Admitted: true}
}

// Reject returns a rejecting decision with the given reason.
func Reject(reason Reason) Decision {
	return Decision{Reason: reason}
}
