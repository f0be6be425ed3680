package consolidate

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mvp-joe/codescope/internal/extract"
	"github.com/mvp-joe/codescope/internal/filter"
)

var (
	// ErrBinaryContent marks a file whose first bytes contain NUL.
	ErrBinaryContent = errors.New("binary content")

	// ErrPartialFailure is returned by Result.Err when at least one file failed.
	ErrPartialFailure = errors.New("one or more files failed")
)

// Kind is the outcome class of one admitted file.
type Kind int

const (
	Processed Kind = iota // read (and summarized) this run
	Skipped               // unchanged according to the checksum cache
	Failed                // read or decode error
)

func (k Kind) String() string {
	switch k {
	case Processed:
		return "processed"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Entry is a text-mode (path, content) pair.
type Entry struct {
	Path    string
	Content string
}

// Outcome is what a worker reports for one file.
type Outcome struct {
	Kind   Kind
	Path   string
	Entry  *Entry          // Processed files in text mode
	Record *extract.Record // Processed files, and skipped files with a cached summary
	Err    error           // Failed files
}

// Failure describes one per-file failure.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Report aggregates the counters and warnings of a run.
type Report struct {
	RunID      string                `json:"run_id"`
	Discovered int                   `json:"discovered"`
	Admitted   int                   `json:"admitted"`
	Rejected   int                   `json:"rejected"`
	Rejections map[filter.Reason]int `json:"rejections"`
	Processed  int                   `json:"processed"`
	Skipped    int                   `json:"skipped"`
	Failed     int                   `json:"failed"`
	Pruned     int                   `json:"pruned"`
	Failures   []Failure             `json:"failures"`
	Warnings   []string              `json:"warnings"`
	Duration   time.Duration         `json:"duration"`
}

func newReport(runID string) Report {
	return Report{
		RunID:      runID,
		Rejections: make(map[filter.Reason]int),
		Failures:   []Failure{},
		Warnings:   []string{},
	}
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Result is the merged output of a run, ordered by path.
type Result struct {
	Entries []Entry          // Text mode: processed files only
	Records []extract.Record // Summary mode: processed and cached records
	Report  Report
}

// Err returns an error wrapping ErrPartialFailure when any file failed.
func (r *Result) Err() error {
	if r.Report.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d admitted files", ErrPartialFailure, r.Report.Failed, r.Report.Admitted)
}

// merge orders outcomes by path and folds them into a Result.
func merge(outcomes []Outcome, report Report) *Result {
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].Path < outcomes[j].Path
	})

	result := &Result{
		Entries: []Entry{},
		Records: []extract.Record{},
	}
	for _, o := range outcomes {
		switch o.Kind {
		case Processed:
			report.Processed++
			if o.Entry != nil {
				result.Entries = append(result.Entries, *o.Entry)
			}
		case Skipped:
			report.Skipped++
		case Failed:
			report.Failed++
			report.Failures = append(report.Failures, Failure{Path: o.Path, Error: o.Err.Error()})
			continue
		}
		if o.Record != nil {
			result.Records = append(result.Records, *o.Record)
		}
	}
	result.Report = report
	return result
}
