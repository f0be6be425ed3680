package cli

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mvp-joe/codescope/internal/consolidate"
	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter implements consolidate.ProgressReporter with a progress bar.
type CLIProgressReporter struct {
	quiet          bool
	fileBar        *progressbar.ProgressBar
	startTime      time.Time
	totalFiles     int
	processedFiles int
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet:     quiet,
		startTime: time.Now(),
	}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	if c.quiet {
		return
	}
	log.Println("Discovering files...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(admitted, rejected int) {
	if c.quiet {
		return
	}
	log.Printf("Gathering %s files (%s filtered out)\n", formatNumber(admitted), formatNumber(rejected))
}

func (c *CLIProgressReporter) OnFileProcessingStart(totalFiles int) {
	if c.quiet || totalFiles == 0 {
		return
	}
	c.totalFiles = totalFiles
	c.processedFiles = 0

	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetDescription("Gathering files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

func (c *CLIProgressReporter) OnFileProcessed(path string, kind consolidate.Kind) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.processedFiles++
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnComplete(report *consolidate.Report) {
	// Failures are always shown
	for _, f := range report.Failures {
		fmt.Fprintf(os.Stderr, "✗ %s: %s\n", f.Path, f.Error)
	}

	if c.quiet {
		fmt.Printf("Gather complete: %d processed, %d skipped, %d failed in %.2fs\n",
			report.Processed, report.Skipped, report.Failed, report.Duration.Seconds())
		return
	}

	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}

	fmt.Println()
	fmt.Printf("✓ Gather complete: %s files in %.1fs\n",
		formatNumber(report.Processed+report.Skipped), report.Duration.Seconds())
	fmt.Printf("  Processed: %s\n", formatNumber(report.Processed))
	fmt.Printf("  Unchanged: %s\n", formatNumber(report.Skipped))
	if report.Failed > 0 {
		fmt.Printf("  Failed:    %s\n", formatNumber(report.Failed))
	}
	if report.Rejected > 0 {
		fmt.Printf("  Filtered:  %s (%s)\n", formatNumber(report.Rejected), formatRejections(report))
	}
	if report.Pruned > 0 {
		fmt.Printf("  Pruned:    %s stale cache entries\n", formatNumber(report.Pruned))
	}
	for _, w := range report.Warnings {
		log.Printf("Warning: %s", w)
	}
}

// formatRejections renders rejection counts sorted by reason.
func formatRejections(report *consolidate.Report) string {
	parts := make([]string, 0, len(report.Rejections))
	for reason, n := range report.Rejections {
		parts = append(parts, fmt.Sprintf("%s: %d", reason, n))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

// formatNumber formats an integer with thousands separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
