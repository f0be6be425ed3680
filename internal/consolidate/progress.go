package consolidate

// ProgressReporter provides callbacks for reporting gather progress.
// Implementations can display progress bars, log messages, or remain silent.
// Callbacks are invoked from a single goroutine.
type ProgressReporter interface {
	// OnDiscoveryStart is called when the walk begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called with the number of admitted files.
	OnDiscoveryComplete(admitted, rejected int)

	// OnFileProcessingStart is called before files are dispatched.
	OnFileProcessingStart(totalFiles int)

	// OnFileProcessed is called once per admitted file.
	OnFileProcessed(path string, kind Kind)

	// OnComplete is called after the merge.
	OnComplete(report *Report)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                          {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(admitted, rejected int) {}
func (n *NoOpProgressReporter) OnFileProcessingStart(totalFiles int)       {}
func (n *NoOpProgressReporter) OnFileProcessed(path string, kind Kind)     {}
func (n *NoOpProgressReporter) OnComplete(report *Report)                  {}
