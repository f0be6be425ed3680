package watcher

import (
	"context"
	"log"
	"sort"
	"sync"
)

// WatchCoordinator routes debounced file changes to a Runner.
// The file watcher is paused while a run is in progress; changes observed
// during the run fire one follow-up run once it completes.
type WatchCoordinator struct {
	files  FileWatcher
	runner Runner

	mu      sync.Mutex
	pending map[string]bool
	wake    chan struct{}
}

// NewWatchCoordinator creates a new watch coordinator.
func NewWatchCoordinator(files FileWatcher, runner Runner) *WatchCoordinator {
	return &WatchCoordinator{
		files:   files,
		runner:  runner,
		pending: make(map[string]bool),
		wake:    make(chan struct{}, 1),
	}
}

// Start begins routing file changes to the runner.
// Blocks until context is cancelled.
func (c *WatchCoordinator) Start(ctx context.Context) error {
	if err := c.files.Start(ctx, c.handleFileChange); err != nil {
		c.cleanup()
		return err
	}
	defer c.cleanup()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.wake:
			changed := c.takePending()
			if len(changed) == 0 {
				continue
			}
			c.run(ctx, changed)
		}
	}
}

// run executes one pass with the file watcher paused.
func (c *WatchCoordinator) run(ctx context.Context, changed []string) {
	c.files.Pause()
	defer c.files.Resume()

	log.Printf("Processing %d file change(s)...", len(changed))
	if err := c.runner.Run(ctx, changed); err != nil {
		log.Printf("Warning: run failed: %v", err)
	}
}

// handleFileChange records changed files and wakes the run loop.
func (c *WatchCoordinator) handleFileChange(files []string) {
	if len(files) == 0 {
		return
	}

	c.mu.Lock()
	for _, f := range files {
		c.pending[f] = true
	}
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *WatchCoordinator) takePending() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	files := make([]string, 0, len(c.pending))
	for f := range c.pending {
		files = append(files, f)
	}
	c.pending = make(map[string]bool)
	sort.Strings(files)
	return files
}

// cleanup stops the file watcher.
func (c *WatchCoordinator) cleanup() {
	if err := c.files.Stop(); err != nil {
		log.Printf("Warning: file watcher stop failed: %v", err)
	}
}
