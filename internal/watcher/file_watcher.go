package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a batch of changes fires.
const DefaultDebounce = 500 * time.Millisecond

// Option customizes a file watcher.
type Option func(*fileWatcher)

// WithDebounce sets the quiet period before the callback fires.
func WithDebounce(d time.Duration) Option {
	return func(fw *fileWatcher) { fw.debounceTime = d }
}

// WithSkipDir prevents directories for which skip returns true from being watched.
func WithSkipDir(skip func(path string) bool) Option {
	return func(fw *fileWatcher) { fw.skipDir = skip }
}

// WithIgnore drops events on paths for which ignore returns true.
// Artifacts written by the pipeline itself must be ignored here.
func WithIgnore(ignore func(path string) bool) Option {
	return func(fw *fileWatcher) { fw.ignore = ignore }
}

// fileWatcher implements FileWatcher interface.
type fileWatcher struct {
	watcher       *fsnotify.Watcher      // fsnotify handle
	dirs          []string               // Directories to watch
	extensions    []string               // Lower-cased suffixes to monitor (empty = all)
	skipDir       func(path string) bool // Directories never watched
	ignore        func(path string) bool // Paths whose events are dropped
	debounceTime  time.Duration          // Quiet period before firing callback
	callback      func(files []string)   // Callback to invoke with changed files
	ctx           context.Context        // Context for lifecycle management
	cancel        context.CancelFunc     // Cancel function for internal context
	paused        bool                   // Whether watching is paused
	pausedMu      sync.RWMutex           // Protects paused flag
	accumulated   map[string]bool        // Accumulated file changes
	accumulatedMu sync.Mutex             // Protects accumulated map
	debounceTimer *time.Timer            // Current debounce timer
	timerMu       sync.Mutex             // Protects debounce timer
	stopOnce      sync.Once              // Ensures Stop() is idempotent
	doneCh        chan struct{}          // Signals watch goroutine has finished
}

// NewFileWatcher creates a new file watcher for the given directories.
// dirs: Directories to watch recursively
// extensions: File extensions to monitor (e.g., []string{".js", ".py"}); empty monitors every file
func NewFileWatcher(dirs []string, extensions []string, opts ...Option) (FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	exts := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}

	fw := &fileWatcher{
		watcher:      watcher,
		dirs:         dirs,
		extensions:   exts,
		debounceTime: DefaultDebounce,
		accumulated:  make(map[string]bool),
		doneCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(fw)
	}

	// Add all directories recursively
	for _, dir := range dirs {
		if err := fw.addDirectoriesRecursively(dir); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	return fw, nil
}

// Start begins watching for file changes.
func (fw *fileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}

	fw.callback = callback
	fw.ctx, fw.cancel = context.WithCancel(ctx)

	go fw.watch()
	return nil
}

// Stop stops the file watcher.
func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.doneCh
		} else {
			// Never started
			close(fw.doneCh)
		}

		err = fw.watcher.Close()
	})
	return err
}

// Pause stops firing callbacks but continues accumulating events.
func (fw *fileWatcher) Pause() {
	fw.pausedMu.Lock()
	defer fw.pausedMu.Unlock()
	fw.paused = true
}

// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
func (fw *fileWatcher) Resume() {
	fw.pausedMu.Lock()
	wasPaused := fw.paused
	fw.paused = false
	fw.pausedMu.Unlock()

	if wasPaused {
		fw.flush()
	}
}

// watch is the main event loop.
func (fw *fileWatcher) watch() {
	defer close(fw.doneCh)

	debounceCh := make(chan struct{}, 1)

	for {
		select {
		case <-fw.ctx.Done():
			fw.stopDebounceTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			// New directories join the watch set
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addDirectoriesRecursively(event.Name); err != nil {
						log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
					}
					continue
				}
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.accumulatedMu.Lock()
			fw.accumulated[event.Name] = true
			fw.accumulatedMu.Unlock()

			fw.resetDebounceTimer(debounceCh)

		case <-debounceCh:
			fw.pausedMu.RLock()
			paused := fw.paused
			fw.pausedMu.RUnlock()

			// Paused - keep accumulating until Resume
			if !paused {
				fw.flush()
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: file watcher error: %v", err)
		}
	}
}

// flush fires the callback with the accumulated files, sorted.
func (fw *fileWatcher) flush() {
	fw.accumulatedMu.Lock()
	if len(fw.accumulated) == 0 {
		fw.accumulatedMu.Unlock()
		return
	}

	files := make([]string, 0, len(fw.accumulated))
	for file := range fw.accumulated {
		files = append(files, file)
	}
	fw.accumulated = make(map[string]bool)
	fw.accumulatedMu.Unlock()

	sort.Strings(files)
	if fw.callback != nil {
		fw.callback(files)
	}
}

// resetDebounceTimer resets the debounce timer, properly stopping the old one.
func (fw *fileWatcher) resetDebounceTimer(debounceCh chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}

	fw.debounceTimer = time.AfterFunc(fw.debounceTime, func() {
		select {
		case debounceCh <- struct{}{}:
		default:
		}
	})
}

// stopDebounceTimer stops the debounce timer if it exists.
func (fw *fileWatcher) stopDebounceTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
		fw.debounceTimer = nil
	}
}

// shouldProcessEvent checks an event's operation, ignore rule and extension.
func (fw *fileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	// Only care about WRITE, CREATE, REMOVE and RENAME events
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	if fw.ignore != nil && fw.ignore(event.Name) {
		return false
	}

	if len(fw.extensions) == 0 {
		return true
	}
	name := strings.ToLower(event.Name)
	for _, ext := range fw.extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// addDirectoriesRecursively adds all directories in the tree to the watcher.
func (fw *fileWatcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.WalkDir(rootPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// If it's the root path, fail immediately
			if path == rootPath {
				return err
			}
			log.Printf("Warning: error accessing %s: %v", path, err)
			return nil
		}

		if !d.IsDir() {
			return nil
		}

		if path != rootPath && fw.skipDir != nil && fw.skipDir(path) {
			return filepath.SkipDir
		}

		if err := fw.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to watch directory %s: %v", path, err)
		}

		return nil
	})
}
