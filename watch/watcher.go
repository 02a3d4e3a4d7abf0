package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// fsStat reports whether path is a directory, for deciding whether a
// just-created path needs to be added to the recursive watch.
func fsStat(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// ChangeHandler receives a debounced, deduplicated batch of changed paths.
type ChangeHandler func(paths []string)

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// DebounceWindow is how long to wait after the last event in a burst
	// before calling the handler. Zero uses 150ms.
	DebounceWindow time.Duration

	// IgnorePatterns are filepath.Match patterns checked against each
	// path's base name, plus plain substring checks against the full
	// path (so ".git" also skips nested paths under a .git directory).
	// Zero value uses a conservative default set.
	IgnorePatterns []string
}

func (o *WatcherOptions) applyDefaults() {
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = 150 * time.Millisecond
	}
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = []string{".git", "node_modules", ".idea", "*.swp", "*.tmp"}
	}
}

// Watcher recursively watches a directory tree and delivers debounced,
// deduplicated batches of changed paths to a ChangeHandler (SPEC_FULL.md
// §13). Events for the same path within one debounce window collapse to a
// single entry.
type Watcher struct {
	root    string
	handler ChangeHandler
	opts    WatcherOptions
	fsw     *fsnotify.Watcher

	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher builds a Watcher over root. Call Start to begin watching.
func NewWatcher(root string, handler ChangeHandler, opts *WatcherOptions) (*Watcher, error) {
	var o WatcherOptions
	if opts != nil {
		o = *opts
	}
	o.applyDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	return &Watcher{root: root, handler: handler, opts: o, fsw: fsw, done: make(chan struct{})}, nil
}

// Start recursively adds root's directory tree to the watch and begins
// delivering debounced changes to the handler. ctx cancellation stops the
// watcher in addition to an explicit Stop call.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(w.root); err != nil {
		return fmt.Errorf("watch: add %s: %w", w.root, err)
	}
	go w.loop(ctx)
	return nil
}

// Stop releases the underlying fsnotify watch. Safe to call more than
// once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fsw.Close()
	})
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.opts.IgnorePatterns {
		if base == pattern {
			return true
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if strings.Contains(path, string(filepath.Separator)+pattern+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) loop(ctx context.Context) {
	batch := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(batch) == 0 {
			return
		}
		paths := make([]string, 0, len(batch))
		for p := range batch {
			paths = append(paths, p)
		}
		batch = make(map[string]struct{})
		if w.handler != nil {
			w.handler(paths)
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-w.done:
			flush()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.shouldIgnore(event.Name) {
				continue
			}
			batch[event.Name] = struct{}{}
			if event.Has(fsnotify.Create) {
				if info, err := fsStat(event.Name); err == nil && info {
					_ = w.fsw.Add(event.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(w.opts.DebounceWindow)
				timerC = timer.C
			} else {
				timer.Reset(w.opts.DebounceWindow)
			}
		case <-timerC:
			flush()
			timer = nil
			timerC = nil
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}
