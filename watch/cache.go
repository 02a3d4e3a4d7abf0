package watch

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/github/stack-graphs/graph"
	"github.com/github/stack-graphs/storage"
)

// BuildFunc constructs a fresh graph and partial-path database for a
// project root from scratch.
type BuildFunc func(ctx context.Context, projectRoot string) (*graph.Graph, storage.Database, error)

// RefreshFunc incorporates a set of dirty file paths into the current
// graph and database, returning the updated pair. A RefreshFunc that has
// no cheaper incremental path may simply call the original BuildFunc again
// and ignore dirty.
type RefreshFunc func(ctx context.Context, projectRoot string, dirty []string, currentGraph *graph.Graph, currentDB storage.Database) (*graph.Graph, storage.Database, error)

// snapshot is the current (graph, database) pair for a project, read
// atomically by Snapshot and swapped atomically by Refresh.
type snapshot struct {
	g  *graph.Graph
	db storage.Database
}

// ProjectCache holds the current graph and partial-path database for one
// project root, rebuilding them on demand and refreshing them as the
// filesystem changes underneath (SPEC_FULL.md §13).
//
// Thread safety: Snapshot, MarkDirty, and Refresh are all safe for
// concurrent use.
type ProjectCache struct {
	root  string
	build BuildFunc

	mu   sync.RWMutex
	snap *snapshot

	dirtyMu sync.Mutex
	dirty   map[string]struct{}

	flight singleflight.Group

	watcher *Watcher
}

// NewProjectCache returns an empty ProjectCache for root. Call Refresh (or
// Snapshot, which builds lazily) before using it.
func NewProjectCache(root string, build BuildFunc) *ProjectCache {
	return &ProjectCache{root: root, build: build, dirty: make(map[string]struct{})}
}

// Snapshot returns the current graph and database, building them via
// BuildFunc on first use.
func (c *ProjectCache) Snapshot(ctx context.Context) (*graph.Graph, storage.Database, error) {
	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()
	if snap != nil {
		return snap.g, snap.db, nil
	}
	return c.buildInitial(ctx)
}

func (c *ProjectCache) buildInitial(ctx context.Context) (*graph.Graph, storage.Database, error) {
	result, err, _ := c.flight.Do("build", func() (any, error) {
		c.mu.RLock()
		if c.snap != nil {
			s := c.snap
			c.mu.RUnlock()
			return s, nil
		}
		c.mu.RUnlock()

		g, db, err := c.build(ctx, c.root)
		if err != nil {
			return nil, fmt.Errorf("watch: build %s: %w", c.root, err)
		}
		s := &snapshot{g: g, db: db}

		c.mu.Lock()
		c.snap = s
		c.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, nil, err
	}
	s := result.(*snapshot)
	return s.g, s.db, nil
}

// MarkDirty records a path as changed since the last Refresh. It is safe
// to call from the Watcher's debounce handler or directly by a caller that
// tracks changes some other way.
func (c *ProjectCache) MarkDirty(paths ...string) {
	c.dirtyMu.Lock()
	defer c.dirtyMu.Unlock()
	for _, p := range paths {
		c.dirty[p] = struct{}{}
	}
}

// Refresh incorporates every path marked dirty since the last Refresh into
// the cached graph and database via refresh, deduplicating concurrent
// callers onto a single in-flight refresh (SPEC_FULL.md §13). It is a
// no-op, returning the current snapshot unchanged, if nothing is dirty and
// the cache has already been built once.
func (c *ProjectCache) Refresh(ctx context.Context, refresh RefreshFunc) (*graph.Graph, storage.Database, error) {
	c.mu.RLock()
	current := c.snap
	c.mu.RUnlock()
	if current == nil {
		return c.buildInitial(ctx)
	}

	c.dirtyMu.Lock()
	if len(c.dirty) == 0 {
		c.dirtyMu.Unlock()
		return current.g, current.db, nil
	}
	dirty := make([]string, 0, len(c.dirty))
	for p := range c.dirty {
		dirty = append(dirty, p)
	}
	c.dirtyMu.Unlock()

	// dirty paths are only cleared once refresh succeeds, so a failed
	// refresh leaves them marked for the next attempt instead of silently
	// dropping the change.
	result, err, _ := c.flight.Do("refresh", func() (any, error) {
		c.mu.RLock()
		cur := c.snap
		c.mu.RUnlock()

		g, db, err := refresh(ctx, c.root, dirty, cur.g, cur.db)
		if err != nil {
			return nil, fmt.Errorf("watch: refresh %s: %w", c.root, err)
		}
		s := &snapshot{g: g, db: db}

		c.mu.Lock()
		c.snap = s
		c.mu.Unlock()

		c.dirtyMu.Lock()
		for _, p := range dirty {
			delete(c.dirty, p)
		}
		c.dirtyMu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, nil, err
	}
	s := result.(*snapshot)
	return s.g, s.db, nil
}

// Watch starts an fsnotify Watcher over the project root that calls
// MarkDirty for every debounced change and then Refresh with refreshFn.
// The returned Watcher must be stopped by the caller.
func (c *ProjectCache) Watch(ctx context.Context, refreshFn RefreshFunc, opts *WatcherOptions) (*Watcher, error) {
	w, err := NewWatcher(c.root, func(paths []string) {
		c.MarkDirty(paths...)
		// A failed refresh leaves paths dirty (see Refresh); the next
		// debounced batch will retry them.
		_, _, _ = c.Refresh(ctx, refreshFn)
	}, opts)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	c.watcher = w
	return w, nil
}

// Close stops the watcher (if one was started) and closes the cached
// database.
func (c *ProjectCache) Close() error {
	if c.watcher != nil {
		c.watcher.Stop()
	}
	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()
	if snap == nil || snap.db == nil {
		return nil
	}
	return snap.db.Close()
}
