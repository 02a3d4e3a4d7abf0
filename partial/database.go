package partial

import (
	"sync"

	"github.com/github/stack-graphs/graph"
)

// Database stores partial paths keyed by the node they start at, so a
// stitcher can fetch "every partial path departing from this node" without
// scanning the whole corpus (SPEC_FULL.md §4.6, §12).
type Database interface {
	// Add stores p. Callers must have already validated p via
	// NewPartialPath; Add does not re-check the divergence guard.
	Add(p PartialPath)
	// PartialPathsFrom returns every stored partial path whose Start is n.
	PartialPathsFrom(n graph.NodeHandle) []PartialPath
	// Len reports how many partial paths are stored in total.
	Len() int
}

// MemoryDatabase is an in-process, concurrency-safe Database backed by a
// map from start node to its partial paths. It is the Database
// implementation used by single-process callers and by tests. Persistence
// across runs is storage.BadgerDatabase's job, which does not implement
// Database; its partial paths are loaded into a MemoryDatabase for use.
type MemoryDatabase struct {
	mu      sync.RWMutex
	byStart map[graph.NodeHandle][]PartialPath
}

// NewMemoryDatabase returns an empty MemoryDatabase.
func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{byStart: make(map[graph.NodeHandle][]PartialPath)}
}

func (d *MemoryDatabase) Add(p PartialPath) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byStart[p.Start] = append(d.byStart[p.Start], p)
}

func (d *MemoryDatabase) PartialPathsFrom(n graph.NodeHandle) []PartialPath {
	d.mu.RLock()
	defer d.mu.RUnlock()
	stored := d.byStart[n]
	out := make([]PartialPath, len(stored))
	copy(out, stored)
	return out
}

func (d *MemoryDatabase) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := 0
	for _, ps := range d.byStart {
		n += len(ps)
	}
	return n
}
