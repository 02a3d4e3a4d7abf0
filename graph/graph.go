package graph

import (
	"fmt"

	"github.com/github/stack-graphs/symbol"
)

// rootLocal and jumpToScopeLocal are the reserved NodeID.Local values for
// the two file-less singletons. They live in the NoFile namespace, which no
// caller-chosen file ever occupies.
const (
	rootLocal         uint32 = 1
	jumpToScopeLocal  uint32 = 2
)

type fileInfo struct {
	handle FileHandle
	name   string
}

// Graph is a stack graph: a node/edge store shared by every file that
// participates in a resolution. It is built via AddFile/AddNode/AddEdge,
// then (optionally) frozen and read concurrently (SPEC_FULL.md §5).
//
// Graph is not safe for concurrent writes. After Freeze, concurrent reads
// are safe.
type Graph struct {
	files   []fileInfo
	byName  map[string]FileHandle
	nodes   []Node // nodes[0] is an unused placeholder; NodeHandle 0 is invalid.
	byID    map[NodeID]NodeHandle
	outAdj  [][]int // outAdj[node] holds indices into edges, in insertion order.
	edges   []Edge
	frozen  bool

	root         NodeHandle
	jumpToScope  NodeHandle
}

// NewGraph returns an empty Graph with its root and jump-to-scope
// singletons already allocated.
func NewGraph() *Graph {
	g := &Graph{
		byName: make(map[string]FileHandle),
		byID:   make(map[NodeID]NodeHandle),
		nodes:  []Node{{}}, // placeholder for handle 0
		outAdj: [][]int{nil},
	}
	g.root = g.mustAddSingleton(KindRoot, rootLocal)
	g.jumpToScope = g.mustAddSingleton(KindJumpToScope, jumpToScopeLocal)
	return g
}

func (g *Graph) mustAddSingleton(kind NodeKind, local uint32) NodeHandle {
	id := NodeID{File: NoFile, Local: local}
	h := NodeHandle(len(g.nodes))
	g.nodes = append(g.nodes, Node{Handle: h, Kind: kind, ID: id})
	g.outAdj = append(g.outAdj, nil)
	g.byID[id] = h
	return h
}

// Root returns the handle of the shared root node.
func (g *Graph) Root() NodeHandle { return g.root }

// JumpToScope returns the handle of the shared jump-to-scope node.
func (g *Graph) JumpToScope() NodeHandle { return g.jumpToScope }

// AddFile allocates a new file and returns its handle. Calling AddFile
// twice with the same name returns the same handle, matching the
// content-addressed spirit of the rest of the interned store.
func (g *Graph) AddFile(name string) (FileHandle, error) {
	if g.frozen {
		return 0, ErrFrozen
	}
	if h, ok := g.byName[name]; ok {
		return h, nil
	}
	h := FileHandle(len(g.files) + 1)
	g.files = append(g.files, fileInfo{handle: h, name: name})
	g.byName[name] = h
	return h, nil
}

// FileName returns the name a FileHandle was allocated with.
func (g *Graph) FileName(f FileHandle) (string, bool) {
	if f == NoFile || int(f) > len(g.files) {
		return "", false
	}
	return g.files[f-1].name, true
}

// Files returns every FileHandle the graph knows about, in allocation
// order.
func (g *Graph) Files() []FileHandle {
	out := make([]FileHandle, len(g.files))
	for i, fi := range g.files {
		out[i] = fi.handle
	}
	return out
}

// NodeOptions carries the kind-specific fields for AddNode. Only the
// fields relevant to the requested NodeKind are consulted; see
// SPEC_FULL.md §3 for the per-kind attribute table.
type NodeOptions struct {
	Symbol       symbol.Handle
	Scope        NodeHandle
	IsReference  bool
	IsDefinition bool
	IsExported   bool
	Source       *SourceInfo
	Debug        map[string]string
}

// AddNode adds a file-local node and returns its handle. local must be
// unique within file; reusing (file, local) returns ErrDuplicateNode.
func (g *Graph) AddNode(file FileHandle, local uint32, kind NodeKind, opts NodeOptions) (NodeHandle, error) {
	if g.frozen {
		return 0, ErrFrozen
	}
	if kind == KindRoot || kind == KindJumpToScope {
		return 0, fmt.Errorf("graph: %s is a singleton and cannot be added via AddNode", kind)
	}
	if file == NoFile || int(file) > len(g.files) {
		return 0, fmt.Errorf("%w: file handle %d", ErrUnknownFile, file)
	}
	id := NodeID{File: file, Local: local}
	if _, exists := g.byID[id]; exists {
		return 0, fmt.Errorf("%w: %+v", ErrDuplicateNode, id)
	}

	switch kind {
	case KindPushSymbol, KindPopSymbol, KindPushScopedSymbol, KindPopScopedSymbol:
		if opts.Symbol.IsZero() {
			return 0, fmt.Errorf("%w: kind %s", ErrUninternedSymbol, kind)
		}
	}
	if kind == KindPushScopedSymbol {
		scopeNode, ok := g.node(opts.Scope)
		if !ok {
			return 0, fmt.Errorf("%w: scope %d", ErrUnknownNode, opts.Scope)
		}
		if scopeNode.Kind != KindScope || !scopeNode.IsExported {
			return 0, fmt.Errorf("%w: node %d", ErrNotExportedScope, opts.Scope)
		}
	}

	h := NodeHandle(len(g.nodes))
	n := Node{
		Handle:       h,
		Kind:         kind,
		ID:           id,
		Symbol:       opts.Symbol,
		Scope:        opts.Scope,
		IsReference:  opts.IsReference,
		IsDefinition: opts.IsDefinition,
		IsExported:   opts.IsExported,
		Source:       opts.Source,
		Debug:        opts.Debug,
	}
	g.nodes = append(g.nodes, n)
	g.outAdj = append(g.outAdj, nil)
	g.byID[id] = h
	return h, nil
}

// AddEdge adds a directed edge from source to sink. Edges between nodes in
// different files are only legal when one endpoint is root (SPEC_FULL.md
// §4.2).
func (g *Graph) AddEdge(source, sink NodeHandle, precedence int32) error {
	if g.frozen {
		return ErrFrozen
	}
	srcNode, ok := g.node(source)
	if !ok {
		return fmt.Errorf("%w: source %d", ErrUnknownNode, source)
	}
	sinkNode, ok := g.node(sink)
	if !ok {
		return fmt.Errorf("%w: sink %d", ErrUnknownNode, sink)
	}
	if srcNode.ID.File != NoFile && sinkNode.ID.File != NoFile && srcNode.ID.File != sinkNode.ID.File {
		if source != g.root && sink != g.root {
			return fmt.Errorf("%w: %d -> %d", ErrInvalidEdge, source, sink)
		}
	}

	idx := len(g.edges)
	g.edges = append(g.edges, Edge{Source: source, Sink: sink, Precedence: precedence})
	g.outAdj[source] = append(g.outAdj[source], idx)
	return nil
}

// Freeze marks the graph read-only. Further AddFile/AddNode/AddEdge calls
// fail with ErrFrozen.
func (g *Graph) Freeze() { g.frozen = true }

// Frozen reports whether Freeze has been called.
func (g *Graph) Frozen() bool { return g.frozen }

func (g *Graph) node(h NodeHandle) (Node, bool) {
	if h == 0 || int(h) >= len(g.nodes) {
		return Node{}, false
	}
	return g.nodes[h], true
}

// Node returns the node identified by h.
func (g *Graph) Node(h NodeHandle) (Node, bool) {
	return g.node(h)
}

// MustNode is like Node but panics on an unknown handle; it is meant for
// callers (the stitchers) that have already validated every handle they
// hold came from this graph.
func (g *Graph) MustNode(h NodeHandle) Node {
	n, ok := g.node(h)
	if !ok {
		panic(fmt.Sprintf("graph: unknown node handle %d", h))
	}
	return n
}

// NodeByID looks up a node by its stable (File, Local) identity rather than
// its NodeHandle, which is only valid within this *Graph instance. Callers
// that persist node identity across a reload (storage.BadgerDatabase) key on
// NodeID and use NodeByID to recover a handle in the freshly built graph.
func (g *Graph) NodeByID(id NodeID) (NodeHandle, bool) {
	h, ok := g.byID[id]
	return h, ok
}

// OutgoingEdges returns the edges whose source is h, in insertion order.
func (g *Graph) OutgoingEdges(h NodeHandle) []Edge {
	idxs := g.outAdj[h]
	out := make([]Edge, len(idxs))
	for i, idx := range idxs {
		out[i] = g.edges[idx]
	}
	return out
}

// NodesInFile returns every node handle belonging to file, in allocation
// order.
func (g *Graph) NodesInFile(file FileHandle) []NodeHandle {
	var out []NodeHandle
	for h := NodeHandle(1); int(h) < len(g.nodes); h++ {
		if g.nodes[h].ID.File == file {
			out = append(out, h)
		}
	}
	return out
}

// AllNodes returns every node handle in the graph, including the root and
// jump-to-scope singletons, in allocation order.
func (g *Graph) AllNodes() []NodeHandle {
	out := make([]NodeHandle, 0, len(g.nodes)-1)
	for h := NodeHandle(1); int(h) < len(g.nodes); h++ {
		out = append(out, h)
	}
	return out
}

// AllEdges returns every edge in the graph, in insertion order.
func (g *Graph) AllEdges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}
