package graph

import "errors"

// Sentinel errors for graph construction. These are the "structural"
// failure class of SPEC_FULL.md §7: fatal for the operation that raised
// them, with the caller expected to retry with corrected input.
var (
	// ErrDuplicateNode is returned by AddNode when (file, local) has
	// already been used.
	ErrDuplicateNode = errors.New("graph: duplicate node")

	// ErrUnknownNode is returned when an edge (or a push-scoped-symbol's
	// scope reference) names a node handle the graph does not recognize.
	ErrUnknownNode = errors.New("graph: unknown node")

	// ErrUnknownFile is returned when a node names a FileHandle the graph
	// did not allocate.
	ErrUnknownFile = errors.New("graph: unknown file")

	// ErrInvalidEdge is returned when an edge would cross files without
	// touching root on at least one end.
	ErrInvalidEdge = errors.New("graph: edge must touch root to cross files")

	// ErrNotExportedScope is returned when a push-scoped-symbol node names
	// a scope that is not marked exported.
	ErrNotExportedScope = errors.New("graph: scope is not exported")

	// ErrUninternedSymbol is returned when a node kind that requires a
	// symbol is given the zero symbol.Handle.
	ErrUninternedSymbol = errors.New("graph: node requires an interned symbol")

	// ErrFrozen is returned by AddNode/AddEdge once Freeze has been
	// called; the engine treats a frozen graph as read-only from then on,
	// matching SPEC_FULL.md §3's lifecycle rule.
	ErrFrozen = errors.New("graph: graph is frozen")
)
