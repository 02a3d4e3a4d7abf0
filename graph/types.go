// Package graph implements the stack-graph node/edge store (SPEC_FULL.md
// §4.2): an interned, append-only, per-file arena of nodes plus a
// distinguished singleton root node and jump-to-scope node shared across
// every file in the graph.
package graph

import "github.com/github/stack-graphs/symbol"

// FileHandle identifies a file the graph knows about. The zero value,
// NoFile, is used by the two singleton nodes (root and jump-to-scope),
// which belong to no file.
type FileHandle uint32

// NoFile is the FileHandle of nodes that are not file-local.
const NoFile FileHandle = 0

// NodeHandle is a dense, graph-local handle for a node. The zero value is
// never returned by AddNode; it is reserved so a zero-valued NodeHandle
// field reads as "absent".
type NodeHandle uint32

// NodeID is a node's stable identity: a file (absent for root and
// jump-to-scope) paired with a local ID that the caller chooses and that
// must be unique within that file.
type NodeID struct {
	File  FileHandle
	Local uint32
}

// NodeKind is the closed, 8-member set of stack graph node kinds
// (SPEC_FULL.md §3). The variant set does not grow; kind-specific payload
// lives as plain fields on Node rather than through an open-ended
// inheritance hierarchy (SPEC_FULL.md §9).
type NodeKind uint8

const (
	// KindRoot is the global entry/exit singleton node.
	KindRoot NodeKind = iota
	// KindJumpToScope pops a scope off the scope stack and continues
	// traversal from it.
	KindJumpToScope
	// KindScope is a plain routing node; IsExported gates whether it may
	// appear as the attached scope of a push-scoped-symbol.
	KindScope
	// KindPushSymbol pushes Symbol onto the symbol stack.
	KindPushSymbol
	// KindPushScopedSymbol pushes Symbol paired with the current scope
	// stack, using Scope as the exported scope it is attached to.
	KindPushScopedSymbol
	// KindPopSymbol consumes the top of the symbol stack if it is a plain
	// symbol equal to Symbol.
	KindPopSymbol
	// KindPopScopedSymbol consumes the top of the symbol stack if it is a
	// scoped symbol named Symbol, restoring its attached scope stack.
	KindPopScopedSymbol
	// KindDropScopes clears the scope stack.
	KindDropScopes
)

func (k NodeKind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindJumpToScope:
		return "jump-to-scope"
	case KindScope:
		return "scope"
	case KindPushSymbol:
		return "push-symbol"
	case KindPushScopedSymbol:
		return "push-scoped-symbol"
	case KindPopSymbol:
		return "pop-symbol"
	case KindPopScopedSymbol:
		return "pop-scoped-symbol"
	case KindDropScopes:
		return "drop-scopes"
	default:
		return "unknown"
	}
}

// Span is an opaque source-position annotation. The engine never
// interprets its fields; it only stores and returns them (SPEC_FULL.md §6).
type Span struct {
	StartLine      int
	StartByte      int
	StartUTF16     int
	StartGrapheme  int
	EndLine        int
	EndByte        int
	EndUTF16       int
	EndGrapheme    int
}

// SourceInfo is optional per-node metadata describing where in the source
// text a node came from.
type SourceInfo struct {
	Span        Span
	SyntaxKind  string
	DefiensSpan *Span
}

// Node is a single stack graph node. Fields not relevant to Kind are left
// at their zero value; see the table in SPEC_FULL.md §3 for which fields a
// given Kind uses.
type Node struct {
	Handle NodeHandle
	Kind   NodeKind
	ID     NodeID

	// Symbol is used by KindPushSymbol, KindPushScopedSymbol,
	// KindPopSymbol, and KindPopScopedSymbol.
	Symbol symbol.Handle

	// Scope is the exported scope a KindPushScopedSymbol node attaches its
	// symbol to.
	Scope NodeHandle

	// IsReference marks a push node as a reference site (a complete path
	// must start at one, SPEC_FULL.md §3).
	IsReference bool

	// IsDefinition marks a pop node as a definition site (a complete path
	// must end at one).
	IsDefinition bool

	// IsExported marks a KindScope node as eligible to be the attached
	// scope of a push-scoped-symbol.
	IsExported bool

	Source *SourceInfo
	Debug  map[string]string
}

// Edge is a directed, precedence-weighted relationship between two nodes
// (SPEC_FULL.md §3). Edges may cross files only between a file-local node
// and root.
type Edge struct {
	Source     NodeHandle
	Sink       NodeHandle
	Precedence int32
}
