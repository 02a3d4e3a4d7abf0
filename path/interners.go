// Package path implements the path kernel: the symbol-stack/scope-stack
// state machine that SPEC_FULL.md §4.3 defines for extending a walk across
// a single edge, plus the cycle key and shadowing rules that keep the
// forward path stitcher (package stitcher) terminating and deterministic.
package path

import (
	"github.com/github/stack-graphs/graph"
	"github.com/github/stack-graphs/stack"
	"github.com/github/stack-graphs/symbol"
)

// SymbolStackElem is one entry of an interned symbol stack: a symbol,
// optionally paired with the scope stack that was live when it was pushed
// (a "scoped symbol", SPEC_FULL.md §3). Comparable, so it can be used as
// the element type of a stack.Interner.
type SymbolStackElem struct {
	Symbol   symbol.Handle
	IsScoped bool
	Scopes   stack.Handle // meaningful only when IsScoped
}

// Interners bundles the two hash-consed stack interners a StackGraph's
// paths are built from: one for symbol stacks (whose elements are
// SymbolStackElem), one for scope stacks (whose elements are scope node
// handles).
type Interners struct {
	Symbols *stack.Interner[SymbolStackElem]
	Scopes  *stack.Interner[graph.NodeHandle]
}

// NewInterners returns a fresh, empty Interners.
func NewInterners() *Interners {
	return &Interners{
		Symbols: stack.NewInterner[SymbolStackElem](),
		Scopes:  stack.NewInterner[graph.NodeHandle](),
	}
}

// State is the (symbol stack, scope stack) pair a path carries at a given
// point in its walk.
type State struct {
	SymbolStack stack.Handle
	ScopeStack  stack.Handle
}

// Empty is the state every seed walk begins in.
var Empty = State{SymbolStack: stack.Empty, ScopeStack: stack.Empty}

// CycleKey is the termination predicate of SPEC_FULL.md §4.3: a walk that
// revisits a cycle key it has already produced on the same walk is
// rejected as a cycle.
type CycleKey struct {
	End   graph.NodeHandle
	State State
}
