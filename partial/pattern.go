// Package partial implements symbolic partial paths (SPEC_FULL.md §4.4):
// paths whose precondition/postcondition carry stack-shaped patterns with
// free variables, plus the unification-based concatenation algebra used to
// join them, the divergence guard that keeps a partial-path database
// finite, and the Database interface the partial-path stitcher queries.
package partial

import (
	"github.com/github/stack-graphs/graph"
	"github.com/github/stack-graphs/symbol"
)

// SymbolVar names a symbol-stack tail variable within one partial path. A
// fresh SymbolVar is allocated per unbound tail when a partial path is
// constructed; it is only meaningful relative to the partial path (or
// concatenation result) that declares it.
type SymbolVar uint32

// ScopeVar names a scope-stack tail variable, analogous to SymbolVar.
type ScopeVar uint32

// SymbolElem is one concrete entry of a symbol stack pattern.
type SymbolElem struct {
	Symbol   symbol.Handle
	IsScoped bool
	// Scopes is meaningful only when IsScoped; it is the pattern the
	// attached scope stack must match.
	Scopes ScopeStackPattern
}

// SymbolStackPattern describes a symbol stack's shape: a concrete prefix
// (top-first) followed either by nothing (Open == false, the stack must be
// exactly this prefix) or by a free tail variable (Open == true, Var names
// it) that matches whatever remains.
type SymbolStackPattern struct {
	Concrete []SymbolElem
	Open     bool
	Var      SymbolVar
}

// IsBareVariable reports whether p accepts any symbol stack whatsoever: no
// concrete prefix, just an open tail variable. This is half of the
// divergence predicate of SPEC_FULL.md §4.4.
func (p SymbolStackPattern) IsBareVariable() bool {
	return len(p.Concrete) == 0 && p.Open
}

// ScopeStackPattern describes a scope stack's shape the same way
// SymbolStackPattern does, but its concrete elements are plain scope node
// handles (scope stacks do not nest further patterns).
type ScopeStackPattern struct {
	Concrete []graph.NodeHandle
	Open     bool
	Var      ScopeVar
}

// Condition is a (symbol-stack pattern, scope-stack pattern) pair: the
// precondition or postcondition of a PartialPath.
type Condition struct {
	Symbols SymbolStackPattern
	Scopes  ScopeStackPattern
}

// ClosedSymbolStack builds a closed (non-variable) SymbolStackPattern from
// a concrete, already-known stack — the pattern form of a concrete Path's
// state, used when seeding a partial-path stitcher from a complete
// resolution request.
func ClosedSymbolStack(elems []SymbolElem) SymbolStackPattern {
	return SymbolStackPattern{Concrete: elems}
}

// ClosedScopeStack is ClosedSymbolStack's scope-stack counterpart.
func ClosedScopeStack(elems []graph.NodeHandle) ScopeStackPattern {
	return ScopeStackPattern{Concrete: elems}
}
