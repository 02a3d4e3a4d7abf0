package path

import (
	"github.com/github/stack-graphs/graph"
	"github.com/github/stack-graphs/stack"
)

// Step applies the single-edge extension semantics of SPEC_FULL.md §4.3:
// given the state at the end of a walk and an edge leaving that end node,
// it returns the state after crossing the edge and the node the walk now
// logically ends at.
//
// The logical end node is edge.Sink for every node kind except
// jump-to-scope: entering a jump-to-scope node immediately pops the scope
// stack and redirects the walk to continue from the scope that was on top
// (SPEC_FULL.md's table folds the "continue from node s instead of N'"
// rule into the same step that enters N', rather than modeling
// jump-to-scope as a node the walk ever visibly stops at).
//
// ok is false when the edge is illegal in the current state (wrong symbol
// on top, empty stack where one is required, ...); when
// ok is false, state and end are unspecified and must not be used.
func Step(g *graph.Graph, in *Interners, state State, edge graph.Edge) (newState State, end graph.NodeHandle, ok bool) {
	n := g.MustNode(edge.Sink)

	switch n.Kind {
	case graph.KindRoot, graph.KindScope:
		return state, edge.Sink, true

	case graph.KindPushSymbol:
		elem := SymbolStackElem{Symbol: n.Symbol, IsScoped: false}
		newState = State{
			SymbolStack: in.Symbols.Cons(elem, state.SymbolStack),
			ScopeStack:  state.ScopeStack,
		}
		return newState, edge.Sink, true

	case graph.KindPushScopedSymbol:
		elem := SymbolStackElem{Symbol: n.Symbol, IsScoped: true, Scopes: in.Scopes.Cons(n.Scope, state.ScopeStack)}
		newState = State{
			SymbolStack: in.Symbols.Cons(elem, state.SymbolStack),
			ScopeStack:  state.ScopeStack,
		}
		return newState, edge.Sink, true

	case graph.KindPopSymbol:
		top, has := in.Symbols.Head(state.SymbolStack)
		if !has || top.IsScoped || top.Symbol != n.Symbol {
			return State{}, 0, false
		}
		newState = State{
			SymbolStack: in.Symbols.Tail(state.SymbolStack),
			ScopeStack:  state.ScopeStack,
		}
		return newState, edge.Sink, true

	case graph.KindPopScopedSymbol:
		top, has := in.Symbols.Head(state.SymbolStack)
		if !has || !top.IsScoped || top.Symbol != n.Symbol {
			return State{}, 0, false
		}
		newState = State{
			SymbolStack: in.Symbols.Tail(state.SymbolStack),
			ScopeStack:  top.Scopes,
		}
		return newState, edge.Sink, true

	case graph.KindDropScopes:
		newState = State{
			SymbolStack: state.SymbolStack,
			ScopeStack:  stack.Empty,
		}
		return newState, edge.Sink, true

	case graph.KindJumpToScope:
		top, has := in.Scopes.Head(state.ScopeStack)
		if !has {
			// A dead-end prune, not an error: SPEC_FULL.md §9 follows the
			// reference implementation's choice of silently dropping a
			// jump-to-scope taken with an empty scope stack.
			return State{}, 0, false
		}
		newState = State{
			SymbolStack: state.SymbolStack,
			ScopeStack:  in.Scopes.Tail(state.ScopeStack),
		}
		return newState, top, true

	default:
		return State{}, 0, false
	}
}
