package path

import (
	"github.com/github/stack-graphs/graph"
	"github.com/github/stack-graphs/stack"
)

// Seed returns the state a walk begins in when it is placed directly at
// node n without having traversed any edge into it (SPEC_FULL.md §4.5's
// from_nodes seeding mode). A reference node's own push takes effect
// immediately, the same way it would if some earlier edge had entered it;
// otherwise a seed starts in the empty state, since Step applies every
// other node's effect only as edges are traversed into it.
func Seed(g *graph.Graph, in *Interners, n graph.NodeHandle) State {
	node := g.MustNode(n)
	switch node.Kind {
	case graph.KindPushSymbol:
		elem := SymbolStackElem{Symbol: node.Symbol}
		return State{SymbolStack: in.Symbols.Cons(elem, stack.Empty), ScopeStack: stack.Empty}
	case graph.KindPushScopedSymbol:
		elem := SymbolStackElem{Symbol: node.Symbol, IsScoped: true, Scopes: in.Scopes.Cons(node.Scope, stack.Empty)}
		return State{SymbolStack: in.Symbols.Cons(elem, stack.Empty), ScopeStack: stack.Empty}
	default:
		return Empty
	}
}
