package partial

import (
	"github.com/github/stack-graphs/graph"
	"github.com/github/stack-graphs/symbol"
)

// Vars allocates fresh pattern variables when seeding a new partial path
// walk (SPEC_FULL.md §4.4). Each variable a Vars hands out differs from
// every one it handed out before, so walks seeded from one shared Vars never
// collide before Concatenate unifies them; two separate Vars may hand out
// the same variables.
type Vars struct {
	nextSymbol uint32
	nextScope  uint32
}

// NewVars returns an allocator whose first Symbol()/Scope() call returns
// variable 1, reserving 0 as "unused".
func NewVars() *Vars { return &Vars{} }

func (v *Vars) Symbol() SymbolVar {
	v.nextSymbol++
	return SymbolVar(v.nextSymbol)
}

func (v *Vars) Scope() ScopeVar {
	v.nextScope++
	return ScopeVar(v.nextScope)
}

// Seed returns the (precondition, postcondition) pair a zero-length
// partial path starts from: both sides are the same, wholly unconstrained
// bare-variable pattern, since nothing has been pushed or popped yet.
func (v *Vars) Seed() Condition {
	c := Condition{
		Symbols: SymbolStackPattern{Open: true, Var: v.Symbol()},
		Scopes:  ScopeStackPattern{Open: true, Var: v.Scope()},
	}
	return c
}

// SeedAt returns the (precondition, postcondition) pair a zero-length
// partial path starts from when seeded directly at node n, without having
// traversed any edge into it. A push-symbol or push-scoped-symbol node's
// own effect takes hold immediately in the postcondition, mirroring
// path.Seed; the precondition stays the bare, wholly unconstrained seed
// either way. Every other node leaves both sides equal to the bare seed.
func (v *Vars) SeedAt(g *graph.Graph, n graph.NodeHandle) (pre, post Condition) {
	pre = v.Seed()
	post = pre
	node := g.MustNode(n)
	switch node.Kind {
	case graph.KindPushSymbol:
		post.Symbols = prependSymbol(post.Symbols, SymbolElem{Symbol: node.Symbol})
	case graph.KindPushScopedSymbol:
		post.Symbols = prependSymbol(post.Symbols, SymbolElem{Symbol: node.Symbol, IsScoped: true, Scopes: prependScope(post.Scopes, node.Scope)})
	}
	return pre, post
}

// Step extends a symbolic (precondition, postcondition) pair across a
// single edge, the partial-path analogue of path.Step (SPEC_FULL.md §4.3,
// lifted to patterns per §4.4). Popping past an already-exhausted but open
// postcondition tail does not fail the way it would in the concrete
// kernel: instead it grows pre with the element that tail must have
// started with, which is how a partial path built outward from a single
// node discovers its own precondition as it goes. ok is false for a
// genuine mismatch (wrong symbol, wrong scoped-ness, or a stack that is
// closed and already empty) and for a jump-to-scope whose postcondition
// scope stack has no concrete top.
func Step(g *graph.Graph, pre, post Condition, e graph.Edge) (newPre, newPost Condition, end graph.NodeHandle, ok bool) {
	n := g.MustNode(e.Sink)

	switch n.Kind {
	case graph.KindRoot, graph.KindScope:
		return pre, post, e.Sink, true

	case graph.KindDropScopes:
		post.Scopes = ScopeStackPattern{}
		return pre, post, e.Sink, true

	case graph.KindPushSymbol:
		post.Symbols = prependSymbol(post.Symbols, SymbolElem{Symbol: n.Symbol})
		return pre, post, e.Sink, true

	case graph.KindPushScopedSymbol:
		post.Symbols = prependSymbol(post.Symbols, SymbolElem{Symbol: n.Symbol, IsScoped: true, Scopes: prependScope(post.Scopes, n.Scope)})
		return pre, post, e.Sink, true

	case graph.KindPopSymbol:
		newPre, newPost, ok := popSymbol(pre, post, n.Symbol, false)
		return newPre, newPost, e.Sink, ok

	case graph.KindPopScopedSymbol:
		newPre, newPost, ok := popSymbol(pre, post, n.Symbol, true)
		return newPre, newPost, e.Sink, ok

	case graph.KindJumpToScope:
		if len(post.Scopes.Concrete) > 0 {
			top := post.Scopes.Concrete[0]
			post.Scopes.Concrete = post.Scopes.Concrete[1:]
			return pre, post, top, true
		}
		// A wholly unresolved scope-stack tail names a family of scope
		// stacks, not a single node this walk could redirect to; this
		// package has no pattern variable standing for one scope node
		// rather than a stack tail, so a jump through an open tail is
		// left unresolved here rather than guessed at.
		return pre, post, e.Sink, false

	default:
		return pre, post, e.Sink, false
	}
}

func prependSymbol(p SymbolStackPattern, e SymbolElem) SymbolStackPattern {
	concrete := make([]SymbolElem, 0, len(p.Concrete)+1)
	concrete = append(concrete, e)
	concrete = append(concrete, p.Concrete...)
	return SymbolStackPattern{Concrete: concrete, Open: p.Open, Var: p.Var}
}

func prependScope(p ScopeStackPattern, h graph.NodeHandle) ScopeStackPattern {
	concrete := make([]graph.NodeHandle, 0, len(p.Concrete)+1)
	concrete = append(concrete, h)
	concrete = append(concrete, p.Concrete...)
	return ScopeStackPattern{Concrete: concrete, Open: p.Open, Var: p.Var}
}

// popSymbol consumes the top of post.Symbols, requiring it to name sym
// with the given scoped-ness. When post's concrete prefix is already
// exhausted but open, the element is instead appended to pre's required
// prefix; post's attached scope pattern (for a scoped pop) is simply
// whatever post.Scopes already held, since by construction that is what
// the invented element's attachment must equal.
func popSymbol(pre, post Condition, sym symbol.Handle, wantScoped bool) (Condition, Condition, bool) {
	if len(post.Symbols.Concrete) > 0 {
		top := post.Symbols.Concrete[0]
		if top.IsScoped != wantScoped || top.Symbol != sym {
			return pre, post, false
		}
		post.Symbols.Concrete = post.Symbols.Concrete[1:]
		if wantScoped {
			post.Scopes = top.Scopes
		}
		return pre, post, true
	}
	if !post.Symbols.Open {
		return pre, post, false
	}

	elem := SymbolElem{Symbol: sym, IsScoped: wantScoped}
	if wantScoped {
		elem.Scopes = post.Scopes
	}
	concrete := make([]SymbolElem, len(pre.Symbols.Concrete), len(pre.Symbols.Concrete)+1)
	copy(concrete, pre.Symbols.Concrete)
	pre.Symbols.Concrete = append(concrete, elem)
	return pre, post, true
}
