package partial

import (
	"testing"

	"github.com/github/stack-graphs/graph"
	"github.com/github/stack-graphs/symbol"
)

func TestBareVariableAtRootIsDivergent(t *testing.T) {
	g := graph.NewGraph()
	p := PartialPath{
		Start:        g.Root(),
		End:          g.Root(),
		Precondition: Condition{Symbols: SymbolStackPattern{Open: true, Var: 0}, Scopes: ScopeStackPattern{Open: true, Var: 0}},
	}
	if _, err := NewPartialPath(g, p); err == nil {
		t.Fatal("expected divergence rejection for a bare-variable precondition rooted partial path")
	}
}

func TestClosedPreconditionAtRootIsNotDivergent(t *testing.T) {
	g := graph.NewGraph()
	p := PartialPath{
		Start:        g.Root(),
		End:          g.Root(),
		Precondition: Condition{Symbols: SymbolStackPattern{}, Scopes: ScopeStackPattern{}},
	}
	if _, err := NewPartialPath(g, p); err != nil {
		t.Fatalf("a closed-empty precondition should not be rejected: %v", err)
	}
}

func TestConcatenateRequiresMatchingJoinNode(t *testing.T) {
	g := graph.NewGraph()
	f, _ := g.AddFile("a")
	n1, _ := g.AddNode(f, 1, graph.KindScope, graph.NodeOptions{})
	n2, _ := g.AddNode(f, 2, graph.KindScope, graph.NodeOptions{})
	n3, _ := g.AddNode(f, 3, graph.KindScope, graph.NodeOptions{})

	a := PartialPath{Start: n1, End: n2}
	b := PartialPath{Start: n3, End: n2}
	if _, err := Concatenate(g, a, b); err == nil {
		t.Fatal("concatenating paths whose join nodes disagree must fail")
	}
}

func TestConcatenateUnifiesOpenTailAgainstClosedSymbol(t *testing.T) {
	g := graph.NewGraph()
	syms := symbol.NewInterner()
	x := syms.Intern("x")
	f, _ := g.AddFile("a")
	ref, _ := g.AddNode(f, 1, graph.KindPushSymbol, graph.NodeOptions{Symbol: x, IsReference: true})
	mid, _ := g.AddNode(f, 2, graph.KindScope, graph.NodeOptions{})
	def, _ := g.AddNode(f, 3, graph.KindPopSymbol, graph.NodeOptions{Symbol: x, IsDefinition: true})

	// a: ref -> mid, pushes x onto whatever tail was there, postcondition
	// has an open tail carrying that pushed x.
	a := PartialPath{
		Start:         ref,
		End:           mid,
		Precondition:  Condition{Symbols: SymbolStackPattern{Open: true, Var: 0}},
		Postcondition: Condition{Symbols: SymbolStackPattern{Concrete: []SymbolElem{{Symbol: x}}, Open: true, Var: 0}},
	}
	// b: mid -> def, requires the top of stack to be exactly x with
	// nothing else, postcondition is the empty stack.
	b := PartialPath{
		Start:         mid,
		End:           def,
		Precondition:  Condition{Symbols: SymbolStackPattern{Concrete: []SymbolElem{{Symbol: x}}}},
		Postcondition: Condition{Symbols: SymbolStackPattern{}},
	}

	joined, err := Concatenate(g, a, b)
	if err != nil {
		t.Fatalf("unification should succeed: %v", err)
	}
	if joined.Start != ref || joined.End != def {
		t.Fatalf("joined path should span ref..def, got %v..%v", joined.Start, joined.End)
	}
	if !joined.IsComplete(g) {
		t.Fatal("joined path should be complete: reference start, definition end, empty postcondition")
	}
}

func TestConcatenateFailsOnSymbolMismatch(t *testing.T) {
	g := graph.NewGraph()
	syms := symbol.NewInterner()
	x, y := syms.Intern("x"), syms.Intern("y")
	f, _ := g.AddFile("a")
	n1, _ := g.AddNode(f, 1, graph.KindScope, graph.NodeOptions{})
	n2, _ := g.AddNode(f, 2, graph.KindScope, graph.NodeOptions{})

	a := PartialPath{
		Start:         n1,
		End:           n2,
		Postcondition: Condition{Symbols: SymbolStackPattern{Concrete: []SymbolElem{{Symbol: x}}}},
	}
	b := PartialPath{
		Start:        n2,
		End:          n2,
		Precondition: Condition{Symbols: SymbolStackPattern{Concrete: []SymbolElem{{Symbol: y}}}},
	}
	if _, err := Concatenate(g, a, b); err == nil {
		t.Fatal("concatenating with mismatched concrete symbols must fail")
	}
}

func TestMemoryDatabaseStoresByStartNode(t *testing.T) {
	g := graph.NewGraph()
	f, _ := g.AddFile("a")
	n1, _ := g.AddNode(f, 1, graph.KindScope, graph.NodeOptions{})
	n2, _ := g.AddNode(f, 2, graph.KindScope, graph.NodeOptions{})

	db := NewMemoryDatabase()
	db.Add(PartialPath{Start: n1, End: n2})
	db.Add(PartialPath{Start: n1, End: n1})
	db.Add(PartialPath{Start: n2, End: n1})

	if got := len(db.PartialPathsFrom(n1)); got != 2 {
		t.Fatalf("expected 2 partial paths from n1, got %d", got)
	}
	if got := len(db.PartialPathsFrom(n2)); got != 1 {
		t.Fatalf("expected 1 partial path from n2, got %d", got)
	}
	if db.Len() != 3 {
		t.Fatalf("expected 3 total partial paths, got %d", db.Len())
	}
}
