package partial

import (
	"testing"

	"github.com/github/stack-graphs/graph"
	"github.com/github/stack-graphs/symbol"
)

func TestStepPushDiscoversNoPrecondition(t *testing.T) {
	g := graph.NewGraph()
	syms := symbol.NewInterner()
	x := syms.Intern("x")
	f, _ := g.AddFile("a")
	a, _ := g.AddNode(f, 1, graph.KindPushSymbol, graph.NodeOptions{Symbol: x, IsReference: true})
	_ = g.AddEdge(g.Root(), a, 0)

	vars := NewVars()
	seed := vars.Seed()
	edge := g.OutgoingEdges(g.Root())[0]
	pre, post, end, ok := Step(g, seed, seed, edge)
	if !ok {
		t.Fatal("entering a push-symbol node should always be legal")
	}
	if end != a {
		t.Fatalf("end = %v, want %v", end, a)
	}
	if len(pre.Symbols.Concrete) != 0 {
		t.Fatal("pushing should never constrain the precondition")
	}
	if len(post.Symbols.Concrete) != 1 || post.Symbols.Concrete[0].Symbol != x {
		t.Fatalf("postcondition should record the pushed symbol, got %+v", post.Symbols)
	}
}

func TestStepPopPastOpenTailGrowsPrecondition(t *testing.T) {
	// A partial path seeded directly at a pop-symbol node, with nothing
	// pushed first, must discover that its precondition requires that
	// symbol on top of whatever stack the caller arrives with
	// (SPEC_FULL.md §4.4).
	g := graph.NewGraph()
	syms := symbol.NewInterner()
	x := syms.Intern("x")
	f, _ := g.AddFile("a")
	b, _ := g.AddNode(f, 1, graph.KindPopSymbol, graph.NodeOptions{Symbol: x, IsDefinition: true})
	_ = g.AddEdge(g.Root(), b, 0)

	vars := NewVars()
	seed := vars.Seed()
	edge := g.OutgoingEdges(g.Root())[0]
	pre, post, end, ok := Step(g, seed, seed, edge)
	if !ok {
		t.Fatal("popping an unresolved tail should succeed by growing the precondition")
	}
	if end != b {
		t.Fatalf("end = %v, want %v", end, b)
	}
	if len(pre.Symbols.Concrete) != 1 || pre.Symbols.Concrete[0].Symbol != x {
		t.Fatalf("precondition should now require x on top, got %+v", pre.Symbols)
	}
	if !post.Symbols.Open || len(post.Symbols.Concrete) != 0 {
		t.Fatalf("postcondition tail should remain open and empty, got %+v", post.Symbols)
	}
}

func TestStepPopWrongSymbolIsIllegal(t *testing.T) {
	g := graph.NewGraph()
	syms := symbol.NewInterner()
	x, y := syms.Intern("x"), syms.Intern("y")
	f, _ := g.AddFile("a")
	a, _ := g.AddNode(f, 1, graph.KindPushSymbol, graph.NodeOptions{Symbol: x, IsReference: true})
	c, _ := g.AddNode(f, 2, graph.KindPopSymbol, graph.NodeOptions{Symbol: y, IsDefinition: true})
	_ = g.AddEdge(g.Root(), a, 0)
	_ = g.AddEdge(a, c, 0)

	vars := NewVars()
	seed := vars.Seed()
	pre1, post1, _, ok := Step(g, seed, seed, g.OutgoingEdges(g.Root())[0])
	if !ok {
		t.Fatal("pushing x should be legal")
	}
	_, _, _, ok = Step(g, pre1, post1, g.OutgoingEdges(a)[0])
	if ok {
		t.Fatal("popping y against a concrete x on top should be illegal")
	}
}
