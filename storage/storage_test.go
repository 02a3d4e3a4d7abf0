package storage

import (
	"testing"

	"github.com/github/stack-graphs/graph"
	"github.com/github/stack-graphs/partial"
	"github.com/github/stack-graphs/symbol"
)

func buildSingleFileGraph(t *testing.T) (*graph.Graph, graph.NodeHandle) {
	t.Helper()
	g := graph.NewGraph()
	syms := symbol.NewInterner()
	x := syms.Intern("x")
	f, err := g.AddFile("a")
	if err != nil {
		t.Fatal(err)
	}
	a, err := g.AddNode(f, 1, graph.KindPushSymbol, graph.NodeOptions{Symbol: x, IsReference: true})
	if err != nil {
		t.Fatal(err)
	}
	b, err := g.AddNode(f, 2, graph.KindPopSymbol, graph.NodeOptions{Symbol: x, IsDefinition: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(g.Root(), a, 0); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(a, b, 0); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(b, g.Root(), 0); err != nil {
		t.Fatal(err)
	}
	return g, a
}

func TestMemoryDatabaseSatisfiesStorageDatabase(t *testing.T) {
	_, a := buildSingleFileGraph(t)

	db := NewMemoryDatabase()
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := db.PartialPathsFrom(a); len(got) != 0 {
		t.Fatalf("fresh database should have no partial paths, got %d", len(got))
	}
}

func TestTranslateRoundTrip(t *testing.T) {
	g, a := buildSingleFileGraph(t)

	b, ok := g.Node(a)
	if !ok {
		t.Fatal("expected node a to exist")
	}
	end := g.Root()

	p := partial.PartialPath{
		Start: a,
		End:   end,
		Edges: []partial.Edge{{Source: a, Target: end}},
		Precondition: partial.Condition{
			Symbols: partial.SymbolStackPattern{Open: true, Var: 1},
			Scopes:  partial.ClosedScopeStack(nil),
		},
		Postcondition: partial.Condition{
			Symbols: partial.SymbolStackPattern{
				Concrete: []partial.SymbolElem{{Symbol: b.Symbol}},
				Open:     true,
				Var:      1,
			},
			Scopes: partial.ClosedScopeStack(nil),
		},
	}

	stored, err := encodePartialPath(g, p)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if stored.Start.Local != b.ID.Local {
		t.Fatalf("stored start local = %d, want %d", stored.Start.Local, b.ID.Local)
	}

	got, err := decodePartialPath(g, stored)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Start != p.Start || got.End != p.End {
		t.Fatalf("round trip changed endpoints: got %+v, want %+v", got, p)
	}
	if len(got.Edges) != 1 || got.Edges[0].Source != a || got.Edges[0].Target != end {
		t.Fatalf("round trip changed edges: got %+v", got.Edges)
	}
	if len(got.Postcondition.Symbols.Concrete) != 1 || got.Postcondition.Symbols.Concrete[0].Symbol != b.Symbol {
		t.Fatalf("round trip changed postcondition: got %+v", got.Postcondition)
	}
}

func TestTranslateRejectsUnknownHandle(t *testing.T) {
	g, a := buildSingleFileGraph(t)

	p := partial.PartialPath{Start: a, End: graph.NodeHandle(9999)}
	if _, err := encodePartialPath(g, p); err == nil {
		t.Fatal("expected an error encoding a handle with no node in g")
	}
}
