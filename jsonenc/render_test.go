package jsonenc

import (
	"encoding/json"
	"testing"

	"github.com/github/stack-graphs/graph"
	"github.com/github/stack-graphs/partial"
	"github.com/github/stack-graphs/path"
	"github.com/github/stack-graphs/stitcher"
	"github.com/github/stack-graphs/symbol"
)

func buildGraph(t *testing.T) (*graph.Graph, *symbol.Interner, graph.NodeHandle) {
	t.Helper()
	g := graph.NewGraph()
	syms := symbol.NewInterner()
	x := syms.Intern("x")
	f, err := g.AddFile("a.go")
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
	return g, syms, a
}

func TestRenderGraphIncludesFileQualifiedNodes(t *testing.T) {
	g, syms, _ := buildGraph(t)
	out := RenderGraph(g, syms)

	if len(out.Nodes) == 0 {
		t.Fatal("expected at least one node")
	}
	var sawFileNode, sawSingleton bool
	for _, n := range out.Nodes {
		if n.ID.File == "a.go" {
			sawFileNode = true
		}
		if n.ID.File == "" && n.Type == "root" {
			sawSingleton = true
		}
	}
	if !sawFileNode {
		t.Fatal("expected a node carrying the file name a.go")
	}
	if !sawSingleton {
		t.Fatal("expected the root singleton to render with no file")
	}

	if _, err := json.Marshal(out); err != nil {
		t.Fatalf("Marshal: %v", err)
	}
}

func TestRenderPathResolvesSymbolStack(t *testing.T) {
	g, syms, a := buildGraph(t)
	in := path.NewInterners()
	s := stitcher.FromNodes(g, in, []graph.NodeHandle{a})
	results, cancelled := s.Run(nil)
	if cancelled || len(results) != 1 {
		t.Fatalf("expected exactly one complete path, got %d (cancelled=%v)", len(results), cancelled)
	}

	rendered := RenderPath(g, in, syms, results[0])
	if rendered.StartNode.LocalID == 0 {
		t.Fatal("expected a non-zero start node local id")
	}
	if len(rendered.Edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(rendered.Edges))
	}
	// A complete path resolves to the empty symbol stack.
	if len(rendered.SymbolStack) != 0 {
		t.Fatalf("expected an empty symbol stack on a complete path, got %+v", rendered.SymbolStack)
	}

	if _, err := json.Marshal(rendered); err != nil {
		t.Fatalf("Marshal: %v", err)
	}
}

func TestRenderPartialPathCarriesOpenTailVariable(t *testing.T) {
	g, syms, a := buildGraph(t)
	s := stitcher.PartialFromNodes(g, []graph.NodeHandle{a})
	results, cancelled := s.Run(nil)
	if cancelled || len(results) == 0 {
		t.Fatalf("expected at least one partial path, got %d (cancelled=%v)", len(results), cancelled)
	}

	var complete *partial.PartialPath
	for i := range results {
		if results[i].IsComplete(g) {
			complete = &results[i]
		}
	}
	if complete == nil {
		t.Fatal("expected one of the partial paths to be complete")
	}

	rendered := RenderPartialPath(g, syms, *complete)
	if rendered.StartNode.LocalID == 0 {
		t.Fatal("expected a non-zero start node local id")
	}
	if !rendered.Precondition.Symbols.Open {
		t.Fatal("expected the rendered precondition to keep its open tail variable")
	}
	if _, err := json.Marshal(rendered); err != nil {
		t.Fatalf("Marshal: %v", err)
	}
}
