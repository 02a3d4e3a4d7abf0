package graph

import (
	"errors"
	"testing"

	"github.com/github/stack-graphs/symbol"
)

func TestGraphSingletons(t *testing.T) {
	g := NewGraph()
	if g.Root() == 0 {
		t.Fatal("Root() returned the zero handle")
	}
	if g.JumpToScope() == 0 {
		t.Fatal("JumpToScope() returned the zero handle")
	}
	if g.Root() == g.JumpToScope() {
		t.Fatal("Root and JumpToScope share a handle")
	}
	root, ok := g.Node(g.Root())
	if !ok || root.Kind != KindRoot {
		t.Fatalf("Node(Root()) = (%+v, %v), want KindRoot", root, ok)
	}
}

func TestGraphAddFileIdempotent(t *testing.T) {
	g := NewGraph()
	a, err := g.AddFile("a.go")
	if err != nil {
		t.Fatal(err)
	}
	b, err := g.AddFile("a.go")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("AddFile(same name) returned different handles: %v != %v", a, b)
	}
}

func TestGraphDuplicateNode(t *testing.T) {
	g := NewGraph()
	f, _ := g.AddFile("a.go")
	if _, err := g.AddNode(f, 1, KindScope, NodeOptions{}); err != nil {
		t.Fatal(err)
	}
	_, err := g.AddNode(f, 1, KindScope, NodeOptions{})
	if !errors.Is(err, ErrDuplicateNode) {
		t.Fatalf("AddNode duplicate: got %v, want ErrDuplicateNode", err)
	}
}

func TestGraphUnknownNodeEdge(t *testing.T) {
	g := NewGraph()
	f, _ := g.AddFile("a.go")
	n, _ := g.AddNode(f, 1, KindScope, NodeOptions{})
	err := g.AddEdge(n, NodeHandle(9999), 0)
	if !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("AddEdge unknown sink: got %v, want ErrUnknownNode", err)
	}
}

func TestGraphCrossFileEdgeMustTouchRoot(t *testing.T) {
	g := NewGraph()
	f1, _ := g.AddFile("a.go")
	f2, _ := g.AddFile("b.go")
	n1, _ := g.AddNode(f1, 1, KindScope, NodeOptions{})
	n2, _ := g.AddNode(f2, 1, KindScope, NodeOptions{})

	if err := g.AddEdge(n1, n2, 0); !errors.Is(err, ErrInvalidEdge) {
		t.Fatalf("cross-file edge not touching root: got %v, want ErrInvalidEdge", err)
	}
	if err := g.AddEdge(n1, g.Root(), 0); err != nil {
		t.Fatalf("edge to root should be legal: %v", err)
	}
	if err := g.AddEdge(g.Root(), n2, 0); err != nil {
		t.Fatalf("edge from root should be legal: %v", err)
	}
}

func TestGraphPushScopedSymbolRequiresExportedScope(t *testing.T) {
	g := NewGraph()
	f, _ := g.AddFile("a.go")
	in := symbol.NewInterner()
	sym := in.Intern("f")

	unexported, _ := g.AddNode(f, 1, KindScope, NodeOptions{IsExported: false})
	_, err := g.AddNode(f, 2, KindPushScopedSymbol, NodeOptions{Symbol: sym, Scope: unexported, IsReference: true})
	if !errors.Is(err, ErrNotExportedScope) {
		t.Fatalf("push-scoped-symbol onto unexported scope: got %v, want ErrNotExportedScope", err)
	}

	exported, _ := g.AddNode(f, 3, KindScope, NodeOptions{IsExported: true})
	if _, err := g.AddNode(f, 4, KindPushScopedSymbol, NodeOptions{Symbol: sym, Scope: exported, IsReference: true}); err != nil {
		t.Fatalf("push-scoped-symbol onto exported scope should succeed: %v", err)
	}
}

func TestGraphPushRequiresSymbol(t *testing.T) {
	g := NewGraph()
	f, _ := g.AddFile("a.go")
	_, err := g.AddNode(f, 1, KindPushSymbol, NodeOptions{IsReference: true})
	if !errors.Is(err, ErrUninternedSymbol) {
		t.Fatalf("push-symbol with zero symbol handle: got %v, want ErrUninternedSymbol", err)
	}
}

func TestGraphOutgoingEdgesOrder(t *testing.T) {
	g := NewGraph()
	f, _ := g.AddFile("a.go")
	a, _ := g.AddNode(f, 1, KindScope, NodeOptions{})
	b, _ := g.AddNode(f, 2, KindScope, NodeOptions{})
	c, _ := g.AddNode(f, 3, KindScope, NodeOptions{})
	_ = g.AddEdge(a, b, 1)
	_ = g.AddEdge(a, c, 0)

	edges := g.OutgoingEdges(a)
	if len(edges) != 2 || edges[0].Sink != b || edges[1].Sink != c {
		t.Fatalf("OutgoingEdges not in insertion order: %+v", edges)
	}
}

func TestGraphFrozenRejectsMutation(t *testing.T) {
	g := NewGraph()
	f, _ := g.AddFile("a.go")
	g.Freeze()
	if _, err := g.AddNode(f, 1, KindScope, NodeOptions{}); !errors.Is(err, ErrFrozen) {
		t.Fatalf("AddNode after Freeze: got %v, want ErrFrozen", err)
	}
}
