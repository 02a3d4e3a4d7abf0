package storage

import (
	"path/filepath"
	"testing"

	"github.com/github/stack-graphs/graph"
	"github.com/github/stack-graphs/partial"
	"github.com/github/stack-graphs/symbol"
)

func openTestBadgerDatabase(t *testing.T) *BadgerDatabase {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "badger")
	db, err := OpenBadgerDatabase(dir)
	if err != nil {
		t.Fatalf("OpenBadgerDatabase: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBadgerDatabaseInsertAndRetrieve(t *testing.T) {
	g, a := buildSingleFileGraph(t)
	db := openTestBadgerDatabase(t)

	p := partial.PartialPath{
		Start: a,
		End:   g.Root(),
		Edges: []partial.Edge{{Source: a, Target: g.Root()}},
		Precondition: partial.Condition{
			Symbols: partial.SymbolStackPattern{Open: true, Var: 1},
			Scopes:  partial.ClosedScopeStack(nil),
		},
		Postcondition: partial.Condition{
			Symbols: partial.SymbolStackPattern{Open: true, Var: 1},
			Scopes:  partial.ClosedScopeStack(nil),
		},
	}

	node, _ := g.Node(a)
	if err := db.Insert(g, "hash-a", p); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := db.PartialsStartingAt(g, "hash-a", node.ID.Local)
	if err != nil {
		t.Fatalf("PartialsStartingAt: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d partial paths, want 1", len(got))
	}
	if got[0].Start != a || got[0].End != g.Root() {
		t.Fatalf("round trip changed endpoints: got %+v", got[0])
	}
}

func TestBadgerDatabaseDistinguishesContentHash(t *testing.T) {
	g, a := buildSingleFileGraph(t)
	db := openTestBadgerDatabase(t)

	node, _ := g.Node(a)
	p := partial.PartialPath{
		Start: a,
		End:   g.Root(),
		Precondition: partial.Condition{
			Symbols: partial.SymbolStackPattern{Open: true, Var: 1},
			Scopes:  partial.ClosedScopeStack(nil),
		},
		Postcondition: partial.Condition{
			Symbols: partial.SymbolStackPattern{Open: true, Var: 1},
			Scopes:  partial.ClosedScopeStack(nil),
		},
	}

	if err := db.Insert(g, "hash-v1", p); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := db.PartialsStartingAt(g, "hash-v2", node.ID.Local)
	if err != nil {
		t.Fatalf("PartialsStartingAt: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("a different content hash should see no partial paths, got %d", len(got))
	}
}

func TestBadgerDatabaseRejectsDivergentPartialPath(t *testing.T) {
	g := graph.NewGraph()
	db := openTestBadgerDatabase(t)

	p := partial.PartialPath{
		Start: g.Root(),
		End:   g.Root(),
		Precondition: partial.Condition{
			Symbols: partial.SymbolStackPattern{Open: true},
			Scopes:  partial.ScopeStackPattern{Open: true},
		},
	}

	if err := db.Insert(g, "hash-a", p); err == nil {
		t.Fatal("expected Insert to reject a divergent partial path")
	}
}

func TestBadgerDatabaseAcrossReload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "badger")

	db, err := OpenBadgerDatabase(dir)
	if err != nil {
		t.Fatalf("OpenBadgerDatabase: %v", err)
	}

	g1 := graph.NewGraph()
	syms := symbol.NewInterner()
	x := syms.Intern("x")
	f1, _ := g1.AddFile("a")
	ref1, _ := g1.AddNode(f1, 1, graph.KindPushSymbol, graph.NodeOptions{Symbol: x, IsReference: true})
	_ = g1.AddEdge(ref1, g1.Root(), 0)

	p := partial.PartialPath{
		Start: ref1,
		End:   g1.Root(),
		Edges: []partial.Edge{{Source: ref1, Target: g1.Root()}},
		Precondition: partial.Condition{
			Symbols: partial.SymbolStackPattern{Open: true, Var: 1},
			Scopes:  partial.ClosedScopeStack(nil),
		},
		Postcondition: partial.Condition{
			Symbols: partial.SymbolStackPattern{Open: true, Var: 1},
			Scopes:  partial.ClosedScopeStack(nil),
		},
	}
	if err := db.Insert(g1, "hash-a", p); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Rebuild the same file from scratch, in the same order, as a fresh
	// process would after a restart: local IDs match, but NodeHandles do
	// not, since this is a distinct *graph.Graph.
	db2, err := OpenBadgerDatabase(dir)
	if err != nil {
		t.Fatalf("reopen OpenBadgerDatabase: %v", err)
	}
	t.Cleanup(func() { _ = db2.Close() })

	g2 := graph.NewGraph()
	// Allocate an unrelated node first so ref2's NodeHandle diverges from
	// ref1's even though both graphs are built from the same file content.
	extraFile, _ := g2.AddFile("unrelated")
	_, _ = g2.AddNode(extraFile, 1, graph.KindScope, graph.NodeOptions{})

	f2, _ := g2.AddFile("a")
	ref2, _ := g2.AddNode(f2, 1, graph.KindPushSymbol, graph.NodeOptions{Symbol: x, IsReference: true})
	_ = g2.AddEdge(ref2, g2.Root(), 0)

	got, err := db2.PartialsStartingAt(g2, "hash-a", 1)
	if err != nil {
		t.Fatalf("PartialsStartingAt after reload: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d partial paths after reload, want 1", len(got))
	}
	if got[0].Start != ref2 {
		t.Fatalf("Start = %v, want the rebuilt graph's ref2 = %v", got[0].Start, ref2)
	}
	if got[0].End != g2.Root() {
		t.Fatalf("End = %v, want g2.Root() = %v", got[0].End, g2.Root())
	}
}
