// Package jsonenc renders graphs, partial paths, and complete paths as the
// JSON shapes SPEC_FULL.md §6 defines for external tooling (the CLI's
// visualize subcommand, editor integrations): nodes keyed by a stable
// (file, local_id) identity, edges by source/sink/precedence, and paths by
// their endpoints plus resolved symbol/scope stacks.
package jsonenc

import (
	"github.com/github/stack-graphs/graph"
	"github.com/github/stack-graphs/partial"
	"github.com/github/stack-graphs/path"
	"github.com/github/stack-graphs/symbol"
)

// NodeID is a node's rendered identity: File is omitted for the root and
// jump-to-scope singletons, which belong to no file.
type NodeID struct {
	File    string `json:"file,omitempty"`
	LocalID uint32 `json:"local_id"`
}

// Node is a rendered graph node.
type Node struct {
	ID           NodeID            `json:"id"`
	Type         string            `json:"type"`
	Symbol       string            `json:"symbol,omitempty"`
	Scope        *NodeID           `json:"scope,omitempty"`
	IsReference  bool              `json:"is_reference,omitempty"`
	IsDefinition bool              `json:"is_definition,omitempty"`
	IsExported   bool              `json:"is_exported,omitempty"`
	Debug        map[string]string `json:"debug_info,omitempty"`
}

// Edge is a rendered graph edge.
type Edge struct {
	Source     NodeID `json:"source"`
	Sink       NodeID `json:"sink"`
	Precedence int32  `json:"precedence"`
}

// Graph is the top-level rendering of a *graph.Graph.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// RenderGraph renders every node and edge in g. syms resolves symbol
// handles to their interned string; it may be nil, in which case Symbol
// fields are left empty.
func RenderGraph(g *graph.Graph, syms *symbol.Interner) Graph {
	handles := g.AllNodes()
	nodes := make([]Node, len(handles))
	for i, h := range handles {
		nodes[i] = renderNode(g, syms, h)
	}

	edges := g.AllEdges()
	out := make([]Edge, len(edges))
	for i, e := range edges {
		out[i] = Edge{
			Source:     renderNodeID(g, e.Source),
			Sink:       renderNodeID(g, e.Sink),
			Precedence: e.Precedence,
		}
	}
	return Graph{Nodes: nodes, Edges: out}
}

func renderNodeID(g *graph.Graph, h graph.NodeHandle) NodeID {
	n, ok := g.Node(h)
	if !ok {
		return NodeID{LocalID: 0}
	}
	id := NodeID{LocalID: n.ID.Local}
	if n.ID.File != graph.NoFile {
		if name, ok := g.FileName(n.ID.File); ok {
			id.File = name
		}
	}
	return id
}

func renderNode(g *graph.Graph, syms *symbol.Interner, h graph.NodeHandle) Node {
	n, _ := g.Node(h)
	out := Node{
		ID:           renderNodeID(g, h),
		Type:         n.Kind.String(),
		IsReference:  n.IsReference,
		IsDefinition: n.IsDefinition,
		IsExported:   n.IsExported,
		Debug:        n.Debug,
	}
	if syms != nil && !n.Symbol.IsZero() {
		out.Symbol = syms.Value(n.Symbol)
	}
	if n.Kind == graph.KindPushScopedSymbol {
		scope := renderNodeID(g, n.Scope)
		out.Scope = &scope
	}
	return out
}

// PathResult is the rendering of a complete path.Path (SPEC_FULL.md §6):
// its endpoints, the edges traversed, and the fully concrete symbol and
// scope stacks it carries on completion.
type PathResult struct {
	StartNode  NodeID        `json:"start_node"`
	EndNode    NodeID        `json:"end_node"`
	Edges      []Edge        `json:"edges"`
	SymbolStack []SymbolElem `json:"symbol_stack"`
	ScopeStack []NodeID      `json:"scope_stack"`
}

// SymbolElem is one entry of a rendered symbol stack.
type SymbolElem struct {
	Symbol   string   `json:"symbol"`
	IsScoped bool     `json:"is_scoped,omitempty"`
	Scopes   []NodeID `json:"scopes,omitempty"`
}

// RenderPath renders a complete path.Path produced by the forward path
// stitcher.
func RenderPath(g *graph.Graph, in *path.Interners, syms *symbol.Interner, p path.Path) PathResult {
	edges := make([]Edge, len(p.Edges))
	for i, e := range p.Edges {
		edges[i] = Edge{
			Source:     renderNodeID(g, e.Source),
			Sink:       renderNodeID(g, e.Sink),
			Precedence: e.Precedence,
		}
	}

	symbolStack := make([]SymbolElem, 0)
	for _, elem := range in.Symbols.ToSlice(p.State.SymbolStack) {
		se := SymbolElem{Symbol: symbolName(syms, elem.Symbol), IsScoped: elem.IsScoped}
		if elem.IsScoped {
			for _, scope := range in.Scopes.ToSlice(elem.Scopes) {
				se.Scopes = append(se.Scopes, renderNodeID(g, scope))
			}
		}
		symbolStack = append(symbolStack, se)
	}

	scopeStack := make([]NodeID, 0)
	for _, scope := range in.Scopes.ToSlice(p.State.ScopeStack) {
		scopeStack = append(scopeStack, renderNodeID(g, scope))
	}

	return PathResult{
		StartNode:  renderNodeID(g, p.Start),
		EndNode:    renderNodeID(g, p.End),
		Edges:      edges,
		SymbolStack: symbolStack,
		ScopeStack: scopeStack,
	}
}

func symbolName(syms *symbol.Interner, h symbol.Handle) string {
	if syms == nil {
		return ""
	}
	return syms.Value(h)
}

// PartialPathResult is the rendering of a partial.PartialPath: like
// PathResult, but its pre/postcondition stacks may carry an open tail
// variable instead of being fully concrete.
type PartialPathResult struct {
	StartNode     NodeID                `json:"start_node"`
	EndNode       NodeID                `json:"end_node"`
	Edges         []Edge                `json:"edges"`
	Precondition  PartialConditionJSON  `json:"precondition"`
	Postcondition PartialConditionJSON  `json:"postcondition"`
}

// PartialConditionJSON renders one side of a partial.PartialPath.
type PartialConditionJSON struct {
	Symbols PartialSymbolStackJSON `json:"symbol_stack"`
	Scopes  PartialScopeStackJSON  `json:"scope_stack"`
}

// PartialSymbolStackJSON renders a partial.SymbolStackPattern.
type PartialSymbolStackJSON struct {
	Concrete []SymbolElem `json:"concrete"`
	Open     bool         `json:"open"`
	Var      uint32       `json:"var,omitempty"`
}

// PartialScopeStackJSON renders a partial.ScopeStackPattern.
type PartialScopeStackJSON struct {
	Concrete []NodeID `json:"concrete"`
	Open     bool     `json:"open"`
	Var      uint32   `json:"var,omitempty"`
}

// RenderPartialPath renders a partial.PartialPath.
func RenderPartialPath(g *graph.Graph, syms *symbol.Interner, p partial.PartialPath) PartialPathResult {
	edges := make([]Edge, len(p.Edges))
	for i, e := range p.Edges {
		edges[i] = Edge{Source: renderNodeID(g, e.Source), Sink: renderNodeID(g, e.Target)}
	}
	return PartialPathResult{
		StartNode:     renderNodeID(g, p.Start),
		EndNode:       renderNodeID(g, p.End),
		Edges:         edges,
		Precondition:  renderPartialCondition(g, syms, p.Precondition),
		Postcondition: renderPartialCondition(g, syms, p.Postcondition),
	}
}

func renderPartialCondition(g *graph.Graph, syms *symbol.Interner, c partial.Condition) PartialConditionJSON {
	concrete := make([]SymbolElem, len(c.Symbols.Concrete))
	for i, elem := range c.Symbols.Concrete {
		se := SymbolElem{Symbol: symbolName(syms, elem.Symbol), IsScoped: elem.IsScoped}
		for _, h := range elem.Scopes.Concrete {
			se.Scopes = append(se.Scopes, renderNodeID(g, h))
		}
		concrete[i] = se
	}
	scopeConcrete := make([]NodeID, len(c.Scopes.Concrete))
	for i, h := range c.Scopes.Concrete {
		scopeConcrete[i] = renderNodeID(g, h)
	}
	return PartialConditionJSON{
		Symbols: PartialSymbolStackJSON{Concrete: concrete, Open: c.Symbols.Open, Var: uint32(c.Symbols.Var)},
		Scopes:  PartialScopeStackJSON{Concrete: scopeConcrete, Open: c.Scopes.Open, Var: uint32(c.Scopes.Var)},
	}
}
