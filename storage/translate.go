package storage

import (
	"fmt"

	"github.com/github/stack-graphs/graph"
	"github.com/github/stack-graphs/partial"
	"github.com/github/stack-graphs/symbol"
)

// storedPartialPath mirrors partial.PartialPath with every graph.NodeHandle
// replaced by its stable graph.NodeID. A NodeHandle is only meaningful
// within the *graph.Graph instance that allocated it; persisting one
// verbatim across a process restart (or a rebuild of the same file) would
// silently corrupt it once the graph is reloaded and handles are
// reassigned. NodeID is stable as long as the caller reuses the same local
// IDs for the same source positions, which add_file callers are expected to
// do.
type storedPartialPath struct {
	Start graph.NodeID
	End   graph.NodeID
	Edges []storedEdge

	Precondition  storedCondition
	Postcondition storedCondition
}

type storedEdge struct {
	Source graph.NodeID
	Target graph.NodeID
}

type storedCondition struct {
	Symbols storedSymbolStackPattern
	Scopes  storedScopeStackPattern
}

type storedSymbolStackPattern struct {
	Concrete []storedSymbolElem
	Open     bool
	Var      partial.SymbolVar
}

type storedSymbolElem struct {
	Symbol   symbol.Handle
	IsScoped bool
	Scopes   storedScopeStackPattern
}

type storedScopeStackPattern struct {
	Concrete []graph.NodeID
	Open     bool
	Var      partial.ScopeVar
}

func encodePartialPath(g *graph.Graph, p partial.PartialPath) (storedPartialPath, error) {
	start, err := nodeID(g, p.Start)
	if err != nil {
		return storedPartialPath{}, err
	}
	end, err := nodeID(g, p.End)
	if err != nil {
		return storedPartialPath{}, err
	}

	edges := make([]storedEdge, len(p.Edges))
	for i, e := range p.Edges {
		source, err := nodeID(g, e.Source)
		if err != nil {
			return storedPartialPath{}, err
		}
		target, err := nodeID(g, e.Target)
		if err != nil {
			return storedPartialPath{}, err
		}
		edges[i] = storedEdge{Source: source, Target: target}
	}

	pre, err := encodeCondition(g, p.Precondition)
	if err != nil {
		return storedPartialPath{}, err
	}
	post, err := encodeCondition(g, p.Postcondition)
	if err != nil {
		return storedPartialPath{}, err
	}

	return storedPartialPath{Start: start, End: end, Edges: edges, Precondition: pre, Postcondition: post}, nil
}

func decodePartialPath(g *graph.Graph, s storedPartialPath) (partial.PartialPath, error) {
	start, err := nodeHandle(g, s.Start)
	if err != nil {
		return partial.PartialPath{}, err
	}
	end, err := nodeHandle(g, s.End)
	if err != nil {
		return partial.PartialPath{}, err
	}

	edges := make([]partial.Edge, len(s.Edges))
	for i, e := range s.Edges {
		source, err := nodeHandle(g, e.Source)
		if err != nil {
			return partial.PartialPath{}, err
		}
		target, err := nodeHandle(g, e.Target)
		if err != nil {
			return partial.PartialPath{}, err
		}
		edges[i] = partial.Edge{Source: source, Target: target}
	}

	pre, err := decodeCondition(g, s.Precondition)
	if err != nil {
		return partial.PartialPath{}, err
	}
	post, err := decodeCondition(g, s.Postcondition)
	if err != nil {
		return partial.PartialPath{}, err
	}

	return partial.PartialPath{Start: start, End: end, Edges: edges, Precondition: pre, Postcondition: post}, nil
}

func encodeCondition(g *graph.Graph, c partial.Condition) (storedCondition, error) {
	symbols, err := encodeSymbolStack(g, c.Symbols)
	if err != nil {
		return storedCondition{}, err
	}
	scopes, err := encodeScopeStack(g, c.Scopes)
	if err != nil {
		return storedCondition{}, err
	}
	return storedCondition{Symbols: symbols, Scopes: scopes}, nil
}

func decodeCondition(g *graph.Graph, s storedCondition) (partial.Condition, error) {
	symbols, err := decodeSymbolStack(g, s.Symbols)
	if err != nil {
		return partial.Condition{}, err
	}
	scopes, err := decodeScopeStack(g, s.Scopes)
	if err != nil {
		return partial.Condition{}, err
	}
	return partial.Condition{Symbols: symbols, Scopes: scopes}, nil
}

func encodeSymbolStack(g *graph.Graph, p partial.SymbolStackPattern) (storedSymbolStackPattern, error) {
	concrete := make([]storedSymbolElem, len(p.Concrete))
	for i, elem := range p.Concrete {
		scopes, err := encodeScopeStack(g, elem.Scopes)
		if err != nil {
			return storedSymbolStackPattern{}, err
		}
		concrete[i] = storedSymbolElem{Symbol: elem.Symbol, IsScoped: elem.IsScoped, Scopes: scopes}
	}
	return storedSymbolStackPattern{Concrete: concrete, Open: p.Open, Var: p.Var}, nil
}

func decodeSymbolStack(g *graph.Graph, s storedSymbolStackPattern) (partial.SymbolStackPattern, error) {
	concrete := make([]partial.SymbolElem, len(s.Concrete))
	for i, elem := range s.Concrete {
		scopes, err := decodeScopeStack(g, elem.Scopes)
		if err != nil {
			return partial.SymbolStackPattern{}, err
		}
		concrete[i] = partial.SymbolElem{Symbol: elem.Symbol, IsScoped: elem.IsScoped, Scopes: scopes}
	}
	return partial.SymbolStackPattern{Concrete: concrete, Open: s.Open, Var: s.Var}, nil
}

func encodeScopeStack(g *graph.Graph, p partial.ScopeStackPattern) (storedScopeStackPattern, error) {
	concrete := make([]graph.NodeID, len(p.Concrete))
	for i, h := range p.Concrete {
		id, err := nodeID(g, h)
		if err != nil {
			return storedScopeStackPattern{}, err
		}
		concrete[i] = id
	}
	return storedScopeStackPattern{Concrete: concrete, Open: p.Open, Var: p.Var}, nil
}

func decodeScopeStack(g *graph.Graph, s storedScopeStackPattern) (partial.ScopeStackPattern, error) {
	concrete := make([]graph.NodeHandle, len(s.Concrete))
	for i, id := range s.Concrete {
		h, err := nodeHandle(g, id)
		if err != nil {
			return partial.ScopeStackPattern{}, err
		}
		concrete[i] = h
	}
	return partial.ScopeStackPattern{Concrete: concrete, Open: s.Open, Var: s.Var}, nil
}

func nodeID(g *graph.Graph, h graph.NodeHandle) (graph.NodeID, error) {
	n, ok := g.Node(h)
	if !ok {
		return graph.NodeID{}, fmt.Errorf("storage: unknown node handle %d", h)
	}
	return n.ID, nil
}

func nodeHandle(g *graph.Graph, id graph.NodeID) (graph.NodeHandle, error) {
	h, ok := g.NodeByID(id)
	if !ok {
		return 0, fmt.Errorf("storage: no node for id %+v in rebuilt graph", id)
	}
	return h, nil
}
