package path

import (
	"sort"

	"github.com/github/stack-graphs/graph"
)

// Path is a concrete walk over a Graph: a sequence of edges plus the
// (symbol stack, scope stack) state produced by applying them in order,
// starting from the empty state (SPEC_FULL.md §3).
type Path struct {
	Start graph.NodeHandle
	End   graph.NodeHandle
	Edges []graph.Edge
	State State
}

// IsComplete reports whether p satisfies SPEC_FULL.md §3's definition of a
// complete path: it starts at a reference, ends at a definition, and its
// symbol stack is empty.
func (p Path) IsComplete(g *graph.Graph, in *Interners) bool {
	if !in.Symbols.IsEmpty(p.State.SymbolStack) {
		return false
	}
	start, ok := g.Node(p.Start)
	if !ok || !start.IsReference {
		return false
	}
	end, ok := g.Node(p.End)
	if !ok || !end.IsDefinition {
		return false
	}
	return true
}

// CycleKey returns p's current cycle key (SPEC_FULL.md §4.3).
func (p Path) CycleKey() CycleKey {
	return CycleKey{End: p.End, State: p.State}
}

// Extend returns the path obtained by crossing edge from p's current end
// node, plus whether the extension was legal. p itself is not mutated; the
// returned Path shares p's edge slice's backing array only up to its
// original length, so appending to the result never aliases p.
func (p Path) Extend(g *graph.Graph, in *Interners, edge graph.Edge) (Path, bool) {
	if edge.Source != p.End {
		return Path{}, false
	}
	newState, end, ok := Step(g, in, p.State, edge)
	if !ok {
		return Path{}, false
	}
	edges := make([]graph.Edge, len(p.Edges), len(p.Edges)+1)
	copy(edges, p.Edges)
	edges = append(edges, edge)
	return Path{Start: p.Start, End: end, Edges: edges, State: newState}, true
}

// Candidate is one legal extension of a path, produced by Extensions, used
// as the input to Shadow.
type Candidate struct {
	Edge   graph.Edge
	Result Path
}

// Extensions enumerates every legal extension of p over g's outgoing edges
// from p's end node, in deterministic order: edges are walked in the
// graph's insertion order, which SPEC_FULL.md §5 pins as the deterministic
// iteration order the rest of the ordering guarantees build on.
func Extensions(g *graph.Graph, in *Interners, p Path) []Candidate {
	var out []Candidate
	for _, e := range g.OutgoingEdges(p.End) {
		next, ok := p.Extend(g, in, e)
		if !ok {
			continue
		}
		out = append(out, Candidate{Edge: e, Result: next})
	}
	return out
}

// Shadow applies the shadowing rule of SPEC_FULL.md §4.3: among candidates
// that agree on the resulting state (symbol stack and scope stack), only
// those whose edge has the maximum precedence survive, regardless of which
// node they end on — two distinct definitions of the same name can shadow
// one another as long as resolving through either leaves the same stack
// state behind. Candidates reaching distinct states never shadow one
// another. The surviving candidates are returned in the tie-break order of
// SPEC_FULL.md §5: precedence descending, then sink node handle ascending.
func Shadow(candidates []Candidate) []Candidate {
	best := make(map[State]int32)
	for _, c := range candidates {
		k := c.Result.State
		if p, ok := best[k]; !ok || c.Edge.Precedence > p {
			best[k] = c.Edge.Precedence
		}
	}
	var out []Candidate
	for _, c := range candidates {
		k := c.Result.State
		if c.Edge.Precedence == best[k] {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Edge.Precedence != out[j].Edge.Precedence {
			return out[i].Edge.Precedence > out[j].Edge.Precedence
		}
		return out[i].Edge.Sink < out[j].Edge.Sink
	})
	return out
}
