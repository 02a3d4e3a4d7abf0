package partial

import (
	"errors"
	"fmt"

	"github.com/github/stack-graphs/graph"
)

// ErrDivergent is returned when constructing a PartialPath whose
// symbol-stack precondition is a bare variable and whose start node is the
// root: such a
// path would match every possible query and can never be stored in a
// Database (SPEC_FULL.md §4.4 divergence guard).
var ErrDivergent = errors.New("partial: divergent partial path rejected")

// ErrUnificationFailed is returned by Concatenate when the first path's
// postcondition does not unify with the second path's precondition.
var ErrUnificationFailed = errors.New("partial: postcondition does not unify with precondition")

// Edge is one traversed graph edge recorded on a PartialPath, mirroring
// path.Path's edge list so rendering and debugging share a shape.
type Edge struct {
	Source graph.NodeHandle
	Target graph.NodeHandle
}

// PartialPath is a symbolic path fragment: a precondition the caller's
// state must satisfy on entry, a postcondition describing the resulting
// state, and the edges traversed between Start and End (SPEC_FULL.md
// §4.4). Unlike path.Path, the stacks involved may contain free tail
// variables, which is what lets one PartialPath stand in for a whole
// family of concrete paths sharing a structural shape.
type PartialPath struct {
	Start graph.NodeHandle
	End   graph.NodeHandle
	Edges []Edge

	Precondition  Condition
	Postcondition Condition
}

// NewPartialPath validates the divergence guard and returns p unchanged if
// it is safe to store. A partial path that starts at the root with a
// bare-variable symbol-stack precondition would unify with any query
// whatsoever; such paths are rejected rather than admitted to a Database.
func NewPartialPath(g *graph.Graph, p PartialPath) (PartialPath, error) {
	if isDivergent(g, p) {
		return PartialPath{}, fmt.Errorf("%w: start=%v", ErrDivergent, p.Start)
	}
	return p, nil
}

func isDivergent(g *graph.Graph, p PartialPath) bool {
	return p.Start == g.Root() && p.Precondition.Symbols.IsBareVariable()
}

// Concatenate joins a and b into a single PartialPath covering a.Start
// through b.End, unifying a's postcondition against b's precondition
// (SPEC_FULL.md §4.4, "P ∘ Q"). It fails if a.End != b.Start or if the two
// conditions do not unify; on success the result's own pre/postcondition
// have the unifying substitution applied throughout.
func Concatenate(g *graph.Graph, a, b PartialPath) (PartialPath, error) {
	if a.End != b.Start {
		return PartialPath{}, fmt.Errorf("partial: cannot concatenate, a ends at %v but b starts at %v", a.End, b.Start)
	}

	subst := newSubstitution()
	if !unifySymbolStacks(a.Postcondition.Symbols, b.Precondition.Symbols, subst) {
		return PartialPath{}, ErrUnificationFailed
	}
	if !unifyScopeStacks(a.Postcondition.Scopes, b.Precondition.Scopes, subst) {
		return PartialPath{}, ErrUnificationFailed
	}

	edges := make([]Edge, 0, len(a.Edges)+len(b.Edges))
	edges = append(edges, a.Edges...)
	edges = append(edges, b.Edges...)

	result := PartialPath{
		Start: a.Start,
		End:   b.End,
		Edges: edges,
		Precondition: Condition{
			Symbols: applySymbols(a.Precondition.Symbols, subst),
			Scopes:  applyScopes(a.Precondition.Scopes, subst),
		},
		Postcondition: Condition{
			Symbols: applySymbols(b.Postcondition.Symbols, subst),
			Scopes:  applyScopes(b.Postcondition.Scopes, subst),
		},
	}
	return NewPartialPath(g, result)
}

// IsComplete reports whether p, invoked starting from the empty stacks,
// describes a fully resolved path: start is a reference, end is a
// definition, the precondition asks for nothing beyond the empty stack,
// and the postcondition reduces to empty once that precondition is
// satisfied (SPEC_FULL.md §4.3's completeness test lifted to the
// symbolic level — an open postcondition tail still counts as empty here
// as long as it names the exact same variable as the open precondition
// tail it would be bound alongside).
func (p PartialPath) IsComplete(g *graph.Graph) bool {
	startNode, ok := g.Node(p.Start)
	if !ok || !startNode.IsReference {
		return false
	}
	endNode, ok := g.Node(p.End)
	if !ok || !endNode.IsDefinition {
		return false
	}
	pre, post := p.Precondition, p.Postcondition
	if len(pre.Symbols.Concrete) != 0 || len(pre.Scopes.Concrete) != 0 {
		return false
	}
	if len(post.Symbols.Concrete) != 0 || len(post.Scopes.Concrete) != 0 {
		return false
	}
	if post.Symbols.Open && post.Symbols.Var != pre.Symbols.Var {
		return false
	}
	if post.Scopes.Open && post.Scopes.Var != pre.Scopes.Var {
		return false
	}
	return true
}
