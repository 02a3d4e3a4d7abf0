package stitcher

import (
	"fmt"
	"strings"

	"github.com/github/stack-graphs/graph"
	"github.com/github/stack-graphs/partial"
)

// partialWalk is a single in-flight symbolic walk: the partial path built
// so far from the seed node, plus the per-walk cycle-detection set. Cycle
// keys at the symbolic level are keyed on (end node, precondition,
// postcondition) rather than on concrete state, since two patterns are
// only equal when their variables and concrete prefixes match exactly.
type partialWalk struct {
	p    partial.PartialPath
	vars *partial.Vars
	seen map[partialCycleKey]bool
}

type partialCycleKey struct {
	end  graph.NodeHandle
	pre  string
	post string
}

func keyOf(p partial.PartialPath) partialCycleKey {
	return partialCycleKey{end: p.End, pre: describe(p.Precondition), post: describe(p.Postcondition)}
}

// describe renders a Condition into a string cheaply comparable as a map
// key; it need not be human-readable, only injective: every symbol,
// scoped-ness, attached scope pattern and tail variable is part of it.
func describe(c partial.Condition) string {
	var b strings.Builder
	for _, e := range c.Symbols.Concrete {
		fmt.Fprintf(&b, "%d/%t/%v,", e.Symbol, e.IsScoped, e.Scopes)
	}
	fmt.Fprintf(&b, "%t/%d|%v", c.Symbols.Open, c.Symbols.Var, c.Scopes)
	return b.String()
}

// ForwardPartialPathStitcher extends partial paths one edge at a time, the
// same bounded-work phase loop as ForwardPathStitcher but operating on
// symbolic (precondition, postcondition) patterns instead of concrete
// stacks (SPEC_FULL.md §4.6). Each completed partial path that satisfies
// SPEC_FULL.md's divergence guard is a candidate for storage in a
// partial.Database, amortizing the edge-walking work this stitcher does
// once per node across every future query that starts there.
type ForwardPartialPathStitcher struct {
	g       *graph.Graph
	queue   []partialWalk
	maxWork int
}

// PartialFromNodes seeds a ForwardPartialPathStitcher with a length-0
// partial path at each node, baking in that node's own push effect if it
// has one (partial.Vars.SeedAt). Every seed shares one Vars allocator, so
// that partial paths produced by this stitcher carry distinct variables
// and may be passed to partial.Concatenate directly; paths from two
// separate ForwardPartialPathStitcher runs are not guaranteed distinct
// and must be renamed apart first.
func PartialFromNodes(g *graph.Graph, nodes []graph.NodeHandle) *ForwardPartialPathStitcher {
	s := &ForwardPartialPathStitcher{g: g, maxWork: DefaultMaxWorkPerPhase}
	vars := partial.NewVars()
	for _, n := range nodes {
		pre, post := vars.SeedAt(g, n)
		p := partial.PartialPath{Start: n, End: n, Precondition: pre, Postcondition: post}
		w := partialWalk{p: p, vars: vars, seen: map[partialCycleKey]bool{keyOf(p): true}}
		s.queue = append(s.queue, w)
	}
	return s
}

// SetMaxWorkPerPhase bounds how many walks RunOnePhase pops per call.
func (s *ForwardPartialPathStitcher) SetMaxWorkPerPhase(n int) {
	if n <= 0 {
		return
	}
	s.maxWork = n
}

// Done reports whether the stitcher's queue is empty.
func (s *ForwardPartialPathStitcher) Done() bool { return len(s.queue) == 0 }

// RunOnePhase runs up to the configured work budget, returning every
// partial path produced this phase that passes the divergence guard
// (SPEC_FULL.md §4.4) and is ready to store: it is complete (IsComplete),
// it ends at the root, or it ends at a node with no outgoing edges. Every
// other extension is requeued for further walking.
func (s *ForwardPartialPathStitcher) RunOnePhase(c Cancellation) (results []partial.PartialPath, cancelled bool) {
	if c == nil {
		c = noCancellation{}
	}
	for i := 0; i < s.maxWork; i++ {
		if len(s.queue) == 0 {
			return results, false
		}
		if c.Cancelled() {
			return results, true
		}

		w := s.queue[0]
		s.queue = s.queue[1:]

		for _, e := range s.g.OutgoingEdges(w.p.End) {
			newPre, newPost, end, ok := partial.Step(s.g, w.p.Precondition, w.p.Postcondition, e)
			if !ok {
				continue
			}
			edges := make([]partial.Edge, len(w.p.Edges), len(w.p.Edges)+1)
			copy(edges, w.p.Edges)
			edges = append(edges, partial.Edge{Source: e.Source, Target: e.Sink})
			next := partial.PartialPath{
				Start:         w.p.Start,
				End:           end,
				Edges:         edges,
				Precondition:  newPre,
				Postcondition: newPost,
			}
			validated, err := partial.NewPartialPath(s.g, next)
			if err != nil {
				continue // divergent: never store or continue this branch
			}
			if w.seen[keyOf(validated)] {
				continue
			}
			atBoundary := validated.IsComplete(s.g) || end == s.g.Root() || len(s.g.OutgoingEdges(end)) == 0
			if atBoundary {
				results = append(results, validated)
				continue
			}
			childSeen := make(map[partialCycleKey]bool, len(w.seen)+1)
			for k := range w.seen {
				childSeen[k] = true
			}
			childSeen[keyOf(validated)] = true
			s.queue = append(s.queue, partialWalk{p: validated, vars: w.vars, seen: childSeen})
		}
	}
	return results, false
}

// Run drives RunOnePhase to completion, collecting every produced partial
// path.
func (s *ForwardPartialPathStitcher) Run(c Cancellation) (results []partial.PartialPath, cancelled bool) {
	for !s.Done() {
		phaseResults, cancelledNow := s.RunOnePhase(c)
		results = append(results, phaseResults...)
		if cancelledNow {
			return results, true
		}
	}
	return results, false
}

// resolveWalk is a single in-flight walk in ResolveFromDatabase: the
// partial path concatenated so far, plus the per-walk cycle-detection set.
type resolveWalk struct {
	p    partial.PartialPath
	seen map[partialCycleKey]bool
}

// ResolveFromDatabase answers a definition query by extending a partial
// path through db instead of walking graph edges directly (SPEC_FULL.md
// §4.6, "Query"): the walks start as the partial paths db has stored at
// reference r (each one what the empty walk at r concatenated with it would
// give), and each step looks up every partial path db has stored starting
// at the walk's current end node and concatenates it on, discarding candidates whose
// precondition fails to unify. A concatenation that lands on a definition
// with an empty symbol stack is a resolution; anything else requeues.
// Cycle detection uses the same (end, precondition, postcondition) key as
// ForwardPartialPathStitcher, so a db that itself came from
// ForwardPartialPathStitcher's output is guaranteed to terminate on it.
func ResolveFromDatabase(g *graph.Graph, db partial.Database, r graph.NodeHandle, c Cancellation) (results []partial.PartialPath, cancelled bool) {
	if c == nil {
		c = noCancellation{}
	}

	var queue []resolveWalk
	for _, p := range db.PartialPathsFrom(r) {
		if p.IsComplete(g) {
			results = append(results, p)
			continue
		}
		queue = append(queue, resolveWalk{p: p, seen: map[partialCycleKey]bool{keyOf(p): true}})
	}

	for len(queue) > 0 {
		if c.Cancelled() {
			return results, true
		}
		w := queue[0]
		queue = queue[1:]

		for _, candidate := range db.PartialPathsFrom(w.p.End) {
			joined, err := partial.Concatenate(g, w.p, candidate)
			if err != nil {
				continue // precondition did not unify with this candidate
			}
			if w.seen[keyOf(joined)] {
				continue
			}
			if joined.IsComplete(g) {
				results = append(results, joined)
				continue
			}
			childSeen := make(map[partialCycleKey]bool, len(w.seen)+1)
			for k := range w.seen {
				childSeen[k] = true
			}
			childSeen[keyOf(joined)] = true
			queue = append(queue, resolveWalk{p: joined, seen: childSeen})
		}
	}
	return results, false
}
