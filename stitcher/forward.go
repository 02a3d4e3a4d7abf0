// Package stitcher implements the two bounded-work search loops of
// SPEC_FULL.md §4.5–§4.6: ForwardPathStitcher, which extends concrete
// paths edge by edge, and ForwardPartialPathStitcher (see partial.go),
// which concatenates partial paths out of a precomputed database.
package stitcher

import (
	"github.com/github/stack-graphs/graph"
	"github.com/github/stack-graphs/path"
)

// DefaultMaxWorkPerPhase bounds how many walks a single RunOnePhase call
// pops from the queue before returning control to the caller.
const DefaultMaxWorkPerPhase = 10_000

// Cancellation is the minimal surface a stitcher phase needs to check for
// cooperative cancellation (SPEC_FULL.md §5). package cancel's
// *RunContext satisfies it; tests can satisfy it with a plain
// bool-backed type.
type Cancellation interface {
	Cancelled() bool
}

// noCancellation never reports cancelled; used when the caller passes nil.
type noCancellation struct{}

func (noCancellation) Cancelled() bool { return false }

type walk struct {
	p    path.Path
	seen map[path.CycleKey]bool
}

// ForwardPathStitcher finds complete paths by walking a Graph's edges one
// at a time, starting from a set of seed walks (SPEC_FULL.md §4.5).
type ForwardPathStitcher struct {
	g       *graph.Graph
	in      *path.Interners
	queue   []walk
	maxWork int
}

// FromNodes seeds a ForwardPathStitcher with a length-0 walk at each node,
// starting from the empty state with that node's own push applied
// (path.Seed).
func FromNodes(g *graph.Graph, in *path.Interners, nodes []graph.NodeHandle) *ForwardPathStitcher {
	s := &ForwardPathStitcher{g: g, in: in, maxWork: DefaultMaxWorkPerPhase}
	for _, n := range nodes {
		p := path.Path{Start: n, End: n, State: path.Seed(g, in, n)}
		s.queue = append(s.queue, walk{p: p, seen: map[path.CycleKey]bool{p.CycleKey(): true}})
	}
	return s
}

// FromPaths seeds a ForwardPathStitcher with caller-supplied starting
// paths. This is the from_partial_paths seeding mode of SPEC_FULL.md §4.5,
// used for qualified-name queries whose seed already carries a non-empty
// state; the caller is responsible for constructing that starting state
// (e.g. from a partial path's postcondition).
func FromPaths(g *graph.Graph, in *path.Interners, seeds []path.Path) *ForwardPathStitcher {
	s := &ForwardPathStitcher{g: g, in: in, maxWork: DefaultMaxWorkPerPhase}
	for _, p := range seeds {
		s.queue = append(s.queue, walk{p: p, seen: map[path.CycleKey]bool{p.CycleKey(): true}})
	}
	return s
}

// SetMaxWorkPerPhase bounds how many walks RunOnePhase pops per call.
func (s *ForwardPathStitcher) SetMaxWorkPerPhase(n int) {
	if n <= 0 {
		return
	}
	s.maxWork = n
}

// Done reports whether the stitcher's queue is empty: no further phase can
// produce new results.
func (s *ForwardPathStitcher) Done() bool { return len(s.queue) == 0 }

// RunOnePhase runs up to the configured work budget and returns the
// complete paths emitted this phase, in walk-discovery order
// (SPEC_FULL.md §5). cancelled is true when c reported cancellation mid
// phase; the queue is left exactly as it was at the cancellation point so
// the caller may resume with another RunOnePhase call.
func (s *ForwardPathStitcher) RunOnePhase(c Cancellation) (results []path.Path, cancelled bool) {
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

		cands := path.Extensions(s.g, s.in, w.p)
		var legal []path.Candidate
		for _, cand := range cands {
			if w.seen[cand.Result.CycleKey()] {
				continue // cyclic: SPEC_FULL.md §4.3
			}
			legal = append(legal, cand)
		}
		for _, cand := range path.Shadow(legal) {
			if cand.Result.IsComplete(s.g, s.in) {
				results = append(results, cand.Result)
				continue
			}
			childSeen := make(map[path.CycleKey]bool, len(w.seen)+1)
			for k := range w.seen {
				childSeen[k] = true
			}
			childSeen[cand.Result.CycleKey()] = true
			s.queue = append(s.queue, walk{p: cand.Result, seen: childSeen})
		}
	}
	return results, false
}

// Run drives RunOnePhase to completion against a Cancellation, collecting
// every emitted path. It is a convenience for callers that do not need to
// interleave other work between phases; it returns cancelled=true (with
// whatever results were collected so far) if c reports cancellation before
// the queue empties.
func (s *ForwardPathStitcher) Run(c Cancellation) (results []path.Path, cancelled bool) {
	for !s.Done() {
		phaseResults, cancelledNow := s.RunOnePhase(c)
		results = append(results, phaseResults...)
		if cancelledNow {
			return results, true
		}
	}
	return results, false
}
