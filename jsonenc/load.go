package jsonenc

import (
	"fmt"
	"io"

	"encoding/json"

	"github.com/github/stack-graphs/graph"
	"github.com/github/stack-graphs/symbol"
)

// GraphInput is the JSON shape a language frontend submits to build a
// *graph.Graph (SPEC_FULL.md §6): every node it defines, keyed by (file,
// local_id), plus the edges between them. It carries no content hash; a
// caller that needs one computes it from the source text itself, which
// never passes through this package.
type GraphInput struct {
	Nodes []NodeInput `json:"nodes"`
	Edges []EdgeInput `json:"edges"`
}

// NodeInput describes one node to add. Scope, when set, must reference a
// node already listed earlier in Nodes (forward references are rejected
// rather than requiring a second pass).
type NodeInput struct {
	File         string            `json:"file,omitempty"`
	LocalID      uint32            `json:"local_id"`
	Type         string            `json:"type"`
	Symbol       string            `json:"symbol,omitempty"`
	Scope        *NodeID           `json:"scope,omitempty"`
	IsReference  bool              `json:"is_reference,omitempty"`
	IsDefinition bool              `json:"is_definition,omitempty"`
	IsExported   bool              `json:"is_exported,omitempty"`
	Debug        map[string]string `json:"debug_info,omitempty"`
}

// EdgeInput describes one edge to add.
type EdgeInput struct {
	Source     NodeID `json:"source"`
	Sink       NodeID `json:"sink"`
	Precedence int32  `json:"precedence"`
}

var kindByName = map[string]graph.NodeKind{
	"scope":              graph.KindScope,
	"push-symbol":        graph.KindPushSymbol,
	"push-scoped-symbol": graph.KindPushScopedSymbol,
	"pop-symbol":         graph.KindPopSymbol,
	"pop-scoped-symbol":  graph.KindPopScopedSymbol,
	"drop-scopes":        graph.KindDropScopes,
}

// ParseGraph decodes r as a GraphInput and builds the corresponding
// *graph.Graph, interning every distinct symbol name along the way.
func ParseGraph(r io.Reader) (*graph.Graph, *symbol.Interner, error) {
	var input GraphInput
	if err := json.NewDecoder(r).Decode(&input); err != nil {
		return nil, nil, fmt.Errorf("jsonenc: decode graph: %w", err)
	}
	return BuildGraph(input)
}

// BuildGraph builds a *graph.Graph from an already-decoded GraphInput.
func BuildGraph(input GraphInput) (*graph.Graph, *symbol.Interner, error) {
	g := graph.NewGraph()
	syms := symbol.NewInterner()
	files := make(map[string]graph.FileHandle)
	handleByID := make(map[nodeKey]graph.NodeHandle)

	// Seed the two singletons under the same (file, local_id) identity
	// RenderGraph would assign them, so an edge or scope reference can name
	// them without needing to know their reserved internal local IDs.
	handleByID[nodeKeyFor(renderNodeID(g, g.Root()))] = g.Root()
	handleByID[nodeKeyFor(renderNodeID(g, g.JumpToScope()))] = g.JumpToScope()

	fileHandle := func(name string) (graph.FileHandle, error) {
		if name == "" {
			return graph.NoFile, nil
		}
		if h, ok := files[name]; ok {
			return h, nil
		}
		h, err := g.AddFile(name)
		if err != nil {
			return 0, fmt.Errorf("jsonenc: add file %q: %w", name, err)
		}
		files[name] = h
		return h, nil
	}

	for _, n := range input.Nodes {
		if n.Type == "root" || n.Type == "jump-to-scope" {
			// The two singletons always exist; a submitted graph does not
			// need to (and cannot) redeclare them.
			continue
		}
		kind, ok := kindByName[n.Type]
		if !ok {
			return nil, nil, fmt.Errorf("jsonenc: unknown node type %q", n.Type)
		}
		file, err := fileHandle(n.File)
		if err != nil {
			return nil, nil, err
		}

		opts := graph.NodeOptions{
			IsReference:  n.IsReference,
			IsDefinition: n.IsDefinition,
			IsExported:   n.IsExported,
			Debug:        n.Debug,
		}
		if n.Symbol != "" {
			opts.Symbol = syms.Intern(n.Symbol)
		}
		if n.Scope != nil {
			scopeHandle, ok := handleByID[nodeKeyFor(*n.Scope)]
			if !ok {
				return nil, nil, fmt.Errorf("jsonenc: node (file=%q, local_id=%d) references scope %+v before it is defined", n.File, n.LocalID, *n.Scope)
			}
			opts.Scope = scopeHandle
		}

		h, err := g.AddNode(file, n.LocalID, kind, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("jsonenc: add node (file=%q, local_id=%d): %w", n.File, n.LocalID, err)
		}
		handleByID[nodeKey{file: n.File, local: n.LocalID}] = h
	}

	resolve := func(id NodeID) (graph.NodeHandle, error) {
		h, ok := handleByID[nodeKeyFor(id)]
		if !ok {
			return 0, fmt.Errorf("jsonenc: edge references undefined node %+v", id)
		}
		return h, nil
	}

	for _, e := range input.Edges {
		source, err := resolve(e.Source)
		if err != nil {
			return nil, nil, err
		}
		sink, err := resolve(e.Sink)
		if err != nil {
			return nil, nil, err
		}
		if err := g.AddEdge(source, sink, e.Precedence); err != nil {
			return nil, nil, fmt.Errorf("jsonenc: add edge %+v -> %+v: %w", e.Source, e.Sink, err)
		}
	}

	return g, syms, nil
}

type nodeKey struct {
	file  string
	local uint32
}

func nodeKeyFor(id NodeID) nodeKey {
	return nodeKey{file: id.File, local: id.LocalID}
}
