package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/github/stack-graphs/graph"
	"github.com/github/stack-graphs/jsonenc"
	"github.com/github/stack-graphs/stitcher"
	"github.com/github/stack-graphs/storage"
)

// position is a 1-indexed source location parsed from a "FILE:LINE:COL"
// argument.
type position struct {
	file string
	line int
	col  int
}

func parsePosition(arg string) (position, error) {
	parts := strings.Split(arg, ":")
	if len(parts) != 3 {
		return position{}, fmt.Errorf("stackgraphctl: %q is not FILE:LINE:COL", arg)
	}
	line, err := strconv.Atoi(parts[1])
	if err != nil {
		return position{}, fmt.Errorf("stackgraphctl: invalid line in %q: %w", arg, err)
	}
	col, err := strconv.Atoi(parts[2])
	if err != nil {
		return position{}, fmt.Errorf("stackgraphctl: invalid column in %q: %w", arg, err)
	}
	return position{file: parts[0], line: line, col: col}, nil
}

// referenceAt finds the reference node in g whose recorded source span
// starts on pos's file and line, preferring the one whose starting column
// is closest to pos.col when more than one reference shares that line.
func referenceAt(g *graph.Graph, pos position) (graph.NodeHandle, bool) {
	var best graph.NodeHandle
	bestDist := -1
	for _, h := range g.AllNodes() {
		n, _ := g.Node(h)
		if !n.IsReference || n.Source == nil {
			continue
		}
		file, ok := g.FileName(n.ID.File)
		if !ok || file != pos.file {
			continue
		}
		if n.Source.Span.StartLine != pos.line {
			continue
		}
		dist := n.Source.Span.StartUTF16 - pos.col
		if dist < 0 {
			dist = -dist
		}
		if bestDist == -1 || dist < bestDist {
			best, bestDist = h, dist
		}
	}
	return best, bestDist != -1
}

func runQueryDefinition(cmd *cobra.Command, args []string) error {
	pos, err := parsePosition(args[0])
	if err != nil {
		return err
	}
	if graphPath == "" {
		return fmt.Errorf("stackgraphctl: --graph is required to resolve a source position")
	}

	g, syms, contentHash, err := loadGraphFile(graphPath)
	if err != nil {
		return err
	}

	ref, ok := referenceAt(g, pos)
	if !ok {
		return fmt.Errorf("stackgraphctl: no reference node at %s:%d:%d", pos.file, pos.line, pos.col)
	}

	badger, err := storage.OpenBadgerDatabase(resolvedDBPath())
	if err != nil {
		return err
	}
	defer badger.Close()

	db, err := loadStoredPartials(badger, g, contentHash)
	if err != nil {
		return err
	}

	results, cancelled := stitcher.ResolveFromDatabase(g, db, ref, nil)
	if cancelled {
		return fmt.Errorf("stackgraphctl: query %s:%d:%d cancelled", pos.file, pos.line, pos.col)
	}

	rendered := make([]jsonenc.PartialPathResult, len(results))
	for i, p := range results {
		rendered[i] = jsonenc.RenderPartialPath(g, syms, p)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rendered)
}
