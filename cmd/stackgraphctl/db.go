package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/github/stack-graphs/graph"
	"github.com/github/stack-graphs/jsonenc"
	"github.com/github/stack-graphs/partial"
	"github.com/github/stack-graphs/storage"
	"github.com/github/stack-graphs/symbol"
)

// defaultDBPath is where index writes and query reads partial paths when
// neither --db nor the config file's storage.path names a location
// (SPEC_FULL.md §14).
const defaultDBPath = ".stackgraph/db"

// loadGraphFile parses the graph JSON at path and also returns a content
// hash covering the whole document, used as the contentHash partial paths
// are indexed under (SPEC_FULL.md §12). A single hash for the whole file is
// a simplification of add_file's per-file hashing: a .sg.json fixture
// stands in for one file's worth of nodes, since real syntax-tree
// construction is out of scope (SPEC_FULL.md §14).
func loadGraphFile(path string) (*graph.Graph, *symbol.Interner, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, "", fmt.Errorf("stackgraphctl: read %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	g, syms, err := jsonenc.ParseGraph(bytes.NewReader(data))
	if err != nil {
		return nil, nil, "", fmt.Errorf("stackgraphctl: parse %s: %w", path, err)
	}
	return g, syms, hex.EncodeToString(sum[:]), nil
}

func resolvedDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if cfg.Storage.Path != "" {
		return cfg.Storage.Path
	}
	return defaultDBPath
}

// loadStoredPartials rehydrates every partial path db holds for
// contentHash against g into an in-process partial.Database, so
// stitcher.ResolveFromDatabase (which only knows about partial.Database,
// not BadgerDatabase's (contentHash, startLocal) key scheme) can query it
// by graph.NodeHandle directly.
func loadStoredPartials(badger *storage.BadgerDatabase, g *graph.Graph, contentHash string) (partial.Database, error) {
	mem := partial.NewMemoryDatabase()
	for _, h := range g.AllNodes() {
		n, ok := g.Node(h)
		if !ok || n.ID.File == graph.NoFile {
			continue
		}
		stored, err := badger.PartialsStartingAt(g, contentHash, n.ID.Local)
		if err != nil {
			return nil, fmt.Errorf("stackgraphctl: load partial paths for node %d: %w", h, err)
		}
		for _, p := range stored {
			mem.Add(p)
		}
	}
	return mem, nil
}
