package main

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/github/stack-graphs/cancel"
	"github.com/github/stack-graphs/graph"
	"github.com/github/stack-graphs/indexer"
	"github.com/github/stack-graphs/stitcher"
	"github.com/github/stack-graphs/storage"
	"github.com/github/stack-graphs/telemetry"
)

// joinRelevantSeeds returns the nodes SPEC_FULL.md §4.6 names as valid
// partial-path start/end boundaries: references, exported scopes, and
// root. Seeding the partial-path stitcher from exactly this set (rather
// than every node) keeps the stored database to the join-relevant
// fragments a query can actually start or land on.
func joinRelevantSeeds(g *graph.Graph) []graph.NodeHandle {
	seeds := []graph.NodeHandle{g.Root()}
	for _, h := range g.AllNodes() {
		n, _ := g.Node(h)
		if n.IsReference || (n.Kind == graph.KindScope && n.IsExported) {
			seeds = append(seeds, h)
		}
	}
	return seeds
}

func runIndex(cmd *cobra.Command, args []string) error {
	dir := args[0]

	var fixtures []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".sg.json") {
			fixtures = append(fixtures, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("stackgraphctl: walk %s: %w", dir, err)
	}
	if len(fixtures) == 0 {
		return fmt.Errorf("stackgraphctl: no .sg.json fixtures found under %s", dir)
	}

	db, err := storage.OpenBadgerDatabase(resolvedDBPath())
	if err != nil {
		return err
	}
	defer db.Close()

	metrics := telemetry.NewMetrics(nil)
	controller, err := cancel.NewController(cancel.ControllerConfig{}, logger.Slog(), metrics)
	if err != nil {
		return err
	}
	defer controller.Close()

	idx := indexer.New(cfg.IndexWorkers)
	results, err := idx.IndexFiles(context.Background(), fixtures, func(ctx context.Context, fixture string) (any, error) {
		return indexFixture(ctx, controller, db, fixture)
	})
	if err != nil {
		return err
	}

	var totalPaths int
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
		totalPaths += r.Value.(int)
	}

	logger.Info("indexing complete", "fixtures", len(fixtures), "partial_paths", totalPaths)
	fmt.Printf("indexed %d partial paths from %d fixtures into %s\n", totalPaths, len(fixtures), resolvedDBPath())
	return nil
}

// indexFixture computes and persists the partial paths for one .sg.json
// fixture, returning the number of paths stored. It is the per-file unit
// of work the indexer fans out across a bounded worker pool.
func indexFixture(ctx context.Context, controller *cancel.Controller, db *storage.BadgerDatabase, fixture string) (int, error) {
	g, _, contentHash, err := loadGraphFile(fixture)
	if err != nil {
		return 0, err
	}
	seeds := joinRelevantSeeds(g)
	logger.Info("indexing fixture", "path", fixture, "seeds", len(seeds))

	runID := stitcher.NewRunID()
	runCtx, finish := telemetry.StartRun(ctx, runID, len(seeds))
	run, err := controller.NewRun(runCtx, cancel.RunConfig{ID: runID})
	if err != nil {
		return 0, err
	}

	s := stitcher.PartialFromNodes(g, seeds)
	s.SetMaxWorkPerPhase(cfg.MaxWorkPerPhase)
	var fixturePaths int
	for !s.Done() {
		results, cancelled := s.RunOnePhase(run)
		run.ReportProgress()
		if cancelled {
			finish(true, fixturePaths)
			run.Done()
			return 0, fmt.Errorf("stackgraphctl: indexing %s cancelled", fixture)
		}
		for _, p := range results {
			if err := db.Insert(g, contentHash, p); err != nil {
				finish(true, fixturePaths)
				run.Done()
				return 0, fmt.Errorf("stackgraphctl: persist partial path for %s: %w", fixture, err)
			}
			fixturePaths++
		}
	}
	finish(false, fixturePaths)
	run.Done()
	return fixturePaths, nil
}
