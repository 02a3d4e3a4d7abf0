// Package indexer fans partial-path construction out across a project's
// files (SPEC_FULL.md §5, §11): building the database for one file is
// independent of every other file, so the indexer runs a bounded pool of
// them concurrently with golang.org/x/sync/errgroup and deduplicates
// concurrent rebuild requests for the same file with
// golang.org/x/sync/singleflight, the same pairing watch.ProjectCache uses
// for whole-project rebuilds.
package indexer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultWorkers is used when a non-positive worker count is passed to New.
const DefaultWorkers = 8

// BuildFunc computes one file's partial-path contribution to the project
// database. It must be safe to call concurrently with itself for different
// files; the indexer never calls it twice concurrently for the same file.
type BuildFunc func(ctx context.Context, file string) (any, error)

// Indexer runs a BuildFunc across a set of files with bounded parallelism.
type Indexer struct {
	workers int
	flight  singleflight.Group
}

// New returns an Indexer that runs at most workers files at a time. A
// non-positive workers uses DefaultWorkers.
func New(workers int) *Indexer {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Indexer{workers: workers}
}

// Result pairs a file with the outcome of building it.
type Result struct {
	File  string
	Value any
	Err   error
}

// IndexFiles runs build once per file in files, at most i.workers at a
// time, and returns one Result per file in the order files was given.
// A file named more than once in files is built once, and every one of its
// positions gets that build's Result. Concurrent calls to IndexFiles that
// name the same file share a single in-flight build rather than running it
// twice (SPEC_FULL.md §5's singleflight dedup requirement).
//
// The first build error cancels the group's context, stopping in-flight
// builds early, but IndexFiles itself always returns a Result for every
// file rather than failing fast: callers that need all-or-nothing
// semantics can scan the returned slice for a non-nil Err.
func (i *Indexer) IndexFiles(ctx context.Context, files []string, build BuildFunc) ([]Result, error) {
	results := make([]Result, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)

	first := make(map[string]int, len(files))
	for idx, file := range files {
		if _, dup := first[file]; dup {
			continue
		}
		first[file] = idx
		idx, file := idx, file
		g.Go(func() error {
			v, err, _ := i.flight.Do(file, func() (any, error) {
				return build(gCtx, file)
			})
			results[idx] = Result{File: file, Value: v, Err: err}
			return err
		})
	}

	err := g.Wait()
	for idx, file := range files {
		results[idx] = results[first[file]]
	}
	if err != nil {
		return results, fmt.Errorf("indexer: %w", err)
	}
	return results, nil
}
