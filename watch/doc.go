// Package watch provides an incremental per-project cache over a
// *graph.Graph and its partial-path store (SPEC_FULL.md §13): it holds the
// current graph for a project root, rebuilds it through a caller-supplied
// BuildFunc, and keeps it current by watching the filesystem for changes
// and re-invoking a caller-supplied RefreshFunc.
//
// Graph construction (parsing source files into stack graph nodes and
// edges) is outside this package's scope; ProjectCache only owns the
// refresh cadence and the currently-cached result.
package watch
