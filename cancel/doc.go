// Package cancel provides cancellable run contexts for stitcher searches.
//
// # Overview
//
// A ForwardPathStitcher or ForwardPartialPathStitcher run is driven phase by
// phase by a caller; this package gives that caller a Controller that issues
// one RunContext per stitcher run, tracks its progress, and can cancel it
// either on request or because it has stopped making progress.
//
// # Cancellation triggers
//
//   - User: explicit Cancel(id, reason) call.
//   - Timeout: the run's configured Timeout elapsed.
//   - Deadlock: no ReportProgress call within DeadlockMultiplier *
//     ProgressInterval.
//   - Shutdown: the controller itself is shutting down.
//
// # Contract
//
// A caller driving RunOnePhase in a loop should call ReportProgress once per
// phase. A run that never does so looks identical, from this package's point
// of view, to one that is stuck; the deadlock detector cancels it once the
// threshold elapses.
//
// # Thread safety
//
// Controller and RunContext are safe for concurrent use.
package cancel
