// Package telemetry wires the engine's optional observability surface:
// OpenTelemetry spans around stitcher runs and Prometheus counters/
// histograms describing their outcome (SPEC_FULL.md §11). Nothing in this
// package is required for correctness — every core package works with it
// absent — it exists for operators running a long-lived indexer who want
// to see what the engine is doing.
package telemetry
