package stitcher

import "github.com/google/uuid"

// NewRunID returns a fresh correlation ID for one stitcher run, used to
// tie together its cancellation controller, log lines, and telemetry span
// (SPEC_FULL.md §11).
func NewRunID() string {
	return uuid.NewString()
}
