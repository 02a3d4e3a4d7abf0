package cancel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Controller issues and tracks RunContexts for stitcher runs, force-cancelling
// any that stop reporting progress.
//
// Thread safety: safe for concurrent use.
type Controller struct {
	config ControllerConfig
	logger *slog.Logger

	runsMu sync.RWMutex
	runs   map[string]*RunContext

	recorder Recorder

	closed     bool
	closedMu   sync.RWMutex
	shutdownCh chan struct{}
	shutdownWg sync.WaitGroup
}

// NewController creates a Controller and starts its background deadlock
// detector. logger may be nil (slog.Default() is used); recorder may be nil.
func NewController(config ControllerConfig, logger *slog.Logger, recorder Recorder) (*Controller, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("cancel: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		config:     config,
		logger:     logger.With(slog.String("component", "cancel_controller")),
		runs:       make(map[string]*RunContext),
		recorder:   recorder,
		shutdownCh: make(chan struct{}),
	}

	c.shutdownWg.Add(1)
	go c.detectDeadlocks()

	return c, nil
}

// NewRun creates a cancellable RunContext for a single stitcher run.
func (c *Controller) NewRun(parent context.Context, cfg RunConfig) (*RunContext, error) {
	if parent == nil {
		parent = context.Background()
	}
	c.closedMu.RLock()
	if c.closed {
		c.closedMu.RUnlock()
		return nil, ErrControllerClosed
	}
	c.closedMu.RUnlock()

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	run := newRunContext(parent, cfg, c)

	c.runsMu.Lock()
	c.runs[cfg.ID] = run
	c.runsMu.Unlock()

	c.logger.Debug("run started", slog.String("run_id", cfg.ID))
	if c.recorder != nil {
		c.recorder.RunStarted()
	}
	return run, nil
}

func (c *Controller) forget(id string) {
	c.runsMu.Lock()
	delete(c.runs, id)
	c.runsMu.Unlock()
}

// Cancel cancels the run with the given ID.
func (c *Controller) Cancel(id string, reason Reason) error {
	c.runsMu.RLock()
	run, ok := c.runs[id]
	c.runsMu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	c.logger.Info("cancelling run", slog.String("run_id", id), slog.String("reason", reason.Type.String()))
	run.Cancel(reason)
	return nil
}

// CancelAll cancels every active run, e.g. on process shutdown.
func (c *Controller) CancelAll(reason Reason) {
	c.runsMu.RLock()
	runs := make([]*RunContext, 0, len(c.runs))
	for _, r := range c.runs {
		runs = append(runs, r)
	}
	c.runsMu.RUnlock()
	for _, r := range runs {
		r.Cancel(reason)
	}
}

// Status returns a snapshot of every tracked run.
func (c *Controller) Status() []Status {
	c.runsMu.RLock()
	defer c.runsMu.RUnlock()
	statuses := make([]Status, 0, len(c.runs))
	for _, r := range c.runs {
		statuses = append(statuses, r.Status())
	}
	return statuses
}

// Close stops the background deadlock detector and cancels every active run.
// Idempotent.
func (c *Controller) Close() error {
	c.closedMu.Lock()
	if c.closed {
		c.closedMu.Unlock()
		return nil
	}
	c.closed = true
	c.closedMu.Unlock()

	close(c.shutdownCh)
	c.CancelAll(Reason{Type: ReasonShutdown, Message: "controller closed", Timestamp: time.Now()})
	c.shutdownWg.Wait()
	return nil
}

// detectDeadlocks periodically cancels any run that has not called
// ReportProgress within DeadlockMultiplier * ProgressInterval.
func (c *Controller) detectDeadlocks() {
	defer c.shutdownWg.Done()

	ticker := time.NewTicker(c.config.DeadlockCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.shutdownCh:
			return
		case <-ticker.C:
			c.scanForStalledRuns()
		}
	}
}

func (c *Controller) scanForStalledRuns() {
	c.runsMu.RLock()
	runs := make([]*RunContext, 0, len(c.runs))
	for _, r := range c.runs {
		runs = append(runs, r)
	}
	c.runsMu.RUnlock()

	now := time.Now()
	for _, r := range runs {
		if r.State().IsTerminal() {
			continue
		}
		threshold := time.Duration(c.config.DeadlockMultiplier) * r.progressInterval
		if threshold <= 0 {
			continue
		}
		elapsed := now.Sub(r.lastProgressTime())
		if elapsed <= threshold {
			continue
		}
		c.logger.Warn("deadlock detected",
			slog.String("run_id", r.id),
			slog.Duration("elapsed", elapsed),
			slog.Duration("threshold", threshold),
		)
		r.Cancel(Reason{
			Type:      ReasonDeadlock,
			Message:   "no progress reported within threshold",
			Threshold: threshold.String(),
			Timestamp: now,
		})
	}
}
