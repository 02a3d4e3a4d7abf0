package cancel

import (
	"context"
	"testing"
	"time"
)

func TestRunContextLifecycle(t *testing.T) {
	ctrl, err := NewController(ControllerConfig{}, nil, nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer ctrl.Close()

	run, err := ctrl.NewRun(context.Background(), RunConfig{ID: "run-1"})
	if err != nil {
		t.Fatalf("NewRun failed: %v", err)
	}
	if run.ID() != "run-1" {
		t.Fatalf("ID() = %v, want run-1", run.ID())
	}
	if run.State() != StateRunning {
		t.Fatalf("State() = %v, want StateRunning", run.State())
	}
	if run.Cancelled() {
		t.Fatal("a fresh run must not report Cancelled")
	}

	run.Cancel(Reason{Type: ReasonUser, Message: "test"})
	if !run.Cancelled() {
		t.Fatal("Cancel must make Cancelled true")
	}
	if run.State() != StateCancelled {
		t.Fatalf("State() = %v, want StateCancelled", run.State())
	}
}

func TestRunContextDoneDoesNotCountAsCancelled(t *testing.T) {
	ctrl, err := NewController(ControllerConfig{}, nil, nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer ctrl.Close()

	run, _ := ctrl.NewRun(context.Background(), RunConfig{ID: "run-done"})
	run.Done()
	if run.State() != StateDone {
		t.Fatalf("State() = %v, want StateDone", run.State())
	}
	// Done still closes the underlying context, so Cancelled() reports true;
	// callers distinguish the two by State(), not Cancelled().
	if !run.Cancelled() {
		t.Fatal("Done must close the underlying context")
	}
}

func TestControllerCancelUnknownRun(t *testing.T) {
	ctrl, err := NewController(ControllerConfig{}, nil, nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer ctrl.Close()

	if err := ctrl.Cancel("missing", Reason{Type: ReasonUser}); err == nil {
		t.Fatal("expected an error cancelling an unregistered run")
	}
}

func TestControllerDetectsDeadlock(t *testing.T) {
	ctrl, err := NewController(ControllerConfig{
		DeadlockMultiplier:    2,
		DeadlockCheckInterval: 5 * time.Millisecond,
	}, nil, nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer ctrl.Close()

	run, err := ctrl.NewRun(context.Background(), RunConfig{
		ID:               "stalled",
		ProgressInterval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewRun failed: %v", err)
	}

	deadline := time.After(200 * time.Millisecond)
	for !run.Cancelled() {
		select {
		case <-deadline:
			t.Fatal("run was never cancelled by the deadlock detector")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if run.Status().Reason == nil || run.Status().Reason.Type != ReasonDeadlock {
		t.Fatalf("expected a deadlock reason, got %+v", run.Status().Reason)
	}
}

func TestControllerReportProgressPreventsDeadlock(t *testing.T) {
	ctrl, err := NewController(ControllerConfig{
		DeadlockMultiplier:    2,
		DeadlockCheckInterval: 5 * time.Millisecond,
	}, nil, nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer ctrl.Close()

	run, _ := ctrl.NewRun(context.Background(), RunConfig{
		ID:               "alive",
		ProgressInterval: 10 * time.Millisecond,
	})

	stop := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(stop) {
		run.ReportProgress()
		time.Sleep(2 * time.Millisecond)
	}
	if run.Cancelled() {
		t.Fatal("a run that keeps reporting progress must not be deadlock-cancelled")
	}
}

func TestControllerCloseCancelsActiveRuns(t *testing.T) {
	ctrl, err := NewController(ControllerConfig{}, nil, nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	run, _ := ctrl.NewRun(context.Background(), RunConfig{ID: "run-x"})
	if err := ctrl.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !run.Cancelled() {
		t.Fatal("Close must cancel runs still in flight")
	}
}
