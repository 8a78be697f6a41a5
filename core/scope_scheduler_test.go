package core

import (
	"context"
	"testing"
	"time"
)

// TestScopeScheduler_WrappersBuildRequests verifies the convenience operations
// Given: A scope scheduler over a recording submitter
// When: Each wrapper is called
// Then: The canonical request carries the right kind, delay and period
func TestScopeScheduler_WrappersBuildRequests(t *testing.T) {
	// Arrange
	s := newFakeSubmitter(ScopeRegion)
	sched := NewScopeScheduler(s)
	work := Do(func(context.Context) {})

	// Act
	sched.Run(work)
	sched.RunDelayed(work, 20)
	sched.RunDelayedFor(work, 75*time.Millisecond)
	sched.RunAtFixedRate(work, 0, 5)
	sched.RunAtFixedRateFor(work, time.Second, 2*time.Second)

	// Assert
	want := []struct {
		kind          RequestKind
		delay, period Ticks
	}{
		{KindNext, 1, 1},
		{KindDelayed, 20, 1},
		{KindDelayed, 2, 1},
		{KindFixedRate, 1, 5},
		{KindFixedRate, 20, 40},
	}
	if len(s.reqs) != len(want) {
		t.Fatalf("got %d requests, want %d", len(s.reqs), len(want))
	}
	for i, w := range want {
		r := s.reqs[i]
		if r.Kind != w.kind || r.DelayTicks() != w.delay || r.PeriodTicks() != w.period {
			t.Errorf("request %d = kind %d delay %d period %d, want %+v", i, r.Kind, r.DelayTicks(), r.PeriodTicks(), w)
		}
	}
	if sched.Backend() != "fake.region" || sched.Scope() != ScopeRegion {
		t.Fatalf("Backend()=%q Scope()=%v", sched.Backend(), sched.Scope())
	}
}

// TestScopeScheduler_RunDelayedZeroIsDeferred verifies zero delay is not inline
// Given: A scope scheduler
// When: RunDelayed is called with zero ticks
// Then: The work has not run when the call returns and the delay is one tick
func TestScopeScheduler_RunDelayedZeroIsDeferred(t *testing.T) {
	s := newFakeSubmitter(ScopeGlobal)
	ran := false

	task := NewScopeScheduler(s).RunDelayed(Do(func(context.Context) { ran = true }), 0)

	if ran {
		t.Fatal("work ran synchronously")
	}
	if r, _, _ := s.last(); r.DelayTicks() != 1 {
		t.Fatalf("DelayTicks() = %d, want 1", r.DelayTicks())
	}
	s.fire()
	if !ran || !task.Future().IsDone() {
		t.Fatal("work should run when the host fires it")
	}
}

// TestScopeScheduler_RefusedReturnsNil verifies host refusal
// Given: A submitter whose host refuses every task
// When: Run is called
// Then: Nil is returned
func TestScopeScheduler_RefusedReturnsNil(t *testing.T) {
	s := newFakeSubmitter(ScopeAsync)
	s.refuse = true

	if task := NewAsyncScheduler(s).RunNow(Do(func(context.Context) {})); task != nil {
		t.Fatal("refused submission should return nil")
	}
}

// TestScopeScheduler_Execute verifies fire-and-forget submission
// Given: A scope scheduler
// When: Execute is called
// Then: The action reaches the submitter
func TestScopeScheduler_Execute(t *testing.T) {
	s := newFakeSubmitter(ScopeGlobal)
	ran := false

	NewScopeScheduler(s).Execute(func(context.Context) { ran = true })

	if len(s.actions) != 1 {
		t.Fatalf("submitter received %d actions, want 1", len(s.actions))
	}
	s.actions[0](context.Background())
	if !ran {
		t.Fatal("action did not run")
	}
}

// TestScopeScheduler_NilWorkPanics verifies programmer errors panic
func TestScopeScheduler_NilWorkPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("nil work should panic")
		}
	}()
	NewScopeScheduler(newFakeSubmitter(ScopeGlobal)).Run(nil)
}
