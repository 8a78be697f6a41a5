package cron

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Swind/go-region-runner/core"
	"github.com/Swind/go-region-runner/regionized"
	"github.com/Swind/go-region-runner/sim"
)

type submission struct {
	work  core.Work
	delay time.Duration
	task  *core.Task
}

// fakeTarget records submissions; the test fires them by hand.
type fakeTarget struct {
	mu      sync.Mutex
	subs    []submission
	refuse  bool
	submits int
}

func (f *fakeTarget) RunDelayedFor(work core.Work, delay time.Duration) *core.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	if f.refuse {
		return nil
	}
	task := core.NewTask(sim.NewPlugin("cron-test", "example.com/crontest"), core.ScopeAsync, "fake", core.Request{
		Kind: core.KindDelayed, Work: work, Delay: delay,
	}, nil)
	f.subs = append(f.subs, submission{work: work, delay: delay, task: task})
	return task
}

func (f *fakeTarget) last() submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[len(f.subs)-1]
}

func (f *fakeTarget) fire(t *testing.T) {
	t.Helper()
	s := f.last()
	s.task.Execute(context.Background(), nil)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// TestSchedule_CronDelays verifies delays computed from a cron expression
// Given: A "*/15 * * * *" job created at 10:07
// When: It fires at 10:15
// Then: The first delay is 8 minutes and the next one 15 minutes
func TestSchedule_CronDelays(t *testing.T) {
	// Arrange
	target := &fakeTarget{}
	clk := &clock{now: time.Date(2026, 3, 1, 10, 7, 0, 0, time.UTC)}
	var runs int

	// Act
	job, err := Schedule(target, "*/15 * * * *", core.Do(func(ctx context.Context) { runs++ }),
		WithClock(clk.Now), WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	first := target.last().delay
	clk.Set(time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC))
	target.fire(t)

	// Assert
	if first != 8*time.Minute {
		t.Errorf("first delay = %v, want 8m", first)
	}
	if second := target.last().delay; second != 15*time.Minute {
		t.Errorf("second delay = %v, want 15m", second)
	}
	if runs != 1 || job.Runs() != 1 {
		t.Errorf("runs = %d, Runs() = %d, want 1", runs, job.Runs())
	}
	if want := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC); !job.Next().Equal(want) {
		t.Errorf("Next() = %v, want %v", job.Next(), want)
	}
}

// TestSchedule_Stop verifies Stop cancels the pending task and prevents re-arming
func TestSchedule_Stop(t *testing.T) {
	target := &fakeTarget{}
	job, err := Schedule(target, "@every 1m", core.Do(func(ctx context.Context) {}))
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	pending := target.last().task

	job.Stop()

	if !pending.IsCancelled() {
		t.Error("pending task should be cancelled")
	}
	if !job.Stopped() {
		t.Error("Stopped() = false after Stop()")
	}
	// A late execution of the cancelled task does nothing.
	pending.Execute(context.Background(), nil)
	if job.Runs() != 0 || target.submits != 1 {
		t.Errorf("Runs() = %d, submits = %d, want 0 and 1", job.Runs(), target.submits)
	}
}

// TestSchedule_Refused verifies a refusing target
func TestSchedule_Refused(t *testing.T) {
	target := &fakeTarget{refuse: true}
	if _, err := Schedule(target, "1m", core.Do(func(ctx context.Context) {})); err == nil {
		t.Fatal("Schedule() error = nil for a refusing target")
	}
}

// TestSchedule_StopsWhenRearmRefused verifies the job stops once the target refuses
func TestSchedule_StopsWhenRearmRefused(t *testing.T) {
	target := &fakeTarget{}
	job, err := Schedule(target, "30s", core.Do(func(ctx context.Context) {}))
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	target.mu.Lock()
	target.refuse = true
	target.mu.Unlock()
	target.fire(t)

	if !job.Stopped() || job.Runs() != 1 {
		t.Errorf("Stopped() = %v, Runs() = %d", job.Stopped(), job.Runs())
	}
}

// TestParse verifies accepted and rejected schedule strings
func TestParse(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		spec    string
		next    time.Duration
		wantErr bool
	}{
		{spec: "*/5 * * * *", next: 5 * time.Minute},
		{spec: "30 * * * * *", next: 30 * time.Second},
		{spec: "@hourly", next: time.Hour},
		{spec: "@every 90s", next: 90 * time.Second},
		{spec: "90s", next: 90 * time.Second},
		{spec: "01:30", next: 90 * time.Minute},
		{spec: "", wantErr: true},
		{spec: "soon", wantErr: true},
		{spec: "100ms", wantErr: true},
		{spec: "00:75", wantErr: true},
		{spec: "61 * * * *", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			sched, err := Parse(tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) error = nil", tt.spec)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.spec, err)
			}
			if got := sched.Next(base).Sub(base); got != tt.next {
				t.Errorf("Next() - base = %v, want %v", got, tt.next)
			}
		})
	}
}

// TestSchedule_OnSimulatedRegion verifies a job runs on a real scope scheduler
// Given: A one-second job on a region scheduler of a manually stepped server
// When: The server ticks through one second
// Then: The work ran on the region thread and another execution is pending
func TestSchedule_OnSimulatedRegion(t *testing.T) {
	// Arrange
	srv := sim.NewRegionizedServer(sim.Options{})
	defer srv.Stop()
	family, err := regionized.New(sim.NewPlugin("cron-test", "example.com/crontest"), srv, nil)
	if err != nil {
		t.Fatalf("regionized.New() error = %v", err)
	}
	world := sim.NewWorld("world")
	clk := &clock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	var mu sync.Mutex
	var threads []string

	job, err := Schedule(family.Region(world, 0, 0), "1s", core.Do(func(ctx context.Context) {
		mu.Lock()
		threads = append(threads, sim.CurrentThread(ctx).Name())
		mu.Unlock()
	}), WithClock(clk.Now))
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	defer job.Stop()

	// Act
	for range core.TicksPerSecond {
		srv.Step()
	}

	// Assert
	mu.Lock()
	defer mu.Unlock()
	if len(threads) != 1 || threads[0] != "region[world 0,0]" {
		t.Fatalf("threads = %v, want one run on region[world 0,0]", threads)
	}
	if job.Runs() != 1 || job.Stopped() {
		t.Errorf("Runs() = %d, Stopped() = %v", job.Runs(), job.Stopped())
	}
}
