// Package cron runs work on a scope scheduler at times given by a cron
// expression or a fixed interval.
//
// A Job holds at most one pending task. Each execution computes the next
// fire time and submits a fresh delayed task, so the work always runs on
// the scope it was scheduled on.
package cron

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	robfig "github.com/robfig/cron/v3"

	"github.com/Swind/go-region-runner/core"
)

// Target is a scheduler that accepts delayed work. *core.ScopeScheduler and
// *core.AsyncScheduler satisfy it; EntityTarget adapts an entity scheduler.
type Target interface {
	RunDelayedFor(work core.Work, delay time.Duration) *core.Task
}

type entityTarget struct {
	scheduler *core.EntityScheduler
	retired   func()
}

func (e entityTarget) RunDelayedFor(work core.Work, delay time.Duration) *core.Task {
	return e.scheduler.RunDelayedFor(work, e.retired, delay)
}

// EntityTarget schedules on an entity. retired runs at most once per
// pending task if the entity is removed.
func EntityTarget(s *core.EntityScheduler, retired func()) Target {
	return entityTarget{scheduler: s, retired: retired}
}

var parser = robfig.NewParser(
	robfig.SecondOptional | robfig.Minute | robfig.Hour | robfig.Dom | robfig.Month | robfig.Dow | robfig.Descriptor,
)

var reHHMM = regexp.MustCompile(`^\s*(\d{1,3}):(\d{2})\s*$`)

// Parse accepts a cron expression ("*/5 * * * *", "@hourly", "@every 1m"),
// a Go duration ("90s") or an HH:MM interval ("01:30").
func Parse(spec string) (robfig.Schedule, error) {
	s := strings.TrimSpace(spec)
	if s == "" {
		return nil, fmt.Errorf("cron: schedule required")
	}
	if strings.ContainsAny(s, " \t") || strings.HasPrefix(s, "@") {
		sched, err := parser.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("cron: %q: %w", spec, err)
		}
		return sched, nil
	}
	if m := reHHMM.FindStringSubmatch(s); m != nil {
		var hh, mm int
		fmt.Sscanf(m[1], "%d", &hh)
		fmt.Sscanf(m[2], "%d", &mm)
		if mm > 59 {
			return nil, fmt.Errorf("cron: invalid minutes in %q", spec)
		}
		return every(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return nil, fmt.Errorf("cron: invalid schedule %q (use cron like '*/5 * * * *', HH:MM or a duration)", spec)
	}
	return every(d)
}

func every(d time.Duration) (robfig.Schedule, error) {
	if d < time.Second {
		return nil, fmt.Errorf("cron: interval must be at least 1s, got %v", d)
	}
	return robfig.Every(d), nil
}

// Option configures a Job.
type Option func(*Job)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(j *Job) { j.now = now }
}

// WithLocation evaluates the schedule in loc instead of time.Local.
func WithLocation(loc *time.Location) Option {
	return func(j *Job) { j.loc = loc }
}

// WithLogger reports refused submissions.
func WithLogger(l core.Logger) Option {
	return func(j *Job) { j.logger = l }
}

// Job is a recurring schedule bound to one target.
type Job struct {
	spec     string
	schedule robfig.Schedule
	target   Target
	work     core.Work
	now      func() time.Time
	loc      *time.Location
	logger   core.Logger

	mu      sync.Mutex
	pending *core.Task
	next    time.Time
	runs    int64
	stopped bool
}

// Schedule parses spec and arms the first execution on target.
func Schedule(target Target, spec string, work core.Work, opts ...Option) (*Job, error) {
	if target == nil || work == nil {
		return nil, fmt.Errorf("cron: nil target or work")
	}
	sched, err := Parse(spec)
	if err != nil {
		return nil, err
	}

	j := &Job{
		spec:     spec,
		schedule: sched,
		target:   target,
		work:     work,
		now:      time.Now,
		loc:      time.Local,
		logger:   core.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(j)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.armLocked() {
		return nil, fmt.Errorf("cron: %q: target refused the first execution", spec)
	}
	return j, nil
}

// armLocked submits the next execution. It reports false if the schedule
// has no next time or the target refused.
func (j *Job) armLocked() bool {
	now := j.now().In(j.loc)
	next := j.schedule.Next(now)
	if next.IsZero() {
		j.stopped = true
		return false
	}

	task := j.target.RunDelayedFor(j.fire, next.Sub(now))
	if task == nil {
		j.stopped = true
		j.logger.Warn("cron job stopped: submission refused", core.F("spec", j.spec))
		return false
	}
	j.pending, j.next = task, next
	return true
}

func (j *Job) fire(ctx context.Context, task *core.Task) any {
	j.mu.Lock()
	if j.stopped {
		j.mu.Unlock()
		return nil
	}
	j.runs++
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		defer j.mu.Unlock()
		if !j.stopped {
			j.armLocked()
		}
	}()
	return j.work(ctx, task)
}

// Next returns the time of the pending execution.
func (j *Job) Next() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.next
}

// Runs returns how many executions have started.
func (j *Job) Runs() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runs
}

// Stopped reports whether the job will fire again.
func (j *Job) Stopped() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stopped
}

// Stop cancels the pending execution. An execution in progress finishes but
// does not re-arm.
func (j *Job) Stop() {
	j.mu.Lock()
	pending := j.pending
	j.stopped = true
	j.pending = nil
	j.mu.Unlock()

	if pending != nil {
		pending.Cancel()
	}
}
