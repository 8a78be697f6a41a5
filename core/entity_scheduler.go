package core

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/go-region-runner/host"
)

// EntitySubmitter is the host's entity-bound sub-scheduler seen through the
// canonical submission.
type EntitySubmitter interface {
	Backend() string

	// Entity returns the entity tasks follow.
	Entity() host.Entity

	// Execute schedules action after delay. It reports false if the host
	// refused. retired may be invoked by the host instead of action.
	Execute(action Action, retired func(), delay Ticks) bool

	// Submit hands req to the host and returns the bound handle, or nil if
	// the host refused. req.Retired may be invoked by the host.
	Submit(req Request) *Task
}

// EntityScheduler schedules work that follows one entity. Work never runs
// for a retired entity: the retired fallback runs instead, at most once per
// submission.
//
// Validity is checked on submission and again before every cycle, so a
// repeating task stops on the first cycle after the entity is removed.
type EntityScheduler struct {
	submitter EntitySubmitter
	entity    host.Entity
	config    *Config
}

// NewEntityScheduler wraps s.
func NewEntityScheduler(s EntitySubmitter, config *Config) *EntityScheduler {
	if s == nil {
		panic("core: nil entity submitter")
	}
	return &EntityScheduler{submitter: s, entity: s.Entity(), config: config.Normalize()}
}

func (s *EntityScheduler) Backend() string     { return s.submitter.Backend() }
func (s *EntityScheduler) Entity() host.Entity { return s.entity }

// Execute runs action after delay ticks. If the entity is already retired,
// retired runs synchronously and Execute returns false.
func (s *EntityScheduler) Execute(action Action, retired func(), delay Ticks) bool {
	if action == nil {
		panic("core: nil action")
	}
	if s.refuse(retired) {
		return false
	}

	fallback := s.fallback(retired)
	guarded := func(ctx context.Context) {
		if !s.entity.IsValid() {
			fallback()
			return
		}
		action(ctx)
	}
	if !s.submitter.Execute(guarded, fallback, atLeastOneTick(delay)) {
		s.config.Metrics.RecordTaskRefused(ScopeEntity)
		fallback()
		return false
	}
	return true
}

// Run runs work on the entity's next tick.
func (s *EntityScheduler) Run(work Work, retired func()) *Task {
	return s.submit(Request{Kind: KindNext, Work: work}, retired)
}

// RunDelayed runs work once after delay ticks.
func (s *EntityScheduler) RunDelayed(work Work, retired func(), delay Ticks) *Task {
	return s.RunDelayedFor(work, retired, delay.Duration())
}

// RunDelayedFor is RunDelayed with a duration.
func (s *EntityScheduler) RunDelayedFor(work Work, retired func(), delay time.Duration) *Task {
	return s.submit(Request{Kind: KindDelayed, Work: work, Delay: delay}, retired)
}

// RunAtFixedRate runs work after delay ticks and then every period ticks
// until cancelled or the entity is retired.
func (s *EntityScheduler) RunAtFixedRate(work Work, retired func(), delay, period Ticks) *Task {
	return s.RunAtFixedRateFor(work, retired, delay.Duration(), period.Duration())
}

// RunAtFixedRateFor is RunAtFixedRate with durations.
func (s *EntityScheduler) RunAtFixedRateFor(work Work, retired func(), delay, period time.Duration) *Task {
	return s.submit(Request{Kind: KindFixedRate, Work: work, Delay: delay, Period: period}, retired)
}

func (s *EntityScheduler) submit(req Request, retired func()) *Task {
	if req.Work == nil {
		panic("core: nil work")
	}
	if s.refuse(retired) {
		return nil
	}

	fallback := s.fallback(retired)
	req.Retired = fallback
	req.Guard = func(ctx context.Context, task *Task) bool {
		if s.entity.IsValid() {
			return true
		}
		task.Cancel()
		fallback()
		return false
	}

	task := s.submitter.Submit(req)
	if task == nil {
		fallback()
		return nil
	}
	return task
}

// refuse runs retired synchronously when the entity is no longer valid.
func (s *EntityScheduler) refuse(retired func()) bool {
	if s.entity.IsValid() {
		return false
	}
	s.config.Metrics.RecordTaskRefused(ScopeEntity)
	s.config.Logger.Debug("entity task refused",
		F("entity", s.entity.UniqueID().String()),
		F("backend", s.Backend()),
	)
	if retired != nil {
		retired()
	}
	return true
}

// fallback returns a single-shot wrapper around retired. Both the host and
// the per-cycle guard may observe retirement.
func (s *EntityScheduler) fallback(retired func()) func() {
	return sync.OnceFunc(func() {
		s.config.Metrics.RecordTaskRetired(ScopeEntity)
		s.config.Logger.Debug("entity retired",
			F("entity", s.entity.UniqueID().String()),
			F("backend", s.Backend()),
		)
		if retired != nil {
			retired()
		}
	})
}
