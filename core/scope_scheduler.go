package core

import "time"

// Submitter is one host sub-scheduler seen through the canonical submission.
// Families implement it once per scope.
type Submitter interface {
	// Backend names the native primitive, e.g. "legacy.sync".
	Backend() string

	// Scope reports the scope kind tasks are bound to.
	Scope() ScopeKind

	// Execute schedules fire-and-forget work at the next opportunity.
	Execute(action Action)

	// Submit hands req to the host and returns the bound handle, or nil if
	// the host refused.
	Submit(req Request) *Task
}

// ScopeScheduler schedules work on the global, region or async scope. It is
// stateless and safe for concurrent use.
type ScopeScheduler struct {
	submitter Submitter
}

// NewScopeScheduler wraps s.
func NewScopeScheduler(s Submitter) *ScopeScheduler {
	if s == nil {
		panic("core: nil submitter")
	}
	return &ScopeScheduler{submitter: s}
}

// Backend names the native primitive tasks are handed to.
func (s *ScopeScheduler) Backend() string { return s.submitter.Backend() }

// Scope reports the scope kind.
func (s *ScopeScheduler) Scope() ScopeKind { return s.submitter.Scope() }

// Execute runs action at the next opportunity. No handle is returned.
func (s *ScopeScheduler) Execute(action Action) {
	if action == nil {
		panic("core: nil action")
	}
	s.submitter.Execute(action)
}

// Run runs work at the next opportunity.
func (s *ScopeScheduler) Run(work Work) *Task {
	return s.submitter.Submit(Request{Kind: KindNext, Work: work})
}

// RunDelayed runs work once after delay ticks. Tick-bound scopes run it no
// earlier than the next tick.
func (s *ScopeScheduler) RunDelayed(work Work, delay Ticks) *Task {
	return s.RunDelayedFor(work, delay.Duration())
}

// RunDelayedFor is RunDelayed with a duration.
func (s *ScopeScheduler) RunDelayedFor(work Work, delay time.Duration) *Task {
	return s.submitter.Submit(Request{Kind: KindDelayed, Work: work, Delay: delay})
}

// RunAtFixedRate runs work after delay ticks and then every period ticks
// until cancelled.
func (s *ScopeScheduler) RunAtFixedRate(work Work, delay, period Ticks) *Task {
	return s.RunAtFixedRateFor(work, delay.Duration(), period.Duration())
}

// RunAtFixedRateFor is RunAtFixedRate with durations.
func (s *ScopeScheduler) RunAtFixedRateFor(work Work, delay, period time.Duration) *Task {
	return s.submitter.Submit(Request{Kind: KindFixedRate, Work: work, Delay: delay, Period: period})
}

// AsyncScheduler is the scope scheduler of the off-tick worker pool.
type AsyncScheduler struct {
	*ScopeScheduler
}

// NewAsyncScheduler wraps s.
func NewAsyncScheduler(s Submitter) *AsyncScheduler {
	return &AsyncScheduler{ScopeScheduler: NewScopeScheduler(s)}
}

// RunNow hands work to the pool immediately.
func (s *AsyncScheduler) RunNow(work Work) *Task {
	return s.Run(work)
}
