package regionized

import (
	"context"

	"github.com/Swind/go-region-runner/core"
	"github.com/Swind/go-region-runner/host"
)

const (
	backendGlobal = "regionized.global"
	backendRegion = "regionized.region"
	backendAsync  = "regionized.async"
	backendEntity = "regionized.entity"
)

// bind wires a core task to a native callback. The callback binds the
// native handle it receives, so the handle is published even when the first
// run beats the submitting goroutine.
func bind(task *core.Task) host.TaskFunc {
	return func(ctx context.Context, st host.ScheduledTask) {
		task.Execute(ctx, wrapNative(st))
	}
}

func accept(task *core.Task, st host.ScheduledTask) *core.Task {
	return task.Accept(wrapNative(st))
}

type globalSubmitter struct {
	family    *Family
	scheduler host.GlobalRegionScheduler
}

func (s *globalSubmitter) Backend() string       { return backendGlobal }
func (s *globalSubmitter) Scope() core.ScopeKind { return core.ScopeGlobal }

func (s *globalSubmitter) Execute(action core.Action) {
	f := s.family
	s.scheduler.Execute(f.owner, f.config.WrapAction(f.ownerName, core.ScopeGlobal, backendGlobal, action))
}

func (s *globalSubmitter) Submit(req core.Request) *core.Task {
	f := s.family
	task := core.NewTask(f.owner, core.ScopeGlobal, backendGlobal, req, f.config)

	var st host.ScheduledTask
	switch req.Kind {
	case core.KindNext:
		st = s.scheduler.Run(f.owner, bind(task))
	case core.KindDelayed:
		st = s.scheduler.RunDelayed(f.owner, bind(task), int64(req.DelayTicks()))
	case core.KindFixedRate:
		st = s.scheduler.RunAtFixedRate(f.owner, bind(task), int64(req.DelayTicks()), int64(req.PeriodTicks()))
	}
	return accept(task, st)
}

type regionSubmitter struct {
	family         *Family
	scheduler      host.RegionScheduler
	world          host.World
	chunkX, chunkZ int
}

func (s *regionSubmitter) Backend() string       { return backendRegion }
func (s *regionSubmitter) Scope() core.ScopeKind { return core.ScopeRegion }

func (s *regionSubmitter) Execute(action core.Action) {
	f := s.family
	s.scheduler.Execute(f.owner, s.world, s.chunkX, s.chunkZ,
		f.config.WrapAction(f.ownerName, core.ScopeRegion, backendRegion, action))
}

func (s *regionSubmitter) Submit(req core.Request) *core.Task {
	f := s.family
	task := core.NewTask(f.owner, core.ScopeRegion, backendRegion, req, f.config)

	var st host.ScheduledTask
	switch req.Kind {
	case core.KindNext:
		st = s.scheduler.Run(f.owner, s.world, s.chunkX, s.chunkZ, bind(task))
	case core.KindDelayed:
		st = s.scheduler.RunDelayed(f.owner, s.world, s.chunkX, s.chunkZ, bind(task), int64(req.DelayTicks()))
	case core.KindFixedRate:
		st = s.scheduler.RunAtFixedRate(f.owner, s.world, s.chunkX, s.chunkZ, bind(task),
			int64(req.DelayTicks()), int64(req.PeriodTicks()))
	}
	return accept(task, st)
}

// asyncSubmitter passes wall-clock durations through unchanged. A zero
// period means every tick.
type asyncSubmitter struct {
	family    *Family
	scheduler host.AsyncScheduler
}

func (s *asyncSubmitter) Backend() string       { return backendAsync }
func (s *asyncSubmitter) Scope() core.ScopeKind { return core.ScopeAsync }

func (s *asyncSubmitter) Execute(action core.Action) {
	f := s.family
	wrapped := f.config.WrapAction(f.ownerName, core.ScopeAsync, backendAsync, action)
	s.scheduler.RunNow(f.owner, func(ctx context.Context, _ host.ScheduledTask) { wrapped(ctx) })
}

func (s *asyncSubmitter) Submit(req core.Request) *core.Task {
	f := s.family
	task := core.NewTask(f.owner, core.ScopeAsync, backendAsync, req, f.config)
	delay := max(req.Delay, 0)

	var st host.ScheduledTask
	switch req.Kind {
	case core.KindNext:
		st = s.scheduler.RunNow(f.owner, bind(task))
	case core.KindDelayed:
		st = s.scheduler.RunDelayed(f.owner, bind(task), delay)
	case core.KindFixedRate:
		period := req.Period
		if period <= 0 {
			period = core.TickDuration
		}
		st = s.scheduler.RunAtFixedRate(f.owner, bind(task), delay, period)
	}
	return accept(task, st)
}

type entitySubmitter struct {
	family    *Family
	entity    host.Entity
	scheduler host.EntityScheduler
}

func (s *entitySubmitter) Backend() string     { return backendEntity }
func (s *entitySubmitter) Entity() host.Entity { return s.entity }

func (s *entitySubmitter) Execute(action core.Action, retired func(), delay core.Ticks) bool {
	f := s.family
	wrapped := f.config.WrapAction(f.ownerName, core.ScopeEntity, backendEntity, action)
	return s.scheduler.Execute(f.owner, wrapped, retired, int64(delay))
}

func (s *entitySubmitter) Submit(req core.Request) *core.Task {
	f := s.family
	task := core.NewTask(f.owner, core.ScopeEntity, backendEntity, req, f.config)

	var st host.ScheduledTask
	switch req.Kind {
	case core.KindNext:
		st = s.scheduler.Run(f.owner, bind(task), req.Retired)
	case core.KindDelayed:
		st = s.scheduler.RunDelayed(f.owner, bind(task), req.Retired, int64(req.DelayTicks()))
	case core.KindFixedRate:
		st = s.scheduler.RunAtFixedRate(f.owner, bind(task), req.Retired, int64(req.DelayTicks()), int64(req.PeriodTicks()))
	}
	return accept(task, st)
}
