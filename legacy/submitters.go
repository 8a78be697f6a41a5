package legacy

import (
	"context"

	"github.com/Swind/go-region-runner/core"
	"github.com/Swind/go-region-runner/host"
)

const (
	backendSync   = "legacy.sync"
	backendAsync  = "legacy.async"
	backendEntity = "legacy.entity"
)

// syncSubmitter hands tasks to the primary thread.
type syncSubmitter struct {
	family *Family
	scope  core.ScopeKind
}

func (s *syncSubmitter) Backend() string       { return backendSync }
func (s *syncSubmitter) Scope() core.ScopeKind { return s.scope }

func (s *syncSubmitter) Execute(action core.Action) {
	f := s.family
	f.scheduler.RunTask(f.owner, f.config.WrapAction(f.ownerName, s.scope, backendSync, action))
}

func (s *syncSubmitter) Submit(req core.Request) *core.Task {
	return s.family.submitSync(req, s.scope, backendSync)
}

// asyncSubmitter hands tasks to the host's async workers. Delays are still
// counted in ticks.
type asyncSubmitter struct {
	family *Family
}

func (s *asyncSubmitter) Backend() string       { return backendAsync }
func (s *asyncSubmitter) Scope() core.ScopeKind { return core.ScopeAsync }

func (s *asyncSubmitter) Execute(action core.Action) {
	f := s.family
	f.scheduler.RunTaskAsynchronously(f.owner, f.config.WrapAction(f.ownerName, core.ScopeAsync, backendAsync, action))
}

func (s *asyncSubmitter) Submit(req core.Request) *core.Task {
	f := s.family
	task := core.NewTask(f.owner, core.ScopeAsync, backendAsync, req, f.config)
	fn := func(ctx context.Context) { task.Execute(ctx, nil) }

	var native host.LegacyTask
	switch req.Kind {
	case core.KindNext:
		native = f.scheduler.RunTaskAsynchronously(f.owner, fn)
	case core.KindDelayed:
		native = f.scheduler.RunTaskLaterAsynchronously(f.owner, fn, int64(req.DelayTicks()))
	case core.KindFixedRate:
		native = f.scheduler.RunTaskTimerAsynchronously(f.owner, fn, int64(req.DelayTicks()), int64(req.PeriodTicks()))
	}
	return f.accept(task, native, req)
}

// entitySubmitter runs entity tasks on the primary thread. The legacy host
// has no notion of entity retirement; the core guard supplies it.
type entitySubmitter struct {
	family *Family
	entity host.Entity
}

func (s *entitySubmitter) Backend() string     { return backendEntity }
func (s *entitySubmitter) Entity() host.Entity { return s.entity }

func (s *entitySubmitter) Execute(action core.Action, retired func(), delay core.Ticks) bool {
	f := s.family
	wrapped := f.config.WrapAction(f.ownerName, core.ScopeEntity, backendEntity, action)
	return f.scheduler.RunTaskLater(f.owner, wrapped, int64(delay)) != nil
}

func (s *entitySubmitter) Submit(req core.Request) *core.Task {
	return s.family.submitSync(req, core.ScopeEntity, backendEntity)
}

func (f *Family) submitSync(req core.Request, scope core.ScopeKind, backend string) *core.Task {
	task := core.NewTask(f.owner, scope, backend, req, f.config)
	fn := func(ctx context.Context) { task.Execute(ctx, nil) }

	var native host.LegacyTask
	switch req.Kind {
	case core.KindNext:
		native = f.scheduler.RunTask(f.owner, fn)
	case core.KindDelayed:
		native = f.scheduler.RunTaskLater(f.owner, fn, int64(req.DelayTicks()))
	case core.KindFixedRate:
		native = f.scheduler.RunTaskTimer(f.owner, fn, int64(req.DelayTicks()), int64(req.PeriodTicks()))
	}
	return f.accept(task, native, req)
}

func (f *Family) accept(task *core.Task, native host.LegacyTask, req core.Request) *core.Task {
	if native == nil {
		return task.Accept(nil)
	}
	return task.Accept(&nativeTask{task: native, scheduler: f.scheduler, repeating: req.IsRepeating()})
}
