package sim

import (
	"context"

	"github.com/Swind/go-region-runner/host"
)

// LegacyServer ticks the whole world on one primary thread and runs async
// tasks on a pool.
type LegacyServer struct {
	opts      Options
	main      *TickThread
	pool      *AsyncPool
	tasks     *registry
	scheduler *legacyScheduler
}

// NewLegacyServer creates and starts a legacy server.
func NewLegacyServer(opts Options) *LegacyServer {
	opts = opts.withDefaults()
	tasks := newRegistry()
	faults := newFaultReporter(opts)

	s := &LegacyServer{
		opts:  opts,
		main:  newTickThread("main", opts, tasks, faults),
		pool:  newAsyncPool("async", opts, tasks, faults),
		tasks: tasks,
	}
	s.scheduler = &legacyScheduler{server: s}
	return s
}

func (s *LegacyServer) Name() string    { return s.opts.Name }
func (s *LegacyServer) Version() string { return "sim-legacy" }

// Scheduler returns the native scheduler.
func (s *LegacyServer) Scheduler() host.LegacyScheduler { return s.scheduler }

// IsPrimaryThread reports whether ctx belongs to a callback on the main thread.
func (s *LegacyServer) IsPrimaryThread(ctx context.Context) bool {
	return CurrentThread(ctx) == s.main
}

// Main returns the primary tick thread.
func (s *LegacyServer) Main() *TickThread { return s.main }

// Async returns the async pool.
func (s *LegacyServer) Async() *AsyncPool { return s.pool }

// Step runs one tick of the primary thread.
func (s *LegacyServer) Step() { s.main.Step() }

// Stop stops the primary thread and the pool.
func (s *LegacyServer) Stop() {
	s.main.Stop()
	s.pool.Stop()
}

func (s *LegacyServer) ThreadStats() []ThreadStats { return []ThreadStats{s.main.Stats()} }
func (s *LegacyServer) PoolStats() PoolStats       { return s.pool.Stats() }

// WithAsyncTeleport returns a view of s that also implements
// host.AsyncTeleporter.
func (s *LegacyServer) WithAsyncTeleport() host.LegacyServer {
	return &teleportingLegacyServer{LegacyServer: s}
}

type teleportingLegacyServer struct {
	*LegacyServer
}

// TeleportAsync teleports e on the main thread next tick.
func (s *teleportingLegacyServer) TeleportAsync(e host.Entity, to host.Location, done func(ok bool)) {
	t := newTask(nil, func(ctx context.Context, _ *task) {
		done(e.Teleport(to))
	})
	t.sync = true
	if err := s.main.schedule(t, 1); err != nil {
		done(false)
	}
}

// =============================================================================
// Native scheduler
// =============================================================================

type legacyScheduler struct {
	server *LegacyServer
}

func legacyFunc(fn func(ctx context.Context)) func(ctx context.Context, _ *task) {
	return func(ctx context.Context, _ *task) { fn(ctx) }
}

func (ls *legacyScheduler) sync(owner host.Plugin, fn func(ctx context.Context), delay, period int64) host.LegacyTask {
	t := newTask(owner, legacyFunc(fn))
	t.sync = true
	if period > 0 {
		t.repeating = true
		t.period = period
	}
	if err := ls.server.main.schedule(t, delay); err != nil {
		return nil
	}
	return legacyTask{task: t}
}

func (ls *legacyScheduler) async(owner host.Plugin, fn func(ctx context.Context), delay, period int64) host.LegacyTask {
	t := newTask(owner, legacyFunc(fn))
	if period > 0 {
		t.repeating = true
		t.every = ticksToDuration(period)
	}
	if err := ls.server.pool.submit(t, ticksToDuration(delay)); err != nil {
		return nil
	}
	return legacyTask{task: t}
}

func (ls *legacyScheduler) RunTask(owner host.Plugin, fn func(ctx context.Context)) host.LegacyTask {
	return ls.sync(owner, fn, 1, 0)
}

func (ls *legacyScheduler) RunTaskLater(owner host.Plugin, fn func(ctx context.Context), delay int64) host.LegacyTask {
	return ls.sync(owner, fn, delay, 0)
}

func (ls *legacyScheduler) RunTaskTimer(owner host.Plugin, fn func(ctx context.Context), delay, period int64) host.LegacyTask {
	return ls.sync(owner, fn, delay, max(period, 1))
}

func (ls *legacyScheduler) RunTaskAsynchronously(owner host.Plugin, fn func(ctx context.Context)) host.LegacyTask {
	return ls.async(owner, fn, 0, 0)
}

func (ls *legacyScheduler) RunTaskLaterAsynchronously(owner host.Plugin, fn func(ctx context.Context), delay int64) host.LegacyTask {
	return ls.async(owner, fn, delay, 0)
}

func (ls *legacyScheduler) RunTaskTimerAsynchronously(owner host.Plugin, fn func(ctx context.Context), delay, period int64) host.LegacyTask {
	return ls.async(owner, fn, delay, max(period, 1))
}

func (ls *legacyScheduler) IsCurrentlyRunning(taskID int) bool {
	t, ok := ls.server.tasks.get(taskID)
	return ok && t.isRunning()
}

func (ls *legacyScheduler) CancelTasks(owner host.Plugin) {
	ls.server.tasks.cancelOwner(owner)
}
