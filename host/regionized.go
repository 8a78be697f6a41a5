package host

import (
	"context"
	"time"
)

// RegionizedServer is a host whose world is partitioned into regions, each
// ticked by its own thread.
//
// IsOwnedByCurrentRegion is the capability marker: a server exposing it is
// treated as region-parallel.
type RegionizedServer interface {
	Server

	IsOwnedByCurrentRegion(ctx context.Context, loc Location) bool
	IsOwnedByCurrentRegionRadius(ctx context.Context, loc Location, squareRadiusChunks int) bool
	IsChunkOwnedByCurrentRegion(ctx context.Context, world World, chunkX, chunkZ int) bool
	IsChunkOwnedByCurrentRegionRadius(ctx context.Context, world World, chunkX, chunkZ, squareRadiusChunks int) bool
	IsEntityOwnedByCurrentRegion(ctx context.Context, e Entity) bool

	GlobalRegionScheduler() GlobalRegionScheduler
	RegionScheduler() RegionScheduler
	AsyncScheduler() AsyncScheduler
	EntityScheduler(e Entity) EntityScheduler

	// TeleportAsync moves e to the target location, crossing region threads if
	// needed. done is invoked exactly once.
	TeleportAsync(e Entity, to Location, done func(ok bool))
}

// TaskFunc is the callback shape of region-parallel schedulers. The task
// argument is the handle of the execution in progress.
type TaskFunc func(ctx context.Context, task ScheduledTask)

// GlobalRegionScheduler runs tasks on the global region thread. Delays and
// periods are in ticks and must be at least 1.
type GlobalRegionScheduler interface {
	Execute(owner Plugin, fn func(ctx context.Context))
	Run(owner Plugin, fn TaskFunc) ScheduledTask
	RunDelayed(owner Plugin, fn TaskFunc, delay int64) ScheduledTask
	RunAtFixedRate(owner Plugin, fn TaskFunc, delay, period int64) ScheduledTask
	CancelTasks(owner Plugin)
}

// RegionScheduler runs tasks on the thread owning a chunk.
type RegionScheduler interface {
	Execute(owner Plugin, world World, chunkX, chunkZ int, fn func(ctx context.Context))
	Run(owner Plugin, world World, chunkX, chunkZ int, fn TaskFunc) ScheduledTask
	RunDelayed(owner Plugin, world World, chunkX, chunkZ int, fn TaskFunc, delay int64) ScheduledTask
	RunAtFixedRate(owner Plugin, world World, chunkX, chunkZ int, fn TaskFunc, delay, period int64) ScheduledTask
}

// EntityScheduler runs tasks on whichever region thread currently owns an
// entity. Submissions return nil (or false) if the entity is already
// retired; retired callbacks fire if the entity is removed before a
// scheduled task runs.
type EntityScheduler interface {
	Execute(owner Plugin, fn func(ctx context.Context), retired func(), delay int64) bool
	Run(owner Plugin, fn TaskFunc, retired func()) ScheduledTask
	RunDelayed(owner Plugin, fn TaskFunc, retired func(), delay int64) ScheduledTask
	RunAtFixedRate(owner Plugin, fn TaskFunc, retired func(), delay, period int64) ScheduledTask
}

// AsyncScheduler runs tasks off the tick threads, in wall-clock time.
type AsyncScheduler interface {
	RunNow(owner Plugin, fn TaskFunc) ScheduledTask
	RunDelayed(owner Plugin, fn TaskFunc, delay time.Duration) ScheduledTask
	RunAtFixedRate(owner Plugin, fn TaskFunc, delay, period time.Duration) ScheduledTask
	CancelTasks(owner Plugin)
}

// ScheduledTask is the handle returned by region-parallel schedulers.
type ScheduledTask interface {
	Owner() Plugin
	Cancel() CancelledState
	ExecutionState() ExecutionState
	IsCancelled() bool
	IsRepeating() bool
}

// ExecutionState is the lifecycle state of a ScheduledTask.
type ExecutionState int

const (
	StateIdle ExecutionState = iota
	StateRunning
	StateFinished
	StateCancelled
	StateCancelledRunning
)

func (s ExecutionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	case StateCancelled:
		return "cancelled"
	case StateCancelledRunning:
		return "cancelled_running"
	default:
		return "unknown"
	}
}

// CancelledState is the outcome of ScheduledTask.Cancel.
type CancelledState int

const (
	// CancelledByCaller: the task was idle and will never run.
	CancelledByCaller CancelledState = iota
	// CancelledAlready: the task had already been cancelled.
	CancelledAlready
	// NextRunsCancelled: a repeating task is running now; later runs are cancelled.
	NextRunsCancelled
	// NextRunsCancelledAlready: later runs had already been cancelled.
	NextRunsCancelledAlready
	// AlreadyExecuted: a one-shot task has finished.
	AlreadyExecuted
	// StillRunning: a one-shot task is running and cannot be cancelled.
	StillRunning
)
